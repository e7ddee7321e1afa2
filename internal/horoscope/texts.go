package horoscope

// Templates is the local pool of general horoscope texts, used when no
// upstream provider is reachable.
var Templates = []string{
	"Звезды советуют вам проявить инициативу! Сегодня удачный день для новых начинаний.",
	"Прислушайтесь к своей интуиции: она не подведет в важных решениях.",
	"День благоприятен для общения и установления новых контактов.",
	"Сосредоточьтесь на семейных делах, близкие нуждаются в вашей поддержке.",
	"Время проявить творческие способности! Не бойтесь экспериментировать.",
	"Практичный подход к делам принесет отличные результаты.",
	"Ищите баланс во всем: в работе, отдыхе и отношениях.",
	"Глубокий анализ ситуации поможет найти неожиданное решение.",
	"Расширьте горизонты! Новые знания откроют перспективы.",
	"Терпение и настойчивость станут ключом к достижению цели.",
	"Время для смелых идей и нестандартных решений!",
	"Доверьтесь течению жизни, интуиция подскажет верный путь.",
}

// DayCard is a gnome card dealt once per user per day.
type DayCard struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

var DayCards = []DayCard{
	{Title: "Гном-авантюрист", Text: "Сегодня время для смелых решений! Не бойся рискнуть: фортуна любит храбрых."},
	{Title: "Гном-повар", Text: "День для заботы о своем теле и душе. Приготовь что-то вкусное или побалуй себя."},
	{Title: "Гном-садовник", Text: "Время посадить семена будущих успехов. Небольшие действия сегодня принесут большие плоды."},
	{Title: "Гном-изобретатель", Text: "Креативность зашкаливает сегодня! Придумай что-то новое или реши задачу нестандартным способом."},
	{Title: "Гном-музыкант", Text: "Найди свой ритм дня. Включи любимую музыку и позволь мелодии вести тебя к успеху."},
	{Title: "Гном-философ", Text: "Размышления принесут ясность. Уделите время анализу своих целей и желаний."},
	{Title: "Гном-путешественник", Text: "Новые места и впечатления ждут! Даже короткая прогулка может стать приключением."},
	{Title: "Гном-мастер", Text: "Руки помнят мудрость. Займитесь любимым делом или освойте новый навык."},
}

// Decoration applied to provider horoscopes when enabled.
const (
	DecorationPrefix = "Гномы читают звезды: "
	DecorationSuffix = " 🧙"
)
