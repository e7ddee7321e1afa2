package horoscope

import "time"

var lifePathMeanings = map[int]string{
	1:  "Лидер и первопроходец: вы созданы начинать новое.",
	2:  "Дипломат и миротворец: ваша сила в гармонии и партнерстве.",
	3:  "Творец и вдохновитель: самовыражение приносит вам радость.",
	4:  "Строитель: надежность и труд закладывают прочный фундамент.",
	5:  "Искатель свободы: перемены и путешествия питают вашу энергию.",
	6:  "Хранитель очага: забота о близких наполняет вашу жизнь смыслом.",
	7:  "Мудрец: глубокие размышления ведут вас к истине.",
	8:  "Стратег: вы умеете достигать материального успеха.",
	9:  "Гуманист: служение другим делает вас счастливым.",
	11: "Мастер-число 11: интуиция и духовное вдохновение.",
	22: "Мастер-число 22: великий строитель, воплощающий мечты в реальность.",
	33: "Мастер-число 33: учитель, несущий свет и сострадание.",
}

// LifePathNumber reduces the digits of the date (YYYYMMDD) to a single digit,
// keeping the master numbers 11, 22 and 33.
func LifePathNumber(date time.Time) int {
	n := digitSum(date.Year()) + digitSum(int(date.Month())) + digitSum(date.Day())
	for n > 9 && !isMasterNumber(n) {
		n = digitSum(n)
	}
	return n
}

// LifePathMeaning describes a life path number.
func LifePathMeaning(n int) string {
	return lifePathMeanings[n]
}

func isMasterNumber(n int) bool {
	return n == 11 || n == 22 || n == 33
}

func digitSum(n int) int {
	sum := 0
	for n > 0 {
		sum += n % 10
		n /= 10
	}
	return sum
}
