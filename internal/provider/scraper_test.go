package provider_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/provider"
	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
	"github.com/gnome-horoscope/gnome-bridge/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moonPage = `<html><body>
<header>Календарь</header>
<main>
  <div class="moon-phase__item"><h3>Фаза</h3><p>Растущая   луна</p></div>
  <div class="moon__item"><h3>Знак</h3><p>Луна в Скорпионе</p></div>
  <div class="moon__item"><h3></h3><p></p></div>
  <p>Основной   текст
  страницы</p>
</main>
</body></html>`

func TestScraper_Items(t *testing.T) {
	mock := testhelpers.SetupMockPageServer(t, moonPage)

	scraper := provider.NewScraper(provider.ScraperConfig{
		URL:           mock.Server.URL + "/moon",
		ItemSelector:  ".moon-phase__item, .moon__item",
		TitleSelector: "h3",
		TextSelector:  "p",
		MainSelector:  "main",
	}, nil, clock)

	text, err := scraper.Fetch(context.Background(), resolver.DailyKey("moon", "", today))
	require.NoError(t, err)
	assert.Equal(t, "Фаза: Растущая луна\nЗнак: Луна в Скорпионе", text)
	assert.Equal(t, "GnomeHoroscope/1.0", mock.LastUserAgent.Load())
	assert.Equal(t, "/moon", mock.LastPath.Load())
}

func TestScraper_MainWhenNoItems(t *testing.T) {
	mock := testhelpers.SetupMockPageServer(t, `<html><body><main><article>
<p>Тельцам   сегодня</p><p>везет.</p>
</article></main></body></html>`)

	scraper := provider.NewScraper(provider.ScraperConfig{
		URL:          mock.Server.URL + "/prediction/{value}/{date}/",
		MainSelector: "main article p",
	}, nil, clock)

	text, err := scraper.Fetch(context.Background(), resolver.DailyKey("horoscope", "taurus", today))
	require.NoError(t, err)
	assert.Equal(t, "Тельцам сегодня везет.", text)
	assert.Equal(t, "/prediction/taurus/2025-08-27/", mock.LastPath.Load())
}

func TestScraper_Truncates(t *testing.T) {
	mock := testhelpers.SetupMockPageServer(t, "<main>"+strings.Repeat("гном ", 100)+"</main>")

	scraper := provider.NewScraper(provider.ScraperConfig{
		URL:          mock.Server.URL,
		MainSelector: "main",
		MaxLength:    10,
	}, nil, clock)

	text, err := scraper.Fetch(context.Background(), resolver.NewKey("moon"))
	require.NoError(t, err)
	assert.Equal(t, "гном гном", text)
}

func TestScraper_NothingMatched(t *testing.T) {
	mock := testhelpers.SetupMockPageServer(t, "<html><body><div>nothing</div></body></html>")

	scraper := provider.NewScraper(provider.ScraperConfig{
		URL:          mock.Server.URL,
		ItemSelector: ".item",
		MainSelector: "main",
	}, nil, clock)

	text, err := scraper.Fetch(context.Background(), resolver.NewKey("moon"))
	require.NoError(t, err)
	assert.Empty(t, text, "the resolver treats empty text as a failure")
}

func TestScraper_ErrorStatus(t *testing.T) {
	mock := testhelpers.SetupMockPageServer(t, "gone")
	mock.StatusCode = http.StatusNotFound

	scraper := provider.NewScraper(provider.ScraperConfig{URL: mock.Server.URL, MainSelector: "main"}, nil, clock)

	_, err := scraper.Fetch(context.Background(), resolver.NewKey("moon"))

	var statusErr provider.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestScraper_OtherDaysNeedDatedURL(t *testing.T) {
	mock := testhelpers.SetupMockPageServer(t, "<main>Тельцам сегодня везет.</main>")
	past := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	undated := provider.NewScraper(provider.ScraperConfig{
		URL:          mock.Server.URL + "/prediction/{value}/today/",
		MainSelector: "main",
	}, nil, clock)

	_, err := undated.Fetch(context.Background(), resolver.DailyKey("horoscope", "taurus", past))
	assert.ErrorContains(t, err, "only serves the current day, not 2020-01-01")
	assert.Equal(t, int32(0), mock.RequestCount.Load())

	text, err := undated.Fetch(context.Background(), resolver.DailyKey("horoscope", "taurus", today))
	require.NoError(t, err)
	assert.Equal(t, "Тельцам сегодня везет.", text)

	dated := provider.NewScraper(provider.ScraperConfig{
		URL:          mock.Server.URL + "/prediction/{value}/{date}/",
		MainSelector: "main",
	}, nil, clock)

	_, err = dated.Fetch(context.Background(), resolver.DailyKey("horoscope", "taurus", past))
	require.NoError(t, err)
	assert.Equal(t, "/prediction/taurus/2020-01-01/", mock.LastPath.Load())
}
