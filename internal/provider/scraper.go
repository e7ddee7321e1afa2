package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
)

const (
	userAgent = "GnomeHoroscope/1.0"

	maxPageSize          = 5 * 1024 * 1024
	defaultScrapedLength = 2000
)

// ScraperConfig describes where to find content on a page.
type ScraperConfig struct {
	// URL may contain {value} and {date} placeholders, replaced from the key.
	URL string

	// ItemSelector selects repeated blocks; TitleSelector and TextSelector
	// are evaluated inside each block.
	ItemSelector  string
	TitleSelector string
	TextSelector  string

	// MainSelector selects the page's main text. It is used when no items
	// are found.
	MainSelector string

	// MaxLength truncates the result, in runes.
	MaxLength int
}

// Scraper extracts text from an HTML page. A URL without a {date}
// placeholder only ever shows the current page, so such a scraper fails for
// keys dated any other day.
type Scraper struct {
	cfg    ScraperConfig
	client *http.Client
	now    func() time.Time
}

// NewScraper creates the provider. A nil client uses http.DefaultClient and a
// nil clock uses time.Now.
func NewScraper(cfg ScraperConfig, client *http.Client, clock func() time.Time) *Scraper {
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = defaultScrapedLength
	}
	if clock == nil {
		clock = time.Now
	}
	return &Scraper{cfg: cfg, client: httpClient(client), now: clock}
}

func (s *Scraper) Name() string {
	return "scrape"
}

func (s *Scraper) Fetch(ctx context.Context, key resolver.ContentKey) (string, error) {
	target, err := s.pageURL(key)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("scrape request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	res, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("scrape request failed: %w", err)
	}
	defer res.Body.Close()

	if err := checkStatus(res); err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(res.Body, maxPageSize))
	if err != nil {
		return "", fmt.Errorf("scrape parse failed: %w", err)
	}

	text := s.extractItems(doc)
	if text == "" {
		text = s.extractMain(doc)
	}

	return truncateRunes(text, s.cfg.MaxLength), nil
}

func (s *Scraper) pageURL(key resolver.ContentKey) (string, error) {
	today := s.now().UTC().Format(time.DateOnly)

	date := today
	if d, ok := key.Date(); ok {
		date = d.Format(time.DateOnly)
	}

	if date != today && !strings.Contains(s.cfg.URL, "{date}") {
		return "", fmt.Errorf("scrape source only serves the current day, not %s", date)
	}

	return strings.NewReplacer(
		"{value}", url.PathEscape(key.Value()),
		"{date}", date,
	).Replace(s.cfg.URL), nil
}

// extractItems renders each item as "title: text", one per line.
func (s *Scraper) extractItems(doc *goquery.Document) string {
	if s.cfg.ItemSelector == "" {
		return ""
	}

	var lines []string
	doc.Find(s.cfg.ItemSelector).Each(func(_ int, item *goquery.Selection) {
		title := collapseSpace(item.Find(s.cfg.TitleSelector).First().Text())
		text := collapseSpace(item.Find(s.cfg.TextSelector).Text())

		switch {
		case title != "" && text != "":
			lines = append(lines, title+": "+text)
		case title != "":
			lines = append(lines, title)
		case text != "":
			lines = append(lines, text)
		}
	})

	return strings.Join(lines, "\n")
}

func (s *Scraper) extractMain(doc *goquery.Document) string {
	if s.cfg.MainSelector == "" {
		return ""
	}

	texts := doc.Find(s.cfg.MainSelector).Map(func(_ int, sel *goquery.Selection) string {
		return sel.Text()
	})

	return collapseSpace(strings.Join(texts, " "))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}
