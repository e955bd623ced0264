package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"
)

const (
	HomeURL   = "https://www.gits.igg.unam.mx/red-irag-dashboard/reviewHome"
	TrendURL  = "https://www.gits.igg.unam.mx/red-irag-dashboard/reviewStoryTrend"
	UserAgent = "hospi-calendar/1.0 (github.com/pfrederiksen/hospi-calendar)"
	Timeout   = 30 * time.Second
)

// Options configures the upstream endpoints. Zero fields fall back to the
// package defaults.
type Options struct {
	HomeURL   string
	TrendURL  string
	UserAgent string
	Timeout   time.Duration
}

// Scraper fetches the occupancy dashboard. The home page sets the session
// cookies the trend endpoint requires.
type Scraper struct {
	client    *http.Client
	homeURL   string
	trendURL  string
	userAgent string
}

// New creates a new Scraper instance with its own cookie jar
func New(opts Options) (*Scraper, error) {
	if opts.HomeURL == "" {
		opts.HomeURL = HomeURL
	}
	if opts.TrendURL == "" {
		opts.TrendURL = TrendURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &Scraper{
		client: &http.Client{
			Timeout: opts.Timeout,
			Jar:     jar,
		},
		homeURL:   opts.HomeURL,
		trendURL:  opts.TrendURL,
		userAgent: opts.UserAgent,
	}, nil
}

// Page is the raw trend response.
type Page struct {
	URL  string
	Body string
}

// Fetch opens a session and posts the trend form for date. Any failure is
// returned as an *AcquisitionError.
func (s *Scraper) Fetch(ctx context.Context, date time.Time) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.homeURL, nil)
	if err != nil {
		return nil, &AcquisitionError{Stage: StageSession, URL: s.homeURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	if _, err := s.do(req, StageSession); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("date", date.Format(time.DateOnly))

	req, err = http.NewRequestWithContext(ctx, http.MethodPost, s.trendURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &AcquisitionError{Stage: StageTrend, URL: s.trendURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := s.do(req, StageTrend)
	if err != nil {
		return nil, err
	}

	return &Page{URL: s.trendURL, Body: body}, nil
}

// do sends req and returns the body of a 200 response
func (s *Scraper) do(req *http.Request, stage string) (string, error) {
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &AcquisitionError{Stage: stage, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &AcquisitionError{
			Stage:      stage,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AcquisitionError{Stage: stage, URL: req.URL.String(), Err: fmt.Errorf("reading body: %w", err)}
	}

	return string(data), nil
}

// ScriptText returns the concatenated contents of the page's <script>
// elements, where the dashboard embeds its series. Pages without scripts, or
// that fail to parse, are returned whole.
func (p *Page) ScriptText() string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.Body))
	if err != nil {
		return p.Body
	}

	var b strings.Builder
	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		b.WriteString(sel.Text())
		b.WriteString("\n")
	})

	if strings.TrimSpace(b.String()) == "" {
		return p.Body
	}
	return b.String()
}
