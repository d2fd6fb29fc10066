package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gocolly/colly/v2"
	"golang.org/x/sync/errgroup"

	"github.com/romangod6/sitemapper/internal/models"
	"github.com/romangod6/sitemapper/internal/sitemap"
)

const (
	DefaultUserAgent       = "sitemapper/1.0"
	DefaultTimeout         = 10 * time.Second
	DefaultLinkTimeout     = 5 * time.Second
	DefaultMaxLinks        = 20
	DefaultLinkConcurrency = 5
)

var (
	ErrEmptyURL = errors.New("page URL is empty")
	ErrNotHTML  = errors.New("page is not HTML")
)

// PageError reports that the audited page itself could not be fetched.
type PageError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *PageError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch page %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("failed to fetch page %s: %v", e.URL, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

type Config struct {
	UserAgent       string
	Timeout         time.Duration
	LinkTimeout     time.Duration
	MaxLinks        int
	LinkConcurrency int
}

func (c *Config) setDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.LinkTimeout <= 0 {
		c.LinkTimeout = DefaultLinkTimeout
	}
	if c.MaxLinks <= 0 {
		c.MaxLinks = DefaultMaxLinks
	}
	if c.LinkConcurrency <= 0 {
		c.LinkConcurrency = DefaultLinkConcurrency
	}
}

// Auditor runs presence checks against a single page and its site root.
type Auditor struct {
	config Config
	client *http.Client
	logger *log.Logger
}

// Request describes one audit. MaxLinks overrides the configured cap when positive.
// OnLinkChecked, when set, is called after each link check from multiple goroutines.
type Request struct {
	URL           string
	MaxLinks      int
	OnLinkChecked func(done, total int)
}

func New(config Config, logger *log.Logger) *Auditor {
	config.setDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Auditor{
		config: config,
		client: &http.Client{},
		logger: logger,
	}
}

// Audit fetches the page, inspects it, checks its internal links and probes
// robots.txt and sitemap.xml at the site root. Only a failure to fetch the page
// itself is returned as an error; link and probe failures are recorded in the report.
func (a *Auditor) Audit(ctx context.Context, req Request) (*models.AuditReport, error) {
	raw := strings.TrimSpace(req.URL)
	if raw == "" {
		return nil, ErrEmptyURL
	}
	target := sitemap.Normalize(raw)

	base, err := url.Parse(target)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid page URL %q", raw)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.logger.Info("Auditing page", "url", target)

	report := models.NewAuditReport(target)
	facts, status, err := a.fetchPage(ctx, target)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}

	report.StatusCode = status
	report.Title = facts.Title
	report.HasTitle = facts.Title != ""
	report.MetaDescription = facts.MetaDescription
	report.HasMetaDescription = facts.HasMetaDescription
	report.H1 = facts.H1
	report.Images = facts.Images
	report.ImagesMissingAlt = facts.ImagesMissingAlt

	maxLinks := a.config.MaxLinks
	if req.MaxLinks > 0 {
		maxLinks = req.MaxLinks
	}
	links := facts.Links
	if len(links) > maxLinks {
		links = links[:maxLinks]
		report.LinksTruncated = true
	}
	a.logger.Debug("Checking internal links", "found", len(facts.Links), "checking", len(links))
	report.InternalLinks = a.checkLinks(ctx, links, req.OnLinkChecked)

	siteRoot := &url.URL{Scheme: base.Scheme, Host: base.Host}
	report.Robots = a.probeRobots(ctx, siteRoot, base.EscapedPath())
	report.Sitemap = a.probeFile(ctx, siteRoot.String()+"/sitemap.xml")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.logger.Info("Audit completed", "url", target,
		"links", len(report.InternalLinks),
		"broken", len(report.BrokenLinks()),
		"images_missing_alt", len(report.ImagesMissingAlt))

	return report, nil
}

// contextTransport binds every request colly issues to ctx, since colly's
// Visit takes no context of its own.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

func (a *Auditor) fetchPage(ctx context.Context, target string) (*PageFacts, int, error) {
	c := colly.NewCollector(
		colly.UserAgent(a.config.UserAgent),
		colly.DetectCharset(),
	)
	c.WithTransport(&contextTransport{ctx: ctx, base: http.DefaultTransport})
	c.SetRequestTimeout(a.config.Timeout)

	var (
		facts       *PageFacts
		status      int
		contentType string
	)

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		contentType = r.Headers.Get("Content-Type")
	})

	c.OnError(func(r *colly.Response, err error) {
		status = r.StatusCode
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		facts = inspect(e.Request.URL, e.DOM)
	})

	if err := c.Visit(target); err != nil {
		a.logger.Error("Failed to fetch page", "url", target, "status", status, "err", err)
		return nil, status, &PageError{URL: target, StatusCode: status, Err: err}
	}
	if facts == nil {
		return nil, status, &PageError{URL: target, StatusCode: status,
			Err: fmt.Errorf("%w: content type %q", ErrNotHTML, contentType)}
	}
	return facts, status, nil
}

func (a *Auditor) checkLinks(ctx context.Context, links []string, progress func(done, total int)) []models.LinkStatus {
	results := make([]models.LinkStatus, len(links))
	var done int32

	var g errgroup.Group
	g.SetLimit(a.config.LinkConcurrency)
	for i, link := range links {
		g.Go(func() error {
			results[i] = a.checkLink(ctx, link)
			n := atomic.AddInt32(&done, 1)
			if progress != nil {
				progress(int(n), len(links))
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// checkLink issues a HEAD request and retries with GET when the server does
// not support HEAD.
func (a *Auditor) checkLink(ctx context.Context, link string) models.LinkStatus {
	result := models.LinkStatus{URL: link}

	status, err := a.statusOf(ctx, http.MethodHead, link)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = a.statusOf(ctx, http.MethodGet, link)
	}
	if err != nil {
		a.logger.Warn("Link check failed", "url", link, "err", err)
		result.Error = err.Error()
		return result
	}

	result.StatusCode = status
	result.OK = status >= 200 && status < 400
	if !result.OK {
		a.logger.Debug("Broken link", "url", link, "status", status)
	}
	return result
}

func (a *Auditor) statusOf(ctx context.Context, method, target string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.LinkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", a.config.UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	return resp.StatusCode, nil
}
