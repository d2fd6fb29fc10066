package audit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"

	"github.com/romangod6/sitemapper/internal/models"
)

const maxRobotsBytes = 512 * 1024

// probeRobots fetches /robots.txt and, when present, reports its Sitemap
// directives and whether pagePath is allowed for the configured user agent.
func (a *Auditor) probeRobots(ctx context.Context, siteRoot *url.URL, pagePath string) models.SiteFile {
	target := siteRoot.String() + "/robots.txt"
	file := models.SiteFile{URL: target}

	status, body, err := a.get(ctx, target, maxRobotsBytes)
	if err != nil {
		a.logger.Warn("robots.txt probe failed", "url", target, "err", err)
		file.Error = err.Error()
		return file
	}
	file.StatusCode = status
	file.Present = status >= 200 && status < 300
	if !file.Present {
		return file
	}

	robots, err := robotstxt.FromStatusAndBytes(status, body)
	if err != nil {
		file.Error = fmt.Sprintf("failed to parse robots.txt: %v", err)
		return file
	}
	file.Sitemaps = robots.Sitemaps

	if pagePath == "" {
		pagePath = "/"
	}
	allowed := robots.TestAgent(pagePath, a.config.UserAgent)
	file.PathAllowed = &allowed

	return file
}

// probeFile reports whether target answers with a 2xx status.
func (a *Auditor) probeFile(ctx context.Context, target string) models.SiteFile {
	check := a.checkLink(ctx, target)
	return models.SiteFile{
		URL:        target,
		Present:    check.StatusCode >= 200 && check.StatusCode < 300,
		StatusCode: check.StatusCode,
		Error:      check.Error,
	}
}

func (a *Auditor) get(ctx context.Context, target string, limit int64) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.LinkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", a.config.UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}
