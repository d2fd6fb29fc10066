package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rodaine/table"

	"github.com/romangod6/sitemapper/internal/audit"
	"github.com/romangod6/sitemapper/internal/models"
	"github.com/romangod6/sitemapper/internal/progress"
)

type AuditCmd struct {
	URL      string `arg:"" help:"Page URL. https:// is assumed when no scheme is given."`
	MaxLinks int    `help:"Maximum number of internal links to check (default from config)." placeholder:"N"`
}

func (cmd *AuditCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditor := audit.New(g.Config.AuditorConfig(), g.Logger)

	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Fetching page"
	s.Start()

	bar := progress.New(os.Stderr, "links")
	var handOver sync.Once
	report, err := auditor.Audit(ctx, audit.Request{
		URL:      cmd.URL,
		MaxLinks: cmd.MaxLinks,
		OnLinkChecked: func(done, total int) {
			// The spinner and the bar share stderr; the first link result hands over.
			handOver.Do(s.Stop)
			bar.Update(done, total)
		},
	})
	s.Stop()
	bar.Finish()

	if err != nil {
		printError(os.Stdout, err)
		return err
	}

	printReport(report)
	return nil
}

func printReport(r *models.AuditReport) {
	printSuccess(os.Stdout, "Audited %s (status %d)", r.URL, r.StatusCode)

	printHeading(os.Stdout, "Page")
	tbl := table.New("Check", "Result")
	tbl.AddRow("Title", presence(r.HasTitle, r.Title))
	tbl.AddRow("Meta description", presence(r.HasMetaDescription, r.MetaDescription))
	tbl.AddRow("H1", presence(len(r.H1) > 0, strings.Join(r.H1, " | ")))
	tbl.AddRow("Images", fmt.Sprintf("%d (%d without alt)", r.Images, len(r.ImagesMissingAlt)))
	tbl.AddRow("robots.txt", siteFile(r.Robots))
	tbl.AddRow("sitemap.xml", siteFile(r.Sitemap))
	tbl.Print()

	if !r.HasTitle {
		printWarning(os.Stdout, "The page has no <title>")
	}
	if !r.HasMetaDescription {
		printWarning(os.Stdout, "The page has no meta description")
	}
	if len(r.H1) == 0 {
		printWarning(os.Stdout, "The page has no <h1>")
	}

	if len(r.ImagesMissingAlt) > 0 {
		printHeading(os.Stdout, "Images without alt text")
		tbl := table.New("#", "Source")
		for i, src := range r.ImagesMissingAlt {
			tbl.AddRow(i+1, src)
		}
		tbl.Print()
	}

	if r.Robots.Present {
		printHeading(os.Stdout, "robots.txt")
		allowed := "unknown"
		if r.Robots.PathAllowed != nil {
			allowed = fmt.Sprintf("%t", *r.Robots.PathAllowed)
		}
		tbl := table.New("Directive", "Value")
		tbl.AddRow("Page allowed", allowed)
		for _, sm := range r.Robots.Sitemaps {
			tbl.AddRow("Sitemap", sm)
		}
		tbl.Print()
	}

	if len(r.InternalLinks) == 0 {
		return
	}
	printHeading(os.Stdout, fmt.Sprintf("Internal links (%d checked)", len(r.InternalLinks)))
	links := table.New("URL", "Status", "OK")
	for _, l := range r.InternalLinks {
		status := fmt.Sprintf("%d", l.StatusCode)
		if l.Error != "" {
			status = l.Error
		}
		links.AddRow(l.URL, status, l.OK)
	}
	links.Print()

	if r.LinksTruncated {
		printWarning(os.Stdout, "More internal links were found than the check limit")
	}
	if broken := r.BrokenLinks(); len(broken) > 0 {
		printWarning(os.Stdout, "%d broken internal links", len(broken))
	} else {
		printSuccess(os.Stdout, "All checked internal links are reachable")
	}
}

func presence(ok bool, value string) string {
	if !ok {
		return "missing"
	}
	return value
}

func siteFile(f models.SiteFile) string {
	switch {
	case f.Present:
		return fmt.Sprintf("present (%d)", f.StatusCode)
	case f.Error != "":
		return "error: " + f.Error
	default:
		return fmt.Sprintf("missing (%d)", f.StatusCode)
	}
}
