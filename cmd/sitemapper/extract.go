package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rodaine/table"

	"github.com/romangod6/sitemapper/internal/export"
	"github.com/romangod6/sitemapper/internal/sitemap"
)

type ExtractCmd struct {
	URL     string `arg:"" help:"Sitemap URL. https:// is assumed when no scheme is given."`
	CSV     string `help:"Also write the URLs to this CSV file." placeholder:"FILE" type:"path"`
	Expand  bool   `help:"Follow sitemap index entries into their child sitemaps."`
	Lenient bool   `help:"Parse the response even when its Content-Type is not XML."`
}

func (cmd *ExtractCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := g.Config.ExtractorOptions()
	if cmd.Lenient {
		opts = append(opts, sitemap.WithStrictContentType(false))
	}
	extractor := sitemap.New(opts...)

	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Fetching " + sitemap.Normalize(cmd.URL)
	s.Start()

	var (
		urls      []string
		expansion *sitemap.Expansion
		err       error
	)
	if cmd.Expand {
		expansion, err = sitemap.Expand(ctx, extractor, cmd.URL, g.Config.ExpandOptions())
		if expansion != nil {
			urls = expansion.URLs
		}
	} else {
		urls, err = extractor.Extract(ctx, cmd.URL)
	}
	s.Stop()

	if err != nil {
		g.Logger.Debug("Extraction failed", "url", cmd.URL, "kind", sitemap.KindOf(err), "err", err)
		printError(os.Stdout, err)
		return err
	}

	if expansion != nil {
		printExpansion(expansion)
	}

	if len(urls) == 0 {
		printWarning(os.Stdout, "The sitemap is valid but lists no URLs.")
	} else {
		printSuccess(os.Stdout, "Found %d URLs", len(urls))
		export.WriteTable(os.Stdout, urls)
	}

	if cmd.CSV != "" {
		if err := writeCSVFile(cmd.CSV, urls); err != nil {
			return err
		}
		g.Logger.Info("Wrote CSV", "path", cmd.CSV, "rows", len(urls))
	}
	return nil
}

func printExpansion(e *sitemap.Expansion) {
	printHeading(os.Stdout, fmt.Sprintf("Sitemaps read: %d", len(e.Sitemaps)))

	if len(e.Skipped) > 0 {
		printWarning(os.Stdout, "%d nested sitemaps were beyond the depth limit and not followed", len(e.Skipped))
	}
	if len(e.Failures) == 0 {
		return
	}

	failed := make([]string, 0, len(e.Failures))
	for loc := range e.Failures {
		failed = append(failed, loc)
	}
	sort.Strings(failed)

	printWarning(os.Stdout, "%d child sitemaps could not be read", len(failed))
	tbl := table.New("Sitemap", "Problem")
	for _, loc := range failed {
		tbl.AddRow(loc, describeError(e.Failures[loc]))
	}
	tbl.Print()
}

func writeCSVFile(path string, urls []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := export.WriteCSV(f, urls); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
