package sitemap

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultExpandDepth       = 3
	DefaultExpandConcurrency = 4
)

// DocumentExtractor is satisfied by *Extractor.
type DocumentExtractor interface {
	ExtractDocument(ctx context.Context, ref string) (*Document, error)
}

type ExpandOptions struct {
	// MaxDepth is the number of index levels followed below the root.
	MaxDepth int
	// Concurrency bounds the child sitemaps fetched at once across all levels.
	Concurrency int
}

// Expansion is the flattened result of following a sitemap index.
type Expansion struct {
	// URLs lists page locations in index order.
	URLs []string
	// Sitemaps lists every document requested, root first.
	Sitemaps []string
	// Skipped lists index entries not followed because MaxDepth was reached.
	Skipped []string
	// Failures maps a child sitemap location to the error that stopped it.
	Failures map[string]error
}

// Expand extracts ref and, when it is a sitemap index, extracts each child
// sitemap in turn. Every fetch is a separate call to ex. Normalized URLs are
// tracked so a document is fetched at most once, which also breaks cycles.
// Only a failure on ref itself is returned as an error; child failures are
// recorded in Expansion.Failures.
func Expand(ctx context.Context, ex DocumentExtractor, ref string, opts ExpandOptions) (*Expansion, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultExpandDepth
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultExpandConcurrency
	}

	root, err := ex.ExtractDocument(ctx, ref)
	if err != nil {
		return nil, err
	}

	x := &expander{
		ex:      ex,
		opts:    opts,
		sem:     semaphore.NewWeighted(int64(opts.Concurrency)),
		visited: map[string]bool{root.URL: true},
		result: &Expansion{
			Sitemaps: []string{root.URL},
			Failures: make(map[string]error),
		},
	}
	x.result.URLs = x.walk(ctx, root, 0)
	if x.result.URLs == nil {
		x.result.URLs = []string{}
	}
	return x.result, nil
}

type expander struct {
	ex   DocumentExtractor
	opts ExpandOptions
	// sem is held only while a fetch is in flight, never across a nested walk.
	sem    *semaphore.Weighted
	mu     sync.Mutex
	result *Expansion

	visited map[string]bool
}

func (x *expander) walk(ctx context.Context, doc *Document, depth int) []string {
	if !doc.IsIndex() {
		return doc.Locations
	}
	if depth >= x.opts.MaxDepth {
		x.mu.Lock()
		x.result.Skipped = append(x.result.Skipped, doc.Locations...)
		x.mu.Unlock()
		return nil
	}

	parts := make([][]string, len(doc.Locations))
	var g errgroup.Group

	for i, loc := range doc.Locations {
		loc = strings.TrimSpace(loc)
		if loc == "" || !x.visit(Normalize(loc)) {
			continue
		}
		g.Go(func() error {
			child, err := x.fetch(ctx, loc)
			if err != nil {
				x.fail(loc, err)
				return nil
			}
			parts[i] = x.walk(ctx, child, depth+1)
			return nil
		})
	}
	_ = g.Wait()

	var urls []string
	for _, p := range parts {
		urls = append(urls, p...)
	}
	return urls
}

func (x *expander) fetch(ctx context.Context, loc string) (*Document, error) {
	if err := x.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer x.sem.Release(1)
	return x.ex.ExtractDocument(ctx, loc)
}

// visit marks target as seen and reports whether it was new.
func (x *expander) visit(target string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.visited[target] {
		return false
	}
	x.visited[target] = true
	x.result.Sitemaps = append(x.result.Sitemaps, target)
	return true
}

func (x *expander) fail(loc string, err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.result.Failures[loc] = err
}
