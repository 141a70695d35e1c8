// Package backfill refreshes missing or template-generated descriptions and
// validates the catalog file.
package backfill

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/antoinelucasfra/curator/internal/catalog"
	"github.com/antoinelucasfra/curator/internal/placeholder"
)

// DescriptionResolver resolves a description for a URL. An empty result means
// nothing usable was found; the resolver never fails.
type DescriptionResolver interface {
	Resolve(ctx context.Context, url string) string
}

// Options narrow which records a backfill run touches.
type Options struct {
	// Force refreshes every record, including ones with human-authored
	// descriptions.
	Force bool
	// DryRun resolves and reports but never rewrites the catalog.
	DryRun bool
	// Limit caps how many records are processed; 0 means no cap.
	Limit int
	// URLs restricts the run to records whose link is listed. Empty means
	// all records.
	URLs []string
}

// Change records one description update from a backfill run.
type Change struct {
	Link string
	Old  string
	New  string
}

// Result summarizes a backfill run.
type Result struct {
	Examined int // records matching the eligibility filter
	Changes  []Change
	Skipped  int // eligible records whose fetch produced nothing usable
}

// Backfiller rewrites descriptions in place. Only records whose description
// is empty or template-generated are eligible unless Force is set; anything
// a human wrote stays untouched.
type Backfiller struct {
	catalogPath string
	resolver    DescriptionResolver
	concurrency int
	logger      *slog.Logger
}

func NewBackfiller(catalogPath string, resolver DescriptionResolver, concurrency int) *Backfiller {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Backfiller{
		catalogPath: catalogPath,
		resolver:    resolver,
		concurrency: concurrency,
		logger:      slog.Default(),
	}
}

// eligible reports whether a record's description may be replaced.
func eligible(r *catalog.Record, force bool) bool {
	if force {
		return true
	}
	return r.Description == "" || placeholder.IsPlaceholder(r.Description)
}

// Run loads the catalog, resolves fresh descriptions for eligible records,
// and rewrites the file once if anything changed. Records whose fetch yields
// nothing usable keep an empty description rather than getting a template
// re-inserted. Running twice in a row is a no-op the second time.
func (b *Backfiller) Run(ctx context.Context, opts Options) (Result, error) {
	records, err := catalog.ParseFile(b.catalogPath)
	if err != nil {
		return Result{}, err
	}

	var urlFilter map[string]struct{}
	if len(opts.URLs) > 0 {
		urlFilter = make(map[string]struct{}, len(opts.URLs))
		for _, u := range opts.URLs {
			urlFilter[catalog.NormalizeLink(u)] = struct{}{}
		}
	}

	var targets []int
	for i := range records {
		if records[i].Link == "" {
			continue
		}
		if urlFilter != nil {
			if _, ok := urlFilter[catalog.NormalizeLink(records[i].Link)]; !ok {
				continue
			}
		}
		if !eligible(&records[i], opts.Force) {
			continue
		}
		targets = append(targets, i)
		if opts.Limit > 0 && len(targets) >= opts.Limit {
			break
		}
	}

	result := Result{Examined: len(targets)}
	if len(targets) == 0 {
		return result, nil
	}

	descriptions := make([]string, len(targets))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, idx := range targets {
		link := records[idx].Link
		g.Go(func() error {
			descriptions[i] = b.resolver.Resolve(gCtx, link)
			return nil
		})
	}
	_ = g.Wait() // resolver never returns an error

	changed := false
	for i, idx := range targets {
		desc := descriptions[i]
		old := records[idx].Description
		if desc == "" {
			result.Skipped++
			b.logger.Debug("no description found", "link", records[idx].Link)
			continue
		}
		if desc == old {
			continue
		}
		result.Changes = append(result.Changes, Change{Link: records[idx].Link, Old: old, New: desc})
		if !opts.DryRun {
			records[idx].SetDescription(desc)
			changed = true
		}
	}

	if changed {
		if err := catalog.WriteFile(b.catalogPath, records); err != nil {
			return result, err
		}
		b.logger.Info("catalog rewritten", "updated", len(result.Changes))
	}
	return result, nil
}
