// Package ingest drives the end-to-end sync of inbox lines into the catalog.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/antoinelucasfra/curator/internal/catalog"
	"github.com/antoinelucasfra/curator/internal/inbox"
)

// DescriptionResolver is the narrow capability the syncer needs from the
// describe package. It never fails; an empty result means "no description".
type DescriptionResolver interface {
	Resolve(ctx context.Context, url string) string
}

// Syncer runs one batch sync: read the catalog once, classify every inbox
// line, resolve descriptions for genuinely new links, append the staged
// records in one write, and tell the source which lines were consumed.
type Syncer struct {
	catalogPath string
	source      inbox.Source
	resolver    DescriptionResolver
	concurrency int
	logger      *slog.Logger
}

// NewSyncer wires a Syncer. concurrency bounds parallel description
// resolution; values <= 0 mean sequential.
func NewSyncer(catalogPath string, source inbox.Source, resolver DescriptionResolver, concurrency int) *Syncer {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Syncer{
		catalogPath: catalogPath,
		source:      source,
		resolver:    resolver,
		concurrency: concurrency,
		logger:      slog.Default(),
	}
}

type candidate struct {
	result int // index into report.Results
	cand   inbox.Candidate
	line   string
}

// Run executes one sync batch. Only catalog or source I/O aborts the run; a
// bad line or failed fetch never stops processing of the remaining lines.
// The catalog is appended to at most once, and lines are removed from the
// source only after that append succeeded.
func (s *Syncer) Run(ctx context.Context) (Report, error) {
	records, err := catalog.ParseFile(s.catalogPath)
	if err != nil {
		return Report{}, err
	}
	known := catalog.Links(records)

	lines, err := s.source.Lines(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("reading line source: %w", err)
	}

	report := Report{Results: make([]LineResult, len(lines))}
	var candidates []candidate

	for i, line := range lines {
		cand, err := inbox.ParseLine(line)
		if err != nil {
			var rej *inbox.RejectError
			reason := err.Error()
			if errors.As(err, &rej) {
				reason = rej.Detail
			}
			report.Results[i] = LineResult{Line: line, Outcome: OutcomeKept, Reason: reason}
			s.logger.Warn("inbox line kept", "line", line, "reason", reason)
			continue
		}

		if _, dup := known[cand.Link]; dup {
			report.Results[i] = LineResult{Line: line, Outcome: OutcomeDuplicate, Link: cand.Link}
			s.logger.Info("duplicate link", "link", cand.Link)
			continue
		}

		// Reserve the link so repeats later in the same batch count as
		// duplicates and never trigger a second fetch.
		known[cand.Link] = struct{}{}
		report.Results[i] = LineResult{Line: line, Outcome: OutcomeAdded, Link: cand.Link}
		candidates = append(candidates, candidate{result: i, cand: cand, line: line})
	}

	// Resolve descriptions for new links, bounded, exactly once per link.
	// The slice keeps input order regardless of fetch completion order.
	descriptions := make([]string, len(candidates))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, c := range candidates {
		g.Go(func() error {
			descriptions[i] = s.resolver.Resolve(gCtx, c.cand.Link)
			return nil
		})
	}
	_ = g.Wait() // resolver never returns an error

	staged := make([]catalog.Record, len(candidates))
	for i, c := range candidates {
		staged[i] = c.cand.Record(descriptions[i])
	}

	if len(staged) > 0 {
		if err := catalog.Append(s.catalogPath, staged); err != nil {
			return Report{}, err
		}
		s.logger.Info("appended records", "count", len(staged))
	}

	var consumed []string
	for _, r := range report.Results {
		if r.Outcome == OutcomeDuplicate || r.Outcome == OutcomeAdded {
			consumed = append(consumed, r.Line)
		}
	}
	if len(consumed) > 0 {
		if err := s.source.Remove(ctx, consumed); err != nil {
			return report, fmt.Errorf("removing consumed lines: %w", err)
		}
	}

	return report, nil
}
