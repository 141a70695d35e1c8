package ingest

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/antoinelucasfra/curator/internal/catalog"
	"github.com/antoinelucasfra/curator/internal/classify"
	"github.com/antoinelucasfra/curator/internal/describe"
)

// AddStatus is the per-URL result of an add run.
type AddStatus string

const (
	AddStatusAdded     AddStatus = "added"
	AddStatusDuplicate AddStatus = "duplicate"
	AddStatusInvalid   AddStatus = "invalid"
)

// AddOutcome records what happened to one URL passed to Add.
type AddOutcome struct {
	URL    string
	Status AddStatus
	Record catalog.Record // populated for added URLs
}

// Adder appends bare URLs to the catalog: each URL is fetched once, its
// title inferred from page metadata, its labels classified from domain and
// path heuristics, and its description resolved from the same fetch.
type Adder struct {
	catalogPath string
	fetcher     describe.Fetcher
	logger      *slog.Logger
}

// NewAdder wires an Adder. fetcher may be nil; URLs then get no title or
// description enrichment.
func NewAdder(catalogPath string, fetcher describe.Fetcher) *Adder {
	return &Adder{
		catalogPath: catalogPath,
		fetcher:     fetcher,
		logger:      slog.Default(),
	}
}

// Run processes urls in order, deduplicating against the catalog and within
// the batch, and appends all new records in one write.
func (a *Adder) Run(ctx context.Context, urls []string) ([]AddOutcome, error) {
	records, err := catalog.ParseFile(a.catalogPath)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(records))
	for i := range records {
		known[catalog.NormalizeLink(records[i].Link)] = struct{}{}
	}

	outcomes := make([]AddOutcome, 0, len(urls))
	var staged []catalog.Record

	for _, raw := range urls {
		raw = strings.Trim(strings.TrimSpace(raw), ".,")
		if !validURL(raw) {
			outcomes = append(outcomes, AddOutcome{URL: raw, Status: AddStatusInvalid})
			continue
		}

		key := catalog.NormalizeLink(raw)
		if _, dup := known[key]; dup {
			outcomes = append(outcomes, AddOutcome{URL: raw, Status: AddStatusDuplicate})
			a.logger.Info("duplicate link", "link", raw)
			continue
		}
		known[key] = struct{}{}

		var pageTitle, description string
		if a.fetcher != nil {
			if doc, err := a.fetcher.Fetch(ctx, raw); err == nil && doc != nil {
				pageTitle = describe.ExtractMetadata(doc).Title
				description = describe.FromDocument(doc)
			} else if err != nil {
				a.logger.Debug("fetch failed", "url", raw, "error", err)
			}
		}

		cls := classify.URL(raw)
		rec := catalog.Record{
			Title:       classify.InferTitle(raw, pageTitle),
			Type:        cls.Type,
			Link:        raw,
			Language:    cls.Language,
			Category:    cls.Category,
			Description: description,
		}
		staged = append(staged, rec)
		outcomes = append(outcomes, AddOutcome{URL: raw, Status: AddStatusAdded, Record: rec})
	}

	if len(staged) > 0 {
		if err := catalog.Append(a.catalogPath, staged); err != nil {
			return outcomes, err
		}
		a.logger.Info("appended records", "count", len(staged))
	}
	return outcomes, nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
