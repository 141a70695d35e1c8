package ingest

import (
	"context"
	"testing"

	"github.com/antoinelucasfra/curator/internal/catalog"
	"github.com/antoinelucasfra/curator/internal/describe"
)

type fakeFetcher struct {
	docs  map[string]*describe.Document
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*describe.Document, error) {
	f.calls++
	if doc, ok := f.docs[url]; ok {
		return doc, nil
	}
	return nil, context.DeadlineExceeded
}

func TestAddRun(t *testing.T) {
	path := writeTestCatalog(t)
	fetcher := &fakeFetcher{docs: map[string]*describe.Document{
		"https://github.com/tidyverse/dplyr": {
			Body:        []byte(`<html><head><title>tidyverse/dplyr</title><meta name="description" content="A grammar of data manipulation for R."></head><body></body></html>`),
			ContentType: "text/html",
		},
	}}

	outcomes, err := NewAdder(path, fetcher).Run(context.Background(), []string{
		"https://github.com/tidyverse/dplyr",
		"https://a.example/", // trailing-slash duplicate of the existing record
		"not-a-url",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes", len(outcomes))
	}
	if outcomes[0].Status != AddStatusAdded {
		t.Errorf("outcome 0 = %+v", outcomes[0])
	}
	if outcomes[1].Status != AddStatusDuplicate {
		t.Errorf("outcome 1 = %+v", outcomes[1])
	}
	if outcomes[2].Status != AddStatusInvalid {
		t.Errorf("outcome 2 = %+v", outcomes[2])
	}

	rec := outcomes[0].Record
	if rec.Type != "Repository" || rec.Language != "Other" {
		t.Errorf("classification = %+v", rec)
	}
	if rec.Title != "tidyverse/dplyr" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Description != "A grammar of data manipulation for R." {
		t.Errorf("description = %q", rec.Description)
	}

	records, err := catalog.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("catalog has %d records, want 2", len(records))
	}
	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, want 1 (no fetch for duplicates or invalid URLs)", fetcher.calls)
	}
}

func TestAddRunWithinBatchDedup(t *testing.T) {
	path := writeTestCatalog(t)
	fetcher := &fakeFetcher{docs: map[string]*describe.Document{}}

	outcomes, err := NewAdder(path, fetcher).Run(context.Background(), []string{
		"https://new.example/post",
		"https://new.example/post/",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcomes[0].Status != AddStatusAdded || outcomes[1].Status != AddStatusDuplicate {
		t.Errorf("outcomes = %+v", outcomes)
	}
}

func TestAddRunFailedFetchStillAdds(t *testing.T) {
	path := writeTestCatalog(t)
	fetcher := &fakeFetcher{docs: map[string]*describe.Document{}}

	outcomes, err := NewAdder(path, fetcher).Run(context.Background(), []string{
		"https://unreachable.example/posts/thing",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	rec := outcomes[0].Record
	if outcomes[0].Status != AddStatusAdded {
		t.Fatalf("outcome = %+v", outcomes[0])
	}
	// Path heuristic classification and domain+slug title survive a dead link.
	if rec.Type != "Blog" {
		t.Errorf("type = %q", rec.Type)
	}
	if rec.Title != "unreachable.example — Thing" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Description != "" {
		t.Errorf("description = %q", rec.Description)
	}
}
