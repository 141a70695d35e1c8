package describe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

type fakeFetcher struct {
	doc   *Document
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (*Document, error) {
	f.calls++
	return f.doc, f.err
}

func htmlDoc(body string) *Document {
	return &Document{Body: []byte(body), ContentType: "text/html; charset=utf-8"}
}

func TestResolveMetadataDescription(t *testing.T) {
	f := &fakeFetcher{doc: htmlDoc(`<html><head>
<meta name="description" content="An opinionated guide to reproducible analysis pipelines in R.">
</head><body><p>Something else.</p></body></html>`)}

	got := NewResolver(f).Resolve(context.Background(), "https://a.example")
	want := "An opinionated guide to reproducible analysis pipelines in R."
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
	if f.calls != 1 {
		t.Errorf("fetch called %d times, want 1", f.calls)
	}
}

func TestResolveOGDescriptionFallback(t *testing.T) {
	f := &fakeFetcher{doc: htmlDoc(`<html><head>
<meta property="og:description" content="Weekly highlights from the R community, curated by hand.">
</head><body></body></html>`)}

	got := NewResolver(f).Resolve(context.Background(), "https://a.example")
	if got != "Weekly highlights from the R community, curated by hand." {
		t.Errorf("Resolve = %q", got)
	}
}

func TestResolveCollapsesNewlines(t *testing.T) {
	f := &fakeFetcher{doc: htmlDoc(`<html><head>
<meta name="description" content="First part of the description
	continues on a second line here.">
</head></html>`)}

	got := NewResolver(f).Resolve(context.Background(), "https://a.example")
	if strings.Contains(got, "\n") {
		t.Errorf("description contains newline: %q", got)
	}
	if !strings.Contains(got, "First part of the description continues") {
		t.Errorf("Resolve = %q", got)
	}
}

func TestResolveTruncatesTo300(t *testing.T) {
	long := strings.Repeat("x", 310)
	f := &fakeFetcher{doc: htmlDoc(`<html><head>
<meta name="description" content="` + long + `">
</head></html>`)}

	got := NewResolver(f).Resolve(context.Background(), "https://a.example")
	if utf8.RuneCountInString(got) != 300 {
		t.Errorf("len = %d, want exactly 300", utf8.RuneCountInString(got))
	}
}

func TestResolveBodyFirstSentence(t *testing.T) {
	f := &fakeFetcher{doc: htmlDoc(`<html><body>
<p>The targets package coordinates reproducible pipelines for R projects. It also does more.</p>
</body></html>`)}

	got := NewResolver(f).Resolve(context.Background(), "https://a.example")
	want := "The targets package coordinates reproducible pipelines for R projects."
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveShortMetadataFallsThroughToBody(t *testing.T) {
	f := &fakeFetcher{doc: htmlDoc(`<html><head>
<meta name="description" content="too short">
</head><body><p>A longer body sentence that clears the minimum length threshold easily. Rest.</p></body></html>`)}

	got := NewResolver(f).Resolve(context.Background(), "https://a.example")
	if !strings.HasPrefix(got, "A longer body sentence") || !strings.HasSuffix(got, ".") {
		t.Errorf("Resolve = %q", got)
	}
}

func TestResolveMinLengthCountsRunes(t *testing.T) {
	// Seven CJK characters are 21 bytes but well under the minimum length;
	// the threshold is measured in runes, so this must fall through.
	f := &fakeFetcher{doc: htmlDoc(`<html><head>
<meta name="description" content="データ分析の入門書">
</head><body></body></html>`)}

	if got := NewResolver(f).Resolve(context.Background(), "https://a.example"); got != "" {
		t.Errorf("Resolve = %q, want empty for a description under the rune minimum", got)
	}
}

func TestResolveNothingUsable(t *testing.T) {
	f := &fakeFetcher{doc: htmlDoc(`<html><body><p>short. words.</p></body></html>`)}
	if got := NewResolver(f).Resolve(context.Background(), "https://a.example"); got != "" {
		t.Errorf("Resolve = %q, want empty", got)
	}
}

func TestResolveFetchFailure(t *testing.T) {
	f := &fakeFetcher{err: errors.New("connection refused")}
	if got := NewResolver(f).Resolve(context.Background(), "https://a.example"); got != "" {
		t.Errorf("Resolve = %q, want empty", got)
	}
}

func TestResolveMalformedPDF(t *testing.T) {
	f := &fakeFetcher{doc: &Document{
		Body:        []byte("%PDF-1.4 this is not a real pdf"),
		ContentType: "application/pdf",
	}}
	// Must degrade to empty without panicking.
	if got := NewResolver(f).Resolve(context.Background(), "https://a.example/paper.pdf"); got != "" {
		t.Errorf("Resolve = %q, want empty", got)
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><head><title>ok</title></head></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, 1<<20, "curator-test/1.0", 0)
	doc, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(string(doc.Body), "<title>ok</title>") {
		t.Errorf("body = %q", doc.Body)
	}
	if doc.ContentType != "text/html; charset=utf-8" {
		t.Errorf("content type = %q", doc.ContentType)
	}
}

func TestHTTPFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, 1<<20, "curator-test/1.0", 0)
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestHTTPFetcherInvalidURL(t *testing.T) {
	f := NewHTTPFetcher(time.Second, 1<<20, "curator-test/1.0", 0)
	if _, err := f.Fetch(context.Background(), "not-a-url"); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestHTTPFetcherSizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", 4096)))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, 1024, "curator-test/1.0", 0)
	doc, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(doc.Body) != 1024 {
		t.Errorf("body length = %d, want capped at 1024", len(doc.Body))
	}
}
