package classify

import (
	"strings"
	"testing"
)

func TestURL(t *testing.T) {
	cases := []struct {
		url  string
		want Classification
	}{
		{"https://github.com/tidyverse/dplyr", Classification{"Repository", "Other", "General"}},
		{"https://www.github.com/foo/bar", Classification{"Repository", "Other", "General"}},
		{"https://huggingface.co/blog/some-post", Classification{"Blog", "Python", "Machine Learning"}},
		{"https://huggingface.co/models", Classification{"Website", "Python", "Machine Learning"}},
		{"https://posit.co/blog/new-release/", Classification{"Blog", "R", "General"}},
		{"https://posit.co/products/", Classification{"Website", "R", "General"}},
		{"https://www.r-bloggers.com/2024/01/post", Classification{"Blog", "R", "General"}},
		{"https://myapp.shinyapps.io/dashboard/", Classification{"Website", "R", "Shiny"}},
		{"https://news.ycombinator.com/item?id=1", Classification{"Community", "Other", "General"}},
		{"https://someone.github.io/project/", Classification{"Website", "Other", "General"}},
		{"https://blog.example.com/announcement", Classification{"Blog", "Other", "General"}},
		// Path heuristic when no domain rule matches.
		{"https://example.com/posts/2024-review", Classification{"Blog", "Other", "General"}},
		{"https://example.com/writing/essay", Classification{"Blog", "Other", "General"}},
		// Fallback.
		{"https://example.com/about", Classification{"Website", "Other", "General"}},
	}

	for _, tc := range cases {
		if got := URL(tc.url); got != tc.want {
			t.Errorf("URL(%q) = %+v, want %+v", tc.url, got, tc.want)
		}
	}
}

func TestURLRuleOrder(t *testing.T) {
	// gist.github.com must hit its own rule, not the github.com one below it;
	// both map to Repository, so check via a pair where order matters instead.
	got := URL("https://huggingface.co/blog/x")
	if got.Type != "Blog" {
		t.Errorf("path-specific rule shadowed by domain catch-all: %+v", got)
	}
}

func TestInferTitleFromPage(t *testing.T) {
	got := InferTitle("https://example.com/x", "  R for Data Science  ")
	if got != "R for Data Science" {
		t.Errorf("title = %q", got)
	}
}

func TestInferTitleTruncates(t *testing.T) {
	long := strings.Repeat("t", 200)
	if got := InferTitle("https://example.com", long); len(got) != 120 {
		t.Errorf("title length = %d, want 120", len(got))
	}
}

func TestInferTitleFallback(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.example.com/posts/tidy-eval_explained", "example.com — Tidy Eval Explained"},
		{"https://example.com/", "example.com"},
		{"https://example.com", "example.com"},
	}
	for _, tc := range cases {
		if got := InferTitle(tc.url, ""); got != tc.want {
			t.Errorf("InferTitle(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
