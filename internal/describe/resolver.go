package describe

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/antoinelucasfra/curator/internal/catalog"
)

// minDescriptionLen is the threshold in runes below which an extracted
// snippet is too short to be a useful description.
const minDescriptionLen = 20

var newlineRe = regexp.MustCompile(`\s*\n\s*`)

// Resolver turns a URL into a best-effort description. Every failure mode
// degrades to an empty string so callers apply their own policy (skip,
// leave empty, retry on a later run).
type Resolver struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewResolver wraps fetcher. A nil fetcher is allowed and resolves
// everything to "".
func NewResolver(fetcher Fetcher) *Resolver {
	return &Resolver{fetcher: fetcher, logger: slog.Default()}
}

// Resolve fetches url once and tries, in order: the page's metadata
// description, then the first sentence of the body text. Results shorter
// than the minimum length are discarded; anything returned is capped at the
// catalog's description limit. Resolve never returns an error.
func (r *Resolver) Resolve(ctx context.Context, url string) string {
	if r.fetcher == nil {
		return ""
	}

	doc, err := r.fetcher.Fetch(ctx, url)
	if err != nil || doc == nil {
		if err != nil {
			r.logger.Debug("fetch failed", "url", url, "error", err)
		}
		return ""
	}

	return FromDocument(doc)
}

// FromDocument applies the metadata-then-body fallback chain to an already
// fetched document. Used directly by callers that fetch once and need both
// the title and the description.
func FromDocument(doc *Document) string {
	if meta := ExtractMetadata(doc); utf8.RuneCountInString(strings.TrimSpace(meta.Description)) > minDescriptionLen {
		return truncate(collapseNewlines(meta.Description), catalog.MaxDescriptionLen)
	}

	body := ExtractBodyText(doc)
	sentence := body
	if i := strings.Index(body, "."); i >= 0 {
		sentence = body[:i]
	}
	sentence = strings.TrimSpace(sentence)
	if utf8.RuneCountInString(sentence) > minDescriptionLen {
		return truncate(sentence+".", catalog.MaxDescriptionLen)
	}

	return ""
}

func collapseNewlines(s string) string {
	return strings.TrimSpace(newlineRe.ReplaceAllString(s, " "))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
