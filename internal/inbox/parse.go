// Package inbox parses raw curation-inbox lines into candidate catalog
// records and abstracts the external source those lines come from.
package inbox

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/antoinelucasfra/curator/internal/catalog"
)

// fieldSeparator splits an inbox line into its five fields. The hyphen must
// be surrounded by single spaces; bare hyphens inside titles stay intact.
const fieldSeparator = " - "

// Reason classifies why a line was rejected.
type Reason string

const (
	ReasonFieldCount  Reason = "malformed_field_count"
	ReasonUnknownType Reason = "unknown_type"
	ReasonInvalidURL  Reason = "invalid_url"
)

// RejectError reports a rejected inbox line. Rejections are recoverable: the
// line stays in the source so it can be fixed by hand before the next run.
type RejectError struct {
	Reason Reason
	Detail string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Candidate is a parsed, validated inbox line awaiting a catalog-membership
// check. The description is filled later by the resolver; the inbox format
// never carries one.
type Candidate struct {
	Link     string
	Title    string
	Type     string
	Language string
	Category string
}

// Record converts the candidate into a catalog record with the given
// description.
func (c Candidate) Record(description string) catalog.Record {
	return catalog.Record{
		Title:       c.Title,
		Type:        c.Type,
		Link:        c.Link,
		Language:    c.Language,
		Category:    c.Category,
		Description: description,
	}
}

// ParseLine parses one raw inbox line of the form
//
//	URL - Title - Type - Language - Category
//
// Type labels must match the catalog's closed set exactly (case-sensitive).
// On rejection the returned error is a *RejectError.
func ParseLine(raw string) (Candidate, error) {
	parts := strings.Split(raw, fieldSeparator)
	if len(parts) != 5 {
		return Candidate{}, &RejectError{
			Reason: ReasonFieldCount,
			Detail: fmt.Sprintf("expected 5 fields separated by %q, got %d", fieldSeparator, len(parts)),
		}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	link, title, rtype, language, category := parts[0], parts[1], parts[2], parts[3], parts[4]

	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Candidate{}, &RejectError{
			Reason: ReasonInvalidURL,
			Detail: fmt.Sprintf("field 1 does not look like a URL: %q", link),
		}
	}

	if !catalog.KnownType(rtype) {
		return Candidate{}, &RejectError{
			Reason: ReasonUnknownType,
			Detail: fmt.Sprintf("unknown type %q, valid values: %s", rtype, strings.Join(catalog.TypeNames(), ", ")),
		}
	}

	return Candidate{
		Link:     link,
		Title:    title,
		Type:     rtype,
		Language: language,
		Category: category,
	}, nil
}
