// Package catalog defines the curated-link record model and the flat-file
// codec for the resources catalog.
package catalog

import (
	"sort"
	"strings"
)

// FieldOrder is the serialization order of record fields. It is fixed
// regardless of the order fields were populated in memory.
var FieldOrder = []string{"title", "type", "link", "language", "category", "description"}

// MaxDescriptionLen caps the description field in characters.
const MaxDescriptionLen = 300

// Types is the closed set of valid resource type labels.
var Types = map[string]struct{}{
	"Blog":       {},
	"Book":       {},
	"Website":    {},
	"Package":    {},
	"Video":      {},
	"Paper":      {},
	"Course":     {},
	"Community":  {},
	"Newsletter": {},
	"Conference": {},
	"Forum":      {},
	"Journal":    {},
	"Repository": {},
}

// KnownType reports whether t is a valid type label. Matching is
// case-sensitive, mirroring the manual-edit convention of the catalog file.
func KnownType(t string) bool {
	_, ok := Types[t]
	return ok
}

// TypeNames returns the valid type labels sorted alphabetically.
func TypeNames() []string {
	names := make([]string, 0, len(Types))
	for t := range Types {
		names = append(names, t)
	}
	sort.Strings(names)
	return names
}

// Record is one catalog entry. Language and Category hold semicolon-delimited
// tag lists encoded as a single string; the codec treats them as opaque.
type Record struct {
	Title       string
	Type        string
	Link        string
	Language    string
	Category    string
	Description string

	// raw holds the original block lines (without separators) exactly as
	// parsed. Non-nil raw means the record has not been mutated since parse
	// and serializes back verbatim.
	raw []string
}

// SetDescription replaces the description and drops the raw source lines so
// the record renders canonically on the next serialization.
func (r *Record) SetDescription(desc string) {
	r.Description = desc
	r.raw = nil
}

// Modified reports whether the record will render canonically instead of
// from its original source lines.
func (r *Record) Modified() bool {
	return r.raw == nil
}

func (r *Record) field(name string) string {
	switch name {
	case "title":
		return r.Title
	case "type":
		return r.Type
	case "link":
		return r.Link
	case "language":
		return r.Language
	case "category":
		return r.Category
	case "description":
		return r.Description
	}
	return ""
}

func (r *Record) setField(name, value string) bool {
	switch name {
	case "title":
		r.Title = value
	case "type":
		r.Type = value
	case "link":
		r.Link = value
	case "language":
		r.Language = value
	case "category":
		r.Category = value
	case "description":
		r.Description = value
	default:
		return false
	}
	return true
}

// Links returns the set of link values across records.
func Links(records []Record) map[string]struct{} {
	links := make(map[string]struct{}, len(records))
	for i := range records {
		if records[i].Link != "" {
			links[records[i].Link] = struct{}{}
		}
	}
	return links
}

// NormalizeLink strips surrounding whitespace and trailing slashes for
// duplicate comparison. The stored link keeps its original form.
func NormalizeLink(link string) string {
	return strings.TrimRight(strings.TrimSpace(link), "/")
}
