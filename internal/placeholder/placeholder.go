// Package placeholder detects auto-generated template descriptions.
//
// Early catalog entries had their descriptions filled in by a template
// generator. Backfill is only allowed to replace those: anything that does
// not open with one of the known template phrases is treated as
// human-authored prose and must never be overwritten automatically.
package placeholder

import "strings"

// patterns are the opening phrases the template generator produced, matched
// as case-insensitive prefixes. The list is preserved as-is from the
// generator's phrase table; several entries overlap and the set is
// deliberately not minimized.
var patterns = []string{
	"a book",
	"a blog",
	"a website",
	"an r/python package",
	"an online course",
	"a video",
	"a paper",
	"a journal",
	"a community resource",
	"a code repository",
	"a community forum",
	"a conference resource",
	"a tool",
	"a podcast",
	"a newsletter",
	"a cheatsheet",
	"a resource",
	"personal website by",
	"personal blog by",
}

// IsPlaceholder reports whether desc is a template-generated description
// eligible for automatic replacement. An empty description is not a
// placeholder; callers decide separately whether to fill empty fields.
func IsPlaceholder(desc string) bool {
	trimmed := strings.ToLower(strings.Trim(desc, " \t\n\"'"))
	if trimmed == "" {
		return false
	}
	for _, p := range patterns {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}
