package backfill

import (
	"fmt"
	"unicode/utf8"

	"github.com/antoinelucasfra/curator/internal/catalog"
)

// Issue is one validation finding against a catalog record.
type Issue struct {
	Index   int // record position in the file, zero-based
	Link    string
	Problem string
}

func (i Issue) String() string {
	return fmt.Sprintf("record %d (%s): %s", i.Index+1, i.Link, i.Problem)
}

// Check validates catalog records: duplicate links (compared after trailing
// slash and whitespace normalization), missing links, empty or unknown
// types, and over-long descriptions.
func Check(records []catalog.Record) []Issue {
	var issues []Issue
	seen := make(map[string]int, len(records))

	for i := range records {
		r := &records[i]

		if r.Link == "" {
			issues = append(issues, Issue{Index: i, Problem: "missing link"})
		} else {
			key := catalog.NormalizeLink(r.Link)
			if first, dup := seen[key]; dup {
				issues = append(issues, Issue{
					Index:   i,
					Link:    r.Link,
					Problem: fmt.Sprintf("duplicate of record %d", first+1),
				})
			} else {
				seen[key] = i
			}
		}

		switch {
		case r.Type == "":
			issues = append(issues, Issue{Index: i, Link: r.Link, Problem: "empty type"})
		case !catalog.KnownType(r.Type):
			issues = append(issues, Issue{Index: i, Link: r.Link, Problem: fmt.Sprintf("unknown type %q", r.Type)})
		}

		if n := utf8.RuneCountInString(r.Description); n > catalog.MaxDescriptionLen {
			issues = append(issues, Issue{
				Index:   i,
				Link:    r.Link,
				Problem: fmt.Sprintf("description is %d characters, max %d", n, catalog.MaxDescriptionLen),
			})
		}
	}
	return issues
}

// FixDupes returns the records with later duplicate links removed, keeping
// the first occurrence of each. Links compare after normalization. The
// second return is the number of records dropped.
func FixDupes(records []catalog.Record) ([]catalog.Record, int) {
	seen := make(map[string]struct{}, len(records))
	kept := make([]catalog.Record, 0, len(records))

	for i := range records {
		key := catalog.NormalizeLink(records[i].Link)
		if key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		kept = append(kept, records[i])
	}
	return kept, len(records) - len(kept)
}
