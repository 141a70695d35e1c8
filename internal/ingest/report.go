package ingest

import (
	"fmt"
	"strings"
)

// Outcome is the per-line result of a sync run.
type Outcome string

const (
	// OutcomeAdded marks a new link that was staged and appended.
	OutcomeAdded Outcome = "added"
	// OutcomeDuplicate marks a link already present in the catalog; the
	// line is consumed but nothing is appended.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeKept marks a rejected line left in the source for manual
	// fixing before the next run.
	OutcomeKept Outcome = "kept"
)

// LineResult records what happened to one inbox line.
type LineResult struct {
	Line    string
	Outcome Outcome
	Link    string // set for added/duplicate lines
	Reason  string // set for kept lines
}

// Report summarizes a sync run, one result per input line in input order.
type Report struct {
	Results []LineResult
}

func (r Report) count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

func (r Report) Added() int      { return r.count(OutcomeAdded) }
func (r Report) Duplicates() int { return r.count(OutcomeDuplicate) }
func (r Report) Kept() int       { return r.count(OutcomeKept) }

// Markdown renders the run summary in the shape the automation runner posts
// as a step summary.
func (r Report) Markdown() string {
	var b strings.Builder

	b.WriteString("## Sync Summary\n\n")
	fmt.Fprintf(&b, "- **Added:** %d\n", r.Added())
	fmt.Fprintf(&b, "- **Duplicates (removed from inbox):** %d\n", r.Duplicates())
	fmt.Fprintf(&b, "- **Invalid lines kept in inbox:** %d\n", r.Kept())

	if r.Added() > 0 {
		b.WriteString("\n### Added\n")
		for _, res := range r.Results {
			if res.Outcome == OutcomeAdded {
				fmt.Fprintf(&b, "- %s\n", res.Link)
			}
		}
	}

	if r.Kept() > 0 {
		b.WriteString("\n### Invalid lines (still in inbox)\n")
		b.WriteString("Fix these and they will be picked up on the next run.\n\n")
		b.WriteString("| Line | Reason |\n|---|---|\n")
		for _, res := range r.Results {
			if res.Outcome == OutcomeKept {
				line := strings.ReplaceAll(res.Line, "|", `\|`)
				reason := strings.ReplaceAll(res.Reason, "|", `\|`)
				fmt.Fprintf(&b, "| `%s` | %s |\n", line, reason)
			}
		}
	}

	return b.String()
}
