package history

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("not found")

// Run is one recorded invocation of sync or backfill.
type Run struct {
	ID         string
	Kind       string // "sync" or "backfill"
	StartedAt  time.Time
	DurationMs int64
	Added      int
	Duplicates int
	Kept       int
	Updated    int // backfill only
	Error      string
}

// RunLine is one per-line outcome attached to a sync run.
type RunLine struct {
	RunID   string
	Line    string
	Outcome string
	Link    string
	Reason  string
}
