package history

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)

	run := Run{
		ID:         uuid.NewString(),
		Kind:       "sync",
		StartedAt:  time.Now().Truncate(time.Second),
		DurationMs: 420,
		Added:      2,
		Duplicates: 1,
		Kept:       1,
	}
	lines := []RunLine{
		{Line: "https://a.example - A - Blog - R - X", Outcome: "added", Link: "https://a.example"},
		{Line: "bad line", Outcome: "kept", Reason: "expected 5 fields"},
	}
	if err := s.SaveRun(run, lines); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := s.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Kind != "sync" || got.Added != 2 || got.Duplicates != 1 || got.Kept != 1 {
		t.Errorf("run = %+v", got)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("started_at = %v, want %v", got.StartedAt, run.StartedAt)
	}

	gotLines, err := s.RunLines(run.ID)
	if err != nil {
		t.Fatalf("RunLines: %v", err)
	}
	if len(gotLines) != 2 {
		t.Fatalf("got %d lines, want 2", len(gotLines))
	}
	if gotLines[1].Reason != "expected 5 fields" {
		t.Errorf("line = %+v", gotLines[1])
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetRun("nope"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRecentRunsOrder(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := Run{
			ID:        uuid.NewString(),
			Kind:      "backfill",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Updated:   i,
		}
		if err := s.SaveRun(run, nil); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	runs, err := s.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Updated != 2 || runs[1].Updated != 1 {
		t.Errorf("runs not newest first: %+v", runs)
	}
}
