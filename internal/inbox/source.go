package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source is the external collaborator that supplies raw inbox lines and
// accepts removal of the ones a sync run consumed. Lines with rejections are
// never removed; they stay in the source for manual fixing.
type Source interface {
	Lines(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, lines []string) error
}

// FileSource is a Source backed by a plain text file, one entry per line.
// It stands in for the original note-service inbox: the automation runner
// drops exported note lines into the file before invoking the sync.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Lines returns the non-blank lines of the inbox file in order, whitespace
// trimmed. A missing file is an empty inbox, not an error.
func (s *FileSource) Lines(_ context.Context) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading inbox: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines, nil
}

// Remove rewrites the inbox keeping only the lines not listed, matched by
// exact content. The rewrite goes through a temp file and rename so a crash
// never leaves a half-written inbox.
func (s *FileSource) Remove(ctx context.Context, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	drop := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		drop[line] = struct{}{}
	}

	current, err := s.Lines(ctx)
	if err != nil {
		return err
	}

	var kept []string
	for _, line := range current {
		if _, ok := drop[line]; !ok {
			kept = append(kept, line)
		}
	}

	content := strings.Join(kept, "\n")
	if content != "" {
		content += "\n"
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".inbox-*")
	if err != nil {
		return fmt.Errorf("creating temp inbox: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp inbox: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing inbox: %w", err)
	}
	return nil
}

// Add appends one line to the inbox file, creating it if needed. Used by the
// MCP add_resource tool so new links flow through the normal sync instead of
// being written straight into the catalog.
func (s *FileSource) Add(_ context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return fmt.Errorf("empty inbox line")
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening inbox: %w", err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("appending to inbox: %w", err)
	}
	return f.Close()
}
