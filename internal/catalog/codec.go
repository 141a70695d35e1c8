package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// separator delimits record blocks in the catalog file. The canonical form
// wraps every block in its own opening and closing separator line, but
// hand-edited catalogs also show up with consecutive blocks sharing one.
const separator = "---"

var fieldLineRe = regexp.MustCompile(`^(\w+):\s+"?(.*?)"?\s*$`)

// Parse decodes catalog file contents into records. Separator lines split
// the file into segments and every segment between two separators is a
// candidate block, so blocks may carry their own separator pair or share a
// single separator with their neighbor. Lines of the form `key: "value"`
// populate recognized fields, everything else inside a block is ignored but
// retained for verbatim round-trip. Segments that populate no recognized
// field are skipped; content before the first separator is never a block,
// and an unterminated block at EOF is dropped rather than reported.
func Parse(data []byte) []Record {
	var segments [][]string
	var current []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimRight(line, " \t") == separator {
			segments = append(segments, current)
			current = nil
			continue
		}
		current = append(current, line)
	}
	// current now holds whatever follows the last separator: incomplete.
	if len(segments) < 2 {
		return nil
	}

	var records []Record
	for _, block := range segments[1:] {
		if rec, ok := buildRecord(block); ok {
			records = append(records, rec)
		}
	}
	return records
}

func buildRecord(lines []string) (Record, bool) {
	var rec Record
	populated := false
	for _, line := range lines {
		m := fieldLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if rec.setField(m[1], unescape(m[2])) {
			populated = true
		}
	}
	if !populated {
		return Record{}, false
	}
	rec.raw = append([]string(nil), lines...)
	return rec, true
}

// Serialize renders records back to the on-disk block format: opening
// separator, one `field: "value"` line per field in FieldOrder, closing
// separator. Unmodified records emit their original lines byte-for-byte.
// Consecutive blocks are not separated by blank lines and the output ends
// with exactly one newline.
func Serialize(records []Record) []byte {
	var buf bytes.Buffer
	for i := range records {
		rec := &records[i]
		buf.WriteString(separator)
		buf.WriteByte('\n')
		if rec.raw != nil {
			for _, line := range rec.raw {
				buf.WriteString(line)
				buf.WriteByte('\n')
			}
		} else {
			for _, name := range FieldOrder {
				fmt.Fprintf(&buf, "%s: \"%s\"\n", name, escape(rec.field(name)))
			}
		}
		buf.WriteString(separator)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ParseFile reads and parses the catalog at path.
func ParseFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data), nil
}

// Append writes records to the end of the catalog file as a single buffered
// write: one leading newline, then the serialized blocks. Existing content
// is never re-read or rewritten, so untouched blocks keep their exact bytes.
func Append(path string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	buf := make([]byte, 0, 256*len(records))
	buf = append(buf, '\n')
	buf = append(buf, Serialize(records)...)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening catalog for append: %w", err)
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("appending to catalog: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing catalog: %w", err)
	}
	return f.Close()
}

// WriteFile replaces the whole catalog with the serialized records. The
// content lands in a temp file in the same directory first and is renamed
// into place, so a failure mid-write leaves the catalog untouched.
func WriteFile(path string, records []Record) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".resources-*")
	if err != nil {
		return fmt.Errorf("creating temp catalog: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(Serialize(records)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp catalog: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing catalog: %w", err)
	}
	return nil
}

func escape(v string) string {
	return strings.ReplaceAll(v, `"`, `\"`)
}

func unescape(v string) string {
	return strings.ReplaceAll(v, `\"`, `"`)
}
