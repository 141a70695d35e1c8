// Package export writes derived tabular views of the catalog. Exports are
// one-way: nothing here is ever read back, the catalog file stays the sole
// source of truth.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/antoinelucasfra/curator/internal/catalog"
)

// Format selects the export encoding.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatNDJSON Format = "ndjson"
)

// ParseFormat validates a format name from the command line.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatNDJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q (use csv or ndjson)", s)
	}
}

type row struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Link        string `json:"link"`
	Language    string `json:"language"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Write renders records to w in the given format.
func Write(w io.Writer, format Format, records []catalog.Record) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, records)
	case FormatNDJSON:
		return writeNDJSON(w, records)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func writeCSV(w io.Writer, records []catalog.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"title", "type", "link", "language", "category", "description"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Title, r.Type, r.Link, r.Language, r.Category, r.Description}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeNDJSON(w io.Writer, records []catalog.Record) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(row{
			Title:       r.Title,
			Type:        r.Type,
			Link:        r.Link,
			Language:    r.Language,
			Category:    r.Category,
			Description: r.Description,
		}); err != nil {
			return err
		}
	}
	return nil
}
