package describe

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html/charset"
)

// Metadata holds the page-level fields the resolver and title inference use.
type Metadata struct {
	Title       string
	Description string
}

// ExtractMetadata pulls the title and description out of an HTML document.
// Any decode or parse failure yields an empty Metadata, never an error.
func ExtractMetadata(doc *Document) Metadata {
	gq := htmlDocument(doc)
	if gq == nil {
		return Metadata{}
	}

	desc := strings.TrimSpace(gq.Find(`meta[name="description"]`).AttrOr("content", ""))
	if desc == "" {
		desc = strings.TrimSpace(gq.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}

	return Metadata{
		Title:       strings.TrimSpace(gq.Find("title").First().Text()),
		Description: desc,
	}
}

// ExtractBodyText returns the main body text of a document: paragraph and
// list-item text for HTML, plain text for PDFs. Failures yield "".
func ExtractBodyText(doc *Document) string {
	if isPDF(doc) {
		return pdfText(doc.Body)
	}

	gq := htmlDocument(doc)
	if gq == nil {
		return ""
	}
	gq.Find("script,noscript,style").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	var parts []string
	gq.Find("p,li").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.TrimSpace(strings.Join(parts, " "))
}

// htmlDocument decodes the body to UTF-8 and parses it with goquery.
// Returns nil when the document cannot be treated as HTML.
func htmlDocument(doc *Document) *goquery.Document {
	if doc == nil || len(doc.Body) == 0 || isPDF(doc) {
		return nil
	}

	enc, _, _ := charset.DetermineEncoding(doc.Body, doc.ContentType)
	data, err := enc.NewDecoder().Bytes(doc.Body)
	if err != nil {
		if !utf8.Valid(doc.Body) {
			return nil
		}
		data = doc.Body
	}

	gq, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return gq
}

func isPDF(doc *Document) bool {
	if doc == nil {
		return false
	}
	if mediaType, _, err := mime.ParseMediaType(doc.ContentType); err == nil && mediaType == "application/pdf" {
		return true
	}
	return bytes.HasPrefix(doc.Body, []byte("%PDF"))
}

// pdfText extracts plain text from a PDF body. The pdf package panics on
// some malformed documents, so extraction is shielded with recover.
func pdfText(data []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
