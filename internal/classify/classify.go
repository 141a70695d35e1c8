// Package classify infers type, language, and category for bare URLs added
// via the add command.
package classify

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Classification is the inferred labeling for a URL.
type Classification struct {
	Type     string
	Language string
	Category string
}

// rule matches when the domain fragment is contained in the hostname and, if
// set, the path fragment is contained in the path. Rules are checked in
// order; first match wins, so specific rules sit above catch-alls.
type rule struct {
	domain, path              string
	rtype, language, category string
}

var rules = []rule{
	// Code hosts.
	{"gist.github.com", "", "Repository", "Other", "General"},
	{"github.com", "", "Repository", "Other", "General"},
	{"gitlab.com", "", "Repository", "Other", "General"},

	// HuggingFace, path-specific rules before the domain catch-all.
	{"huggingface.co", "/blog/", "Blog", "Python", "Machine Learning"},
	{"huggingface.co", "", "Website", "Python", "Machine Learning"},

	// R ecosystem.
	{"r-bloggers.com", "", "Blog", "R", "General"},
	{"rviews.rstudio.com", "", "Blog", "R", "General"},
	{"posit.co", "/blog/", "Blog", "R", "General"},
	{"posit.co", "", "Website", "R", "General"},
	{"tidyverse.org", "", "Website", "R", "General"},
	{"rstudio.com", "", "Website", "R", "General"},
	{"rfortherestofus.com", "", "Blog", "R", "General"},
	{"r-project.org", "", "Website", "R", "General"},
	{"r-lib.org", "", "Website", "R", "General"},
	{"quarto.org", "", "Website", "Other", "General"},

	// Shiny hosting.
	{"shinyapps.io", "", "Website", "R", "Shiny"},
	{"shinylive.io", "", "Website", "R", "Shiny"},
	{"connect.posit.cloud", "", "Website", "R", "Shiny"},

	// Python / ML.
	{"py-pkgs.org", "", "Book", "Python", "Packages"},
	{"docs.langchain.com", "", "Website", "Python", "Machine Learning"},
	{"developer.nvidia.com", "", "Website", "Other", "Machine Learning"},
	{"modelcontextprotocol.io", "", "Website", "Other", "Machine Learning"},

	// Communities.
	{"lobste.rs", "", "Community", "Other", "Development"},
	{"news.ycombinator.com", "", "Community", "Other", "General"},
	{"reddit.com", "", "Community", "Other", "General"},

	// Catch-alls, kept last.
	{".github.io", "", "Website", "Other", "General"},
	{"blog.", "", "Blog", "Other", "General"},
}

var blogPathRe = regexp.MustCompile(`/(posts?|blog|articles?|writing)/`)

// URL infers a classification from domain and path heuristics. Unmatched
// URLs fall back to Website/Other/General.
func URL(raw string) Classification {
	parsed, err := url.Parse(raw)
	if err != nil {
		return Classification{Type: "Website", Language: "Other", Category: "General"}
	}
	domain := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	path := strings.ToLower(parsed.Path)

	for _, r := range rules {
		if strings.Contains(domain, r.domain) && (r.path == "" || strings.Contains(path, r.path)) {
			return Classification{Type: r.rtype, Language: r.language, Category: r.category}
		}
	}

	if blogPathRe.MatchString(path) {
		return Classification{Type: "Blog", Language: "Other", Category: "General"}
	}
	return Classification{Type: "Website", Language: "Other", Category: "General"}
}

const maxTitleLen = 120

// InferTitle picks a record title: the page's own title when one was
// extracted, otherwise domain plus a humanized path slug.
func InferTitle(rawURL, pageTitle string) string {
	if t := strings.TrimSpace(pageTitle); t != "" {
		return truncate(t, maxTitleLen)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return truncate(rawURL, maxTitleLen)
	}
	domain := strings.TrimPrefix(parsed.Hostname(), "www.")

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	slug := ""
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			slug = parts[i]
			break
		}
	}
	if slug == "" {
		return truncate(domain, maxTitleLen)
	}

	slug = strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return truncate(domain+" — "+titleCase(slug), maxTitleLen)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(string(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
