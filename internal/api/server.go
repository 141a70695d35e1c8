// Package api exposes the catalog over a read-only HTTP JSON API and an MCP
// server. All reads go straight to the catalog file so the API never serves
// stale data after an external edit.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/antoinelucasfra/curator/internal/catalog"
	"github.com/antoinelucasfra/curator/internal/history"
)

// Deps holds dependencies for the HTTP API.
type Deps struct {
	CatalogPath string
	History     *history.Store // optional; /runs returns 404 when nil
	Token       string         // optional; empty disables bearer auth
}

// Resource is the JSON view of a catalog record.
type Resource struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Link        string `json:"link"`
	Language    string `json:"language"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// NewHandler builds the router for the read-only catalog API.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	if deps.Token != "" {
		r.Use(BearerAuth(deps.Token))
	}

	r.Get("/health", handleHealth)
	r.Get("/resources", handleListResources(deps))
	r.Get("/types", handleListTypes)
	r.Get("/stats", handleStats(deps))
	r.Get("/runs", handleListRuns(deps))

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func handleListResources(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := catalog.ParseFile(deps.CatalogPath)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to read catalog: %v", err)
			return
		}

		q := r.URL.Query()
		typeFilter := q.Get("type")
		langFilter := strings.ToLower(q.Get("language"))
		search := strings.ToLower(q.Get("q"))
		limit := parseIntParam(r, "limit", 50, 500)
		offset := parseIntParam(r, "offset", 0, 0)

		filtered := make([]Resource, 0, len(records))
		for _, rec := range records {
			if typeFilter != "" && rec.Type != typeFilter {
				continue
			}
			if langFilter != "" && !strings.Contains(strings.ToLower(rec.Language), langFilter) {
				continue
			}
			if search != "" && !matchesSearch(rec, search) {
				continue
			}
			filtered = append(filtered, Resource{
				Title:       rec.Title,
				Type:        rec.Type,
				Link:        rec.Link,
				Language:    rec.Language,
				Category:    rec.Category,
				Description: rec.Description,
			})
		}

		total := len(filtered)
		if offset > total {
			offset = total
		}
		end := offset + limit
		if end > total {
			end = total
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"total":     total,
			"resources": filtered[offset:end],
		})
	}
}

func matchesSearch(rec catalog.Record, search string) bool {
	for _, field := range []string{rec.Title, rec.Description, rec.Link, rec.Category} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func handleListTypes(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(catalog.TypeNames())
}

func sortedCounts(counts map[string]int, key string) []map[string]any {
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]map[string]any, 0, len(names))
	for _, n := range names {
		out = append(out, map[string]any{key: n, "count": counts[n]})
	}
	return out
}

func handleStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := catalog.ParseFile(deps.CatalogPath)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to read catalog: %v", err)
			return
		}

		byType := make(map[string]int)
		byLanguage := make(map[string]int)
		withDescription := 0
		for _, rec := range records {
			byType[rec.Type]++
			byLanguage[rec.Language]++
			if rec.Description != "" {
				withDescription++
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"total":            len(records),
			"with_description": withDescription,
			"by_type":          sortedCounts(byType, "type"),
			"by_language":      sortedCounts(byLanguage, "language"),
		})
	}
}

func handleListRuns(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.History == nil {
			httpError(w, http.StatusNotFound, "not_found", "run history not enabled")
			return
		}

		limit := parseIntParam(r, "limit", 20, 100)
		runs, err := deps.History.RecentRuns(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list runs: %v", err)
			return
		}
		if runs == nil {
			runs = []history.Run{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(runs)
	}
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
