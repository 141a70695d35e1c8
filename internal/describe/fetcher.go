// Package describe produces best-effort human-readable descriptions for
// catalog links via a fetch-then-extract fallback chain.
package describe

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Document is a fetched page: raw bytes plus enough metadata for the
// extraction stages to pick a decoder.
type Document struct {
	Body        []byte
	ContentType string
	FinalURL    string
}

// Fetcher retrieves the raw document behind a URL. Implementations return an
// error for anything that prevented a usable document; callers treat that as
// "no result", never as fatal.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Document, error)
}

// HTTPFetcher fetches documents over HTTP with a size cap and an optional
// per-request pacing delay so batch runs do not hammer remote hosts.
type HTTPFetcher struct {
	client    *http.Client
	maxBody   int64
	userAgent string
	delay     time.Duration
}

// NewHTTPFetcher builds a fetcher with sane transport defaults. maxBody <= 0
// falls back to 5MB.
func NewHTTPFetcher(timeout time.Duration, maxBody int64, userAgent string, delay time.Duration) *HTTPFetcher {
	if maxBody <= 0 {
		maxBody = 5 << 20
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		maxBody:   maxBody,
		userAgent: userAgent,
		delay:     delay,
	}
}

// Fetch downloads rawURL. Non-2xx/3xx statuses and transport failures are
// errors; the body is capped at maxBody bytes and gunzipped when needed.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(io.LimitReader(body, f.maxBody))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response from %s", rawURL)
	}

	return &Document{
		Body:        data,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}
