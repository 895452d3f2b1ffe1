// Package remote fetches the shared family document that the site syncs from.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/giapha/core/internal/infrastructure/config"
)

// ExportURLTemplate is the plain-text export endpoint for a shared document id.
const ExportURLTemplate = "https://docs.google.com/document/d/%s/export?format=txt"

var docIDPattern = regexp.MustCompile(`docs\.google\.com/document/(?:u/\d+/)?d/([^/]+)/`)

var (
	ErrEmptyBody  = errors.New("empty body")
	ErrNoJSON     = errors.New("body contains no JSON object")
	ErrNotFamily  = errors.New("document has no familyTree")
	ErrBadStatus  = errors.New("unexpected status")
	ErrBodyTooBig = errors.New("body exceeds limit")
)

// Fetcher implements ports.RemoteSource over HTTP.
type Fetcher struct {
	client    *http.Client
	maxBody   int64
	userAgent string
}

// NewFetcher builds a fetcher from the remote config. A nil client gets a
// client with the configured timeout.
func NewFetcher(cfg config.RemoteConfig, client *http.Client) *Fetcher {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 8 << 20
	}
	return &Fetcher{client: client, maxBody: maxBody, userAgent: cfg.UserAgent}
}

// ExportURL rewrites a document editor link to its plain-text export link.
// Any other locator is returned unchanged.
func ExportURL(locator string) string {
	m := docIDPattern.FindStringSubmatch(locator)
	if m == nil {
		return locator
	}
	return fmt.Sprintf(ExportURLTemplate, m[1])
}

// Fetch downloads the document behind locator and returns the normalised
// AppData JSON.
func (f *Fetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ExportURL(locator), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, ErrBodyTooBig
	}
	return Normalize(body)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normalize turns a raw document body into an AppData JSON object. It strips
// a byte-order mark and any text around the outermost braces, unwraps a
// {"record": ...} envelope and requires a familyTree key.
func Normalize(body []byte) ([]byte, error) {
	body = bytes.TrimPrefix(body, utf8BOM)
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}

	start := bytes.IndexByte(body, '{')
	end := bytes.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return nil, ErrNoJSON
	}
	body = body[start : end+1]

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	if rec, ok := doc["record"]; ok {
		if _, hasTree := doc["familyTree"]; !hasTree {
			var inner map[string]json.RawMessage
			if err := json.Unmarshal(rec, &inner); err == nil {
				doc, body = inner, rec
			}
		}
	}
	tree, ok := doc["familyTree"]
	if !ok || bytes.Equal(bytes.TrimSpace(tree), []byte("null")) {
		return nil, ErrNotFamily
	}
	return body, nil
}
