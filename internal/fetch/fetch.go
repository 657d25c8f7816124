// Package fetch issues single HTTP GETs and parses the response body
// into a goquery document. One call, one request: no retries and no
// caching, the caller decides what a failure means.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// NetworkError covers everything up to and including the HTTP status
// line: request construction, transport failures and non-2xx responses.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError means the body arrived but could not be parsed as HTML.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Page is a fetched and parsed document. URL is the final URL after
// redirects and must be the base for resolving relative links found in
// the document. Bytes is the raw body size, fed to progress reporting.
type Page struct {
	Doc   *goquery.Document
	URL   *url.URL
	Bytes int64
}

type Fetcher struct {
	client *http.Client
}

func New(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

func (f *Fetcher) Fetch(ctx context.Context, target string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &NetworkError{URL: target, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: target, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{URL: target, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: target, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{URL: target, Err: err}
	}

	return &Page{
		Doc:   doc,
		URL:   resp.Request.URL,
		Bytes: int64(len(body)),
	}, nil
}
