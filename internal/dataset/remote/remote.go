// Package remote is the data provider backed by the horizontal-bar HTTP API.
// Every call is a fresh request; nothing is cached here.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"renewables/internal/core"
	"renewables/internal/dataset"
)

const (
	pathDistinctYears = "horizontal-bar/distinct-years"
	pathData          = "horizontal-bar/data"
)

var _ dataset.Provider = (*Client)(nil)

// ListResponse is the envelope every endpoint wraps its payload in.
type ListResponse[T any] struct {
	Data []T `json:"data"`
}

// Item is the wire form of a record.
type Item struct {
	Year       int     `json:"year"`
	State      string  `json:"state"`
	Renewables float64 `json:"renewables"`
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// New returns a client for the API rooted at baseURL. A nil httpClient gets a
// pooled client with the given timeout.
func New(baseURL string, httpClient *http.Client, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("missing remote base URL")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL scheme %q", u.Scheme)
	}
	if httpClient == nil {
		httpClient = newHTTPClientWithPooling(timeout)
	}
	return &Client{baseURL: u, http: httpClient}, nil
}

// ListYears calls GET horizontal-bar/distinct-years.
func (c *Client) ListYears(ctx context.Context) ([]int, error) {
	var resp ListResponse[json.RawMessage]
	if err := c.get(ctx, pathDistinctYears, nil, &resp); err != nil {
		return nil, err
	}
	years := make([]int, 0, len(resp.Data))
	for _, raw := range resp.Data {
		y, err := parseYear(raw)
		if err != nil {
			return nil, fmt.Errorf("decode year %s: %w", string(raw), err)
		}
		years = append(years, y)
	}
	return years, nil
}

// RecordsForYear calls GET horizontal-bar/data?year=Y.
func (c *Client) RecordsForYear(ctx context.Context, year int) ([]core.Record, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	var resp ListResponse[Item]
	if err := c.get(ctx, pathData, q, &resp); err != nil {
		return nil, err
	}
	out := make([]core.Record, 0, len(resp.Data))
	for _, it := range resp.Data {
		y := it.Year
		if y == 0 {
			y = year
		}
		out = append(out, core.Record{Year: y, Category: it.State, Value: it.Renewables})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, into any) error {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	if q != nil {
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", u, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 1<<16))
		return &StatusError{URL: u.String(), StatusCode: res.StatusCode}
	}
	if err := json.NewDecoder(res.Body).Decode(into); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

// parseYear accepts both "2019" and 2019.
func parseYear(raw json.RawMessage) (int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.Atoi(strings.TrimSpace(s))
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func newHTTPClientWithPooling(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}
