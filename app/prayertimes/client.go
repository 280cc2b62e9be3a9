// Package prayertimes resolves daily prayer timings for Uzbek cities through
// the aladhan.com API, optionally cached in Redis.
package prayertimes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/qazobot/qazobot/core/telegram/netutil"
)

// ErrUpstream marks a non-success answer from the timings API.
var ErrUpstream = errors.New("prayertimes: upstream error")

// Timings are the HH:MM times for one city and day.
type Timings struct {
	Fajr    string `json:"Fajr"`
	Sunrise string `json:"Sunrise"`
	Dhuhr   string `json:"Dhuhr"`
	Asr     string `json:"Asr"`
	Maghrib string `json:"Maghrib"`
	Isha    string `json:"Isha"`
}

// Empty reports whether no timing was filled.
func (t Timings) Empty() bool {
	return t == Timings{}
}

// ClientOptions configure the API client.
type ClientOptions struct {
	BaseURL string
	Country string
	Timeout time.Duration
	// HTTPClient overrides the default retrying client.
	HTTPClient *http.Client
}

// Client calls the timingsByCity endpoint.
type Client struct {
	baseURL string
	country string
	http    *http.Client
}

// NewClient builds a client. Transient transport failures are retried by
// the shared netutil transport.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = netutil.NewHTTPClient(netutil.ClientOptions{
			Timeout: opts.Timeout,
			Retries: 2,
			Backoff: 500 * time.Millisecond,
		})
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		country: opts.Country,
		http:    hc,
	}
}

type timingsResponse struct {
	Code   int             `json:"code"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type timingsData struct {
	Timings Timings `json:"timings"`
}

// Fetch returns today's timings for city.
func (c *Client) Fetch(ctx context.Context, city string) (Timings, error) {
	q := url.Values{}
	q.Set("city", city)
	q.Set("country", c.country)
	endpoint := c.baseURL + "/timingsByCity?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Timings{}, fmt.Errorf("prayertimes: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Timings{}, fmt.Errorf("prayertimes: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Timings{}, fmt.Errorf("prayertimes: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Timings{}, fmt.Errorf("%w: http %d", ErrUpstream, resp.StatusCode)
	}

	var env timingsResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return Timings{}, fmt.Errorf("prayertimes: decode: %w", err)
	}
	if env.Code != http.StatusOK {
		return Timings{}, fmt.Errorf("%w: code %d %s", ErrUpstream, env.Code, env.Status)
	}
	var data timingsData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return Timings{}, fmt.Errorf("prayertimes: decode data: %w", err)
	}
	if data.Timings.Empty() {
		return Timings{}, fmt.Errorf("%w: empty timings", ErrUpstream)
	}
	return data.Timings, nil
}
