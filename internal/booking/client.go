// Package booking provides a minimal client for the restaurant booking REST API.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is used when no backend base URL is configured.
const DefaultBaseURL = "http://localhost:8080"

// Client is a minimal HTTP client for the booking backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a new client. If httpClient is nil, a default client without a timeout is used.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// NewHTTPClient builds the transport used against the backend. A zero timeout disables it.
func NewHTTPClient(timeout time.Duration, rt http.RoundTripper) *http.Client {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

// ListRestaurants fetches every restaurant known to the backend.
func (c *Client) ListRestaurants(ctx context.Context) (any, error) {
	return c.do(ctx, http.MethodGet, "/api/restaurants", nil, false)
}

// CreateBooking posts a new booking. All fields are sent.
func (c *Client) CreateBooking(ctx context.Context, b NewBooking) (any, error) {
	return c.do(ctx, http.MethodPost, "/api/bookings", b, true)
}

// GetBooking fetches a single booking by id.
func (c *Client) GetBooking(ctx context.Context, id float64) (any, error) {
	return c.do(ctx, http.MethodGet, bookingPath(id), nil, false)
}

// UpdateBooking sends the sparse patch to the per-booking endpoint.
// Fields absent from the patch are not sent; merging is left to the backend.
func (c *Client) UpdateBooking(ctx context.Context, id float64, p *Patch) (any, error) {
	return c.do(ctx, http.MethodPut, bookingPath(id), p, true)
}

func bookingPath(id float64) string {
	return "/api/bookings/" + FormatID(id)
}

// FormatID renders a numeric id the way it appears in backend paths.
func FormatID(id float64) string {
	return strconv.FormatFloat(id, 'f', -1, 64)
}

// do issues one request. readErrBody controls whether a non-2xx body is captured.
func (c *Client) do(ctx context.Context, method, path string, payload any, readErrBody bool) (any, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serr := &StatusError{Code: resp.StatusCode, Status: statusText(resp)}
		if readErrBody {
			raw, _ := io.ReadAll(resp.Body)
			serr.Body = string(raw)
		}
		return nil, serr
	}
	return decodeJSON(resp)
}

// decodeJSON decodes an HTTP response body into a generic interface.
// Numbers stay json.Number so ids round-trip verbatim. A success status with an
// empty or non-JSON body is an error.
func decodeJSON(resp *http.Response) (any, error) {
	var body any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode response: empty body")
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return body, nil
}

// statusText strips the code prefix from resp.Status, keeping the backend's reason phrase.
func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if s := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); s != "" {
		return s
	}
	return http.StatusText(resp.StatusCode)
}
