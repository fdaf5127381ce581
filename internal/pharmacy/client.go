package pharmacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/medicarehq/pharmacy-web/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// Instrumenter records upstream request outcomes.
type Instrumenter interface {
	ObserveUpstream(method, status string, seconds float64)
}

// Client is a typed REST client for the pharmacy API. One request equals
// one reported outcome: no retries, no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    Instrumenter
}

// NewClient creates a pharmacy API client against the given base URL
// (e.g. "https://pharmacy.example/api").
func NewClient(baseURL string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// WithHTTPClient overrides the underlying HTTP client (tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithMetrics attaches an instrumenter for upstream request outcomes.
func (c *Client) WithMetrics(m Instrumenter) *Client {
	c.metrics = m
	return c
}

// ListMedicines returns the medicine collection, server-filtered when
// search is non-empty.
func (c *Client) ListMedicines(ctx context.Context, search string) ([]Medicine, error) {
	var out []Medicine
	if err := c.do(ctx, http.MethodGet, listPath(KindMedicines, search), Auth{}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDoctors returns the doctor collection, server-filtered when search
// is non-empty.
func (c *Client) ListDoctors(ctx context.Context, search string) ([]Doctor, error) {
	var out []Doctor
	if err := c.do(ctx, http.MethodGet, listPath(KindDoctors, search), Auth{}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAppointments returns the appointment collection, server-filtered by
// customer name when search is non-empty.
func (c *Client) ListAppointments(ctx context.Context, search string) ([]Appointment, error) {
	var out []Appointment
	if err := c.do(ctx, http.MethodGet, listPath(KindAppointments, search), Auth{}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single record of any kind as an opaque field map.
func (c *Client) Get(ctx context.Context, kind Kind, id string) (Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("pharmacy: unknown kind %q", kind)
	}
	var out Record
	if err := c.do(ctx, http.MethodGet, recordPath(kind, id), Auth{}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update PUTs the full field set for a record. Requires auth.
func (c *Client) Update(ctx context.Context, auth Auth, kind Kind, id string, fields Record) (Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("pharmacy: unknown kind %q", kind)
	}
	var out Record
	if err := c.do(ctx, http.MethodPut, recordPath(kind, id), auth, fields, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a record. Requires auth.
func (c *Client) Delete(ctx context.Context, auth Auth, kind Kind, id string) error {
	if !kind.Valid() {
		return fmt.Errorf("pharmacy: unknown kind %q", kind)
	}
	return c.do(ctx, http.MethodDelete, recordPath(kind, id), auth, nil, nil)
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/login/", Auth{}, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its session token.
func (c *Client) Register(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/register/", Auth{}, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the session token upstream.
func (c *Client) Logout(ctx context.Context, auth Auth) error {
	return c.do(ctx, http.MethodPost, "/logout/", auth, nil, nil)
}

// CreateAppointment books an appointment through the public endpoint.
func (c *Client) CreateAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	var out Appointment
	if err := c.do(ctx, http.MethodPost, "/appointments/", Auth{}, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecentSales returns the public sales feed.
func (c *Client) RecentSales(ctx context.Context) ([]Sale, error) {
	var out []Sale
	if err := c.do(ctx, http.MethodGet, "/sales-feed/", Auth{}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func listPath(kind Kind, search string) string {
	p := "/" + string(kind) + "/"
	if strings.TrimSpace(search) != "" {
		p += "?search=" + url.QueryEscape(search)
	}
	return p
}

func recordPath(kind Kind, id string) string {
	return "/" + string(kind) + "/" + url.PathEscape(id) + "/"
}

func (c *Client) do(ctx context.Context, method, path string, auth Auth, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("pharmacy: marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("pharmacy: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth.Token != "" {
		req.Header.Set("Authorization", "Token "+auth.Token)
	}
	if auth.CSRF != "" {
		req.Header.Set("X-CSRFToken", auth.CSRF)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.metrics != nil {
			c.metrics.ObserveUpstream(method, "error", time.Since(start).Seconds())
		}
		return fmt.Errorf("pharmacy: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if c.metrics != nil {
		c.metrics.ObserveUpstream(method, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("pharmacy: read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("pharmacy: %s %s: %w", method, path, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		c.logger.Warn("upstream request failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return &APIError{Status: resp.StatusCode, Body: msg}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("pharmacy: unmarshal response: %w", err)
	}
	return nil
}
