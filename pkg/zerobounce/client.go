// Package zerobounce is a minimal client for the ZeroBounce email
// validation API (v2).
package zerobounce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.zerobounce.net/v2"

// Client performs email validation against the ZeroBounce API.
type Client interface {
	Validate(ctx context.Context, email string) (*ValidateResponse, error)
	GetCredits(ctx context.Context) (int, error)
}

// ValidateResponse is the response from GET /validate.
type ValidateResponse struct {
	Address       string `json:"address"`
	Status        string `json:"status"`     // valid, invalid, catch-all, unknown, spamtrap, abuse, do_not_mail
	SubStatus     string `json:"sub_status"` // e.g. disposable, toxic, role_based, mailbox_not_found
	Account       string `json:"account"`
	Domain        string `json:"domain"`
	DidYouMean    string `json:"did_you_mean"`
	DomainAgeDays string `json:"domain_age_days"`
	FreeEmail     bool   `json:"free_email"`
	MXFound       string `json:"mx_found"`
	MXRecord      string `json:"mx_record"`
	SMTPProvider  string `json:"smtp_provider"`
	FirstName     string `json:"firstname"`
	LastName      string `json:"lastname"`
	ProcessedAt   string `json:"processed_at"`
}

type creditsResponse struct {
	Credits string `json:"Credits"`
}

// APIError is a non-200 response from the API. Callers use StatusCode to
// decide retryability.
type APIError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("zerobounce: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a ZeroBounce API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Validate(ctx context.Context, email string) (*ValidateResponse, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("email", email)
	q.Set("ip_address", "")

	body, err := c.get(ctx, "/validate", q)
	if err != nil {
		return nil, err
	}

	var result ValidateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "zerobounce: unmarshal response")
	}
	return &result, nil
}

// GetCredits returns the remaining validation credits, or -1 when the
// account value cannot be parsed.
func (c *httpClient) GetCredits(ctx context.Context) (int, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)

	body, err := c.get(ctx, "/getcredits", q)
	if err != nil {
		return 0, err
	}

	var result creditsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, eris.Wrap(err, "zerobounce: unmarshal credits")
	}
	var credits int
	if _, err := fmt.Sscanf(result.Credits, "%d", &credits); err != nil {
		return -1, nil
	}
	return credits, nil
}

func (c *httpClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "zerobounce: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "zerobounce: send request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, eris.Wrap(err, "zerobounce: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return body, nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	var secs int
	if _, err := fmt.Sscanf(v, "%d", &secs); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
