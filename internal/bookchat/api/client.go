// Package api wraps the book question-answering backend.
// Every operation is a JSON request against a base URL that is resolved once,
// when the Client is constructed.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var errNullBody = errors.New("response body is null")

const (
	// DefaultTopK is the number of context snippets requested when none is given
	DefaultTopK = 5
)

// TokenSource provides the bearer token attached to outgoing requests.
// An empty token means no Authorization header is sent.
type TokenSource interface {
	Token() (string, error)
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTokenSource sets where the bearer token is read from
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// Client sends requests to the backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a new client for the given base URL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL every endpoint is resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthCheck probes the backend health endpoint
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	var result HealthResponse
	raw, err := c.request(ctx, http.MethodGet, "/health", nil, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

// SendMessage posts a user message. sessionID is nil until the backend assigned one.
func (c *Client) SendMessage(ctx context.Context, message string, sessionID *string) (*ChatResponse, error) {
	var result ChatResponse
	reqBody := ChatRequest{
		Message:   message,
		SessionID: sessionID,
	}
	if _, err := c.request(ctx, http.MethodPost, "/chat", reqBody, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProcessURL asks the backend to ingest the page at url
func (c *Client) ProcessURL(ctx context.Context, url string) (*ProcessURLResponse, error) {
	var result ProcessURLResponse
	if _, err := c.request(ctx, http.MethodPost, "/process-url", ProcessURLRequest{URL: url}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RetrieveContext returns the topK snippets the backend ranks highest for query.
// A topK of zero or less requests DefaultTopK snippets.
func (c *Client) RetrieveContext(ctx context.Context, query string, topK int) (*RetrieveResponse, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	var result RetrieveResponse
	reqBody := RetrieveRequest{
		Query: query,
		TopK:  topK,
	}
	if _, err := c.request(ctx, http.MethodPost, "/retrieve", reqBody, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TestConnection reports whether the health endpoint answers with a 2xx status.
// Unlike the other operations it never returns an error.
func (c *Client) TestConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		log.Warn().Err(err).Msg("API connection test failed")
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", req.URL.String()).Msg("API connection test failed")
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return isSuccess(resp.StatusCode)
}

// request sends a JSON request and decodes the response body into out.
// The raw body is returned alongside for callers that keep it.
func (c *Client) request(ctx context.Context, method, endpoint string, body any, out any) ([]byte, error) {
	url := c.baseURL + endpoint

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "error marshaling request")
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	log.Debug().Str("method", method).Str("url", url).Msg("API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(&NetworkError{Method: method, URL: url, Err: err})
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)

	// the status decides first, a truncated error body is still that status
	if !isSuccess(resp.StatusCode) {
		return nil, c.fail(&StatusError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		})
	}
	if readErr != nil {
		return nil, c.fail(&DecodeError{URL: url, Err: errors.Wrap(readErr, "error reading response")})
	}

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, c.fail(&DecodeError{URL: url, Err: errNullBody})
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, c.fail(&DecodeError{URL: url, Err: err})
	}

	return data, nil
}

// authorize attaches the stored bearer token, if any
func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Token()
	if err != nil {
		log.Warn().Err(err).Msg("Could not read API token, sending request without it")
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) fail(err error) error {
	log.Error().Err(err).Msg("API request failed")
	return err
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}
