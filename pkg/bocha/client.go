// Package bocha is a thin client for the Bocha web-search API.
package bocha

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/timi233/enterprise-brain/internal/resilience"
)

const defaultBaseURL = "https://api.bochaai.com"

// Client performs web searches against the Bocha API.
type Client interface {
	WebSearch(ctx context.Context, req WebSearchRequest) (*WebSearchResponse, error)
}

// WebSearchRequest is the request body for POST /v1/web-search.
type WebSearchRequest struct {
	Query     string `json:"query"`
	Freshness string `json:"freshness,omitempty"`
	Summary   bool   `json:"summary,omitempty"`
	Count     int    `json:"count,omitempty"`
}

// WebSearchResponse is the API response envelope.
type WebSearchResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data Data   `json:"data"`
}

// Data holds the search payload.
type Data struct {
	WebPages WebPages `json:"webPages"`
}

// WebPages is the web-results section.
type WebPages struct {
	Value []WebPage `json:"value"`
}

// WebPage is a single search hit.
type WebPage struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Summary string `json:"summary,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
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

// NewClient creates a Bocha API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) WebSearch(ctx context.Context, req WebSearchRequest) (*WebSearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "bocha: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/web-search", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "bocha: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "bocha: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "bocha: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("bocha: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result WebSearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "bocha: unmarshal response")
	}

	return &result, nil
}
