package bocha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timi233/enterprise-brain/internal/resilience"
)

func TestWebSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/web-search", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req WebSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "青岛啤酒 营收", req.Query)
		assert.Equal(t, 10, req.Count)

		resp := WebSearchResponse{
			Code: 200,
			Data: Data{WebPages: WebPages{Value: []WebPage{
				{Name: "青岛啤酒年报", URL: "https://example.com/1", Snippet: "营业收入339亿元"},
				{Name: "行业分析", URL: "https://example.com/2", Snippet: "啤酒行业龙头"},
			}}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.WebSearch(context.Background(), WebSearchRequest{
		Query: "青岛啤酒 营收",
		Count: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Code)
	require.Len(t, resp.Data.WebPages.Value, 2)
	assert.Equal(t, "青岛啤酒年报", resp.Data.WebPages.Value[0].Name)
	assert.Equal(t, "营业收入339亿元", resp.Data.WebPages.Value[0].Snippet)
}

func TestWebSearchRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":429,"msg":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.WebSearch(context.Background(), WebSearchRequest{Query: "test"})
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestWebSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.WebSearch(context.Background(), WebSearchRequest{Query: "test"})
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestWebSearchBadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.WebSearch(context.Background(), WebSearchRequest{Query: ""})
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
}
