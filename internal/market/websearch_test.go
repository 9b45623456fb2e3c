package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBraveSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/res/v1/web/search", r.URL.Path)
		assert.Equal(t, "iPhone 13 precio usado chile", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("count"))
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"web": {
				"results": [
					{"title": "iPhone 13 usado", "description": "$350.000 conversable"},
					{"title": "Vendo iPhone 13", "description": "precio 360000"}
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewBraveClient(BraveOpts{BaseURL: server.URL, APIKey: "test-key"})

	results, err := client.Search(context.Background(), "iPhone 13 precio usado chile", 10)
	assert.NoError(t, err)
	assert.Equal(t, []WebResult{
		{Title: "iPhone 13 usado", Snippet: "$350.000 conversable"},
		{Title: "Vendo iPhone 13", Snippet: "precio 360000"},
	}, results)
}

func TestBraveSearchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewBraveClient(BraveOpts{BaseURL: server.URL, APIKey: "bad-key"})

	_, err := client.Search(context.Background(), "ps5", 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status: 401")
}

func TestNewBraveClientWithoutKey(t *testing.T) {
	assert.Nil(t, NewBraveClient(BraveOpts{}))
}
