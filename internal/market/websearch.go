package market

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
)

const braveBaseURL = "https://api.search.brave.com"

// WebResult is one hit from the secondary web search source. Prices are not
// structured; they have to be mined from the title and snippet text.
type WebResult struct {
	Title   string
	Snippet string
}

// BraveOpts configures the Brave web search client.
type BraveOpts struct {
	BaseURL string // override for testing
	APIKey  string
}

// BraveClient queries the Brave web search API. It is the secondary market
// data source, used when the marketplace search yields nothing.
type BraveClient struct {
	httpClient *resty.Client
}

// NewBraveClient creates a web search client. Returns nil when no API key is
// configured; the aggregator treats a nil secondary source as permanently
// empty.
func NewBraveClient(opts BraveOpts) *BraveClient {
	if opts.APIKey == "" {
		return nil
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = braveBaseURL
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeaders(map[string]string{
			"Accept":               "application/json",
			"X-Subscription-Token": opts.APIKey,
		})

	return &BraveClient{httpClient: httpClient}
}

type braveSearchResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search returns up to limit web results for the query.
func (c *BraveClient) Search(ctx context.Context, query string, limit int) ([]WebResult, error) {
	result := &braveSearchResponse{}

	res, err := c.httpClient.NewRequest().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     query,
			"count": strconv.Itoa(limit),
		}).
		SetResult(result).
		Get("/res/v1/web/search")
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("web search failed: %s (status: %d)", res.Request.URL, res.StatusCode())
	}

	var results []WebResult
	for _, r := range result.Web.Results {
		results = append(results, WebResult{Title: r.Title, Snippet: r.Description})
	}
	return results, nil
}
