package market

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const meliBaseURL = "https://api.mercadolibre.com"

// The search API rejects unknown user agents with 403, so pretend to be a
// desktop browser.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// MeliOpts configures the MercadoLibre client.
type MeliOpts struct {
	BaseURL     string // override for testing
	AccessToken string // optional bearer token for authenticated quota
}

// MeliClient queries the MercadoLibre Chile search API for used-condition
// listing prices. It is the primary market data source.
type MeliClient struct {
	httpClient *resty.Client
}

// NewMeliClient creates a MercadoLibre search client.
func NewMeliClient(opts MeliOpts) *MeliClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = meliBaseURL
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": browserUserAgent,
		})
	if opts.AccessToken != "" {
		httpClient.SetHeader("Authorization", "Bearer "+opts.AccessToken)
	}

	return &MeliClient{httpClient: httpClient}
}

type meliSearchResponse struct {
	Results []meliSearchItem `json:"results"`
}

type meliSearchItem struct {
	Price      float64 `json:"price"`
	CurrencyID string  `json:"currency_id"`
}

// SearchUsedPrices returns CLP prices of up to limit used-condition listings
// matching query. Access-denied and rate-limit responses are reported as "no
// data", not as errors, because the aggregator falls through to the next
// source either way.
func (c *MeliClient) SearchUsedPrices(ctx context.Context, query string, limit int) ([]int, error) {
	result := &meliSearchResponse{}

	res, err := c.httpClient.NewRequest().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":         query,
			"condition": "used",
			"limit":     strconv.Itoa(limit),
		}).
		SetResult(result).
		Get("/sites/MLC/search")
	if err != nil {
		return nil, err
	}

	switch res.StatusCode() {
	case http.StatusForbidden, http.StatusTooManyRequests:
		log.Warn().
			Int("status", res.StatusCode()).
			Str("query", query).
			Msg("mercadolibre search denied, treating as no data")
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("mercadolibre search failed: %s (status: %d)", res.Request.URL, res.StatusCode())
	}

	var prices []int
	for _, item := range result.Results {
		if item.CurrencyID != "CLP" {
			continue
		}
		price := int(item.Price)
		if price <= 0 {
			continue
		}
		prices = append(prices, price)
	}
	return prices, nil
}
