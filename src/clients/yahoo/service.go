package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"investgame/src/config"
	"investgame/src/utils/requests"

	"golang.org/x/time/rate"
)

type YahooServiceClientI interface {
	GetChart(ctx context.Context, ticker string) (*ChartResponse, error)
	GetQuote(ctx context.Context, ticker string) (*QuoteResponse, error)
}

type YahooServiceClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
}

// NewClient creates a new instance of YahooServiceClient
func NewClient(cfg *config.Config) *YahooServiceClient {
	yc := cfg.ExternalClients.Yahoo
	limiter := rate.NewLimiter(rate.Limit(yc.RateLimit), yc.RateLimit)
	return &YahooServiceClient{
		API:     requests.NewExternalAPIService(yc.Timeout, limiter),
		BaseURL: strings.TrimRight(yc.BaseURL, "/"),
	}
}

// GetChart fetches the chart endpoint, whose meta block carries the latest price.
func (c *YahooServiceClient) GetChart(ctx context.Context, ticker string) (*ChartResponse, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", c.BaseURL, url.PathEscape(ticker))
	params := url.Values{}
	params.Add("range", "1d")
	params.Add("interval", "1d")

	var chart ChartResponse
	if err := c.get(ctx, endpoint, params, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s: %s", ticker, chart.Chart.Error.Description)
	}
	return &chart, nil
}

// GetQuote fetches the detailed quote endpoint.
func (c *YahooServiceClient) GetQuote(ctx context.Context, ticker string) (*QuoteResponse, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote", c.BaseURL)
	params := url.Values{}
	params.Add("symbols", ticker)

	var quote QuoteResponse
	if err := c.get(ctx, endpoint, params, &quote); err != nil {
		return nil, err
	}
	if quote.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote %s: %s", ticker, quote.QuoteResponse.Error.Description)
	}
	return &quote, nil
}

func (c *YahooServiceClient) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	resp, cancel, err := c.API.Get(ctx, endpoint, params)
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
