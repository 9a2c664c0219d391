package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/Alias1177/bullbear/internal/platform/http"
	"github.com/Alias1177/bullbear/models"
)

// stablecoinIDs are the major stablecoins whose caps are summed into the
// stablecoin market cap signal.
var stablecoinIDs = []string{"tether", "usd-coin", "binance-usd", "dai", "true-usd", "usdd", "frax"}

// btcToTotalRatio estimates total crypto market cap from BTC market cap in
// the historical chart; BTC dominance hovers around 45%.
const btcToTotalRatio = 0.45

// stablecoinShareEstimate approximates the stablecoin share of total cap in
// the historical chart, where CoinGecko offers no per-category history.
const stablecoinShareEstimate = 0.08

// Client talks to the CoinGecko public API. No API key required; the free
// tier allows 10-50 calls per minute, which the shared rate limiter respects.
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new CoinGecko client
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a new CoinGecko API client
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = "https://api.coingecko.com/api/v3"
	}
	httpOpts := httpclient.ClientOptions{
		Timeout:        options.RequestTimeout,
		RequestsPerSec: options.RequestsPerSec,
	}
	if httpOpts.RequestsPerSec == 0 {
		httpOpts.RequestsPerSec = 1
	}

	return &Client{
		baseURL:    options.BaseURL,
		httpClient: httpclient.NewClient(httpOpts),
		logger:     log.With().Str("component", "coingecko_client").Logger(),
	}
}

// GetBTCPrice fetches the current BTC price in USD.
func (c *Client) GetBTCPrice(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/simple/price?ids=bitcoin&vs_currencies=usd", c.baseURL)

	var data map[string]map[string]float64
	if err := c.getJSON(ctx, url, &data); err != nil {
		return 0, err
	}

	price, ok := data["bitcoin"]["usd"]
	if !ok {
		return 0, fmt.Errorf("bitcoin price missing from response")
	}
	return price, nil
}

// GetTotalMarketCap fetches the total crypto market cap in USD.
func (c *Client) GetTotalMarketCap(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/global", c.baseURL)

	var data struct {
		Data struct {
			TotalMarketCap map[string]float64 `json:"total_market_cap"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, url, &data); err != nil {
		return 0, err
	}

	cap, ok := data.Data.TotalMarketCap["usd"]
	if !ok {
		return 0, fmt.Errorf("total market cap missing from response")
	}
	return cap, nil
}

// GetStablecoinMarketCap sums the market caps of the major stablecoins in a
// single call.
func (c *Client) GetStablecoinMarketCap(ctx context.Context) (float64, error) {
	url := fmt.Sprintf(
		"%s/simple/price?ids=%s&vs_currencies=usd&include_market_cap=true",
		c.baseURL, strings.Join(stablecoinIDs, ","),
	)

	var data map[string]map[string]float64
	if err := c.getJSON(ctx, url, &data); err != nil {
		return 0, err
	}

	var total float64
	for _, coin := range data {
		total += coin["usd_market_cap"]
	}
	if total == 0 {
		return 0, fmt.Errorf("no stablecoin market caps in response")
	}
	return total, nil
}

// GetMarketCapHistory fetches the daily market cap chart for Bitcoin and
// derives total and stablecoin cap series from it. CoinGecko's free tier has
// no direct total-cap or stablecoin-cap history, so BTC cap is scaled by the
// typical dominance ratio and the stablecoin share is estimated from it.
// Series are oldest first.
func (c *Client) GetMarketCapHistory(ctx context.Context, days int) (*models.CapHistory, error) {
	url := fmt.Sprintf(
		"%s/coins/bitcoin/market_chart?vs_currency=usd&days=%d&interval=daily",
		c.baseURL, days,
	)

	var data struct {
		MarketCaps [][2]float64 `json:"market_caps"`
	}
	if err := c.getJSON(ctx, url, &data); err != nil {
		return nil, err
	}
	if len(data.MarketCaps) == 0 {
		return nil, fmt.Errorf("no market cap history in response")
	}

	hist := &models.CapHistory{
		Total:      make([]float64, 0, len(data.MarketCaps)),
		Stablecoin: make([]float64, 0, len(data.MarketCaps)),
	}
	for _, point := range data.MarketCaps {
		totalCap := point[1] / btcToTotalRatio
		hist.Total = append(hist.Total, totalCap)
		hist.Stablecoin = append(hist.Stablecoin, totalCap*stablecoinShareEstimate)
	}

	c.logger.Debug().Int("days", len(hist.Total)).Msg("Fetched market cap history")
	return hist, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error().Err(err).Str("url", url).Msg("Error parsing JSON")
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}
