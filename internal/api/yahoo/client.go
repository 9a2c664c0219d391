package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/Alias1177/bullbear/internal/platform/http"
)

// etfTickers are the major US spot Bitcoin ETFs whose assets are summed into
// the AUM signal.
var etfTickers = []string{
	"IBIT", "FBTC", "BITB", "ARKB", "BTCO",
	"EZBC", "BRRR", "HODL", "BTCW", "GBTC",
}

// Plausibility bounds in USD for the basket total; a sum outside them means
// the quote data is junk.
const (
	minPlausibleAUM = 1e9
	maxPlausibleAUM = 1e12
)

// Client fetches ETF fund assets from the Yahoo Finance quote-summary API.
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Yahoo Finance client
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a new Yahoo Finance API client
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = "https://query1.finance.yahoo.com"
	}
	return &Client{
		baseURL: options.BaseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:        options.RequestTimeout,
			RequestsPerSec: options.RequestsPerSec,
		}),
		logger: log.With().Str("component", "yahoo_client").Logger(),
	}
}

// GetTotalAUM sums total assets across the spot ETF basket. Tickers that fail
// or report nothing are skipped; the call fails only when no ticker delivers.
func (c *Client) GetTotalAUM(ctx context.Context) (float64, error) {
	var total float64
	var fetched int
	for _, symbol := range etfTickers {
		assets, err := c.getTotalAssets(ctx, symbol)
		if err != nil {
			c.logger.Warn().Err(err).Str("symbol", symbol).Msg("Could not fetch fund assets")
			continue
		}
		total += assets
		fetched++
	}
	if fetched == 0 {
		return 0, fmt.Errorf("no ETF assets available from any ticker")
	}
	if total < minPlausibleAUM || total > maxPlausibleAUM {
		return 0, fmt.Errorf("implausible total ETF assets: %f", total)
	}

	c.logger.Debug().Int("tickers", fetched).Float64("aum", total).Msg("Fetched ETF AUM")
	return total, nil
}

func (c *Client) getTotalAssets(ctx context.Context, symbol string) (float64, error) {
	url := fmt.Sprintf(
		"%s/v10/finance/quoteSummary/%s?modules=defaultKeyStatistics",
		c.baseURL, symbol,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	// Yahoo rejects default Go client fingerprints.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading response body: %w", err)
	}

	var data struct {
		QuoteSummary struct {
			Result []struct {
				DefaultKeyStatistics struct {
					TotalAssets struct {
						Raw *float64 `json:"raw"`
					} `json:"totalAssets"`
				} `json:"defaultKeyStatistics"`
			} `json:"result"`
		} `json:"quoteSummary"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return 0, fmt.Errorf("parsing JSON: %w", err)
	}
	if len(data.QuoteSummary.Result) == 0 {
		return 0, fmt.Errorf("empty quote summary for %s", symbol)
	}

	raw := data.QuoteSummary.Result[0].DefaultKeyStatistics.TotalAssets.Raw
	if raw == nil {
		return 0, fmt.Errorf("no totalAssets for %s", symbol)
	}
	if *raw <= 0 {
		return 0, fmt.Errorf("non-positive totalAssets for %s: %f", symbol, *raw)
	}
	return *raw, nil
}
