package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/Alias1177/bullbear/internal/platform/http"
)

// Client fetches BTC candle data from the Binance public market-data API.
type Client struct {
	baseURL    string
	symbol     string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Binance client
type ClientOptions struct {
	BaseURL        string
	Symbol         string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a new Binance API client
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = "https://api.binance.com"
	}
	if options.Symbol == "" {
		options.Symbol = "BTCUSDT"
	}

	return &Client{
		baseURL: options.BaseURL,
		symbol:  options.Symbol,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:        options.RequestTimeout,
			RequestsPerSec: options.RequestsPerSec,
		}),
		logger: log.With().Str("component", "binance_client").Logger(),
	}
}

// GetDailyCloses fetches up to limit daily closing prices, oldest first.
func (c *Client) GetDailyCloses(ctx context.Context, limit int) ([]float64, error) {
	url := fmt.Sprintf(
		"%s/api/v3/klines?symbol=%s&interval=1d&limit=%d",
		c.baseURL, c.symbol, limit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	// Each kline is a mixed-type array; the close price sits at index 4 as a
	// string.
	var klines [][]json.RawMessage
	if err := json.Unmarshal(body, &klines); err != nil {
		c.logger.Error().Err(err).Msg("Error parsing klines JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("empty klines returned")
	}

	closes := make([]float64, 0, len(klines))
	for _, kline := range klines {
		if len(kline) < 5 {
			return nil, fmt.Errorf("malformed kline with %d fields", len(kline))
		}
		var closeStr string
		if err := json.Unmarshal(kline[4], &closeStr); err != nil {
			return nil, fmt.Errorf("parsing close price: %w", err)
		}
		closePrice, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing close price %q: %w", closeStr, err)
		}
		closes = append(closes, closePrice)
	}

	c.logger.Debug().Int("count", len(closes)).Msg("Fetched daily closes")
	return closes, nil
}
