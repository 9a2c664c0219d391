package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient(ClientOptions{BaseURL: srv.URL, RequestsPerSec: 100})
	return client, srv
}

func TestGetBTCPrice(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		w.Write([]byte(`{"bitcoin":{"usd":60123.45}}`))
	})
	defer srv.Close()

	price, err := client.GetBTCPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 60123.45, price)
}

func TestGetBTCPriceMissingField(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	defer srv.Close()

	_, err := client.GetBTCPrice(context.Background())
	require.Error(t, err)
}

func TestGetTotalMarketCap(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/global", r.URL.Path)
		w.Write([]byte(`{"data":{"total_market_cap":{"usd":2.2e12,"eur":2.0e12}}}`))
	})
	defer srv.Close()

	cap, err := client.GetTotalMarketCap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.2e12, cap)
}

func TestGetStablecoinMarketCap(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("ids"), "tether")
		w.Write([]byte(`{
			"tether":{"usd":1.0,"usd_market_cap":110e9},
			"usd-coin":{"usd":1.0,"usd_market_cap":35e9},
			"dai":{"usd":1.0,"usd_market_cap":5e9}
		}`))
	})
	defer srv.Close()

	cap, err := client.GetStablecoinMarketCap(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 150e9, cap, 1e-3)
}

func TestGetStablecoinMarketCapEmpty(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	defer srv.Close()

	_, err := client.GetStablecoinMarketCap(context.Background())
	require.Error(t, err)
}

func TestGetMarketCapHistory(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "30", r.URL.Query().Get("days"))
		w.Write([]byte(`{"market_caps":[[1756339200000,900e9],[1756425600000,945e9]]}`))
	})
	defer srv.Close()

	hist, err := client.GetMarketCapHistory(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, hist.Total, 2)
	require.Len(t, hist.Stablecoin, 2)

	// BTC cap scaled up by the dominance ratio, then the stablecoin share.
	assert.InDelta(t, 900e9/0.45, hist.Total[0], 1)
	assert.InDelta(t, 900e9/0.45*0.08, hist.Stablecoin[0], 1)
	assert.Greater(t, hist.Total[1], hist.Total[0])
}

func TestGetMarketCapHistoryEmpty(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"market_caps":[]}`))
	})
	defer srv.Close()

	_, err := client.GetMarketCapHistory(context.Background(), 30)
	require.Error(t, err)
}
