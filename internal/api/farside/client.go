package farside

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	httpclient "github.com/Alias1177/bullbear/internal/platform/http"
	"github.com/Alias1177/bullbear/models"
)

// flowUnit converts the table values, quoted in millions of USD, to USD.
const flowUnit = 1_000_000.0

var dateLayouts = []string{"2 Jan 2006", "02 Jan 2006", "2006-01-02"}

// statisticsRows appear at the bottom of the flow table and are not daily data.
var statisticsRows = map[string]bool{
	"total": true, "average": true, "maximum": true, "minimum": true, "sum": true,
}

// Client scrapes the Farside Investors Bitcoin spot ETF flow table. The page
// lists one row per trading day with a Total column holding the basket's net
// flow in millions of USD.
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Farside client
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a new Farside scraper client
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = "https://farside.co.uk/bitcoin-etf-flow-all-data/"
	}
	return &Client{
		baseURL: options.BaseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:        options.RequestTimeout,
			RequestsPerSec: options.RequestsPerSec,
		}),
		logger: log.With().Str("component", "farside_client").Logger(),
	}
}

// GetFlowHistory fetches the most recent days of ETF net flows, oldest first.
func (c *Client) GetFlowHistory(ctx context.Context, days int) ([]models.EtfFlowRecord, error) {
	records, err := c.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if days > 0 && len(records) > days {
		records = records[len(records)-days:]
	}
	return records, nil
}

// GetLatestFlow fetches the most recent day's net flow in USD.
func (c *Client) GetLatestFlow(ctx context.Context) (float64, error) {
	records, err := c.fetchAll(ctx)
	if err != nil {
		return 0, err
	}
	return records[len(records)-1].NetFlow, nil
}

func (c *Client) fetchAll(ctx context.Context) ([]models.EtfFlowRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	// The site rejects default Go client fingerprints.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	records := ParseFlowTable(doc)
	if len(records) == 0 {
		c.logger.Warn().Msg("No ETF flow rows found on page")
		return nil, fmt.Errorf("no ETF flow table found")
	}

	c.logger.Debug().Int("rows", len(records)).Msg("Parsed ETF flow table")
	return records, nil
}

// ParseFlowTable walks the document, finds the table whose header carries
// Date and Total columns and maps its data rows to flow records, oldest
// first. Statistics rows at the bottom of the table are skipped.
func ParseFlowTable(doc *html.Node) []models.EtfFlowRecord {
	for _, table := range findNodes(doc, "table") {
		rows := extractRows(table)
		if len(rows) < 2 {
			continue
		}

		dateIdx, totalIdx := -1, -1
		for i, cell := range rows[0] {
			switch strings.ToLower(strings.TrimSpace(cell)) {
			case "date":
				dateIdx = i
			case "total":
				totalIdx = i
			}
		}
		if dateIdx < 0 || totalIdx < 0 {
			continue
		}

		var records []models.EtfFlowRecord
		for _, row := range rows[1:] {
			if len(row) <= totalIdx || len(row) <= dateIdx {
				continue
			}
			dateCell := strings.TrimSpace(row[dateIdx])
			if dateCell == "" || statisticsRows[strings.ToLower(dateCell)] {
				continue
			}
			date, ok := parseDate(dateCell)
			if !ok {
				continue
			}
			flow, ok := parseFlowValue(row[totalIdx])
			if !ok {
				continue
			}
			records = append(records, models.EtfFlowRecord{Date: date, NetFlow: flow * flowUnit})
		}
		if len(records) > 0 {
			return records
		}
	}
	return nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseFlowValue handles the table's number formatting: thousands commas and
// parenthesized negatives. Empty and "-" cells mean no data for that day, not
// a zero flow; the row is skipped so it cannot dilute the day counts.
func parseFlowValue(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" || cleaned == "-" {
		return 0, false
	}
	negative := strings.HasPrefix(cleaned, "(") || strings.HasPrefix(cleaned, "-")
	for _, r := range []string{"$", ",", "(", ")", "-", " "} {
		cleaned = strings.ReplaceAll(cleaned, r, "")
	}
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

func findNodes(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return out
}

func extractRows(table *html.Node) [][]string {
	var rows [][]string
	var walkRows func(*html.Node)
	walkRows = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "tr" {
			var cells []string
			for cell := node.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
					cells = append(cells, nodeText(cell))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walkRows(child)
		}
	}
	walkRows(table)
	return rows
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
