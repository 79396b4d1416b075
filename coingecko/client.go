// Package coingecko is a client of the CoinGecko public API, the market-data
// provider of coinfolio.
package coingecko

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/logger"
)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	// TopN is the number of coins in the market list.
	TopN = 250

	apiKeyHeader = "x-cg-demo-api-key"
)

// Options configure a Client. The zero value talks to the public API without
// key, throttling nor cache.
type Options struct {
	BaseURL           string
	APIKey            string
	RequestsPerMinute int
	// CacheTTL enables an on-disk cache of successful responses.
	CacheTTL time.Duration
	CacheDir string
	Timeout  time.Duration
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// Client implements coinfolio.MarketData.
type Client struct {
	base   string
	apiKey string
	client *http.Client
	log    *logger.Entry
}

var _ coinfolio.MarketData = (*Client)(nil)

// New returns a client configured by opts.
func New(opts Options) *Client {
	log := logger.GetLogger().WithComponent("coingecko")

	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	transport = newLimitedTransport(transport, opts.RequestsPerMinute)
	if opts.CacheTTL > 0 {
		dir := opts.CacheDir
		if dir == "" {
			dir = filepath.Join(os.TempDir(), "coinfolio")
		}
		transport = &diskCache{base: transport, dir: dir, ttl: opts.CacheTTL, now: time.Now, log: log}
	}
	return &Client{
		base:   strings.TrimSuffix(base, "/"),
		apiKey: opts.APIKey,
		client: &http.Client{Transport: transport, Timeout: opts.Timeout},
		log:    log,
	}
}

// getJSON performs an HTTP GET request on path and unmarshals the JSON
// response body into data.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, data any) error {
	addr := c.base + path
	if len(query) > 0 {
		addr += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	logger.LogDuration(c.log, "GET "+path, start, logger.Fields{"status": resp.StatusCode})
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}

// ListTopMarkets returns the TopN coins by market cap, quoted in vs.
func (c *Client) ListTopMarkets(ctx context.Context, vs string) ([]coinfolio.Coin, error) {
	q := url.Values{}
	q.Set("vs_currency", vs)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(TopN))
	q.Set("page", "1")
	q.Set("sparkline", "false")
	q.Set("price_change_percentage", "1h,24h,7d")

	var coins []coinfolio.Coin
	if err := c.getJSON(ctx, "/coins/markets", q, &coins); err != nil {
		return nil, fmt.Errorf("list markets in %s: %w", vs, err)
	}
	return coins, nil
}

// GetPrices returns the price in vs of each id known to the API.
func (c *Client) GetPrices(ctx context.Context, ids []string, vs string) (map[string]float64, error) {
	prices := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", vs)

	var resp map[string]map[string]*float64
	if err := c.getJSON(ctx, "/simple/price", q, &resp); err != nil {
		return nil, fmt.Errorf("get prices in %s: %w", vs, err)
	}
	for id, quotes := range resp {
		if p := quotes[vs]; p != nil {
			prices[id] = *p
		}
	}
	return prices, nil
}

// GetCoinDetail returns the detail of coin id with market data in vs.
func (c *Client) GetCoinDetail(ctx context.Context, id, vs string) (coinfolio.CoinDetail, error) {
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")
	q.Set("sparkline", "false")

	var doc any
	if err := c.getJSON(ctx, "/coins/"+url.PathEscape(id), q, &doc); err != nil {
		return coinfolio.CoinDetail{}, fmt.Errorf("get coin %s: %w", id, err)
	}
	return parseCoinDetail(doc, vs)
}

// parseCoinDetail extracts the detail from the /coins/{id} document. Fields
// missing or null in the document stay empty.
func parseCoinDetail(doc any, vs string) (coinfolio.CoinDetail, error) {
	d := coinfolio.CoinDetail{
		Coin: coinfolio.Coin{
			ID:                stringAt(doc, "$.id"),
			Symbol:            stringAt(doc, "$.symbol"),
			Name:              stringAt(doc, "$.name"),
			Image:             stringAt(doc, "$.image.large"),
			CurrentPrice:      floatAt(doc, "$.market_data.current_price."+vs),
			MarketCap:         floatAt(doc, "$.market_data.market_cap."+vs),
			TotalVolume:       floatAt(doc, "$.market_data.total_volume."+vs),
			PriceChange1h:     floatAt(doc, "$.market_data.price_change_percentage_1h_in_currency."+vs),
			PriceChange24h:    floatAt(doc, "$.market_data.price_change_percentage_24h"),
			PriceChange7d:     floatAt(doc, "$.market_data.price_change_percentage_7d_in_currency."+vs),
			CirculatingSupply: floatAt(doc, "$.market_data.circulating_supply"),
			TotalSupply:       floatAt(doc, "$.market_data.total_supply"),
			MaxSupply:         floatAt(doc, "$.market_data.max_supply"),
		},
		Description: stringAt(doc, "$.description.en"),
		Homepage:    stringAt(doc, "$.links.homepage[0]"),
	}
	if d.ID == "" {
		return coinfolio.CoinDetail{}, fmt.Errorf("coin document has no id")
	}
	if rank := floatAt(doc, "$.market_cap_rank"); rank != nil {
		r := int(*rank)
		d.MarketCapRank = &r
	}
	if s := stringAt(doc, "$.last_updated"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			d.LastUpdated = t
		}
	}
	return d, nil
}

// valueAt returns the value at path, or nil if there is none.
func valueAt(doc any, path string) any {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil
	}
	// because jsonpath is never clear about wheter it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		v = list[0]
	}
	return v
}

func floatAt(doc any, path string) *float64 {
	if f, ok := valueAt(doc, path).(float64); ok {
		return &f
	}
	return nil
}

func stringAt(doc any, path string) string {
	s, _ := valueAt(doc, path).(string)
	return s
}

// GetMarketChart returns the price history of id in vs over the last days.
func (c *Client) GetMarketChart(ctx context.Context, id, vs string, days int) ([]coinfolio.PricePoint, error) {
	if days <= 0 {
		days = 1
	}
	q := url.Values{}
	q.Set("vs_currency", vs)
	q.Set("days", strconv.Itoa(days))

	var resp struct {
		Prices [][2]float64 `json:"prices"`
	}
	if err := c.getJSON(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", q, &resp); err != nil {
		return nil, fmt.Errorf("get chart of %s: %w", id, err)
	}
	points := make([]coinfolio.PricePoint, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		points = append(points, coinfolio.PricePoint{
			Time:  time.UnixMilli(int64(p[0])).UTC(),
			Price: p[1],
		})
	}
	return points, nil
}
