package coinfolio

import (
	"time"
)

// Coin is one market record of the top coins listing.
//
// Optional numbers are pointers: the market-data provider sends null for
// unknown values and they must stay distinguishable from 0 for sorting and
// display. A Coin is replaced wholesale on each refresh, never mutated.
type Coin struct {
	ID                string   `json:"id"`
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Image             string   `json:"image,omitempty"`
	CurrentPrice      *float64 `json:"current_price"`
	MarketCapRank     *int     `json:"market_cap_rank"`
	MarketCap         *float64 `json:"market_cap"`
	TotalVolume       *float64 `json:"total_volume"`
	PriceChange1h     *float64 `json:"price_change_percentage_1h_in_currency"`
	PriceChange24h    *float64 `json:"price_change_percentage_24h"`
	PriceChange7d     *float64 `json:"price_change_percentage_7d_in_currency"`
	CirculatingSupply *float64 `json:"circulating_supply"`
	TotalSupply       *float64 `json:"total_supply"`
	MaxSupply         *float64 `json:"max_supply"`
}

// CoinDetail extends a Coin with the descriptive fields of the coin page.
type CoinDetail struct {
	Coin
	Description string
	Homepage    string
	LastUpdated time.Time
}

// Catalog indexes a market snapshot by coin id.
type Catalog map[string]Coin

// NewCatalog builds a catalog from a market snapshot. On duplicate ids the
// first record wins.
func NewCatalog(coins []Coin) Catalog {
	c := make(Catalog, len(coins))
	for _, coin := range coins {
		if _, exists := c[coin.ID]; !exists {
			c[coin.ID] = coin
		}
	}
	return c
}

// PricePoint is one sample of a market chart.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// ChartSummary condenses a market chart.
type ChartSummary struct {
	From, To               time.Time
	Open, Low, High, Close float64
	Change                 Percent
}

// SummarizeChart computes the summary of a chart. It returns false for an
// empty chart.
func SummarizeChart(points []PricePoint) (ChartSummary, bool) {
	if len(points) == 0 {
		return ChartSummary{}, false
	}
	first, last := points[0], points[len(points)-1]
	s := ChartSummary{
		From:  first.Time,
		To:    last.Time,
		Open:  first.Price,
		Close: last.Price,
		Low:   first.Price,
		High:  first.Price,
	}
	for _, p := range points[1:] {
		s.Low = min(s.Low, p.Price)
		s.High = max(s.High, p.Price)
	}
	if s.Open != 0 {
		s.Change = Percent((s.Close - s.Open) / s.Open * 100)
	}
	return s, true
}
