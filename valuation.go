package coinfolio

// PriceSnapshot maps a coin id to its latest price. It is fetched separately
// from the market list and takes precedence over it.
type PriceSnapshot map[string]Money

// NewPriceSnapshot builds a snapshot from raw prices quoted in currency.
func NewPriceSnapshot(prices map[string]float64, currency string) PriceSnapshot {
	s := make(PriceSnapshot, len(prices))
	for id, p := range prices {
		s[id] = M(p, currency)
	}
	return s
}

// Merge returns a new snapshot with the prices of other added to, or replacing,
// those of s.
func (s PriceSnapshot) Merge(other PriceSnapshot) PriceSnapshot {
	res := make(PriceSnapshot, len(s)+len(other))
	for id, p := range s {
		res[id] = p
	}
	for id, p := range other {
		res[id] = p
	}
	return res
}

// PriceSource tells where the price of a row comes from.
type PriceSource int

const (
	PriceNone PriceSource = iota
	PriceFromSnapshot
	PriceFromCatalog
)

func (s PriceSource) String() string {
	switch s {
	case PriceFromSnapshot:
		return "snapshot"
	case PriceFromCatalog:
		return "catalog"
	default:
		return "none"
	}
}

// UnknownCoinName is displayed for positions on a coin missing from the catalog.
const UnknownCoinName = "unknown"

// Row is the valuation of one position.
type Row struct {
	Index    int // 1-based
	Position Position

	Name   string
	Symbol string
	Image  string
	Known  bool // the coin is in the catalog

	Price       Money
	PriceSource PriceSource
	Value       Money
	Change24h   *float64
}

// Valuation is the valued portfolio.
type Valuation struct {
	Currency string
	Rows     []Row
	Total    Money
}

// ComputeRows values positions, in their order.
//
// The price of a coin is its snapshot price when there is one in currency,
// else the catalog current price, else 0. A coin missing from the catalog is
// not an error: its row is marked unknown.
func ComputeRows(positions []Position, prices PriceSnapshot, catalog Catalog, currency string) Valuation {
	v := Valuation{
		Currency: currency,
		Rows:     make([]Row, 0, len(positions)),
		Total:    M(0, currency),
	}
	for i, p := range positions {
		row := Row{Index: i + 1, Position: p, Name: UnknownCoinName}
		coin, known := catalog[p.CoinID]
		if known {
			row.Known = true
			row.Name = coin.Name
			row.Symbol = coin.Symbol
			row.Image = coin.Image
			row.Change24h = coin.PriceChange24h
		}

		row.Price = M(0, currency)
		if price, ok := prices[p.CoinID]; ok && price.InCurrency(currency) {
			row.Price = M(price.Decimal(), currency)
			row.PriceSource = PriceFromSnapshot
		} else if known && coin.CurrentPrice != nil {
			row.Price = M(*coin.CurrentPrice, currency)
			row.PriceSource = PriceFromCatalog
		}

		row.Value = row.Price.Mul(p.Amount)
		v.Total = v.Total.Add(row.Value)
		v.Rows = append(v.Rows, row)
	}
	return v
}

// MarshalJSON writes the row with the position fields first. The price is
// omitted when there is none.
func (r Row) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", r.Position.ID)
	w.Append("coin", r.Position.CoinID)
	w.Append("name", r.Name)
	w.Optional("symbol", r.Symbol)
	w.Append("amount", r.Position.Amount)
	if r.PriceSource != PriceNone {
		w.Append("price", r.Price.Decimal())
		w.Append("price_source", r.PriceSource.String())
	}
	w.Append("value", r.Value.Decimal())
	return w.MarshalJSON()
}

func (v Valuation) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("currency", v.Currency)
	w.Append("total", v.Total.Decimal())
	w.Append("positions", v.Rows)
	return w.MarshalJSON()
}
