package coinfolio

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// DefaultPageSize is the number of coins per page of the market list.
const DefaultPageSize = 50

// SortKey names a sortable column of the market list.
type SortKey string

const (
	SortByRank              SortKey = "market_cap_rank"
	SortByName              SortKey = "name"
	SortBySymbol            SortKey = "symbol"
	SortByPrice             SortKey = "current_price"
	SortByChange1h          SortKey = "price_change_percentage_1h_in_currency"
	SortByChange24h         SortKey = "price_change_percentage_24h"
	SortByChange7d          SortKey = "price_change_percentage_7d_in_currency"
	SortByMarketCap         SortKey = "market_cap"
	SortByVolume            SortKey = "total_volume"
	SortByCirculatingSupply SortKey = "circulating_supply"
	SortByTotalSupply       SortKey = "total_supply"
	SortByMaxSupply         SortKey = "max_supply"
	// SortByFavorites groups favorites together.
	SortByFavorites SortKey = "favorites"
)

// numericFields are the sort keys backed by an optional number.
var numericFields = map[SortKey]func(Coin) *float64{
	SortByRank: func(c Coin) *float64 {
		if c.MarketCapRank == nil {
			return nil
		}
		v := float64(*c.MarketCapRank)
		return &v
	},
	SortByPrice:             func(c Coin) *float64 { return c.CurrentPrice },
	SortByChange1h:          func(c Coin) *float64 { return c.PriceChange1h },
	SortByChange24h:         func(c Coin) *float64 { return c.PriceChange24h },
	SortByChange7d:          func(c Coin) *float64 { return c.PriceChange7d },
	SortByMarketCap:         func(c Coin) *float64 { return c.MarketCap },
	SortByVolume:            func(c Coin) *float64 { return c.TotalVolume },
	SortByCirculatingSupply: func(c Coin) *float64 { return c.CirculatingSupply },
	SortByTotalSupply:       func(c Coin) *float64 { return c.TotalSupply },
	SortByMaxSupply:         func(c Coin) *float64 { return c.MaxSupply },
}

var sortKeyAliases = map[string]SortKey{
	"rank":   SortByRank,
	"#":      SortByRank,
	"price":  SortByPrice,
	"1h":     SortByChange1h,
	"24h":    SortByChange24h,
	"7d":     SortByChange7d,
	"cap":    SortByMarketCap,
	"volume": SortByVolume,
	"fav":    SortByFavorites,
}

// ParseSortKey parses a column name or one of its short aliases (rank, price,
// 1h, 24h, 7d, cap, volume, fav).
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if k, ok := sortKeyAliases[s]; ok {
		return k, nil
	}
	k := SortKey(s)
	switch k {
	case SortByName, SortBySymbol, SortByFavorites:
		return k, nil
	}
	if _, ok := numericFields[k]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Direction of a sort.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection parses "asc" or "desc".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Ascending, fmt.Errorf("unknown sort direction %q", s)
}

// SortState is the active sort of the market list.
type SortState struct {
	Key       SortKey
	Direction Direction
}

// DefaultSort sorts by market cap rank, ascending.
func DefaultSort() SortState { return SortState{Key: SortByRank, Direction: Ascending} }

// Toggle returns the state after the user picked key: picking the active key
// flips the direction, picking another key sorts by it descending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key && s.Direction == Descending {
		return SortState{Key: key, Direction: Ascending}
	}
	return SortState{Key: key, Direction: Descending}
}

// PageState selects a page of the market list. Pages are 1-based.
type PageState struct {
	Page int
	Size int
}

// FirstPage is page 1 of DefaultPageSize rows.
func FirstPage() PageState { return PageState{Page: 1, Size: DefaultPageSize} }

// View is one computed page of the market list.
type View struct {
	Rows       []Coin
	TotalRows  int // rows matching the search and scope, all pages included.
	TotalPages int
}

// ComputeView filters coins whose name contains search (case-insensitive),
// keeps only favorites when favoritesOnly is set, stable sorts them by the sort
// state and cuts the requested page.
//
// A page outside [1, TotalPages] yields no rows, it is never clamped. A
// non-positive page size falls back to DefaultPageSize. ComputeView does not
// modify coins.
func ComputeView(coins []Coin, favorites *FavoriteSet, search string, sort SortState, favoritesOnly bool, page PageState) View {
	needle := strings.ToLower(search)
	matched := make([]Coin, 0, len(coins))
	for _, c := range coins {
		if !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		if favoritesOnly && !favorites.Contains(c.ID) {
			continue
		}
		matched = append(matched, c)
	}

	compare := comparator(sort.Key, favorites)
	if sort.Direction == Descending {
		asc := compare
		compare = func(a, b Coin) int { return -asc(a, b) }
	}
	slices.SortStableFunc(matched, compare)

	size := page.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	v := View{
		Rows:       []Coin{},
		TotalRows:  len(matched),
		TotalPages: (len(matched) + size - 1) / size,
	}
	if page.Page < 1 {
		return v
	}
	start := (page.Page - 1) * size
	if start >= len(matched) {
		return v
	}
	end := min(start+size, len(matched))
	v.Rows = matched[start:end]
	return v
}

// comparator returns the ascending comparison for key. Unknown keys compare
// everything equal, which keeps the input order.
func comparator(key SortKey, favorites *FavoriteSet) func(a, b Coin) int {
	switch key {
	case SortByFavorites:
		return func(a, b Coin) int {
			return cmp.Compare(b2i(favorites.Contains(a.ID)), b2i(favorites.Contains(b.ID)))
		}
	case SortByName:
		return func(a, b Coin) int { return strings.Compare(a.Name, b.Name) }
	case SortBySymbol:
		return func(a, b Coin) int { return strings.Compare(a.Symbol, b.Symbol) }
	}
	if field, ok := numericFields[key]; ok {
		return func(a, b Coin) int { return compareOptional(field(a), field(b)) }
	}
	return func(a, b Coin) int { return 0 }
}

// compareOptional orders a missing value before any present one.
func compareOptional(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
