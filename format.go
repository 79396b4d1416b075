package coinfolio

import (
	"strings"
	"unicode/utf8"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// NotAvailable is displayed for a missing value.
const NotAvailable = "N/A"

// MaxNameLength is the longest coin name displayed in the market list.
const MaxNameLength = 15

// FormatPrice formats a price in the currency code like Money.String.
func FormatPrice(price *float64, code string) string {
	if price == nil {
		return NotAvailable
	}
	return formatDecimal(decimal.NewFromFloat(*price), code)
}

func formatDecimal(d decimal.Decimal, code string) string {
	cur := *money.New(0, code).Currency()
	fraction := cur.Fraction
	if d.Abs().LessThan(decimal.NewFromInt(1)) && !d.IsZero() {
		s := d.Round(8).String()
		if i := strings.IndexByte(s, '.'); i >= 0 {
			fraction = max(fraction, len(s)-i-1)
		}
	}
	f := money.NewFormatter(fraction, cur.Decimal, cur.Thousand, cur.Grapheme, cur.Template)
	return f.Format(d.Round(int32(fraction)).Shift(int32(fraction)).IntPart())
}

// FormatNumber formats a large quantity (market cap, volume, supply) as a whole
// number with thousands separators.
func FormatNumber(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	f := money.NewFormatter(0, ".", ",", "", "1")
	return f.Format(decimal.NewFromFloat(*v).Round(0).IntPart())
}

// FormatSupply formats a supply, or missing when it is absent.
func FormatSupply(v *float64, missing string) string {
	if v == nil {
		return missing
	}
	return FormatNumber(v)
}

// FormatChange formats a change percentage. A missing change reads 0.00%.
func FormatChange(p *float64) string {
	return ChangeOf(p).String()
}

// TruncateName shortens names longer than MaxNameLength.
func TruncateName(name string) string {
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	return string([]rune(name)[:MaxNameLength]) + "..."
}

// ChartURL is the address of the TradingView chart of a coin against USDT.
func ChartURL(symbol string) string {
	return "https://www.tradingview.com/chart/?symbol=BINANCE:" + strings.ToUpper(symbol) + "USDT"
}
