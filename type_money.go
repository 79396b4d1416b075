package coinfolio

import "github.com/shopspring/decimal"

// Money represents a monetary value in a quote currency.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// String returns the money formatted with the currency template (e.g.
// "$1,234.56"). Amounts below 1 keep up to 8 decimals so that cheap coins do
// not read as zero.
func (m Money) String() string {
	return formatDecimal(m.value, m.cur)
}

// Simple wrapper around decimal.Decimal

func (m Money) Currency() string            { return m.cur }
func (m Money) Equal(n Money) bool          { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                { return m.value.IsZero() }
func (m Money) Mul(n Quantity) Money        { return Money{value: m.value.Mul(n.value), cur: m.cur} }
func (m Money) Decimal() decimal.Decimal    { return m.value }
func (m Money) InCurrency(code string) bool { return m.cur == "" || m.cur == code }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch" + A.cur + "!=" + B.cur)
	}
	return A.cur
}
