package coinfolio

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Quantity is an exact amount of a coin. Fractional holdings are allowed.
type Quantity struct {
	value decimal.Decimal
}

func Q[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: newDecimal(value)}
}

// MaxFractionDigits is the finest precision accepted for an amount.
const MaxFractionDigits = 30

// ParseQuantity parses a user supplied amount.
//
// Surrounding spaces are ignored. Anything that is not a finite decimal number
// ("", "abc", "NaN", "Inf", "2abc", "1e400") is rejected, and so are amounts
// written with more than MaxFractionDigits decimals.
func ParseQuantity(text string) (Quantity, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Quantity{}, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, fmt.Errorf("invalid amount %q", text)
	}
	// both bounds are checked on the exponent before anything formats d
	if f, _ := strconv.ParseFloat(s, 64); math.IsInf(f, 0) {
		return Quantity{}, fmt.Errorf("amount %q is out of range", text)
	}
	if d.Exponent() < -MaxFractionDigits {
		return Quantity{}, fmt.Errorf("amount %q has more than %d decimals", text, MaxFractionDigits)
	}
	return Quantity{value: d}, nil
}

func (t Quantity) Equal(p Quantity) bool    { return t.value.Equal(p.value) }
func (t Quantity) Add(p Quantity) Quantity  { return Quantity{value: t.value.Add(p.value)} }
func (t Quantity) IsNegative() bool         { return t.value.IsNegative() }
func (t Quantity) IsZero() bool             { return t.value.IsZero() }
func (t Quantity) Decimal() decimal.Decimal { return t.value }
func (t Quantity) String() string           { return t.value.String() }

// MarshalJSON implements the json.Marshaler interface.
func (t Quantity) MarshalJSON() ([]byte, error) {
	return t.value.MarshalJSON()
}

func (t *Quantity) UnmarshalJSON(decimalBytes []byte) error {
	return t.value.UnmarshalJSON(decimalBytes)
}
