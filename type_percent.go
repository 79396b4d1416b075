package coinfolio

import "fmt"

// Percent is a price change expressed in percent (1.5 means +1.5%).
type Percent float64

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", float64(p))
	if res == "+0.00%" || res == "-0.00%" {
		return "0.00%"
	}
	return res
}

// ChangeOf returns the change as a Percent, a missing change reads as 0.
func ChangeOf(p *float64) Percent {
	if p == nil {
		return 0
	}
	return Percent(*p)
}
