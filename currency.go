package coinfolio

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
)

// AutoCurrency asks ResolveCurrency to derive the currency from the locale.
const AutoCurrency = "auto"

// Currency is the quote currency of a session. It is resolved once and then
// used for every price fetch, valuation and formatting of the session.
type Currency struct {
	Code   string // ISO 4217, upper case
	Locale string // the locale it was resolved from, if any
}

// VS returns the code as the market-data API expects it ("usd").
func (c Currency) VS() string { return strings.ToLower(c.Code) }

func (c Currency) String() string { return c.Code }

// ResolveCurrency returns the session currency.
//
// An empty or "auto" setting derives it from the locale: Turkish locales
// ("tr", "tr_TR.UTF-8", "tr-TR") quote in TRY, anything else in USD. Any other
// setting must be a currency code known to go-money.
func ResolveCurrency(setting, locale string) (Currency, error) {
	setting = strings.TrimSpace(setting)
	if setting == "" || strings.EqualFold(setting, AutoCurrency) {
		code := "USD"
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(locale)), "tr") {
			code = "TRY"
		}
		return Currency{Code: code, Locale: locale}, nil
	}
	code := strings.ToUpper(setting)
	if money.GetCurrency(code) == nil {
		return Currency{}, fmt.Errorf("unknown currency %q", setting)
	}
	return Currency{Code: code, Locale: locale}, nil
}
