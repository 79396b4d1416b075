package coinfolio

import "testing"

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price *float64
		code  string
		want  string
	}{
		{nil, "USD", "N/A"},
		{ptr(0.0), "USD", "$0.00"},
		{ptr(1234.5), "USD", "$1,234.50"},
		{ptr(64123.456), "USD", "$64,123.46"},
		{ptr(0.5), "USD", "$0.50"},
		{ptr(0.00001234), "USD", "$0.00001234"},
		{ptr(0.123456789), "USD", "$0.12345679"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatPrice(tt.price, tt.code); got != tt.want {
				t.Errorf("FormatPrice() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatNumberAndSupply(t *testing.T) {
	if got := FormatNumber(ptr(19700000.4)); got != "19,700,000" {
		t.Errorf("FormatNumber() = %q", got)
	}
	if got := FormatNumber(nil); got != NotAvailable {
		t.Errorf("FormatNumber(nil) = %q", got)
	}
	if got := FormatSupply(nil, "∞"); got != "∞" {
		t.Errorf("FormatSupply(nil) = %q, want ∞", got)
	}
	if got := FormatSupply(ptr(21000000.0), "∞"); got != "21,000,000" {
		t.Errorf("FormatSupply() = %q", got)
	}
}

func TestFormatChange(t *testing.T) {
	tests := []struct {
		p    *float64
		want string
	}{
		{nil, "0.00%"},
		{ptr(1.234), "1.23%"},
		{ptr(-0.5), "-0.50%"},
	}
	for _, tt := range tests {
		if got := FormatChange(tt.p); got != tt.want {
			t.Errorf("FormatChange() = %q, want %q", got, tt.want)
		}
	}
}

func TestTruncateName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Bitcoin", "Bitcoin"},
		{"Exactly15Chars!", "Exactly15Chars!"},
		{"Wrapped Liquid Staked Ether", "Wrapped Liquid ..."},
		{"ééééééééééééééééé", "ééééééééééééééé..."},
	}
	for _, tt := range tests {
		if got := TruncateName(tt.in); got != tt.want {
			t.Errorf("TruncateName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestChartURL(t *testing.T) {
	want := "https://www.tradingview.com/chart/?symbol=BINANCE:BTCUSDT"
	if got := ChartURL("btc"); got != want {
		t.Errorf("ChartURL() = %q, want %q", got, want)
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{USD(0), "$0.00"},
		{USD(1234.5), "$1,234.50"},
		{USD(0.00001234), "$0.00001234"},
		{M(-42, "USD"), "-$42.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.m.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
