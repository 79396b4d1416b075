package coinfolio

import "testing"

func TestResolveCurrency(t *testing.T) {
	tests := []struct {
		setting, locale string
		want            string
		wantErr         bool
	}{
		{"", "tr_TR.UTF-8", "TRY", false},
		{"auto", "tr-TR", "TRY", false},
		{"AUTO", "TR", "TRY", false},
		{"", "en_US.UTF-8", "USD", false},
		{"", "", "USD", false},
		{"eur", "tr_TR", "EUR", false},
		{"USD", "", "USD", false},
		{"XYZ", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.setting+"/"+tt.locale, func(t *testing.T) {
			got, err := ResolveCurrency(tt.setting, tt.locale)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveCurrency(%q, %q) error = %v, wantErr %v", tt.setting, tt.locale, err, tt.wantErr)
			}
			if got.Code != tt.want {
				t.Errorf("ResolveCurrency(%q, %q) = %q, want %q", tt.setting, tt.locale, got.Code, tt.want)
			}
		})
	}
}

func TestCurrency_VS(t *testing.T) {
	if got := (Currency{Code: "TRY"}).VS(); got != "try" {
		t.Errorf("VS() = %q, want try", got)
	}
}
