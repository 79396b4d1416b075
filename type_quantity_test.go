package coinfolio

import (
	"strings"
	"testing"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2", "2", false},
		{" 0.25 ", "0.25", false},
		{"-1.5", "-1.5", false},
		{"1e3", "1000", false},
		{"", "", true},
		{"   ", "", true},
		{"abc", "", true},
		{"2abc", "", true},
		{"1,5", "", true},
		{"1e400", "", true},
		{"-1e400", "", true},
		{"1e300000000", "", true},
		{"1e-300000000", "", true},
		{"0.0000000000000000000000000000001", "", true},
		{"0.000000000000000001", "0.000000000000000001", false},
		{"1e300", "1" + strings.Repeat("0", 300), false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseQuantity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("ParseQuantity(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuantityArithmetic(t *testing.T) {
	a, b := Q(0.1), Q(0.2)
	if got := a.Add(b); !got.Equal(Q(0.3)) {
		t.Errorf("0.1 + 0.2 = %v, want exactly 0.3", got)
	}
	if !Q(-1).IsNegative() || !Q(0).IsZero() || Q(1).IsNegative() {
		t.Errorf("sign predicates are wrong")
	}
}
