package money

import "testing"

func TestFromFloat_RoundHalfUp(t *testing.T) {
	cases := []struct {
		in   float64
		want Cents
	}{
		{500.00, 50000},
		{123.45, 12345},
		{0.125, 13},  // exact binary half rounds up
		{0.375, 38},  // exact binary half rounds up
		{-0.125, -12}, // half up rounds toward positive infinity
		{100.0, 10000},
		{-1.25, -125},
	}
	for _, tc := range cases {
		if got := FromFloat(tc.in); got != tc.want {
			t.Errorf("FromFloat(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		in   Cents
		want string
	}{
		{90000, "900.00"},
		{5, "0.05"},
		{0, "0.00"},
		{-1250, "-12.50"},
		{100050, "1000.50"},
	}
	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("Cents(%d).String() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMulAndToFloat(t *testing.T) {
	if got := Cents(50000).Mul(2); got != 100000 {
		t.Errorf("expected 100000, got %d", got)
	}
	if got := Cents(90000).ToFloat(); got != 900.0 {
		t.Errorf("expected 900.0, got %v", got)
	}
}
