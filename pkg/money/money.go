package money

import (
	"fmt"
	"math"
)

// Cents is a monetary amount in integer cents (2-decimal fixed point).
// All arithmetic in the engine happens in cents; floats only appear at the
// JSON boundary and are converted through FromFloat/ToFloat so that a single
// rounding rule applies everywhere.
type Cents int64

// FromFloat converts a decimal amount (e.g. 500.00) to cents using
// round half up. This is the only place a float becomes money.
func FromFloat(amount float64) Cents {
	return Cents(math.Floor(amount*100 + 0.5))
}

// ToFloat converts cents back to a decimal amount for JSON responses.
func (c Cents) ToFloat() float64 {
	return float64(c) / 100.0
}

// String renders the amount with exactly two decimals, e.g. "900.00".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Mul multiplies the amount by an integer quantity.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}
