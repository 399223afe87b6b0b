package money

import (
	"github.com/shopspring/decimal"
)

// Cents is a currency amount in integer minor units. All ledger arithmetic happens on
// this type so that floating-point drift can never unbalance an entry.
type Cents int64

// integralEpsilon is how far an input may sit from an exact cent before it is flagged
// as a data-quality problem. Rounding still applies either way.
var integralEpsilon = decimal.NewFromFloat(0.0001)

var hundred = decimal.NewFromInt(100)

// FromDecimal converts a decimal currency amount to minor units, rounding to the
// nearest cent. The second return value reports whether the input was already an exact
// cent amount (within a small epsilon); callers log non-exact inputs as warnings but
// never reject them.
func FromDecimal(d decimal.Decimal) (Cents, bool) {
	scaled := d.Mul(hundred)
	rounded := scaled.Round(0)
	exact := scaled.Sub(rounded).Abs().LessThanOrEqual(integralEpsilon.Mul(hundred))
	return Cents(rounded.IntPart()), exact
}

// ToDecimal converts minor units back to a decimal amount with two fractional digits.
func (c Cents) ToDecimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Abs returns the absolute value.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// Neg returns the negated value.
func (c Cents) Neg() Cents { return -c }

// String formats the amount as a plain decimal string, e.g. 12345 -> "123.45".
func (c Cents) String() string {
	return c.ToDecimal().StringFixed(2)
}
