package hindsight

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a display value: an amount in a reporting currency. The analytics
// core works in float64; Money exists at the presentation boundary so that
// amounts render with the right symbol, grouping and fraction digits.
type Money struct {
	value decimal.Decimal
	cur   string
}

// M builds a Money from a float amount and an ISO currency code.
func M(value float64, currency string) Money {
	return Money{value: decimal.NewFromFloat(value), cur: currency}
}

// currency returns the money's currency, never nil.
func (m Money) currency() money.Currency {
	return *money.New(0, m.cur).Currency()
}

// String formats the amount with the currency's own formatter.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.Round(0).IntPart())
}

// SignedString is String with an explicit sign, and "-" for zero.
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() string  { return m.cur }
func (m Money) IsZero() bool      { return m.value.IsZero() }
func (m Money) IsNegative() bool  { return m.value.IsNegative() }
func (m Money) AsFloat() float64  { return m.value.InexactFloat64() }
func (m Money) Neg() Money        { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: m.cur} }

// Percent is a display percentage.
type Percent float64

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

// SignedString is String with an explicit sign, and "-" for zero.
func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", float64(p))
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// Quantity is a display share count, trimmed of trailing zeros.
type Quantity float64

func (q Quantity) String() string {
	return decimal.NewFromFloat(float64(q)).Round(6).String()
}
