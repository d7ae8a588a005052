package models

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Money is a currency-precise amount held in minor units (two decimal
// places). It is stored as a bigint column and travels over the wire as a
// decimal string, so large totals never lose precision in JSON.
type Money int64

var moneyPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ParseMoney parses a non-negative decimal string with up to two fractional
// digits ("150000", "10.5", "10.50").
func ParseMoney(s string) (Money, error) {
	if !moneyPattern.MatchString(s) {
		return 0, fmt.Errorf("invalid money amount: %q", s)
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid money amount: %q", s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid money amount: %q", s)
	}
	// The regex caps neither digit count nor magnitude; converting to minor
	// units must not wrap around.
	if units > (math.MaxInt64-cents)/100 {
		return 0, fmt.Errorf("money amount out of range: %q", s)
	}
	return Money(units*100 + cents), nil
}

// String formats the amount with exactly two decimal places.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MulQty multiplies the amount by a line quantity.
func (m Money) MulQty(qty int) Money {
	return m * Money(qty)
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return m + other
}

// MarshalJSON renders the amount as a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// UnmarshalJSON accepts a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("money must be a decimal string: %s", data)
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
