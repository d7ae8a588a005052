package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want Money
	}{
		{"0", 0},
		{"1", 100},
		{"10.5", 1050},
		{"10.50", 1050},
		{"150000", 15000000},
		{"0.01", 1},
		{"99.99", 9999},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseMoney_Invalid(t *testing.T) {
	for _, in := range []string{"", "-1", "1.234", "10,50", "abc", "1.2.3", ".5", "1.", " 1"} {
		_, err := ParseMoney(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseMoney_Overflow(t *testing.T) {
	// math.MaxInt64 minor units is 92233720368547758.07.
	got, err := ParseMoney("92233720368547758.07")
	require.NoError(t, err)
	assert.Equal(t, Money(9223372036854775807), got)

	for _, in := range []string{"92233720368547758.08", "92233720368547759", "99999999999999999999"} {
		_, err := ParseMoney(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "0.00", Money(0).String())
	assert.Equal(t, "10.50", Money(1050).String())
	assert.Equal(t, "150000.00", Money(15000000).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "-3.25", Money(-325).String())
}

func TestMoney_Arithmetic(t *testing.T) {
	price := Money(1050)
	assert.Equal(t, Money(3150), price.MulQty(3))
	assert.Equal(t, Money(2050), price.Add(Money(1000)))
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(Money(1050))
	require.NoError(t, err)
	assert.Equal(t, `"10.50"`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"99.99"`), &m))
	assert.Equal(t, Money(9999), m)

	assert.Error(t, json.Unmarshal([]byte(`10.5`), &m), "bare numbers are rejected")
	assert.Error(t, json.Unmarshal([]byte(`"-1.00"`), &m))
}
