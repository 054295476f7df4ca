package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount_Validation(t *testing.T) {
	valid := []string{"0", "1", "123456789", "0.000000001", "-5.25", "+3.5", "10.000000000000000001"}
	for _, raw := range valid {
		_, err := ParseAmount(raw, TokenDecimals)
		assert.NoError(t, err, "raw=%q", raw)
	}

	invalid := []string{"", ".", "1.", ".5", "1.2.3", "1,000", "abc", "1e9", "--1", " 1"}
	for _, raw := range invalid {
		_, err := ParseAmount(raw, TokenDecimals)
		assert.ErrorIs(t, err, ErrInvalidAmount, "raw=%q", raw)
	}
}

func TestGreaterAndSub_ExactAtPrecisionBoundary(t *testing.T) {
	// Values near the 9-digit fraction boundary must not drift the way
	// binary floats would.
	cases := []struct {
		a, b    string
		greater bool
		geq     bool
		diff    string
	}{
		{"0.000000002", "0.000000001", true, true, "0.000000001"},
		{"0.000000001", "0.000000001", false, true, "0"},
		{"0.000000001", "0.000000002", false, false, "-0.000000001"},
		{"1000000", "999999.999999999", true, true, "0.000000001"},
		{"0.3", "0.1", true, true, "0.2"},
		{"10", "2.5", true, true, "7.5"},
	}
	for _, tc := range cases {
		gt, err := Greater(tc.a, tc.b)
		require.NoError(t, err)
		assert.Equal(t, tc.greater, gt, "Greater(%s, %s)", tc.a, tc.b)

		geq, err := GreaterOrEqual(tc.a, tc.b)
		require.NoError(t, err)
		assert.Equal(t, tc.geq, geq, "GreaterOrEqual(%s, %s)", tc.a, tc.b)

		diff, err := Sub(tc.a, tc.b)
		require.NoError(t, err)
		assert.Equal(t, tc.diff, diff, "Sub(%s, %s)", tc.a, tc.b)
	}
}

func TestGreater_MalformedInput(t *testing.T) {
	_, err := Greater("1.2.3", "1")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Sub("1", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAmount_SubRequiresEqualPrecision(t *testing.T) {
	a, err := ParseAmount("10", PointDecimals)
	require.NoError(t, err)
	b, err := ParseAmount("3", TokenDecimals)
	require.NoError(t, err)

	_, err = a.Sub(b)
	assert.ErrorIs(t, err, ErrPrecisionMismatch)

	c, err := ParseAmount("3", PointDecimals)
	require.NoError(t, err)
	diff, err := a.Sub(c)
	require.NoError(t, err)
	assert.Equal(t, "7.000000000", diff.String())
}

func TestAmountFromRaw(t *testing.T) {
	a, err := AmountFromRaw("2500000000000", PointDecimals)
	require.NoError(t, err)
	assert.Equal(t, "2500.000000000", a.String())
	assert.Equal(t, "2500000000000", a.Raw())

	tok, err := AmountFromRaw("1000000000000000000", TokenDecimals)
	require.NoError(t, err)
	assert.Equal(t, "1.000000000000000000", tok.String())

	_, err = AmountFromRaw("12x", PointDecimals)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAmount_Format(t *testing.T) {
	a, err := AmountFromRaw("1234567890000000000", PointDecimals)
	require.NoError(t, err)
	assert.Equal(t, "1,234,567,890.000000000", a.Format(true))
	assert.Equal(t, "1234567890.000000000", a.Format(false))

	// Ungrouped output re-parses to the same value.
	again, err := ParseAmount(a.Format(false), PointDecimals)
	require.NoError(t, err)
	assert.True(t, again.Decimal().Equal(a.Decimal()))

	// Stripping separators from grouped output recovers the value too.
	stripped := strings.ReplaceAll(a.Format(true), ",", "")
	again, err = ParseAmount(stripped, PointDecimals)
	require.NoError(t, err)
	assert.True(t, again.Decimal().Equal(a.Decimal()))

	neg, err := ParseAmount("-1234.5", PointDecimals)
	require.NoError(t, err)
	assert.Equal(t, "-1,234.500000000", neg.Format(true))
}

func TestTruncateMiddle(t *testing.T) {
	addr := "0x52f9a87b2e3c14d09a14cc03d7b152f9a87b2e3c"

	assert.Equal(t, "short", TruncateMiddle("short", 16))
	assert.Equal(t, addr, TruncateMiddle(addr, len(addr)))

	out := TruncateMiddle(addr, 16)
	assert.True(t, strings.HasPrefix(addr, out[:8]))
	assert.True(t, strings.HasSuffix(addr, out[len(out)-8:]))
	assert.Contains(t, out, "…")
	assert.Less(t, len([]rune(out)), len(addr))
}
