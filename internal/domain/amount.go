package domain

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Fractional precision of the two value spaces the backend uses.
const (
	// PointDecimals is the precision of ledger point records.
	PointDecimals int32 = 9
	// TokenDecimals is the precision of main-chain token values.
	TokenDecimals int32 = 18
)

var (
	// ErrInvalidAmount indicates a decimal string that is not an optional
	// sign followed by digits and at most one decimal point.
	ErrInvalidAmount = errors.New("invalid amount format")
	// ErrPrecisionMismatch indicates arithmetic between amounts of
	// different fractional precision.
	ErrPrecisionMismatch = errors.New("amount precision mismatch")
)

var amountPattern = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

// Amount is an exact fixed-point token or currency quantity.
// All comparison and subtraction is decimal-exact; values never pass
// through binary floating point because they back balance and fee checks.
type Amount struct {
	value    decimal.Decimal
	decimals int32
}

// ParseAmount parses a human-entered decimal string at the given precision.
func ParseAmount(raw string, decimals int32) (Amount, error) {
	if !amountPattern.MatchString(raw) {
		return Amount{}, ErrInvalidAmount
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{value: v, decimals: decimals}, nil
}

// AmountFromRaw converts a raw integer magnitude returned by the backend
// (e.g. "2500000000000" at 9 decimals) into an Amount of "2500".
func AmountFromRaw(raw string, decimals int32) (Amount, error) {
	if !amountPattern.MatchString(raw) {
		return Amount{}, ErrInvalidAmount
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{value: v.Shift(-decimals), decimals: decimals}, nil
}

// Decimals reports the fractional precision the amount was constructed with.
func (a Amount) Decimals() int32 { return a.decimals }

// Decimal returns the underlying exact value.
func (a Amount) Decimal() decimal.Decimal { return a.value }

// Raw returns the integer magnitude the backend expects for this amount.
func (a Amount) Raw() string {
	return a.value.Shift(a.decimals).Truncate(0).String()
}

// String renders the amount with its full fixed fractional digits.
func (a Amount) String() string {
	return a.value.StringFixed(a.decimals)
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.value.IsZero() }

// Sub subtracts b from a. Both operands must share the same precision.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.decimals != b.decimals {
		return Amount{}, ErrPrecisionMismatch
	}
	return Amount{value: a.value.Sub(b.value), decimals: a.decimals}, nil
}

// Format renders the amount for display with fixed fractional digits and,
// when group is true, thousands separators in the integer part.
// It never fails.
func (a Amount) Format(group bool) string {
	fixed := a.value.StringFixed(a.decimals)
	if !group {
		return fixed
	}
	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}
	intPart := fixed
	fracPart := ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, fracPart = fixed[:i], fixed[i:]
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	b.WriteString(fracPart)
	return b.String()
}

// Greater reports whether decimal string a is strictly greater than b.
func Greater(a, b string) (bool, error) {
	da, db, err := parsePair(a, b)
	if err != nil {
		return false, err
	}
	return da.GreaterThan(db), nil
}

// GreaterOrEqual reports whether decimal string a is greater than or equal to b.
func GreaterOrEqual(a, b string) (bool, error) {
	da, db, err := parsePair(a, b)
	if err != nil {
		return false, err
	}
	return da.GreaterThanOrEqual(db), nil
}

// Sub subtracts decimal string b from a exactly. The result may be negative.
func Sub(a, b string) (string, error) {
	da, db, err := parsePair(a, b)
	if err != nil {
		return "", err
	}
	return da.Sub(db).String(), nil
}

func parsePair(a, b string) (decimal.Decimal, decimal.Decimal, error) {
	if !amountPattern.MatchString(a) || !amountPattern.MatchString(b) {
		return decimal.Decimal{}, decimal.Decimal{}, ErrInvalidAmount
	}
	da, err := decimal.NewFromString(a)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, ErrInvalidAmount
	}
	db, err := decimal.NewFromString(b)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, ErrInvalidAmount
	}
	return da, db, nil
}

// TruncateMiddle elides the middle of long identifiers (addresses) for
// display, keeping visible/2 characters at each end. Strings no longer
// than visible are returned unchanged.
func TruncateMiddle(s string, visible int) string {
	runes := []rune(s)
	if len(runes) <= visible || visible <= 0 {
		return s
	}
	half := visible / 2
	return string(runes[:half]) + "…" + string(runes[len(runes)-half:])
}
