package cadencejson

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const fixedDecimals = 8

// Fix64 is a signed fixed-point number stored as value * 10^8.
type Fix64 int64

// UFix64 is an unsigned fixed-point number stored as value * 10^8.
type UFix64 uint64

func Fix64FromRaw(raw int64) Fix64    { return Fix64(raw) }
func UFix64FromRaw(raw uint64) UFix64 { return UFix64(raw) }

func (f Fix64) Raw() int64   { return int64(f) }
func (f UFix64) Raw() uint64 { return uint64(f) }

func (f Fix64) String() string {
	if f < 0 {
		// -(f+1)+1 keeps math.MinInt64 representable
		return "-" + formatScaled(uint64(-(int64(f)+1))+1)
	}
	return formatScaled(uint64(f))
}

func (f UFix64) String() string {
	return formatScaled(uint64(f))
}

// ParseFix64 accepts any number of fraction digits. Digits past the eighth are truncated.
func ParseFix64(s string) (Fix64, error) {
	neg, raw, err := parseScaled(s, true)
	if err != nil {
		return 0, err
	}
	if neg {
		switch {
		case raw > uint64(math.MaxInt64)+1:
			return 0, errors.Errorf("Fix64 %q out of range", s)
		case raw == uint64(math.MaxInt64)+1:
			return Fix64(math.MinInt64), nil
		}
		return Fix64(-int64(raw)), nil
	}
	if raw > math.MaxInt64 {
		return 0, errors.Errorf("Fix64 %q out of range", s)
	}
	return Fix64(raw), nil
}

func ParseUFix64(s string) (UFix64, error) {
	_, raw, err := parseScaled(s, false)
	if err != nil {
		return 0, err
	}
	return UFix64(raw), nil
}

func formatScaled(u uint64) string {
	digits := strconv.FormatUint(u, 10)
	if len(digits) <= fixedDecimals {
		return "0." + strings.Repeat("0", fixedDecimals-len(digits)) + digits
	}
	split := len(digits) - fixedDecimals
	return digits[:split] + "." + digits[split:]
}

func parseScaled(s string, signed bool) (bool, uint64, error) {
	text := s
	neg := false
	switch {
	case strings.HasPrefix(text, "-"):
		if !signed {
			return false, 0, errors.Errorf("UFix64 %q cannot be negative", s)
		}
		neg = true
		text = text[1:]
	case strings.HasPrefix(text, "+"):
		text = text[1:]
	}

	whole, frac, _ := strings.Cut(text, ".")
	if whole == "" && frac == "" {
		return false, 0, errors.Errorf("invalid fixed-point number %q", s)
	}
	if !allDigits(whole) || !allDigits(frac) {
		return false, 0, errors.Errorf("invalid fixed-point number %q", s)
	}

	if len(frac) > fixedDecimals {
		frac = frac[:fixedDecimals]
	}
	frac += strings.Repeat("0", fixedDecimals-len(frac))

	raw, err := strconv.ParseUint(whole+frac, 10, 64)
	if err != nil {
		return false, 0, errors.Wrapf(err, "invalid fixed-point number %q", s)
	}
	return neg, raw, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
