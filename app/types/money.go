package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidAmount = errors.New("invalid monetary amount")

// ParseMajorAmount converts a decimal major-unit string ("49.90") into
// integer minor units (4990). Parsing is purely textual so no floating-point
// rounding can leak into the value.
func ParseMajorAmount(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrInvalidAmount
	}

	intPart := value
	fracPart := ""
	if idx := strings.IndexByte(value, '.'); idx >= 0 {
		intPart = value[:idx]
		fracPart = value[idx+1:]
	}
	if intPart == "" || len(fracPart) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}

	major, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || major < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}

	minor := int64(0)
	if fracPart != "" {
		minor, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil || minor < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
		}
		if len(fracPart) == 1 {
			minor *= 10
		}
	}

	return major*100 + minor, nil
}

// FormatMajorAmount renders integer minor units as a major-unit decimal
// string with exactly two fraction digits (4990 -> "49.90").
func FormatMajorAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
