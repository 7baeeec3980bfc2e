package domain

import (
	"strconv"
	"strings"
)

// missingSentinel is the INMET marker for a missing sensor reading.
const missingSentinel = "-9999"

// CleanInteger converts a locale-formatted count cell to an int.
// "-", empty, and whitespace-only cells are unreported and read as 0; quotes
// and thousands separators are stripped; any conversion failure yields 0.
func CleanInteger(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return 0
	}
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// CleanDecimal converts a decimal-comma cell to a non-negative float64.
// Used for precipitation, where negative readings are sensor noise and are
// clamped to 0. Empty cells and the -9999 sentinel read as 0.
func CleanDecimal(raw string) float64 {
	v, ok := parseDecimalComma(raw)
	if !ok || v < 0 {
		return 0
	}
	return v
}

// CleanTemperature converts a decimal-comma cell to a float64, preserving
// negative values. Empty cells and the -9999 sentinel read as 0.
func CleanTemperature(raw string) float64 {
	v, ok := parseDecimalComma(raw)
	if !ok {
		return 0
	}
	return v
}

// parseDecimalComma handles the locale convention: a leading comma means
// "0." plus the fractional digits, any other comma is the decimal separator.
func parseDecimalComma(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, `"`, ""))
	if s == "" || s == missingSentinel {
		return 0, false
	}
	if strings.HasPrefix(s, ",") {
		s = "0." + s[1:]
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
