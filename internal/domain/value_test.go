package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanInteger(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"plain number", "42", 42},
		{"dash placeholder", "-", 0},
		{"empty", "", 0},
		{"whitespace only", "   ", 0},
		{"quoted", `"128"`, 128},
		{"thousands separator", "1,234", 1234},
		{"quoted with separator", `"12,345"`, 12345},
		{"garbage", "abc", 0},
		{"float rejected", "1.5", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanInteger(tt.input))
		})
	}
}

func TestCleanDecimal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"decimal comma", "12,5", 12.5},
		{"leading comma", ",8", 0.8},
		{"plain integer", "7", 7},
		{"missing sentinel", "-9999", 0},
		{"empty", "", 0},
		{"negative clamped", "-3,2", 0},
		{"garbage", "n/d", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CleanDecimal(tt.input), 1e-9)
		})
	}
}

func TestCleanTemperature(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"positive", "31,4", 31.4},
		{"negative preserved", "-2,5", -2.5},
		{"leading comma", ",9", 0.9},
		{"missing sentinel", "-9999", 0},
		{"empty", "", 0},
		{"garbage", "frio", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CleanTemperature(tt.input), 1e-9)
		})
	}
}

func TestMeasurementKindString(t *testing.T) {
	assert.Equal(t, "cases", KindCases.String())
	assert.Equal(t, "deaths", KindDeaths.String())
	assert.Equal(t, "avg_temperature", KindAvgTemperature.String())
	assert.Equal(t, "precipitation", KindPrecipitation.String())
	assert.Equal(t, "unknown", MeasurementKind(99).String())
}
