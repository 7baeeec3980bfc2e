package csvio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MHBws/dengue-climate-etl/internal/domain"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		expected string
	}{
		{"plain ascii", []byte("Janeiro;5"), "Janeiro;5"},
		{"valid utf-8", []byte("Mês notificação"), "Mês notificação"},
		{"latin-1 bytes", []byte("M\xeas notifica\xe7\xe3o"), "Mês notificação"},
		{"windows-1252 euro", []byte("valor \x80"), "valor €"},
		{"undefined byte becomes replacement rune", []byte("a\x81b"), "a�b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DecodeText(tt.raw))
		})
	}
}

func TestReadFileText_MissingFile(t *testing.T) {
	_, err := ReadFileText(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"unix endings", "a\nb\n", []string{"a", "b"}},
		{"windows endings", "a\r\nb\r\n", []string{"a", "b"}},
		{"no trailing newline", "a\nb", []string{"a", "b"}},
		{"blank middle line kept", "a\n\nb\n", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitLines(tt.text))
		})
	}
}

func TestParseRecord(t *testing.T) {
	t.Run("quoted fields with separators", func(t *testing.T) {
		fields, err := ParseRecord(`"Mês notificação";"11 RO";"Total; geral"`)
		require.NoError(t, err)
		assert.Equal(t, []string{"Mês notificação", "11 RO", "Total; geral"}, fields)
	})

	t.Run("unquoted", func(t *testing.T) {
		fields, err := ParseRecord("Janeiro;5;-")
		require.NoError(t, err)
		assert.Equal(t, []string{"Janeiro", "5", "-"}, fields)
	})
}

func TestConsolidatedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consolidado.csv")

	records := []domain.ConsolidatedRecord{
		{Year: 2020, Month: domain.Janeiro, Region: "RO", Cases: 5, Deaths: 0, AvgTemperature: 26.75, TotalPrecipitation: 144.2},
		{Year: 2020, Month: domain.Fevereiro, Region: "SP", Cases: 12, Deaths: 1},
		{Year: 2021, Month: domain.Marco, Region: "RJ", AvgTemperature: -1.5},
	}

	require.NoError(t, WriteConsolidated(path, records))

	got, err := ReadConsolidated(path)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestWriteConsolidated_HeaderAndFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	records := []domain.ConsolidatedRecord{
		{Year: 2020, Month: domain.Janeiro, Region: "SP", AvgTemperature: 25.5, TotalPrecipitation: 100},
	}
	require.NoError(t, WriteConsolidated(path, records))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := SplitLines(string(raw))
	require.Len(t, lines, 2)
	assert.Equal(t, "Year;Month;Region;Cases;Deaths;AvgTemperature;TotalPrecipitation", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "25.50;100.00"), lines[1])
}

func TestReadConsolidated_SkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.csv")
	content := "Year;Month;Region;Cases;Deaths;AvgTemperature;TotalPrecipitation\n" +
		"2020;Janeiro;SP;1;0;0.00;0.00\n" +
		"not-a-year;Janeiro;SP;1;0;0.00;0.00\n" +
		"2021;Fevereiro;RJ\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := ReadConsolidated(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2020, got[0].Year)
}
