package climate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stationFile builds an INMET-shaped station file: 8 metadata lines, the
// column header, then the given data rows.
func stationFile(uf string, rows ...string) string {
	var b strings.Builder
	b.WriteString("REGIAO:;SE\n")
	b.WriteString("UF:;" + uf + "\n")
	b.WriteString("ESTACAO:;SAO PAULO - MIRANTE\n")
	b.WriteString("CODIGO (WMO):;A701\n")
	b.WriteString("LATITUDE:;-23,49\n")
	b.WriteString("LONGITUDE:;-46,62\n")
	b.WriteString("ALTITUDE:;786\n")
	b.WriteString("DATA DE FUNDACAO:;25/07/06\n")
	b.WriteString("DATA (YYYY-MM-DD);PRECIPITAÇÃO TOTAL, HORÁRIO (mm);TEMPERATURA MÁXIMA NA HORA ANT. (AUT) (°C);TEMPERATURA MÍNIMA NA HORA ANT. (AUT) (°C)\n")
	for _, row := range rows {
		b.WriteString(row + "\n")
	}
	return b.String()
}

func writeStation(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadStation(t *testing.T) {
	t.Run("parses region and readings", func(t *testing.T) {
		path := writeStation(t, "station.csv", stationFile("SP",
			"2020-01-01;10,5;30,2;20,0",
			"2020-01-02;0;28,4;19,6",
		))

		st, err := ReadStation(path)
		require.NoError(t, err)
		assert.Equal(t, "SP", st.Region)
		require.Len(t, st.Days, 2)

		assert.Equal(t, "1/1", st.Days[0].Label)
		assert.Equal(t, 10.5, st.Days[0].Precipitation)
		assert.Equal(t, 30.2, st.Days[0].TempMax)
		assert.Equal(t, 20.0, st.Days[0].TempMin)
		assert.True(t, st.Days[0].HasTempMax)
		assert.True(t, st.Days[0].HasTempMin)
	})

	t.Run("missing temperature cells", func(t *testing.T) {
		path := writeStation(t, "station.csv", stationFile("RJ",
			"2020-02-01;5,0;;",
		))

		st, err := ReadStation(path)
		require.NoError(t, err)
		require.Len(t, st.Days, 1)
		assert.False(t, st.Days[0].HasTempMax)
		assert.False(t, st.Days[0].HasTempMin)
	})

	t.Run("sentinel precipitation clamped", func(t *testing.T) {
		path := writeStation(t, "station.csv", stationFile("SP",
			"2020-01-03;-9999;25,0;15,0",
		))

		st, err := ReadStation(path)
		require.NoError(t, err)
		require.Len(t, st.Days, 1)
		assert.Zero(t, st.Days[0].Precipitation)
	})

	t.Run("unknown uf falls back to SP", func(t *testing.T) {
		path := writeStation(t, "station.csv", stationFile("ZZZ",
			"2020-01-01;1,0;;",
		))

		st, err := ReadStation(path)
		require.NoError(t, err)
		assert.Equal(t, "SP", st.Region)
	})

	t.Run("no uf row falls back to SP", func(t *testing.T) {
		content := "linha qualquer\n\n\n\n\n\n\n\n" +
			"DATA;PRECIPITACAO TOTAL, HORARIO (mm)\n" +
			"01/01/2020;3,0\n"
		path := writeStation(t, "station.csv", content)

		st, err := ReadStation(path)
		require.NoError(t, err)
		assert.Equal(t, "SP", st.Region)
		require.Len(t, st.Days, 1)
		assert.Equal(t, "1/1", st.Days[0].Label)
	})

	t.Run("no data rows", func(t *testing.T) {
		path := writeStation(t, "station.csv", "UF:;SP\n")
		_, err := ReadStation(path)
		require.Error(t, err)
	})

	t.Run("no precipitation column", func(t *testing.T) {
		content := strings.Repeat("meta;dado\n", 8) +
			"DATA;UMIDADE\n" +
			"2020-01-01;80\n"
		path := writeStation(t, "station.csv", content)
		_, err := ReadStation(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "precipitation")
	})
}

func TestResolveColumns(t *testing.T) {
	t.Run("mojibake header variant", func(t *testing.T) {
		header := []string{
			"Data",
			"PRECIPITA  O TOTAL, HOR RIO (mm)",
			"TEMPERATURA M XIMA NA HORA ANT. (AUT) ( C)",
			"TEMPERATURA M NIMA NA HORA ANT. (AUT) ( C)",
		}
		cols, err := resolveColumns(header)
		require.NoError(t, err)
		assert.Equal(t, 0, cols.date)
		assert.Equal(t, 1, cols.precip)
		assert.Equal(t, 2, cols.tempMax)
		assert.Equal(t, 3, cols.tempMin)
	})

	t.Run("temperature optional", func(t *testing.T) {
		cols, err := resolveColumns([]string{"DATA", "PRECIPITACAO TOTAL (mm)"})
		require.NoError(t, err)
		assert.Equal(t, -1, cols.tempMax)
		assert.Equal(t, -1, cols.tempMin)
	})

	t.Run("missing date fails", func(t *testing.T) {
		_, err := resolveColumns([]string{"PRECIPITACAO"})
		require.Error(t, err)
	})
}

func TestDayMonthLabel(t *testing.T) {
	tests := []struct {
		name     string
		cell     string
		expected string
	}{
		{"iso date", "2020-03-15", "15/3"},
		{"iso with time", "2020-03-15 12:00", "15/3"},
		{"slash ddmmyyyy", "15/03/2020", "15/3"},
		{"slash yyyymmdd", "2020/03/15", "15/3"},
		{"quoted", `"2020-01-02"`, "2/1"},
		{"garbage kept raw", "sem data", "sem data"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, dayMonthLabel(tt.cell))
		})
	}
}
