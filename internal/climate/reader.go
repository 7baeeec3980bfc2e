// Package climate aggregates per-station daily weather observations into
// per-region monthly summaries, running its read, aggregate, and write
// phases as concurrent waves.
package climate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MHBws/dengue-climate-etl/internal/adapter/csvio"
	"github.com/MHBws/dengue-climate-etl/internal/domain"
)

// metadataLines is the fixed INMET preamble length: key/value rows holding
// station metadata before the column header.
const metadataLines = 8

// fallbackRegion is used when the preamble carries no recognizable UF.
// Legacy behavior, kept: the station is attributed to SP rather than dropped.
const fallbackRegion = "SP"

// DayReading is one day of one station's observations.
type DayReading struct {
	// Label is the "day/month" form of the date cell, or the raw cell when
	// the date did not parse. Unparseable labels resolve to the sentinel
	// month during aggregation and are discarded after grouping.
	Label         string
	Precipitation float64
	TempMax       float64
	TempMin       float64
	HasTempMax    bool
	HasTempMin    bool
}

// StationData is one parsed station file: its region and daily readings.
type StationData struct {
	Path   string
	Region string
	Days   []DayReading
}

// columnRole names a column the station reader needs to find.
type columnRole int

const (
	colDate columnRole = iota
	colPrecipitation
	colTempMax
	colTempMin
)

// columnRule maps header phrasings to a role. Rules are evaluated in order
// per column; the listed spellings cover UTF-8, accent-stripped, and
// mojibake variants of the INMET export headers.
type columnRule struct {
	role     columnRole
	patterns []string
}

var columnRules = []columnRule{
	{colDate, []string{
		"DATA (YYYY-MM-DD)",
		"DATA",
		"Data",
		"data",
	}},
	{colPrecipitation, []string{
		"PRECIPITAÇÃO TOTAL, HORÁRIO (mm)",
		"PRECIPITA  O TOTAL, HOR RIO (mm)",
		"PRECIPITACAO TOTAL, HORARIO (mm)",
		"PRECIPITAÇÃO TOTAL (mm)",
		"PRECIPITACAO TOTAL (mm)",
		"PRECIPITAÇÃO",
		"PRECIPITACAO",
	}},
	{colTempMax, []string{
		"TEMPERATURA MÁXIMA NA HORA ANT. (AUT) (°C)",
		"TEMPERATURA M XIMA NA HORA ANT. (AUT) ( C)",
		"TEMPERATURA MAXIMA NA HORA ANT. (AUT) (C)",
		"TEMP MAX",
	}},
	{colTempMin, []string{
		"TEMPERATURA MÍNIMA NA HORA ANT. (AUT) (°C)",
		"TEMPERATURA M NIMA NA HORA ANT. (AUT) ( C)",
		"TEMPERATURA MINIMA NA HORA ANT. (AUT) (C)",
		"TEMP MIN",
	}},
}

// columnSet holds the resolved column indexes. Temperature columns are
// optional; date and precipitation are required.
type columnSet struct {
	date    int
	precip  int
	tempMax int
	tempMin int
}

// resolveColumns applies the ordered rules to a header row. Missing date or
// precipitation columns make the file unusable.
func resolveColumns(header []string) (columnSet, error) {
	cols := columnSet{date: -1, precip: -1, tempMax: -1, tempMin: -1}
	for _, rule := range columnRules {
		for _, pattern := range rule.patterns {
			idx := indexOfColumn(header, pattern)
			if idx < 0 {
				continue
			}
			switch rule.role {
			case colDate:
				cols.date = idx
			case colPrecipitation:
				cols.precip = idx
			case colTempMax:
				cols.tempMax = idx
			case colTempMin:
				cols.tempMin = idx
			}
			break
		}
	}
	if cols.date < 0 {
		return cols, fmt.Errorf("no date column in header")
	}
	if cols.precip < 0 {
		return cols, fmt.Errorf("no precipitation column in header")
	}
	return cols, nil
}

func indexOfColumn(header []string, pattern string) int {
	for i, cell := range header {
		if strings.TrimSpace(cell) == pattern {
			return i
		}
	}
	return -1
}

// ReadStation parses one station file: the metadata preamble for the UF,
// then one reading per data row.
func ReadStation(path string) (*StationData, error) {
	lines, err := csvio.ReadLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) <= metadataLines {
		return nil, fmt.Errorf("station file %s: no data rows", path)
	}

	st := &StationData{
		Path:   path,
		Region: regionFromMetadata(lines[:metadataLines]),
	}

	header, err := csvio.ParseRecord(lines[metadataLines])
	if err != nil {
		return nil, fmt.Errorf("station file %s: %w", path, err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, fmt.Errorf("station file %s: %w", path, err)
	}

	for _, line := range lines[metadataLines+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := csvio.ParseRecord(line)
		if err != nil || cols.date >= len(fields) || cols.precip >= len(fields) {
			continue
		}

		day := DayReading{
			Label:         dayMonthLabel(fields[cols.date]),
			Precipitation: domain.CleanDecimal(fields[cols.precip]),
		}
		if cols.tempMax >= 0 && cols.tempMax < len(fields) && strings.TrimSpace(fields[cols.tempMax]) != "" {
			day.TempMax = domain.CleanTemperature(fields[cols.tempMax])
			day.HasTempMax = true
		}
		if cols.tempMin >= 0 && cols.tempMin < len(fields) && strings.TrimSpace(fields[cols.tempMin]) != "" {
			day.TempMin = domain.CleanTemperature(fields[cols.tempMin])
			day.HasTempMin = true
		}
		st.Days = append(st.Days, day)
	}

	return st, nil
}

// regionFromMetadata scans the key/value preamble for the "UF:" entry and
// normalizes it. Anything unrecognized falls back to SP.
func regionFromMetadata(preamble []string) string {
	for _, line := range preamble {
		fields, err := csvio.ParseRecord(line)
		if err != nil || len(fields) < 2 {
			continue
		}
		if strings.TrimSpace(fields[0]) != "UF:" {
			continue
		}
		region, result := domain.NormalizeRegion(fields[1])
		if result == domain.RegionCanonical {
			return region
		}
		return fallbackRegion
	}
	return fallbackRegion
}

// dayMonthLabel reduces a date cell to "day/month". Recognized forms are
// DD/MM/YYYY, YYYY/MM/DD, and ISO YYYY-MM-DD with an optional time suffix.
// Unrecognized cells are returned raw; they become the sentinel month later.
func dayMonthLabel(cell string) string {
	s := strings.TrimSpace(strings.ReplaceAll(cell, `"`, ""))
	if s == "" {
		return s
	}

	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		if len(parts) >= 3 {
			var day, month string
			if len(parts[0]) == 4 {
				month, day = parts[1], parts[2]
			} else {
				day, month = parts[0], parts[1]
			}
			if d, err := strconv.Atoi(day); err == nil {
				if m, err := strconv.Atoi(month); err == nil {
					return fmt.Sprintf("%d/%d", d, m)
				}
			}
		}
		return s
	}

	if strings.Contains(s, "-") {
		datePart := strings.Fields(s)[0]
		parts := strings.Split(datePart, "-")
		if len(parts) == 3 {
			if d, err := strconv.Atoi(parts[2]); err == nil {
				if m, err := strconv.Atoi(parts[1]); err == nil {
					return fmt.Sprintf("%d/%d", d, m)
				}
			}
		}
	}

	return s
}
