// Package csvio reads and writes the semicolon-delimited text format shared
// by every file in the pipeline, handling the mixed encodings of legacy
// DATASUS and INMET exports.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/MHBws/dengue-climate-etl/internal/domain"
)

// Separator is the field delimiter of every input and output file.
const Separator = ';'

// ReadFileText reads path and decodes it as UTF-8, falling back to
// Windows-1252 for legacy exports.
func ReadFileText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeText(raw), nil
}

// DecodeText decodes raw bytes as UTF-8, or as Windows-1252 when they are not
// valid UTF-8. Windows-1252 is what the legacy exporters produced; it maps
// every byte to a rune (undefined ones to U+FFFD), so decoding cannot fail.
func DecodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, _ := charmap.Windows1252.NewDecoder().Bytes(raw)
	return string(decoded)
}

// ReadLines reads and decodes path, splitting it into lines without trailing
// line terminators.
func ReadLines(path string) ([]string, error) {
	text, err := ReadFileText(path)
	if err != nil {
		return nil, err
	}
	return SplitLines(text), nil
}

// SplitLines splits text on \n, dropping \r remnants and a trailing empty line.
func SplitLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// ParseRecord splits one semicolon-delimited line into fields, honoring
// quoted fields with embedded separators.
func ParseRecord(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = Separator
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	fields, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	return fields, nil
}

// consolidatedHeader is the column order of the consolidated export.
var consolidatedHeader = []string{
	"Year", "Month", "Region", "Cases", "Deaths", "AvgTemperature", "TotalPrecipitation",
}

// WriteConsolidated writes the full consolidated snapshot to path as
// semicolon-delimited text, one row per record, in the order given.
func WriteConsolidated(path string, records []domain.ConsolidatedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = Separator

	if err := w.Write(consolidatedHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.Year),
			string(rec.Month),
			rec.Region,
			strconv.Itoa(rec.Cases),
			strconv.Itoa(rec.Deaths),
			strconv.FormatFloat(rec.AvgTemperature, 'f', 2, 64),
			strconv.FormatFloat(rec.TotalPrecipitation, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// ReadConsolidated reads a file written by WriteConsolidated back into
// records. Used by the round-trip tests and by downstream consumers of the
// exported file.
func ReadConsolidated(path string) ([]domain.ConsolidatedRecord, error) {
	text, err := ReadFileText(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = Separator
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]domain.ConsolidatedRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < len(consolidatedHeader) {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			continue
		}
		temp, _ := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
		precip, _ := strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
		records = append(records, domain.ConsolidatedRecord{
			Year:               year,
			Month:              domain.Month(strings.TrimSpace(row[1])),
			Region:             strings.TrimSpace(row[2]),
			Cases:              domain.CleanInteger(row[3]),
			Deaths:             domain.CleanInteger(row[4]),
			AvgTemperature:     temp,
			TotalPrecipitation: precip,
		})
	}
	return records, nil
}
