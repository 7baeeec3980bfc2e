// Package dengue ingests DATASUS case/death exports and consolidates their
// observations into one record set keyed by (year, month, UF).
package dengue

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/MHBws/dengue-climate-etl/internal/adapter/csvio"
	"github.com/MHBws/dengue-climate-etl/internal/domain"
	"github.com/MHBws/dengue-climate-etl/internal/schema"
)

var (
	// caseFileRe matches a bare four-digit year stem, e.g. "2020" from 2020.csv.
	caseFileRe = regexp.MustCompile(`^\d{4}$`)
	// yearRe finds the first run of four digits anywhere in a filename.
	yearRe = regexp.MustCompile(`(\d{4})`)
)

// deathPhrases and casePhrases drive the content-sniffing fallback when the
// filename matches neither naming contract.
var (
	deathPhrases   = []string{"Óbito pelo agravo notificado", "Obito pelo agravo notificado"}
	casePhrases    = []string{"Casos Prováveis", "Casos Provaveis"}
	evolutionHints = []string{"Evolução:", "Evolucao:"}
)

// YearExtractionError reports a filename carrying no four-digit year.
// Fatal for that file only; the batch continues.
type YearExtractionError struct {
	Filename string
}

func (e *YearExtractionError) Error() string {
	return fmt.Sprintf("no four-digit year in filename %q", e.Filename)
}

// ExtractYear pulls the year from a dengue filename. Death files carry a
// trailing marker letter ("2022d.csv") which is stripped before matching; any
// other pattern falls back to the first four-digit run in the name.
func ExtractYear(filename string) (int, error) {
	stem := strings.TrimSuffix(strings.TrimSuffix(filename, ".csv"), ".CSV")
	if strings.HasSuffix(strings.ToLower(stem), "d") {
		stem = stem[:len(stem)-1]
	}
	if caseFileRe.MatchString(stem) {
		return strconv.Atoi(stem)
	}
	if m := yearRe.FindStringSubmatch(filename); m != nil {
		return strconv.Atoi(m[1])
	}
	return 0, &YearExtractionError{Filename: filename}
}

// DetectKind decides whether a file carries case or death counts.
// The filename contract is tried first: a bare year stem means cases, a year
// plus trailing "d" means deaths. Otherwise the raw content is sniffed for
// the phrasing each report type carries.
func DetectKind(path string) (domain.MeasurementKind, error) {
	stem := strings.ToLower(filepath.Base(path))
	stem = strings.TrimSuffix(stem, ".csv")

	if strings.HasSuffix(stem, "d") && caseFileRe.MatchString(strings.TrimSuffix(stem, "d")) {
		return domain.KindDeaths, nil
	}
	if caseFileRe.MatchString(stem) {
		return domain.KindCases, nil
	}

	text, err := csvio.ReadFileText(path)
	if err != nil {
		return 0, fmt.Errorf("sniff %s: %w", path, err)
	}
	if containsAny(text, deathPhrases) {
		return domain.KindDeaths, nil
	}
	if containsAny(text, casePhrases) {
		return domain.KindCases, nil
	}
	if containsAny(text, evolutionHints) {
		return domain.KindDeaths, nil
	}
	return domain.KindCases, nil
}

// Parser turns one located file into raw observations.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a Parser.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse reads one dengue export and returns its observations.
//
// The measurement kind and year are file-level, from the filename (with
// content sniffing as fallback for the kind). Each data row's month cell must
// match a canonical month verbatim; non-matching rows are noise and dropped.
// Every non-month column is a candidate region: ignorable columns are skipped
// entirely, unknown ones dropped with a log line, and each surviving cell
// becomes one observation.
//
// Returns schema.ErrNoDataStart when the file has no recognizable data
// region.
func (p *Parser) Parse(path string) ([]domain.RawObservation, error) {
	kind, err := DetectKind(path)
	if err != nil {
		return nil, err
	}
	year, err := ExtractYear(filepath.Base(path))
	if err != nil {
		return nil, err
	}

	lines, err := csvio.ReadLines(path)
	if err != nil {
		return nil, err
	}

	sec, err := schema.Locate(lines)
	if err != nil {
		return nil, err
	}

	header, err := csvio.ParseRecord(sec.Header)
	if err != nil {
		return nil, fmt.Errorf("parse header of %s: %w", path, err)
	}

	columns := p.classifyColumns(path, header)

	var observations []domain.RawObservation
	for _, line := range sec.Rows {
		fields, err := csvio.ParseRecord(line)
		if err != nil {
			p.logger.Warn("dropping malformed row", "file", path, "error", err)
			continue
		}

		month := domain.Month(cleanCell(fields[0]))
		if !month.Valid() {
			// Verbatim month policy: a row whose first cell is not one of
			// the twelve canonical spellings is noise, not a key to fix.
			continue
		}

		for _, col := range columns {
			var value string
			if col.index < len(fields) {
				value = fields[col.index]
			}
			observations = append(observations, domain.RawObservation{
				Key:   domain.Key{Year: year, Month: month, Region: col.region},
				Kind:  kind,
				Value: value,
			})
		}
	}

	return observations, nil
}

// regionColumn is one accepted data column: its position and canonical UF.
type regionColumn struct {
	index  int
	region string
}

// classifyColumns normalizes every non-month header cell. The first column is
// always the month axis and is excluded from classification.
func (p *Parser) classifyColumns(path string, header []string) []regionColumn {
	columns := make([]regionColumn, 0, len(header))
	for i, label := range header {
		if i == 0 {
			continue
		}
		region, result := domain.NormalizeRegion(label)
		switch result {
		case domain.RegionIgnored:
			p.logger.Debug("ignoring column", "file", path, "column", label)
		case domain.RegionUnknown:
			p.logger.Warn("dropping unknown region column", "file", path, "column", label)
		default:
			columns = append(columns, regionColumn{index: i, region: region})
		}
	}
	return columns
}

func cleanCell(cell string) string {
	return strings.TrimSpace(strings.ReplaceAll(cell, `"`, ""))
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
