// Package schema locates the data region inside a semi-structured DATASUS
// export: a preamble of unknown length, an optional header row whose phrasing
// varies release to release, the data rows, and a trailing footer.
package schema

import (
	"errors"
	"strings"
)

// ErrNoDataStart is returned when no line starts with the first-month label.
// The file yields zero observations; callers log and continue the batch.
var ErrNoDataStart = errors.New("schema: no data start marker found")

// Field names a canonical column role recognized in header rows.
type Field string

// FieldMonth is the month-of-notification axis, always the first column.
const FieldMonth Field = "month"

// headerRule maps one header phrasing to its canonical field. Rules are
// evaluated in order; earlier, more specific phrasings win.
type headerRule struct {
	pattern string
	field   Field
}

// headerRules lists the header phrasings seen across legacy releases.
var headerRules = []headerRule{
	{"Mês notificação", FieldMonth},
	{"Mes notificacao", FieldMonth},
	{"Mês", FieldMonth},
	{"Mes", FieldMonth},
}

// dataStartMarkers are the spellings of the first data row's month label.
var dataStartMarkers = []string{`"Janeiro"`, "Janeiro"}

// terminators end the data region: the aggregate row and footer notes.
var terminators = []string{"Total", "Fonte", "Notas:"}

// syntheticHeaderLabel replaces the first data cell when the header row was
// stripped upstream and a header must be derived from the data itself.
const syntheticHeaderLabel = "Mês notificação"

// Section is the located data region of one file.
type Section struct {
	// Header is the raw header line. Synthetic when HeaderFound is false.
	Header string
	// HeaderFound reports whether an explicit header row was present.
	HeaderFound bool
	// Rows are the raw data lines, header excluded, footer trimmed.
	Rows []string
}

// MatchHeader reports the canonical field a header line announces, applying
// the ordered rule list. Returns false when no rule matches.
func MatchHeader(line string) (Field, bool) {
	for _, rule := range headerRules {
		if strings.Contains(line, rule.pattern) {
			return rule.field, true
		}
	}
	return "", false
}

// Locate scans lines for the header row and the data region.
//
// The header is the last keyword-bearing line seen before the data start;
// scanning continues past header candidates until a line begins with the
// first-month label. Data rows run from there to a terminator keyword or end
// of input; blank lines are skipped, not treated as terminators. When data is
// found without a header, a synthetic header is derived from the first data
// row by relabeling its month cell.
func Locate(lines []string) (Section, error) {
	headerLine := -1
	dataStart := -1

	for i, line := range lines {
		if _, ok := MatchHeader(line); ok && dataStart < 0 {
			headerLine = i
			continue
		}
		if startsDataRegion(strings.TrimSpace(line)) {
			dataStart = i
			break
		}
	}

	if dataStart < 0 {
		return Section{}, ErrNoDataStart
	}

	sec := Section{HeaderFound: headerLine >= 0}
	if sec.HeaderFound {
		sec.Header = strings.TrimSpace(lines[headerLine])
	} else {
		sec.Header = syntheticHeader(strings.TrimSpace(lines[dataStart]))
	}

	for _, line := range lines[dataStart:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isTerminator(trimmed) {
			break
		}
		sec.Rows = append(sec.Rows, trimmed)
	}

	return sec, nil
}

func startsDataRegion(trimmed string) bool {
	for _, marker := range dataStartMarkers {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}

func isTerminator(line string) bool {
	for _, keyword := range terminators {
		if strings.Contains(line, keyword) {
			return true
		}
	}
	return false
}

// syntheticHeader relabels the first data row's month cell with the generic
// month header, assuming the true header was stripped upstream.
func syntheticHeader(firstDataLine string) string {
	h := strings.Replace(firstDataLine, `"Janeiro"`, `"`+syntheticHeaderLabel+`"`, 1)
	if h == firstDataLine {
		h = strings.Replace(firstDataLine, "Janeiro", syntheticHeaderLabel, 1)
	}
	return h
}
