package domain

import "strings"

// Month is a canonical Portuguese month name. The twelve canonical spellings
// are accent-stripped; any other value is invalid as a key.
type Month string

const (
	Janeiro   Month = "Janeiro"
	Fevereiro Month = "Fevereiro"
	Marco     Month = "Marco"
	Abril     Month = "Abril"
	Maio      Month = "Maio"
	Junho     Month = "Junho"
	Julho     Month = "Julho"
	Agosto    Month = "Agosto"
	Setembro  Month = "Setembro"
	Outubro   Month = "Outubro"
	Novembro  Month = "Novembro"
	Dezembro  Month = "Dezembro"
)

// months lists the canonical names in calendar order.
var months = [12]Month{
	Janeiro, Fevereiro, Marco, Abril, Maio, Junho,
	Julho, Agosto, Setembro, Outubro, Novembro, Dezembro,
}

var monthIndex = func() map[Month]int {
	m := make(map[Month]int, len(months))
	for i, name := range months {
		m[name] = i + 1
	}
	return m
}()

// monthAliases maps accented and mis-encoded spellings to the canonical one.
// "Mar o" is "Março" after a lost cedilla in Latin-1 round trips.
var monthAliases = map[string]Month{
	"Março": Marco,
	"Mar o": Marco,
}

// Months returns the canonical names in calendar order.
func Months() [12]Month {
	return months
}

// MonthFromNumber maps 1..12 to the canonical name. Out-of-range numbers
// return the empty, invalid Month.
func MonthFromNumber(n int) Month {
	if n < 1 || n > 12 {
		return ""
	}
	return months[n-1]
}

// Valid reports whether m is one of the twelve canonical names.
func (m Month) Valid() bool {
	_, ok := monthIndex[m]
	return ok
}

// Index returns the calendar position 1..12, or 0 for an invalid month.
func (m Month) Index() int {
	return monthIndex[m]
}

// NormalizeMonth trims the raw label and maps known accented or mis-encoded
// variants to the canonical spelling. Unmapped input passes through unchanged;
// callers decide whether a non-canonical result is dropped or kept.
func NormalizeMonth(raw string) Month {
	s := strings.TrimSpace(raw)
	if alias, ok := monthAliases[s]; ok {
		return alias
	}
	return Month(s)
}
