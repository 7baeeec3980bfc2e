package domain

import (
	"regexp"
	"sort"
	"strings"
)

// RegionResult classifies the outcome of region normalization.
type RegionResult int

const (
	// RegionCanonical means the value normalized to a two-letter UF code.
	RegionCanonical RegionResult = iota
	// RegionIgnored marks aggregate/unknown columns whose observations are
	// dropped, never stored under a sentinel key.
	RegionIgnored
	// RegionUnknown means no rule matched and the raw value passed through.
	RegionUnknown
)

// leadingCodeRe matches the two-digit IBGE UF code at the start of a column
// label, e.g. "35 São Paulo" -> "35".
var leadingCodeRe = regexp.MustCompile(`^(\d{2})`)

// regionCodes maps IBGE numeric UF codes to the two-letter code.
var regionCodes = map[string]string{
	"11": "RO", "12": "AC", "13": "AM", "14": "RR", "15": "PA", "16": "AP", "17": "TO",
	"21": "MA", "22": "PI", "23": "CE", "24": "RN", "25": "PB", "26": "PE", "27": "AL",
	"28": "SE", "29": "BA", "31": "MG", "32": "ES", "33": "RJ", "35": "SP", "41": "PR",
	"42": "SC", "43": "RS", "50": "MS", "51": "MT", "52": "GO", "53": "DF",
}

// regionNames maps UF codes to accent-stripped full state names.
var regionNames = map[string]string{
	"RO": "Rondonia", "AC": "Acre", "AM": "Amazonas", "RR": "Roraima",
	"PA": "Para", "AP": "Amapa", "TO": "Tocantins", "MA": "Maranhao",
	"PI": "Piaui", "CE": "Ceara", "RN": "Rio Grande do Norte",
	"PB": "Paraiba", "PE": "Pernambuco", "AL": "Alagoas", "SE": "Sergipe",
	"BA": "Bahia", "MG": "Minas Gerais", "ES": "Espirito Santo",
	"RJ": "Rio de Janeiro", "SP": "Sao Paulo", "PR": "Parana",
	"SC": "Santa Catarina", "RS": "Rio Grande do Sul", "MS": "Mato Grosso do Sul",
	"MT": "Mato Grosso", "GO": "Goias", "DF": "Distrito Federal",
}

// regionDisplayNames maps UF codes to the accented names used by the legacy
// climate intermediate file.
var regionDisplayNames = map[string]string{
	"RO": "Rondônia", "AC": "Acre", "AM": "Amazonas", "RR": "Roraima",
	"PA": "Pará", "AP": "Amapá", "TO": "Tocantins", "MA": "Maranhão",
	"PI": "Piauí", "CE": "Ceará", "RN": "Rio Grande do Norte",
	"PB": "Paraíba", "PE": "Pernambuco", "AL": "Alagoas", "SE": "Sergipe",
	"BA": "Bahia", "MG": "Minas Gerais", "ES": "Espírito Santo",
	"RJ": "Rio de Janeiro", "SP": "São Paulo", "PR": "Paraná",
	"SC": "Santa Catarina", "RS": "Rio Grande do Sul", "MS": "Mato Grosso do Sul",
	"MT": "Mato Grosso", "GO": "Goiás", "DF": "Distrito Federal",
}

// ignoreTokens are column labels that must never become region keys.
var ignoreTokens = map[string]struct{}{
	"IG":                     {},
	"IGNORADO":               {},
	"IGNORADO/EXTERIOR":      {},
	"EXTERIOR":               {},
	"TOTAL":                  {},
	"00":                     {},
	"00 IGNORADO":            {},
	"00 IGNORADO/EXTERIOR":   {},
}

// sortedUFCodes backs RegionCodes.
var sortedUFCodes = func() []string {
	codes := make([]string, 0, len(regionNames))
	for code := range regionNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}()

// nameSearchOrder walks the full names longest first. Several names contain
// a shorter one ("Parana" and "Paraiba" both contain "Para", "Mato Grosso
// do Sul" contains "Mato Grosso"), so the longer name must be tried before
// the shorter one can shadow it. Ties break on UF code for determinism.
var nameSearchOrder = func() []string {
	codes := make([]string, 0, len(regionNames))
	for code := range regionNames {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		ni, nj := regionNames[codes[i]], regionNames[codes[j]]
		if len(ni) != len(nj) {
			return len(ni) > len(nj)
		}
		return codes[i] < codes[j]
	})
	return codes
}()

// accentFolder strips the diacritics that occur in state names so that
// "São Paulo" matches the accent-stripped name table.
var accentFolder = strings.NewReplacer(
	"Á", "A", "Â", "A", "Ã", "A", "À", "A",
	"É", "E", "Ê", "E",
	"Í", "I",
	"Ó", "O", "Ô", "O", "Õ", "O",
	"Ú", "U",
	"Ç", "C",
	"á", "a", "â", "a", "ã", "a", "à", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u",
	"ç", "c",
)

// RegionCodes returns the canonical UF codes in sorted order.
func RegionCodes() []string {
	out := make([]string, len(sortedUFCodes))
	copy(out, sortedUFCodes)
	return out
}

// RegionDisplayName returns the accented full name for a UF code, or the code
// itself when unknown.
func RegionDisplayName(code string) string {
	if name, ok := regionDisplayNames[code]; ok {
		return name
	}
	return code
}

// NormalizeRegion reduces a raw column label to a canonical UF code.
//
// Decision order:
//  1. ignore-list tokens, TOTAL/IGNORADO/EXTERIOR substrings, and labels
//     starting with the "00" placeholder code are ignorable;
//  2. exactly two alphabetic characters are accepted as an upper-cased code;
//  3. a leading two-digit IBGE code is looked up ("00" always ignorable);
//  4. otherwise the accent-folded label is searched for a full state name,
//     longest names first so "Parana" never resolves as "Para";
//  5. otherwise the trimmed label passes through unchanged as RegionUnknown.
//
// The passthrough in step 5 mirrors the legacy pipeline; callers choose
// whether to drop or keep unknown regions.
func NormalizeRegion(raw string) (string, RegionResult) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, `"`, ""))
	upper := strings.ToUpper(s)

	if isIgnorableRegion(upper) {
		return "", RegionIgnored
	}

	if len(s) == 2 && isAlpha(s) {
		return upper, RegionCanonical
	}

	if m := leadingCodeRe.FindStringSubmatch(s); m != nil {
		code := m[1]
		if code == "00" {
			return "", RegionIgnored
		}
		if uf, ok := regionCodes[code]; ok {
			return uf, RegionCanonical
		}
		return code, RegionUnknown
	}

	folded := strings.ToUpper(accentFolder.Replace(s))
	for _, uf := range nameSearchOrder {
		if strings.Contains(folded, strings.ToUpper(regionNames[uf])) {
			return uf, RegionCanonical
		}
	}

	return s, RegionUnknown
}

func isIgnorableRegion(upper string) bool {
	if _, ok := ignoreTokens[upper]; ok {
		return true
	}
	for _, keyword := range []string{"TOTAL", "IGNORADO", "EXTERIOR"} {
		if strings.Contains(upper, keyword) {
			return true
		}
	}
	return strings.HasPrefix(upper, "00")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(s) > 0
}
