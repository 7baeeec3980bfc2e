// Package domain models the vocabulary shared by the dengue and climate
// ingestion paths: canonical months, canonical UF region codes, measurement
// kinds, and the consolidated record keyed by (year, month, region).
//
// # Data Sources
//
// Dengue case and death counts come from DATASUS/SINAN tabular exports. Each
// release is a semicolon-separated file with a free-form preamble, a header
// row naming one column per federative unit, and one data row per month of
// notification. Header phrasing and preamble length drift release to release.
//
// Climate observations come from INMET automatic weather stations: one file
// per station per year, an eight-line key/value preamble (station metadata,
// including "UF:"), then one row per day with precipitation and max/min
// temperature columns whose names vary with export encoding.
//
// # Label Conventions
//
// Months are the twelve Portuguese names, accent-stripped ("Marco", not
// "Março"). Legacy exports carry the accented spelling or the mojibake form
// "Mar o" produced by a lost cedilla; both normalize to the canonical name.
//
// Regions normalize to the 27 two-letter UF codes. Source labels appear as
// bare codes ("SP"), IBGE-numbered columns ("35 São Paulo" or "35 SP"), or
// full state names with or without diacritics. Aggregate and placeholder
// columns ("Total", "Ignorado/Exterior", anything starting with code "00")
// are ignorable: observations under them are dropped, never stored.
//
// # Value Conventions
//
//	"-", "" and whitespace-only cells are unreported counts, read as 0.
//	"-9999" is the INMET sentinel for a missing sensor reading, read as 0.
//	Decimal comma: "12,5" means 12.5; a leading comma means "0.": ",5" = 0.5.
//	Precipitation is clamped at zero; temperatures may be negative.
package domain
