package dengue

import (
	"sort"

	"github.com/MHBws/dengue-climate-etl/internal/domain"
)

// Store consolidates observations into one record per (year, month, region).
//
// Records are created lazily on the first observation for a key and are never
// deleted; they live for one consolidation run and are exported in full.
// Merging is last-write-wins at (key, field) granularity: an observation
// overwrites exactly the field named by its measurement kind and never resets
// any other field. A cases file and a deaths file for the same key therefore
// both contribute to the same record without clobbering each other.
//
// Store is not safe for concurrent use; the dengue path applies observations
// from a single goroutine.
type Store struct {
	records map[domain.Key]*domain.ConsolidatedRecord
}

// NewStore creates an empty consolidation store.
func NewStore() *Store {
	return &Store{records: make(map[domain.Key]*domain.ConsolidatedRecord)}
}

// Len returns the number of consolidated records.
func (s *Store) Len() int {
	return len(s.records)
}

// Apply merges one observation, cleaning its raw value by the conventions of
// its measurement kind. Duplicate (key, kind) observations leave the last
// value, which makes re-application of an identical observation idempotent.
func (s *Store) Apply(obs domain.RawObservation) {
	rec := s.lookup(obs.Key)
	switch obs.Kind {
	case domain.KindCases:
		rec.Cases = domain.CleanInteger(obs.Value)
	case domain.KindDeaths:
		rec.Deaths = domain.CleanInteger(obs.Value)
	case domain.KindAvgTemperature:
		rec.AvgTemperature = domain.CleanTemperature(obs.Value)
	case domain.KindPrecipitation:
		rec.TotalPrecipitation = domain.CleanDecimal(obs.Value)
	}
}

// ClimateRow is one row of the climate intermediate file, already parsed.
type ClimateRow struct {
	Year           int
	Month          domain.Month
	Region         string
	AvgTemperature float64
	Precipitation  float64
}

// MergeClimate applies temperature and precipitation to the records matching
// each row's key, with the same last-write-wins rule as Apply. A key with no
// case/death data gets a fresh record with zero counts, which is how
// climate-only keys appear in the final export.
func (s *Store) MergeClimate(rows []ClimateRow) int {
	merged := 0
	for _, row := range rows {
		rec := s.lookup(domain.Key{Year: row.Year, Month: row.Month, Region: row.Region})
		rec.AvgTemperature = row.AvgTemperature
		rec.TotalPrecipitation = row.Precipitation
		merged++
	}
	return merged
}

// Snapshot returns every record ordered by year, calendar month, and region.
func (s *Store) Snapshot() []domain.ConsolidatedRecord {
	out := make([]domain.ConsolidatedRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if mi, mj := out[i].Month.Index(), out[j].Month.Index(); mi != mj {
			return mi < mj
		}
		return out[i].Region < out[j].Region
	})
	return out
}

// lookup finds the record for key, creating it with all fields defaulted.
func (s *Store) lookup(key domain.Key) *domain.ConsolidatedRecord {
	if rec, ok := s.records[key]; ok {
		return rec
	}
	rec := &domain.ConsolidatedRecord{Year: key.Year, Month: key.Month, Region: key.Region}
	s.records[key] = rec
	return rec
}
