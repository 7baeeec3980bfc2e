package dengue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MHBws/dengue-climate-etl/internal/domain"
)

func obs(year int, month domain.Month, region string, kind domain.MeasurementKind, value string) domain.RawObservation {
	return domain.RawObservation{
		Key:   domain.Key{Year: year, Month: month, Region: region},
		Kind:  kind,
		Value: value,
	}
}

func TestStoreApply(t *testing.T) {
	t.Run("lazy creation with defaults", func(t *testing.T) {
		s := NewStore()
		s.Apply(obs(2020, domain.Janeiro, "RO", domain.KindCases, "5"))

		recs := s.Snapshot()
		require.Len(t, recs, 1)
		assert.Equal(t, 2020, recs[0].Year)
		assert.Equal(t, domain.Janeiro, recs[0].Month)
		assert.Equal(t, "RO", recs[0].Region)
		assert.Equal(t, 5, recs[0].Cases)
		assert.Equal(t, 0, recs[0].Deaths)
		assert.Equal(t, 0.0, recs[0].AvgTemperature)
		assert.Equal(t, 0.0, recs[0].TotalPrecipitation)
	})

	t.Run("field isolation across kinds", func(t *testing.T) {
		s := NewStore()
		s.Apply(obs(2020, domain.Janeiro, "RO", domain.KindCases, "5"))
		s.Apply(obs(2020, domain.Janeiro, "RO", domain.KindDeaths, "2"))
		s.Apply(obs(2020, domain.Janeiro, "RO", domain.KindAvgTemperature, "27,3"))
		s.Apply(obs(2020, domain.Janeiro, "RO", domain.KindPrecipitation, "110,5"))

		recs := s.Snapshot()
		require.Len(t, recs, 1)
		assert.Equal(t, 5, recs[0].Cases)
		assert.Equal(t, 2, recs[0].Deaths)
		assert.InDelta(t, 27.3, recs[0].AvgTemperature, 1e-9)
		assert.InDelta(t, 110.5, recs[0].TotalPrecipitation, 1e-9)

		// A later cases overwrite must not reset the other fields.
		s.Apply(obs(2020, domain.Janeiro, "RO", domain.KindCases, "8"))
		recs = s.Snapshot()
		assert.Equal(t, 8, recs[0].Cases)
		assert.Equal(t, 2, recs[0].Deaths)
		assert.InDelta(t, 27.3, recs[0].AvgTemperature, 1e-9)
	})

	t.Run("idempotent re-application", func(t *testing.T) {
		s1 := NewStore()
		s1.Apply(obs(2021, domain.Maio, "SP", domain.KindCases, "100"))

		s2 := NewStore()
		s2.Apply(obs(2021, domain.Maio, "SP", domain.KindCases, "100"))
		s2.Apply(obs(2021, domain.Maio, "SP", domain.KindCases, "100"))

		assert.Equal(t, s1.Snapshot(), s2.Snapshot())
	})

	t.Run("last write wins within a kind", func(t *testing.T) {
		s := NewStore()
		s.Apply(obs(2020, domain.Junho, "BA", domain.KindDeaths, "3"))
		s.Apply(obs(2020, domain.Junho, "BA", domain.KindDeaths, "7"))

		recs := s.Snapshot()
		require.Len(t, recs, 1)
		assert.Equal(t, 7, recs[0].Deaths)
	})

	t.Run("dash value reads as zero", func(t *testing.T) {
		s := NewStore()
		s.Apply(obs(2020, domain.Janeiro, "RJ", domain.KindCases, "-"))

		recs := s.Snapshot()
		require.Len(t, recs, 1)
		assert.Equal(t, 0, recs[0].Cases)
	})
}

func TestStoreMergeClimate(t *testing.T) {
	t.Run("existing key keeps counts", func(t *testing.T) {
		s := NewStore()
		s.Apply(obs(2020, domain.Janeiro, "RO", domain.KindCases, "5"))

		merged := s.MergeClimate([]ClimateRow{
			{Year: 2020, Month: domain.Janeiro, Region: "RO", AvgTemperature: 26.4, Precipitation: 200.1},
		})
		assert.Equal(t, 1, merged)

		recs := s.Snapshot()
		require.Len(t, recs, 1)
		assert.Equal(t, 5, recs[0].Cases)
		assert.InDelta(t, 26.4, recs[0].AvgTemperature, 1e-9)
		assert.InDelta(t, 200.1, recs[0].TotalPrecipitation, 1e-9)
	})

	t.Run("climate-only key creates record with zero counts", func(t *testing.T) {
		s := NewStore()
		merged := s.MergeClimate([]ClimateRow{
			{Year: 2019, Month: domain.Julho, Region: "SC", AvgTemperature: 14.2, Precipitation: 88.0},
		})
		assert.Equal(t, 1, merged)

		recs := s.Snapshot()
		require.Len(t, recs, 1)
		assert.Equal(t, 0, recs[0].Cases)
		assert.Equal(t, 0, recs[0].Deaths)
		assert.InDelta(t, 14.2, recs[0].AvgTemperature, 1e-9)
	})
}

func TestStoreSnapshotOrder(t *testing.T) {
	s := NewStore()
	s.Apply(obs(2021, domain.Janeiro, "AC", domain.KindCases, "1"))
	s.Apply(obs(2020, domain.Dezembro, "SP", domain.KindCases, "2"))
	s.Apply(obs(2020, domain.Janeiro, "SP", domain.KindCases, "3"))
	s.Apply(obs(2020, domain.Janeiro, "BA", domain.KindCases, "4"))
	s.Apply(obs(2020, domain.Marco, "BA", domain.KindCases, "5"))

	recs := s.Snapshot()
	require.Len(t, recs, 5)

	type key struct {
		year   int
		month  domain.Month
		region string
	}
	got := make([]key, len(recs))
	for i, r := range recs {
		got[i] = key{r.Year, r.Month, r.Region}
	}
	assert.Equal(t, []key{
		{2020, domain.Janeiro, "BA"},
		{2020, domain.Janeiro, "SP"},
		{2020, domain.Marco, "BA"},
		{2020, domain.Dezembro, "SP"},
		{2021, domain.Janeiro, "AC"},
	}, got)
}
