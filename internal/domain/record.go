package domain

// MeasurementKind identifies which consolidated field an observation updates.
type MeasurementKind int

const (
	KindCases MeasurementKind = iota
	KindDeaths
	KindTemperatureMax
	KindTemperatureMin
	KindAvgTemperature
	KindPrecipitation
)

// String returns the snake_case name used in logs and Kafka headers.
func (k MeasurementKind) String() string {
	switch k {
	case KindCases:
		return "cases"
	case KindDeaths:
		return "deaths"
	case KindTemperatureMax:
		return "temperature_max"
	case KindTemperatureMin:
		return "temperature_min"
	case KindAvgTemperature:
		return "avg_temperature"
	case KindPrecipitation:
		return "precipitation"
	default:
		return "unknown"
	}
}

// Key is the immutable identity of a consolidated record.
type Key struct {
	Year   int
	Month  Month
	Region string
}

// RawObservation is one parsed cell from a source file: a key, the kind of
// measurement the whole file carries, and the raw cell text. Values stay raw
// until applied so the store owns all cleaning in one place.
type RawObservation struct {
	Key   Key
	Kind  MeasurementKind
	Value string
}

// ConsolidatedRecord is one (year, month, region) row of the merged output.
// The identity fields never change after creation; measurement fields are
// overwritten independently, last write wins per field.
type ConsolidatedRecord struct {
	Year               int     `json:"year"`
	Month              Month   `json:"month"`
	Region             string  `json:"region"`
	Cases              int     `json:"cases"`
	Deaths             int     `json:"deaths"`
	AvgTemperature     float64 `json:"avg_temperature"`
	TotalPrecipitation float64 `json:"total_precipitation"`
}

// Key returns the record's identity key.
func (r ConsolidatedRecord) Key() Key {
	return Key{Year: r.Year, Month: r.Month, Region: r.Region}
}
