package model

// IncidentRecord is the structured record of the ongoing incident, merged
// turn-by-turn from free-text user input. The key set is fixed; values are
// free text. Merges are additive-only: a merge may extend a value but never
// drop one.
type IncidentRecord struct {
	Location  string `json:"location"`
	Weather   string `json:"weather"`
	Condition string `json:"condition"`
	Other     string `json:"other"`
}

// NewIncidentRecord returns a record with the placeholder values every
// session starts from.
func NewIncidentRecord() IncidentRecord {
	return IncidentRecord{
		Location:  "Location Data: ",
		Weather:   "Weather Data: ",
		Condition: "Rescuee Condition: ",
		Other:     "Other Relevant Data: ",
	}
}

// Merged applies the additive-only policy: each field of the update replaces
// the current value unless the update left it empty, in which case the
// current value survives. The receiver is not modified.
func (r IncidentRecord) Merged(update IncidentRecord) IncidentRecord {
	merged := r
	if update.Location != "" {
		merged.Location = update.Location
	}
	if update.Weather != "" {
		merged.Weather = update.Weather
	}
	if update.Condition != "" {
		merged.Condition = update.Condition
	}
	if update.Other != "" {
		merged.Other = update.Other
	}
	return merged
}

// GeoPosition is a pair of coordinates in floating point degrees.
type GeoPosition struct {
	Lat float64
	Lon float64
}

// EnvironmentCache holds environment facts derived once from the rescuee
// position. It is filled lazily and never refreshed within a session.
type EnvironmentCache struct {
	WeatherSummary         string
	NearestHospitalSummary string
}

// Empty reports whether the cache has not been filled yet.
func (c EnvironmentCache) Empty() bool {
	return c.WeatherSummary == "" && c.NearestHospitalSummary == ""
}

// Weather is the current-condition snapshot returned by the weather service.
type Weather struct {
	Temperature   float64
	WindSpeed     float64
	ConditionCode int
}

// Hospital is a single entry returned by the hospital directory.
type Hospital struct {
	Name     string
	Position GeoPosition
}
