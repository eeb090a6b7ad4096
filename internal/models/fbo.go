package models

// FBO is a parking lot operated by a fixed-base operator at an airport
type FBO struct {
	ID          int64   `json:"id"`
	AirportCode string  `json:"airport_code"`
	Name        string  `json:"name"`
	TotalArea   float64 `json:"total_area"` // ft², raw surveyed area
	Priority    int     `json:"priority"`   // Lower is tried first
}

// FBOSnapshot is the canonical capacity record of one FBO at one instant.
// OccupiedArea already carries the safety margin for every contributing aircraft.
type FBOSnapshot struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Priority     int     `json:"priority"`
	TotalArea    float64 `json:"total_area"`
	OccupiedArea float64 `json:"occupied_area"`
}

// FBOUsage is the capacity overview of a single FBO
type FBOUsage struct {
	ID              int64   `json:"id,omitempty"`
	Name            string  `json:"name"`
	Priority        int     `json:"priority,omitempty"`
	TotalArea       float64 `json:"total_area"`
	EffectiveArea   float64 `json:"effective_area"`
	OccupiedArea    float64 `json:"occupied_area"`
	AvailableArea   float64 `json:"available_area"`
	PercentOccupied float64 `json:"percent_occupied"`
}
