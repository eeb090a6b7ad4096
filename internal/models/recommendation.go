package models

// Recommendation is a relocation suggestion for a parked aircraft
type Recommendation struct {
	TailNumber     string `json:"tailNumber"`
	Status         string `json:"status"`
	NextEvent      string `json:"nextEvent"`
	Recommendation string `json:"recString"`
}
