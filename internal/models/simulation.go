package models

import "time"

// Outcome classifies the result of placing one aircraft
type Outcome string

const (
	OutcomeAssigned   Outcome = "assigned"
	OutcomeNoCapacity Outcome = "no_capacity"
	OutcomeError      Outcome = "error"
)

// Reasons attached to unassignable aircraft
const (
	ReasonNoSpace         = "None Available"
	ReasonFootprintFailed = "Error Getting Plane Info"
	ReasonCapacityFailed  = "Error Processing"
)

// PlaneRequest is one candidate aircraft in a simulation batch
type PlaneRequest struct {
	ID            string `json:"id"`
	RequestedTime string `json:"requested_time,omitempty"` // HH:MM, local to the batch date
}

// SimulationRequest is a batch of candidates for one airport
type SimulationRequest struct {
	RunID       string         `json:"run_id,omitempty"` // Generated when empty
	AirportCode string         `json:"airport_code"`
	Aircraft    []PlaneRequest `json:"aircraft"`
}

// Assignment is the decision for a single aircraft
type Assignment struct {
	Outcome     Outcome   `json:"outcome"`
	FBOID       *int64    `json:"fbo_id"`
	FBOName     string    `json:"fbo_name,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Assigned reports whether the aircraft was placed in an FBO
func (a Assignment) Assigned() bool {
	return a.Outcome == OutcomeAssigned
}

// SimulationResult maps aircraft id to its assignment
type SimulationResult map[string]Assignment
