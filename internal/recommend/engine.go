package recommend

import (
	"fmt"
	"time"

	"ramp_capacity/internal/capacity"
	"ramp_capacity/internal/models"
)

const (
	// DefaultDwellThreshold is how far away a departure must be before an aircraft can be moved
	DefaultDwellThreshold = 24 * time.Hour

	// NextEventLayout formats the next scheduled event, e.g. "3/14/2024, 09:30"
	NextEventLayout = "1/2/2006, 15:04"

	// NoEvent is shown when an aircraft has no scheduled departure
	NoEvent = "None Scheduled"

	// NoRecommendation is the suggestion when nowhere to move was found
	NoRecommendation = "No recommendation available"
)

// Input is everything the engine needs for one airport at one instant
type Input struct {
	Now    time.Time
	Parked []models.ParkedAircraft
	// Nearby is the output of geo.Rank for the airport, nearest first
	Nearby []models.RankedAirport
	// FBOs is optional; when set, alternate lots at the same airport are tried first
	FBOs []models.FBOSnapshot
}

// Engine turns parked aircraft into relocation suggestions
type Engine struct {
	policy    capacity.Policy
	threshold time.Duration
	location  *time.Location
}

// NewEngine creates an Engine. A zero threshold falls back to DefaultDwellThreshold.
func NewEngine(policy capacity.Policy, threshold time.Duration, location *time.Location) *Engine {
	if threshold <= 0 {
		threshold = DefaultDwellThreshold
	}
	if location == nil {
		location = time.Local
	}
	return &Engine{policy: policy, threshold: threshold, location: location}
}

// Eligible reports whether an aircraft should be considered for relocation:
// no departure scheduled, departure at least threshold away, or a departure
// time already in the past.
func Eligible(now time.Time, next *time.Time, threshold time.Duration) bool {
	if next == nil {
		return true
	}
	if next.Before(now) {
		return true
	}
	return next.Sub(now) >= threshold
}

// Generate returns one recommendation per eligible aircraft, in input order.
// Alternate-FBO suggestions are reserved as they are made, so two aircraft are
// never pointed at the same remaining space.
func (e *Engine) Generate(in Input) []models.Recommendation {
	fbos := capacity.ByPriority(in.FBOs)
	priorities := make(map[int64]int, len(fbos))
	for _, f := range fbos {
		priorities[f.ID] = f.Priority
	}

	recs := make([]models.Recommendation, 0, len(in.Parked))
	var ledger capacity.Ledger

	for _, ac := range in.Parked {
		if !Eligible(in.Now, ac.NextDeparture, e.threshold) {
			continue
		}

		var suggestion string
		if fbo, ok := e.alternateFBO(ac, fbos, priorities, ledger); ok {
			ledger = ledger.Reserve(fbo.ID, e.policy.Pad(ac.Area))
			suggestion = fmt.Sprintf("Can be relocated to %s", fbo.Name)
		} else if len(in.Nearby) > 0 {
			nearest := in.Nearby[0]
			suggestion = fmt.Sprintf("Closest airport can be relocated to: %s (%.1f km)", nearest.Code, nearest.DistanceKm)
		} else {
			suggestion = NoRecommendation
		}

		recs = append(recs, models.Recommendation{
			TailNumber:     ac.TailNumber,
			Status:         string(models.StatusParked),
			NextEvent:      e.formatEvent(ac.NextDeparture),
			Recommendation: suggestion,
		})
	}
	return recs
}

// alternateFBO finds the first FBO, by ascending priority, that is less
// preferred than the aircraft's current lot and can hold it.
func (e *Engine) alternateFBO(ac models.ParkedAircraft, fbos []models.FBOSnapshot, priorities map[int64]int, ledger capacity.Ledger) (models.FBOSnapshot, bool) {
	if len(fbos) == 0 {
		return models.FBOSnapshot{}, false
	}

	// Aircraft whose lot is unknown may go to any FBO
	current, known := 0, false
	if ac.FBOID != nil {
		current, known = priorities[*ac.FBOID]
	}

	need := e.policy.Pad(ac.Area)
	for _, fbo := range fbos {
		if known && fbo.Priority <= current {
			continue
		}
		if ac.FBOID != nil && fbo.ID == *ac.FBOID {
			continue
		}
		if e.policy.Available(fbo, ledger) >= need {
			return fbo, true
		}
	}
	return models.FBOSnapshot{}, false
}

func (e *Engine) formatEvent(t *time.Time) string {
	if t == nil {
		return NoEvent
	}
	return t.In(e.location).Format(NextEventLayout)
}
