// Package capacity holds the area arithmetic shared by the allocation and
// recommendation engines. Every function here is pure.
package capacity

import (
	"sort"

	"ramp_capacity/internal/models"
)

const (
	// DefaultSafetyMargin is the spacing padding added to every aircraft footprint
	DefaultSafetyMargin = 0.10

	// DefaultAreaDivisor scales raw surveyed FBO area down to usable parking area
	DefaultAreaDivisor = 5.0
)

// Policy carries the two tunables of the area arithmetic
type Policy struct {
	SafetyMargin float64 // fraction added to each footprint, 0.10 means +10%
	AreaDivisor  float64 // total area is divided by this before use
}

// DefaultPolicy returns the margins used by the production system
func DefaultPolicy() Policy {
	return Policy{SafetyMargin: DefaultSafetyMargin, AreaDivisor: DefaultAreaDivisor}
}

// Pad returns the footprint including the safety margin.
// This is the only place the margin is applied.
func (p Policy) Pad(area float64) float64 {
	return area * (1 + p.SafetyMargin)
}

// EffectiveArea returns the usable parking area of an FBO
func (p Policy) EffectiveArea(totalArea float64) float64 {
	if p.AreaDivisor <= 0 {
		return totalArea
	}
	return totalArea / p.AreaDivisor
}

// Available returns the area still free in an FBO once the batch reservations are counted
func (p Policy) Available(fbo models.FBOSnapshot, ledger Ledger) float64 {
	return p.EffectiveArea(fbo.TotalArea) - (fbo.OccupiedArea + ledger.Reserved(fbo.ID))
}

// Usage summarizes an FBO snapshot for display
func (p Policy) Usage(fbo models.FBOSnapshot) models.FBOUsage {
	effective := p.EffectiveArea(fbo.TotalArea)
	u := models.FBOUsage{
		ID:            fbo.ID,
		Name:          fbo.Name,
		Priority:      fbo.Priority,
		TotalArea:     fbo.TotalArea,
		EffectiveArea: effective,
		OccupiedArea:  fbo.OccupiedArea,
		AvailableArea: effective - fbo.OccupiedArea,
	}
	if effective > 0 {
		u.PercentOccupied = fbo.OccupiedArea / effective * 100
	}
	return u
}

// ByPriority returns a copy of the snapshots ordered by ascending priority.
// Equal priorities keep their relative order, then fall back to id.
func ByPriority(fbos []models.FBOSnapshot) []models.FBOSnapshot {
	sorted := make([]models.FBOSnapshot, len(fbos))
	copy(sorted, fbos)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// FirstFit walks the FBOs in ascending priority and returns the first one with
// at least need ft² available. need must already be padded.
func (p Policy) FirstFit(fbos []models.FBOSnapshot, ledger Ledger, need float64) (models.FBOSnapshot, bool) {
	for _, fbo := range ByPriority(fbos) {
		if p.Available(fbo, ledger) >= need {
			return fbo, true
		}
	}
	return models.FBOSnapshot{}, false
}

// AllFBOs names the aggregate row of an airport overview
const AllFBOs = "All FBOs"

// Overview returns an aggregate row for the whole airport followed by the
// usage of every FBO in priority order. An airport without FBOs yields only
// the aggregate row, all zero.
func (p Policy) Overview(fbos []models.FBOSnapshot) []models.FBOUsage {
	rows := make([]models.FBOUsage, 1, len(fbos)+1)
	total := models.FBOUsage{Name: AllFBOs}
	for _, fbo := range ByPriority(fbos) {
		u := p.Usage(fbo)
		rows = append(rows, u)
		total.TotalArea += u.TotalArea
		total.EffectiveArea += u.EffectiveArea
		total.OccupiedArea += u.OccupiedArea
		total.AvailableArea += u.AvailableArea
	}
	if total.EffectiveArea > 0 {
		total.PercentOccupied = total.OccupiedArea / total.EffectiveArea * 100
	}
	rows[0] = total
	return rows
}
