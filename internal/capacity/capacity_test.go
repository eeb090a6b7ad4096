package capacity

import (
	"testing"

	"ramp_capacity/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPad(t *testing.T) {
	p := DefaultPolicy()
	assert.InDelta(t, 2200.0, p.Pad(2000), 1e-9)
	assert.InDelta(t, 0.0, p.Pad(0), 1e-9)
}

func TestEffectiveArea(t *testing.T) {
	tests := []struct {
		name     string
		divisor  float64
		total    float64
		expected float64
	}{
		{name: "default divisor", divisor: 5, total: 10000, expected: 2000},
		{name: "one to one", divisor: 1, total: 10000, expected: 10000},
		{name: "zero divisor is ignored", divisor: 0, total: 10000, expected: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Policy{SafetyMargin: 0.1, AreaDivisor: tt.divisor}
			assert.InDelta(t, tt.expected, p.EffectiveArea(tt.total), 1e-9)
		})
	}
}

func TestAvailable_CountsLedger(t *testing.T) {
	p := Policy{SafetyMargin: 0.1, AreaDivisor: 1}
	fbo := models.FBOSnapshot{ID: 7, TotalArea: 10000, OccupiedArea: 3000}

	var ledger Ledger
	assert.InDelta(t, 7000.0, p.Available(fbo, ledger), 1e-9)

	ledger = ledger.Reserve(7, 2500)
	assert.InDelta(t, 4500.0, p.Available(fbo, ledger), 1e-9)

	// Reservations on other FBOs do not leak
	ledger = ledger.Reserve(8, 9999)
	assert.InDelta(t, 4500.0, p.Available(fbo, ledger), 1e-9)
}

func TestLedger_ReserveDoesNotMutate(t *testing.T) {
	var empty Ledger
	first := empty.Reserve(1, 100)
	second := first.Reserve(1, 50)

	assert.Equal(t, 0, empty.Len())
	assert.InDelta(t, 100.0, first.Reserved(1), 1e-9)
	assert.InDelta(t, 150.0, second.Reserved(1), 1e-9)
	assert.InDelta(t, 150.0, second.Total(), 1e-9)
}

func TestFirstFit_PriorityOrder(t *testing.T) {
	p := Policy{SafetyMargin: 0.1, AreaDivisor: 1}
	fbos := []models.FBOSnapshot{
		{ID: 2, Name: "Second", Priority: 2, TotalArea: 5000},
		{ID: 1, Name: "First", Priority: 1, TotalArea: 5000},
	}

	fbo, ok := p.FirstFit(fbos, Ledger{}, 1000)
	require.True(t, ok)
	assert.Equal(t, int64(1), fbo.ID)
}

func TestFirstFit_FallsThroughWhenFull(t *testing.T) {
	p := Policy{SafetyMargin: 0.1, AreaDivisor: 1}
	fbos := []models.FBOSnapshot{
		{ID: 1, Priority: 1, TotalArea: 10000, OccupiedArea: 9000},
		{ID: 2, Priority: 2, TotalArea: 10000, OccupiedArea: 1000},
	}

	fbo, ok := p.FirstFit(fbos, Ledger{}, p.Pad(2000))
	require.True(t, ok)
	assert.Equal(t, int64(2), fbo.ID)

	_, ok = p.FirstFit(fbos, Ledger{}, 20000)
	assert.False(t, ok)
}

func TestFirstFit_ExactFit(t *testing.T) {
	p := Policy{SafetyMargin: 0, AreaDivisor: 1}
	fbos := []models.FBOSnapshot{{ID: 1, Priority: 1, TotalArea: 1000}}

	_, ok := p.FirstFit(fbos, Ledger{}, 1000)
	assert.True(t, ok)
}

func TestByPriority_DoesNotReorderInput(t *testing.T) {
	in := []models.FBOSnapshot{{ID: 3, Priority: 3}, {ID: 1, Priority: 1}, {ID: 2, Priority: 2}}
	out := ByPriority(in)

	assert.Equal(t, int64(3), in[0].ID)
	assert.Equal(t, []int64{1, 2, 3}, []int64{out[0].ID, out[1].ID, out[2].ID})
}

func TestUsage(t *testing.T) {
	p := DefaultPolicy()
	u := p.Usage(models.FBOSnapshot{ID: 1, Name: "Signature", TotalArea: 10000, OccupiedArea: 500})

	assert.InDelta(t, 2000.0, u.EffectiveArea, 1e-9)
	assert.InDelta(t, 1500.0, u.AvailableArea, 1e-9)
	assert.InDelta(t, 25.0, u.PercentOccupied, 1e-9)
}

func TestOverview(t *testing.T) {
	p := Policy{SafetyMargin: 0.1, AreaDivisor: 1}
	rows := p.Overview([]models.FBOSnapshot{
		{ID: 2, Name: "Atlantic", Priority: 2, TotalArea: 1000, OccupiedArea: 500},
		{ID: 1, Name: "Signature", Priority: 1, TotalArea: 3000, OccupiedArea: 1500},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "Signature", rows[1].Name)
	assert.Equal(t, "Atlantic", rows[2].Name)

	all := rows[0]
	assert.Equal(t, AllFBOs, all.Name)
	assert.InDelta(t, 4000.0, all.EffectiveArea, 1e-9)
	assert.InDelta(t, 2000.0, all.AvailableArea, 1e-9)
	assert.InDelta(t, 50.0, all.PercentOccupied, 1e-9)
}

func TestOverview_NoFBOs(t *testing.T) {
	rows := DefaultPolicy().Overview(nil)

	require.Len(t, rows, 1)
	assert.Equal(t, AllFBOs, rows[0].Name)
	assert.Zero(t, rows[0].PercentOccupied)
}
