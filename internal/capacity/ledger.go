package capacity

// Ledger records the area reserved per FBO during one simulation batch.
// The zero value is an empty ledger. Ledgers are never shared between batches.
type Ledger struct {
	reserved map[int64]float64
}

// Reserved returns the area reserved in an FBO so far
func (l Ledger) Reserved(fboID int64) float64 {
	return l.reserved[fboID]
}

// Reserve returns a new ledger with area added to the FBO. The receiver is not modified.
func (l Ledger) Reserve(fboID int64, area float64) Ledger {
	next := make(map[int64]float64, len(l.reserved)+1)
	for id, a := range l.reserved {
		next[id] = a
	}
	next[fboID] += area
	return Ledger{reserved: next}
}

// Total returns the area reserved across every FBO
func (l Ledger) Total() float64 {
	var total float64
	for _, a := range l.reserved {
		total += a
	}
	return total
}

// Len returns the number of FBOs with a reservation
func (l Ledger) Len() int {
	return len(l.reserved)
}
