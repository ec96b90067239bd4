package harvest

import "fmt"

// Selection is the result of one rotor tick.
type Selection struct {
	Index      int
	CycleStart bool
	CycleEnd   bool
}

// Rotor advances through the batch list one index per tick, wrapping at the
// end. It is constructed from an explicit resume index rather than shared
// mutable state, so a restarted process continues where the persisted
// rotation pointer left off.
type Rotor struct {
	next int
	size int
}

// NewRotor creates a rotor over batchCount batches resuming at resumeIndex.
// A resume index outside [0, batchCount) means the batch list changed since
// the pointer was persisted; the rotor restarts at 0.
func NewRotor(batchCount, resumeIndex int) (*Rotor, error) {
	if batchCount < 1 {
		return nil, fmt.Errorf("rotor requires at least one batch")
	}
	if resumeIndex < 0 || resumeIndex >= batchCount {
		resumeIndex = 0
	}
	return &Rotor{next: resumeIndex, size: batchCount}, nil
}

// Tick selects the current batch and advances the rotor. Index 0 marks a
// cycle start and the last index marks a cycle end; with a single batch one
// tick is both.
func (r *Rotor) Tick() Selection {
	selected := r.next
	r.next = (r.next + 1) % r.size
	return Selection{
		Index:      selected,
		CycleStart: selected == 0,
		CycleEnd:   selected == r.size-1,
	}
}

// NextIndex returns the index the next Tick will select, for persistence.
func (r *Rotor) NextIndex() int {
	return r.next
}

// Size returns the number of batches in the rotation.
func (r *Rotor) Size() int {
	return r.size
}
