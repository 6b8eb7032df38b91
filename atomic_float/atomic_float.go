package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 encapsulates a float64 for non-locking atomic operations. The runner
// accumulates statistics into these while the server reads them, without sharing a lock.
// The value is held as its IEEE-754 bits so that sync/atomic can operate on it.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

// NewAtomicFloat64 encapsulates a float64 for atomic operations.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	af := &AtomicFloat64{}
	af.bits.Store(math.Float64bits(val))
	return af
}

// Atomically read the float64.
func (af *AtomicFloat64) AtomicRead() (value float64) {
	return math.Float64frombits(af.bits.Load())
}

// Atomically add to the float64, once.
// If the value changes between the read and the swap the add is dropped and succeeded is
// false, so the caller can decide whether to retry, recalculate, or drop the update.
func (af *AtomicFloat64) AtomicAdd(addend float64) (newVal float64, succeeded bool) {
	old := af.bits.Load()
	newVal = math.Float64frombits(old) + addend
	succeeded = af.bits.CompareAndSwap(old, math.Float64bits(newVal))
	return
}

// Add retries AtomicAdd until it succeeds and returns the new value. Use it for counters
// with several writers, where no update may be lost.
func (af *AtomicFloat64) Add(addend float64) (newVal float64) {
	for {
		var ok bool
		if newVal, ok = af.AtomicAdd(addend); ok {
			return
		}
	}
}

// AtomicSet sets the float64, returns true on success.
func (af *AtomicFloat64) AtomicSet(newVal float64) (succeeded bool) {
	old := af.bits.Load()
	return af.bits.CompareAndSwap(old, math.Float64bits(newVal))
}
