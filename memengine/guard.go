package memengine

import (
	"fmt"

	"github.com/arjunkota/capcol"
)

// maxGuardRetries bounds how many forced-eviction rounds a write will
// trigger before it gives up and reports out-of-memory.
const maxGuardRetries = 2

// withGuard runs do, a mutation that will consume extra bytes, protecting
// guardList/guardID (the item the caller is writing, if any) from being
// evicted to make room for itself. While adding extra bytes would push usage
// past the memory ceiling it forces eviction rounds, re-checking after each
// one; do runs once the write fits, and the write fails once
// maxGuardRetries rounds still leave it over. If forced eviction collides with the guarded item on its very
// first attempt - meaning the guarded item is itself the global oldest and
// there is nothing else to reclaim - it rolls back via rb and fails fast
// rather than burning retries.
func (e *Engine) withGuard(cs *collectionState, extra int64, guardList, guardID string, rb *rollbackLog, do func() error) error {
	for attempt := 0; ; attempt++ {
		if !e.wouldExceed(extra) {
			if err := do(); err != nil {
				rb.replay()
				return err
			}
			rb.discard()
			return nil
		}
		if attempt >= maxGuardRetries {
			rb.replay()
			return capcol.NewError("", capcol.KindOutOfMemory, fmt.Errorf("memory ceiling exceeded after %d forced-eviction retries", maxGuardRetries))
		}

		oldList, oldID, ok := e.peekOldestLocked(cs)
		if !ok {
			rb.replay()
			return capcol.NewError("", capcol.KindOutOfMemory, fmt.Errorf("no items available to evict"))
		}
		if attempt == 0 && guardID != "" && oldList == guardList && oldID == guardID {
			rb.replay()
			return capcol.NewError("", capcol.KindOutOfMemory, fmt.Errorf("guarded item %s/%s is the only item eligible for eviction", guardList, guardID))
		}
		if oldList == guardList && oldID == guardID {
			// The guard item became the global oldest only after earlier
			// rounds freed everything else; nothing left to reclaim.
			rb.replay()
			return capcol.NewError("", capcol.KindOutOfMemory, fmt.Errorf("memory ceiling exceeded, guarded item %s/%s cannot be evicted", guardList, guardID))
		}

		freedItems, freedBytes := e.advanceEvictLocked(cs)
		if freedItems == 0 {
			rb.replay()
			return capcol.NewError("", capcol.KindOutOfMemory, fmt.Errorf("no items available to evict"))
		}
		e.log.Debugf("forced eviction freed %d items, %d bytes", freedItems, freedBytes)
	}
}
