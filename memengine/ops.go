package memengine

import (
	"context"
	"fmt"

	"github.com/arjunkota/capcol"
)

// evictListOldestLocked removes the oldest item from ls alone, used to
// enforce a collection's MaxItemsPerList cap independent of the global
// memory-pressure Evictor. Unlike global eviction, this does not touch
// LastRemovedTime: it is a supplemental per-list bound, not the Evictor.
func (e *Engine) evictListOldestLocked(cs *collectionState, listName string, ls *listState) bool {
	id, _, ok := ls.timeIndex.Peek()
	if !ok {
		return false
	}
	e.removeItemLocked(cs, listName, ls, id)
	return true
}

func (e *Engine) enforceListCapLocked(cs *collectionState, listName string, ls *listState) {
	max := cs.params.MaxItemsPerList
	if max <= 0 {
		return
	}
	for int64(len(ls.items)) > max {
		if !e.evictListOldestLocked(cs, listName, ls) {
			break
		}
	}
}

// checkOlderAllowedLocked enforces admission: when cs.params.OlderAllowed
// is false and the collection already has at least one list, a data time
// older than LastRemovedTime is rejected.
func (e *Engine) checkOlderAllowedLocked(cs *collectionState, dataTime float64) error {
	if cs.params.OlderAllowed {
		return nil
	}
	if len(cs.lists) == 0 {
		return nil
	}
	if dataTime < cs.lastRemovedTime {
		return capcol.NewError("", capcol.KindOlderThanAllowed, fmt.Errorf("data time %v is older than last removed time %v", dataTime, cs.lastRemovedTime))
	}
	return nil
}

// maybeResetLastRemovedLocked implements invariant 5: a write carrying a
// data time strictly older than LastRemovedTime resets it to 0 rather than
// leaving it non-monotonic.
func maybeResetLastRemovedLocked(cs *collectionState, dataTime float64) {
	if dataTime < cs.lastRemovedTime {
		cs.lastRemovedTime = 0
	}
}

func validateWriteArgs(collection, list, dataID string, payload []byte) error {
	if err := capcol.ValidateToken(collection); err != nil {
		return capcol.NewError("", capcol.KindInvalidArgument, fmt.Errorf("collection: %w", err))
	}
	if err := capcol.ValidateToken(list); err != nil {
		return capcol.NewError("", capcol.KindInvalidArgument, fmt.Errorf("list: %w", err))
	}
	if dataID == "" {
		return capcol.NewError("", capcol.KindInvalidArgument, fmt.Errorf("empty data id"))
	}
	if payload == nil {
		return capcol.NewError("", capcol.KindInvalidArgument, fmt.Errorf("nil payload"))
	}
	return nil
}

// Insert adds a new item, failing with KindAlreadyExists if dataID is
// already present in list, or KindOlderThanAllowed per the collection's
// admission rule.
func (e *Engine) Insert(ctx context.Context, collection, list, dataID string, dataTime float64, payload []byte) error {
	if err := validateWriteArgs(collection, list, dataID, payload); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	_, collectionExisted := e.collections[collection]
	cs := e.getOrCreateCollection(collection)
	if ls, ok := cs.lists[list]; ok {
		if _, exists := ls.items[dataID]; exists {
			return capcol.NewError("Insert", capcol.KindAlreadyExists, fmt.Errorf("data id %q already exists in list %q", dataID, list))
		}
	}
	if err := e.checkOlderAllowedLocked(cs, dataTime); err != nil {
		return err
	}

	if e.tight(cs.params) {
		e.advanceEvictLocked(cs)
	}

	extra := int64(len(payload)) + itemOverheadBytes
	var rb rollbackLog
	err := e.withGuard(cs, extra, list, dataID, &rb, func() error {
		e.insertLocked(cs, list, dataID, dataTime, payload, &rb)
		return nil
	})
	if err != nil && !collectionExisted {
		delete(e.collections, collection)
	}
	return err
}

func (e *Engine) insertLocked(cs *collectionState, listName, dataID string, dataTime float64, payload []byte, rb *rollbackLog) {
	ls, existed := cs.lists[listName]
	if !existed {
		ls = newListState()
		cs.lists[listName] = ls
		rb.record(func() {
			delete(cs.lists, listName)
			cs.listHeap.RemoveByKey(listName)
		})
	}

	rec := &itemRecord{dataTime: dataTime, payload: payload}
	ls.items[dataID] = rec
	ls.timeIndex.AddItem(dataID, dataTime)
	size := int64(len(payload)) + itemOverheadBytes
	ls.bytes += size
	cs.bytes += size
	cs.items++
	e.usedBytes += size
	rb.record(func() {
		delete(ls.items, dataID)
		ls.timeIndex.RemoveByKey(dataID)
		ls.bytes -= size
		cs.bytes -= size
		cs.items--
		e.usedBytes -= size
	})

	_, oldestTime, _ := ls.timeIndex.Peek()
	cs.listHeap.AddItem(listName, oldestTime)

	maybeResetLastRemovedLocked(cs, dataTime)
	e.enforceListCapLocked(cs, listName, ls)
}

// Update overwrites an existing item's payload, failing with KindNotFound
// if dataID is absent from list, or KindOlderThanAllowed per the
// collection's admission rule.
func (e *Engine) Update(ctx context.Context, collection, list, dataID string, dataTime float64, payload []byte) error {
	if err := validateWriteArgs(collection, list, dataID, payload); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	cs, err := e.getCollection(collection)
	if err != nil {
		return err
	}
	ls, ok := cs.lists[list]
	if !ok {
		return capcol.NewError("Update", capcol.KindNotFound, fmt.Errorf("list %q does not exist", list))
	}
	old, ok := ls.items[dataID]
	if !ok {
		return capcol.NewError("Update", capcol.KindNotFound, fmt.Errorf("data id %q does not exist in list %q", dataID, list))
	}
	if dataTime != 0 {
		if err := e.checkOlderAllowedLocked(cs, dataTime); err != nil {
			return err
		}
	}

	if e.tight(cs.params) {
		e.advanceEvictLocked(cs)
	}

	oldSize := int64(len(old.payload)) + itemOverheadBytes
	newSize := int64(len(payload)) + itemOverheadBytes
	extra := newSize - oldSize
	if extra < 0 {
		extra = 0
	}

	var rb rollbackLog
	return e.withGuard(cs, extra, list, dataID, &rb, func() error {
		e.updateLocked(cs, list, ls, dataID, dataTime, payload, old, &rb)
		return nil
	})
}

func (e *Engine) updateLocked(cs *collectionState, listName string, ls *listState, dataID string, dataTime float64, payload []byte, old *itemRecord, rb *rollbackLog) {
	prevPayload, prevTime := old.payload, old.dataTime
	keepTime := dataTime == 0
	if keepTime {
		dataTime = prevTime
	}
	oldSize := int64(len(prevPayload)) + itemOverheadBytes
	newSize := int64(len(payload)) + itemOverheadBytes

	old.payload = payload
	old.dataTime = dataTime
	ls.timeIndex.AddItem(dataID, dataTime)
	delta := newSize - oldSize
	ls.bytes += delta
	cs.bytes += delta
	e.usedBytes += delta

	rb.record(func() {
		old.payload = prevPayload
		old.dataTime = prevTime
		ls.timeIndex.AddItem(dataID, prevTime)
		ls.bytes -= delta
		cs.bytes -= delta
		e.usedBytes -= delta
	})

	_, oldestTime, _ := ls.timeIndex.Peek()
	cs.listHeap.AddItem(listName, oldestTime)

	if !keepTime {
		maybeResetLastRemovedLocked(cs, dataTime)
	}
}

// Upsert inserts dataID if absent, or overwrites it if present.
func (e *Engine) Upsert(ctx context.Context, collection, list, dataID string, dataTime float64, payload []byte) error {
	if err := validateWriteArgs(collection, list, dataID, payload); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	cs := e.getOrCreateCollection(collection)
	ls, exists := cs.lists[list]
	var extra int64
	var old *itemRecord
	if exists {
		old, exists = ls.items[dataID]
	}
	if err := e.checkOlderAllowedLocked(cs, dataTime); err != nil {
		return err
	}
	if e.tight(cs.params) {
		e.advanceEvictLocked(cs)
	}
	if exists {
		oldSize := int64(len(old.payload)) + itemOverheadBytes
		newSize := int64(len(payload)) + itemOverheadBytes
		extra = newSize - oldSize
		if extra < 0 {
			extra = 0
		}
	} else {
		extra = int64(len(payload)) + itemOverheadBytes
	}

	var rb rollbackLog
	return e.withGuard(cs, extra, list, dataID, &rb, func() error {
		if exists {
			e.updateLocked(cs, list, ls, dataID, dataTime, payload, old, &rb)
		} else {
			e.insertLocked(cs, list, dataID, dataTime, payload, &rb)
		}
		return nil
	})
}
