package memengine

import (
	"context"
	"fmt"

	"github.com/arjunkota/capcol"
)

// PopOldest removes and returns the single globally oldest item in
// collection, across every list.
func (e *Engine) PopOldest(ctx context.Context, collection string) (capcol.Item, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cs, err := e.getCollection(collection)
	if err != nil {
		return capcol.Item{}, "", err
	}

	list, dataID, rec, ok := e.evictOldestLocked(cs)
	if !ok {
		return capcol.Item{}, "", capcol.NewError("PopOldest", capcol.KindNotFound, fmt.Errorf("collection %q is empty", collection))
	}
	return capcol.Item{DataID: dataID, DataTime: rec.dataTime, Payload: rec.payload}, list, nil
}

// DropCollection removes collection and every list within it.
func (e *Engine) DropCollection(ctx context.Context, collection string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cs, err := e.getCollection(collection)
	if err != nil {
		return err
	}
	e.usedBytes -= cs.bytes
	delete(e.collections, collection)
	return nil
}

// ClearCollection removes every item from every list in collection but
// keeps its Params.
func (e *Engine) ClearCollection(ctx context.Context, collection string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cs, err := e.getCollection(collection)
	if err != nil {
		return err
	}
	e.usedBytes -= cs.bytes
	cs.lists = make(map[string]*listState)
	cs.listHeap = newMapHeap[string]()
	cs.bytes = 0
	cs.items = 0
	cs.lastRemovedTime = 0
	return nil
}

// DropList removes a single list and every item within it.
func (e *Engine) DropList(ctx context.Context, collection, list string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cs, err := e.getCollection(collection)
	if err != nil {
		return err
	}
	ls, ok := cs.lists[list]
	if !ok {
		return capcol.NewError("DropList", capcol.KindNotFound, fmt.Errorf("list %q does not exist", list))
	}
	e.usedBytes -= ls.bytes
	cs.bytes -= ls.bytes
	cs.items -= int64(len(ls.items))
	delete(cs.lists, list)
	cs.listHeap.RemoveByKey(list)
	return nil
}

// Resize updates the Params governing collection.
func (e *Engine) Resize(ctx context.Context, collection string, params capcol.Params) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cs, err := e.getCollection(collection)
	if err != nil {
		return err
	}
	cs.params = params
	if params.MaxItemsPerList > 0 {
		for name, ls := range cs.lists {
			e.enforceListCapLocked(cs, name, ls)
		}
	}
	return nil
}

// VerifyCollection is the collection create/open operation. If collection
// has no status record yet, one is created with params and params is
// returned unchanged. Otherwise the stored OlderAllowed, AdvanceBytes,
// AdvanceItems, MemoryReserve, and DataVersion are compared against params;
// any mismatch fails with KindInvalidArgument (KindIncompatibleDataVersion
// for a DataVersion mismatch specifically), and the stored Params are
// returned on success.
func (e *Engine) VerifyCollection(ctx context.Context, collection string, params capcol.Params) (capcol.Params, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cs, ok := e.collections[collection]
	if !ok {
		cs = newCollectionState(params)
		e.collections[collection] = cs
		return cs.params, nil
	}

	stored := cs.params
	if stored.DataVersion != params.DataVersion {
		return capcol.Params{}, capcol.NewError("VerifyCollection", capcol.KindIncompatibleDataVersion, fmt.Errorf("collection %q has data version %d, caller wants %d", collection, stored.DataVersion, params.DataVersion))
	}
	if stored.OlderAllowed != params.OlderAllowed {
		return capcol.Params{}, capcol.NewError("VerifyCollection", capcol.KindInvalidArgument, fmt.Errorf("collection %q has older_allowed=%v, caller wants %v", collection, stored.OlderAllowed, params.OlderAllowed))
	}
	if stored.AdvanceBytes != params.AdvanceBytes {
		return capcol.Params{}, capcol.NewError("VerifyCollection", capcol.KindInvalidArgument, fmt.Errorf("collection %q has advance_cleanup_bytes=%d, caller wants %d", collection, stored.AdvanceBytes, params.AdvanceBytes))
	}
	if stored.AdvanceItems != params.AdvanceItems {
		return capcol.Params{}, capcol.NewError("VerifyCollection", capcol.KindInvalidArgument, fmt.Errorf("collection %q has advance_cleanup_num=%d, caller wants %d", collection, stored.AdvanceItems, params.AdvanceItems))
	}
	if stored.MemoryReserve != params.MemoryReserve {
		return capcol.Params{}, capcol.NewError("VerifyCollection", capcol.KindInvalidArgument, fmt.Errorf("collection %q has memory_reserve=%v, caller wants %v", collection, stored.MemoryReserve, params.MemoryReserve))
	}
	return stored, nil
}
