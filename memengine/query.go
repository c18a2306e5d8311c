package memengine

import (
	"context"
	"fmt"
	"sort"

	"github.com/arjunkota/capcol"
)

type sortedEntry struct {
	dataID   string
	dataTime float64
}

// sortedItems returns every item in ls ordered oldest first, breaking ties
// on data id for a stable cursor.
func sortedItems(ls *listState) []sortedEntry {
	out := make([]sortedEntry, 0, len(ls.items))
	for id, rec := range ls.items {
		out = append(out, sortedEntry{dataID: id, dataTime: rec.dataTime})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].dataTime != out[j].dataTime {
			return out[i].dataTime < out[j].dataTime
		}
		return out[i].dataID < out[j].dataID
	})
	return out
}

// Receive returns up to limit items from list ordered oldest first,
// starting after cursor.
func (e *Engine) Receive(ctx context.Context, collection, list string, cursor string, limit int64, mode capcol.ReceiveMode) (capcol.ReceiveResult, error) {
	if limit <= 0 {
		limit = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	cs, err := e.getCollection(collection)
	if err != nil {
		return capcol.ReceiveResult{}, err
	}
	ls, ok := cs.lists[list]
	if !ok {
		return capcol.ReceiveResult{}, capcol.NewError("Receive", capcol.KindNotFound, fmt.Errorf("list %q does not exist", list))
	}

	entries := sortedItems(ls)
	start := 0
	if cursor != "" {
		found := false
		for i, entry := range entries {
			if entry.dataID == cursor {
				start = i + 1
				found = true
				break
			}
		}
		if !found {
			return capcol.ReceiveResult{}, capcol.NewError("Receive", capcol.KindInvalidArgument, fmt.Errorf("cursor %q not found in list %q", cursor, list))
		}
	}

	end := start + int(limit)
	hasMore := end < len(entries)
	if end > len(entries) {
		end = len(entries)
	}
	page := entries[start:end]

	items := make([]capcol.Item, 0, len(page))
	for _, entry := range page {
		rec := ls.items[entry.dataID]
		items = append(items, capcol.Item{DataID: entry.dataID, DataTime: rec.dataTime, Payload: rec.payload})
	}

	if mode == capcol.ReceivePop {
		for _, entry := range page {
			e.removeItemLocked(cs, list, ls, entry.dataID)
		}
	}

	return capcol.ReceiveResult{Items: items, HasMore: hasMore}, nil
}

// CollectionInfo reports aggregate statistics for collection.
func (e *Engine) CollectionInfo(ctx context.Context, collection string) (capcol.CollectionInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cs, err := e.getCollection(collection)
	if err != nil {
		return capcol.CollectionInfo{}, err
	}

	var oldest float64
	if _, t, ok := e.peekOldestTimeLocked(cs); ok {
		oldest = t
	}

	return capcol.CollectionInfo{
		Name:            collection,
		NumLists:        int64(len(cs.lists)),
		NumItems:        cs.items,
		TotalBytes:      cs.bytes,
		OldestTime:      oldest,
		LastRemovedTime: cs.lastRemovedTime,
		Params:          cs.params,
	}, nil
}

// peekOldestTimeLocked returns the data time of the global oldest item.
func (e *Engine) peekOldestTimeLocked(cs *collectionState) (list string, dataTime float64, ok bool) {
	listName, t, found := cs.listHeap.Peek()
	if !found {
		return "", 0, false
	}
	return listName, t, true
}

// ListInfo reports statistics for a single list.
func (e *Engine) ListInfo(ctx context.Context, collection, list string) (capcol.ListInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cs, err := e.getCollection(collection)
	if err != nil {
		return capcol.ListInfo{}, err
	}
	ls, ok := cs.lists[list]
	if !ok {
		return capcol.ListInfo{}, capcol.NewError("ListInfo", capcol.KindNotFound, fmt.Errorf("list %q does not exist", list))
	}

	entries := sortedItems(ls)
	var oldest, newest float64
	if len(entries) > 0 {
		oldest = entries[0].dataTime
		newest = entries[len(entries)-1].dataTime
	}

	return capcol.ListInfo{
		Name:       list,
		NumItems:   int64(len(ls.items)),
		TotalBytes: ls.bytes,
		OldestTime: oldest,
		NewestTime: newest,
	}, nil
}

// OldestTime returns the data time of the globally oldest item in
// collection.
func (e *Engine) OldestTime(ctx context.Context, collection string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cs, err := e.getCollection(collection)
	if err != nil {
		return 0, err
	}
	_, t, ok := e.peekOldestTimeLocked(cs)
	if !ok {
		return 0, capcol.NewError("OldestTime", capcol.KindNotFound, fmt.Errorf("collection %q is empty", collection))
	}
	return t, nil
}

// ListExists reports whether list currently holds any items in collection.
func (e *Engine) ListExists(ctx context.Context, collection, list string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cs, err := e.getCollection(collection)
	if err != nil {
		return false, err
	}
	_, ok := cs.lists[list]
	return ok, nil
}
