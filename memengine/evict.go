package memengine

// peekOldestLocked reports the globally oldest item in cs without removing
// it.
func (e *Engine) peekOldestLocked(cs *collectionState) (list, dataID string, ok bool) {
	listName, _, found := cs.listHeap.Peek()
	if !found {
		return "", "", false
	}
	id, _, found := cs.lists[listName].timeIndex.Peek()
	if !found {
		return "", "", false
	}
	return listName, id, true
}

// evictOldestLocked removes the single globally oldest item across every
// list in cs and returns it. The caller must hold the engine mutex.
func (e *Engine) evictOldestLocked(cs *collectionState) (list, dataID string, item *itemRecord, ok bool) {
	listName, _, found := cs.listHeap.Peek()
	if !found {
		return "", "", nil, false
	}
	ls := cs.lists[listName]
	id, dataTime, found := ls.timeIndex.Peek()
	if !found {
		// A list surfaced in listHeap must have at least one item; this
		// would mean the two indexes drifted out of sync.
		return "", "", nil, false
	}
	rec := ls.items[id]
	e.removeItemLocked(cs, listName, ls, id)
	cs.lastRemovedTime = dataTime
	return listName, id, rec, true
}

// removeItemLocked deletes dataID from ls within cs, updating every index
// and the engine's running byte counter. It does not itself evict; callers
// decide whether removal is a user request or eviction.
func (e *Engine) removeItemLocked(cs *collectionState, listName string, ls *listState, dataID string) {
	rec, ok := ls.items[dataID]
	if !ok {
		return
	}
	delete(ls.items, dataID)
	ls.timeIndex.RemoveByKey(dataID)
	size := int64(len(rec.payload)) + itemOverheadBytes
	ls.bytes -= size
	cs.bytes -= size
	cs.items--
	e.usedBytes -= size

	if ls.isEmpty() {
		cs.listHeap.RemoveByKey(listName)
		delete(cs.lists, listName)
	} else {
		_, oldest, _ := ls.timeIndex.Peek()
		cs.listHeap.AddItem(listName, oldest)
	}
}

// advanceEvictLocked runs repeated global-oldest evictions against cs
// until the configured per-pass byte and item thresholds are both met, or
// the collection runs out of items. It returns the number of items and
// bytes freed. The caller must hold the engine mutex.
func (e *Engine) advanceEvictLocked(cs *collectionState) (freedItems, freedBytes int64) {
	targetBytes := cs.params.AdvanceBytes
	targetItems := cs.params.AdvanceItems
	if targetBytes <= 0 {
		targetBytes = 1
	}
	if targetItems <= 0 {
		targetItems = 1
	}
	for freedBytes < targetBytes || freedItems < targetItems {
		_, _, rec, ok := e.evictOldestLocked(cs)
		if !ok {
			break
		}
		freedItems++
		freedBytes += int64(len(rec.payload)) + itemOverheadBytes
	}
	return freedItems, freedBytes
}
