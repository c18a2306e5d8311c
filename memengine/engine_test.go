package memengine

import (
	"context"
	"testing"

	"github.com/arjunkota/capcol"
)

func TestInsertAndReceive(t *testing.T) {
	e := New(0)
	ctx := context.Background()

	if err := e.Insert(ctx, "orders", "region-a", "id-1", 100, []byte("payload-1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	res, err := e.Receive(ctx, "orders", "region-a", "", 10, capcol.ReceivePeek)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].DataID != "id-1" {
		t.Fatalf("Receive: got %+v", res)
	}
}

func TestInsertDuplicateFails(t *testing.T) {
	e := New(0)
	ctx := context.Background()

	if err := e.Insert(ctx, "orders", "region-a", "id-1", 100, []byte("a")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := e.Insert(ctx, "orders", "region-a", "id-1", 200, []byte("b"))
	if !capcol.Is(err, capcol.KindAlreadyExists) {
		t.Fatalf("Insert duplicate: got %v, want KindAlreadyExists", err)
	}
}

func TestUpdateMissingFails(t *testing.T) {
	e := New(0)
	ctx := context.Background()

	err := e.Update(ctx, "orders", "region-a", "id-1", 100, []byte("a"))
	if !capcol.Is(err, capcol.KindNotFound) {
		t.Fatalf("Update on empty collection: got %v, want KindNotFound", err)
	}

	if err := e.Insert(ctx, "orders", "region-a", "id-1", 100, []byte("a")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err = e.Update(ctx, "orders", "region-a", "id-2", 100, []byte("a"))
	if !capcol.Is(err, capcol.KindNotFound) {
		t.Fatalf("Update on missing item: got %v, want KindNotFound", err)
	}
}

func TestUpsertInsertsThenUpdates(t *testing.T) {
	e := New(0)
	ctx := context.Background()

	if err := e.Upsert(ctx, "orders", "region-a", "id-1", 100, []byte("first")); err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if err := e.Upsert(ctx, "orders", "region-a", "id-1", 200, []byte("second")); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}

	res, err := e.Receive(ctx, "orders", "region-a", "", 10, capcol.ReceivePeek)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("Receive: got %d items, want 1", len(res.Items))
	}
	if string(res.Items[0].Payload) != "second" || res.Items[0].DataTime != 200 {
		t.Fatalf("Receive: got %+v, want second/200", res.Items[0])
	}
}

func TestPopOldestIsGlobalAcrossLists(t *testing.T) {
	e := New(0)
	ctx := context.Background()

	mustInsert(t, e, "coll", "list-a", "id-1", 300)
	mustInsert(t, e, "coll", "list-b", "id-2", 100)
	mustInsert(t, e, "coll", "list-a", "id-3", 200)

	item, list, err := e.PopOldest(ctx, "coll")
	if err != nil {
		t.Fatalf("PopOldest: %v", err)
	}
	if item.DataID != "id-2" || list != "list-b" {
		t.Fatalf("PopOldest: got id=%s list=%s, want id-2/list-b", item.DataID, list)
	}

	item, list, err = e.PopOldest(ctx, "coll")
	if err != nil {
		t.Fatalf("PopOldest second: %v", err)
	}
	if item.DataID != "id-3" || list != "list-a" {
		t.Fatalf("PopOldest second: got id=%s list=%s, want id-3/list-a", item.DataID, list)
	}
}

func TestPopOldestOnEmptyCollectionFails(t *testing.T) {
	e := New(0)
	ctx := context.Background()
	mustInsert(t, e, "coll", "list-a", "id-1", 1)
	if _, _, err := e.PopOldest(ctx, "coll"); err != nil {
		t.Fatalf("PopOldest: %v", err)
	}
	_, _, err := e.PopOldest(ctx, "coll")
	if !capcol.Is(err, capcol.KindNotFound) {
		t.Fatalf("PopOldest on empty: got %v, want KindNotFound", err)
	}
}

func TestReceivePagination(t *testing.T) {
	e := New(0)
	ctx := context.Background()
	for i := int64(0); i < 5; i++ {
		mustInsert(t, e, "coll", "list-a", string(rune('a'+i)), float64(i))
	}

	res, err := e.Receive(ctx, "coll", "list-a", "", 2, capcol.ReceivePeek)
	if err != nil {
		t.Fatalf("Receive page 1: %v", err)
	}
	if len(res.Items) != 2 || !res.HasMore {
		t.Fatalf("Receive page 1: got %+v", res)
	}
	last := res.Items[len(res.Items)-1].DataID

	res, err = e.Receive(ctx, "coll", "list-a", last, 10, capcol.ReceivePeek)
	if err != nil {
		t.Fatalf("Receive page 2: %v", err)
	}
	if len(res.Items) != 3 || res.HasMore {
		t.Fatalf("Receive page 2: got %+v", res)
	}
}

func TestReceivePopRemovesItems(t *testing.T) {
	e := New(0)
	ctx := context.Background()
	mustInsert(t, e, "coll", "list-a", "id-1", 1)
	mustInsert(t, e, "coll", "list-a", "id-2", 2)

	res, err := e.Receive(ctx, "coll", "list-a", "", 1, capcol.ReceivePop)
	if err != nil {
		t.Fatalf("Receive pop: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].DataID != "id-1" {
		t.Fatalf("Receive pop: got %+v", res)
	}

	info, err := e.ListInfo(ctx, "coll", "list-a")
	if err != nil {
		t.Fatalf("ListInfo: %v", err)
	}
	if info.NumItems != 1 {
		t.Fatalf("ListInfo after pop: got %d items, want 1", info.NumItems)
	}
}

func TestEvictionUnderMemoryPressure(t *testing.T) {
	// Each item costs itemOverheadBytes(64) + payload. Set a tiny ceiling
	// so the second insert must evict the first before it can proceed.
	e := New(itemOverheadBytes + 10)
	ctx := context.Background()

	if err := e.Insert(ctx, "coll", "list-a", "id-1", 1, []byte("1234567890")); err != nil {
		t.Fatalf("Insert 1: %v", err)
	}
	if err := e.Insert(ctx, "coll", "list-a", "id-2", 2, []byte("1234567890")); err != nil {
		t.Fatalf("Insert 2 should evict id-1: %v", err)
	}

	res, err := e.Receive(ctx, "coll", "list-a", "", 10, capcol.ReceivePeek)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].DataID != "id-2" {
		t.Fatalf("Receive after eviction: got %+v, want only id-2", res)
	}
}

func TestGuardCollisionReturnsOutOfMemory(t *testing.T) {
	// A ceiling too small for even a single item means the very first
	// guarded insert finds nothing else to evict and must fail, not loop
	// forever.
	e := New(itemOverheadBytes)
	ctx := context.Background()

	err := e.Insert(ctx, "coll", "list-a", "id-1", 1, []byte("this payload is too big"))
	if !capcol.Is(err, capcol.KindOutOfMemory) {
		t.Fatalf("Insert over ceiling: got %v, want KindOutOfMemory", err)
	}

	if _, err := e.getCollection("coll"); err == nil {
		t.Fatalf("failed insert into a new collection should not have left the collection behind")
	} else if !capcol.Is(err, capcol.KindNotFound) {
		t.Fatalf("getCollection: got %v", err)
	}
}

func TestDropCollectionRemovesEverything(t *testing.T) {
	e := New(0)
	ctx := context.Background()
	mustInsert(t, e, "coll", "list-a", "id-1", 1)

	if err := e.DropCollection(ctx, "coll"); err != nil {
		t.Fatalf("DropCollection: %v", err)
	}
	if _, err := e.CollectionInfo(ctx, "coll"); !capcol.Is(err, capcol.KindNotFound) {
		t.Fatalf("CollectionInfo after drop: got %v, want KindNotFound", err)
	}
}

func TestClearCollectionKeepsParams(t *testing.T) {
	e := New(0)
	ctx := context.Background()
	mustInsert(t, e, "coll", "list-a", "id-1", 1)

	params := capcol.DefaultParams()
	params.MaxItemsPerList = 7
	if err := e.Resize(ctx, "coll", params); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := e.ClearCollection(ctx, "coll"); err != nil {
		t.Fatalf("ClearCollection: %v", err)
	}

	info, err := e.CollectionInfo(ctx, "coll")
	if err != nil {
		t.Fatalf("CollectionInfo: %v", err)
	}
	if info.NumItems != 0 || info.Params.MaxItemsPerList != 7 {
		t.Fatalf("CollectionInfo after clear: got %+v", info)
	}
}

func TestDropListRemovesOnlyThatList(t *testing.T) {
	e := New(0)
	ctx := context.Background()
	mustInsert(t, e, "coll", "list-a", "id-1", 1)
	mustInsert(t, e, "coll", "list-b", "id-2", 2)

	if err := e.DropList(ctx, "coll", "list-a"); err != nil {
		t.Fatalf("DropList: %v", err)
	}
	if exists, _ := e.ListExists(ctx, "coll", "list-a"); exists {
		t.Fatalf("list-a should no longer exist")
	}
	if exists, err := e.ListExists(ctx, "coll", "list-b"); err != nil || !exists {
		t.Fatalf("list-b should still exist: exists=%v err=%v", exists, err)
	}
}

func TestMaxItemsPerListEvictsOldestInList(t *testing.T) {
	e := New(0)
	ctx := context.Background()
	mustInsert(t, e, "coll", "list-a", "id-1", 1)
	if err := e.Resize(ctx, "coll", capcol.Params{MaxItemsPerList: 2, MemoryReserve: 0.1}); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	mustInsert(t, e, "coll", "list-a", "id-2", 2)
	mustInsert(t, e, "coll", "list-a", "id-3", 3)

	info, err := e.ListInfo(ctx, "coll", "list-a")
	if err != nil {
		t.Fatalf("ListInfo: %v", err)
	}
	if info.NumItems != 2 {
		t.Fatalf("ListInfo: got %d items, want 2 after cap eviction", info.NumItems)
	}
	if exists, _ := e.ListExists(ctx, "coll", "list-a"); !exists {
		t.Fatalf("list-a should still exist")
	}
}

func TestVerifyCollectionOnHealthyCollection(t *testing.T) {
	e := New(0)
	ctx := context.Background()
	mustInsert(t, e, "coll", "list-a", "id-1", 1)
	mustInsert(t, e, "coll", "list-b", "id-2", 2)

	if _, err := e.VerifyCollection(ctx, "coll", capcol.DefaultParams()); err != nil {
		t.Fatalf("VerifyCollection: %v", err)
	}
}

func TestVerifyCollectionCreatesOnFirstOpen(t *testing.T) {
	e := New(0)
	ctx := context.Background()

	params := capcol.DefaultParams()
	params.DataVersion = 3
	got, err := e.VerifyCollection(ctx, "coll", params)
	if err != nil {
		t.Fatalf("VerifyCollection create: %v", err)
	}
	if got.DataVersion != 3 {
		t.Fatalf("VerifyCollection create: got %+v, want DataVersion 3", got)
	}

	if _, err := e.VerifyCollection(ctx, "coll", params); err != nil {
		t.Fatalf("VerifyCollection reopen with matching params: %v", err)
	}

	mismatch := params
	mismatch.DataVersion = 4
	_, err = e.VerifyCollection(ctx, "coll", mismatch)
	if !capcol.Is(err, capcol.KindIncompatibleDataVersion) {
		t.Fatalf("VerifyCollection data version mismatch: got %v, want KindIncompatibleDataVersion", err)
	}

	mismatch = params
	mismatch.OlderAllowed = !params.OlderAllowed
	_, err = e.VerifyCollection(ctx, "coll", mismatch)
	if !capcol.Is(err, capcol.KindInvalidArgument) {
		t.Fatalf("VerifyCollection older_allowed mismatch: got %v, want KindInvalidArgument", err)
	}
}

func TestOlderThanAllowedRejectsInsertAndUpdate(t *testing.T) {
	e := New(0)
	ctx := context.Background()

	params := capcol.DefaultParams()
	params.OlderAllowed = false
	if _, err := e.VerifyCollection(ctx, "coll", params); err != nil {
		t.Fatalf("VerifyCollection: %v", err)
	}

	if err := e.Insert(ctx, "coll", "list-a", "id-1", 100, []byte("a")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := e.Insert(ctx, "coll", "list-a", "id-2", 200, []byte("a")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, _, err := e.PopOldest(ctx, "coll"); err != nil {
		t.Fatalf("PopOldest: %v", err)
	}

	info, err := e.CollectionInfo(ctx, "coll")
	if err != nil {
		t.Fatalf("CollectionInfo: %v", err)
	}
	if info.LastRemovedTime != 100 {
		t.Fatalf("CollectionInfo.LastRemovedTime: got %v, want 100", info.LastRemovedTime)
	}

	err = e.Insert(ctx, "coll", "list-b", "id-2", 50, []byte("b"))
	if !capcol.Is(err, capcol.KindOlderThanAllowed) {
		t.Fatalf("Insert older than last removed: got %v, want KindOlderThanAllowed", err)
	}

	if err := e.Insert(ctx, "coll", "list-b", "id-2", 150, []byte("b")); err != nil {
		t.Fatalf("Insert newer than last removed: %v", err)
	}
	err = e.Update(ctx, "coll", "list-b", "id-2", 10, []byte("c"))
	if !capcol.Is(err, capcol.KindOlderThanAllowed) {
		t.Fatalf("Update older than last removed: got %v, want KindOlderThanAllowed", err)
	}
}

func TestLastRemovedTimeResetsOnOlderAllowedInsert(t *testing.T) {
	e := New(0)
	ctx := context.Background()

	mustInsert(t, e, "coll", "list-a", "id-1", 100)
	if _, _, err := e.PopOldest(ctx, "coll"); err != nil {
		t.Fatalf("PopOldest: %v", err)
	}

	info, err := e.CollectionInfo(ctx, "coll")
	if err != nil {
		t.Fatalf("CollectionInfo: %v", err)
	}
	if info.LastRemovedTime != 100 {
		t.Fatalf("CollectionInfo.LastRemovedTime: got %v, want 100", info.LastRemovedTime)
	}

	mustInsert(t, e, "coll", "list-b", "id-2", 50)

	info, err = e.CollectionInfo(ctx, "coll")
	if err != nil {
		t.Fatalf("CollectionInfo: %v", err)
	}
	if info.LastRemovedTime != 0 {
		t.Fatalf("CollectionInfo.LastRemovedTime after older insert: got %v, want reset to 0", info.LastRemovedTime)
	}
}

func TestCollectionInfoOldestTimeTracksGlobalMinimum(t *testing.T) {
	e := New(0)
	ctx := context.Background()
	mustInsert(t, e, "coll", "list-a", "id-1", 500)
	mustInsert(t, e, "coll", "list-b", "id-2", 100)

	info, err := e.CollectionInfo(ctx, "coll")
	if err != nil {
		t.Fatalf("CollectionInfo: %v", err)
	}
	if info.OldestTime != 100 {
		t.Fatalf("CollectionInfo.OldestTime: got %v, want 100", info.OldestTime)
	}
}

func TestOldestTime(t *testing.T) {
	e := New(0)
	ctx := context.Background()

	if _, err := e.OldestTime(ctx, "coll"); !capcol.Is(err, capcol.KindNotFound) {
		t.Fatalf("OldestTime on missing collection: got %v, want KindNotFound", err)
	}

	mustInsert(t, e, "coll", "list-a", "id-1", 500)
	mustInsert(t, e, "coll", "list-b", "id-2", 100)

	got, err := e.OldestTime(ctx, "coll")
	if err != nil {
		t.Fatalf("OldestTime: %v", err)
	}
	if got != 100 {
		t.Fatalf("OldestTime: got %v, want 100", got)
	}
}

func mustInsert(t *testing.T, e *Engine, collection, list, dataID string, dataTime float64) {
	t.Helper()
	if err := e.Insert(context.Background(), collection, list, dataID, dataTime, []byte(dataID)); err != nil {
		t.Fatalf("Insert(%s,%s,%s): %v", collection, list, dataID, err)
	}
}
