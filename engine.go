package capcol

import "context"

// Engine is the capped-collection algorithm, independent of how it is
// executed. rdriver.Driver implements it as Lua scripts against Redis;
// memengine.Engine implements it natively in-process behind a mutex. Both
// honor the same invariants: items within a list are returned oldest
// first, and eviction always removes the globally oldest item across every
// list in the collection.
type Engine interface {
	// Insert adds a new item under dataID to list within collection,
	// failing with KindAlreadyExists if dataID is already present in
	// that list, or KindOlderThanAllowed if the collection's
	// OlderAllowed is false and dataTime is older than the collection's
	// LastRemovedTime.
	Insert(ctx context.Context, collection, list, dataID string, dataTime float64, payload []byte) error

	// Update overwrites the payload of an existing item, failing with
	// KindNotFound if dataID is absent from list, or
	// KindOlderThanAllowed under the same admission rule as Insert.
	// newDataTime of 0 keeps the item's existing data time.
	Update(ctx context.Context, collection, list, dataID string, newDataTime float64, payload []byte) error

	// Upsert inserts dataID if absent, or overwrites it if present.
	Upsert(ctx context.Context, collection, list, dataID string, dataTime float64, payload []byte) error

	// Receive returns up to limit items from list in data-time order
	// starting after cursor (empty cursor means from the oldest item).
	// mode controls whether returned items are left in place or popped.
	Receive(ctx context.Context, collection, list string, cursor string, limit int64, mode ReceiveMode) (ReceiveResult, error)

	// PopOldest removes and returns the single globally oldest item in
	// collection, across every list, or KindNotFound if it holds none.
	PopOldest(ctx context.Context, collection string) (Item, string, error)

	// CollectionInfo reports aggregate statistics for collection.
	CollectionInfo(ctx context.Context, collection string) (CollectionInfo, error)

	// ListInfo reports statistics for a single list.
	ListInfo(ctx context.Context, collection, list string) (ListInfo, error)

	// ListExists reports whether list currently holds any items in
	// collection.
	ListExists(ctx context.Context, collection, list string) (bool, error)

	// OldestTime returns the data time of the globally oldest item in
	// collection, or KindNotFound if it holds none.
	OldestTime(ctx context.Context, collection string) (float64, error)

	// DropCollection removes collection and every list within it.
	DropCollection(ctx context.Context, collection string) error

	// ClearCollection removes every item from every list in collection
	// but keeps the collection's parameters.
	ClearCollection(ctx context.Context, collection string) error

	// DropList removes a single list and every item within it.
	DropList(ctx context.Context, collection, list string) error

	// Resize updates the Params governing collection.
	Resize(ctx context.Context, collection string, params Params) error

	// VerifyCollection is the collection create/open operation: if
	// collection's status record is missing, it is atomically created
	// with params; otherwise the stored OlderAllowed, AdvanceBytes,
	// AdvanceItems, MemoryReserve, and DataVersion are compared against
	// params and KindInvalidArgument is returned on any mismatch (or
	// KindIncompatibleDataVersion specifically for DataVersion). Returns
	// the collection's resulting (stored) Params on success.
	VerifyCollection(ctx context.Context, collection string, params Params) (Params, error)

	// Ping verifies connectivity to the backing store.
	Ping(ctx context.Context) error

	// ConfigOK verifies that the backing store is configured the way
	// the algorithm requires (e.g. a maxmemory ceiling and an eviction
	// policy that will not race with the Evictor).
	ConfigOK(ctx context.Context) error

	// Close releases any resources held by the Engine.
	Close() error
}
