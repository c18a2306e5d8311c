package rdriver

import (
	"context"
	"fmt"

	"github.com/arjunkota/capcol"
)

func validateWriteArgs(collection, list, dataID string) error {
	if err := capcol.ValidateToken(collection); err != nil {
		return capcol.NewError("", capcol.KindInvalidArgument, fmt.Errorf("collection: %w", err))
	}
	if err := capcol.ValidateToken(list); err != nil {
		return capcol.NewError("", capcol.KindInvalidArgument, fmt.Errorf("list: %w", err))
	}
	if dataID == "" {
		return capcol.NewError("", capcol.KindInvalidArgument, fmt.Errorf("empty data id"))
	}
	return nil
}

func (d *Driver) enforceListCap(ctx context.Context, ks capcol.KeySpace, list string) error {
	params, err := d.readParams(ctx, ks.Status())
	if err != nil || params.MaxItemsPerList <= 0 {
		return err
	}
	for {
		count, err := d.client.HLen(ctx, ks.Data(list)).Result()
		if err != nil {
			return classify("Insert", err)
		}
		if count <= params.MaxItemsPerList {
			return nil
		}
		_, err = d.runScript(ctx, "poplistoldest", d.scripts.popListOldest,
			[]string{ks.Status(), ks.Queue(), ks.Data(list), ks.Time(list)}, list)
		if err != nil {
			return classify("Insert", err)
		}
	}
}

// Insert adds a new item, failing with KindAlreadyExists if dataID is
// already present in list, or KindOlderThanAllowed per the collection's
// admission rule. The MemoryProbe, Evictor, Guard retry, and rollback all
// run inside insert.lua itself, so the whole write stays one atomic Redis
// operation instead of racing a separate client-side eviction round-trip.
func (d *Driver) Insert(ctx context.Context, collection, list, dataID string, dataTime float64, payload []byte) error {
	if err := validateWriteArgs(collection, list, dataID); err != nil {
		return err
	}
	ks, err := d.keySpace(collection)
	if err != nil {
		return err
	}

	_, err = d.runScript(ctx, "insert", d.scripts.insert,
		[]string{ks.Status(), ks.Queue(), ks.Data(list), ks.Time(list)},
		list, dataID, formatDataTime(dataTime), payload, ks.Data(""), ks.Time(""))
	if err != nil {
		err = classify("Insert", err)
	}
	d.metrics.RecordOp(err != nil)
	if err != nil {
		return err
	}
	return d.enforceListCap(ctx, ks, list)
}

// Update overwrites an existing item's payload, failing with KindNotFound
// if dataID is absent from list, or KindOlderThanAllowed under the same
// admission rule as Insert.
func (d *Driver) Update(ctx context.Context, collection, list, dataID string, dataTime float64, payload []byte) error {
	if err := validateWriteArgs(collection, list, dataID); err != nil {
		return err
	}
	ks, err := d.keySpace(collection)
	if err != nil {
		return err
	}

	_, err = d.runScript(ctx, "update", d.scripts.update,
		[]string{ks.Status(), ks.Queue(), ks.Data(list), ks.Time(list)},
		list, dataID, formatDataTime(dataTime), payload, ks.Data(""), ks.Time(""))
	if err != nil {
		err = classify("Update", err)
	}
	d.metrics.RecordOp(err != nil)
	return err
}

// Upsert inserts dataID if absent, or overwrites it if present.
func (d *Driver) Upsert(ctx context.Context, collection, list, dataID string, dataTime float64, payload []byte) error {
	if err := validateWriteArgs(collection, list, dataID); err != nil {
		return err
	}
	ks, err := d.keySpace(collection)
	if err != nil {
		return err
	}

	_, err = d.runScript(ctx, "upsert", d.scripts.upsert,
		[]string{ks.Status(), ks.Queue(), ks.Data(list), ks.Time(list)},
		list, dataID, formatDataTime(dataTime), payload, ks.Data(""), ks.Time(""))
	if err != nil {
		err = classify("Upsert", err)
	}
	d.metrics.RecordOp(err != nil)
	if err != nil {
		return err
	}
	return d.enforceListCap(ctx, ks, list)
}
