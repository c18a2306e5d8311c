package rdriver

import (
	"context"
	"fmt"

	"github.com/arjunkota/capcol"
)

// PopOldest removes and returns the single globally oldest item in
// collection, across every list.
func (d *Driver) PopOldest(ctx context.Context, collection string) (capcol.Item, string, error) {
	ks, err := d.keySpace(collection)
	if err != nil {
		return capcol.Item{}, "", err
	}

	reply, err := d.runScript(ctx, "popoldest", d.scripts.popOldest,
		[]string{ks.Status(), ks.Queue()}, ks.Data(""), ks.Time(""))
	if err != nil {
		return capcol.Item{}, "", classify("PopOldest", err)
	}
	elems, ok := reply.([]interface{})
	if !ok || len(elems) != 4 {
		return capcol.Item{}, "", capcol.NewError("PopOldest", capcol.KindInternal, fmt.Errorf("malformed popoldest reply"))
	}

	list, err := toString(elems[0])
	if err != nil {
		return capcol.Item{}, "", capcol.NewError("PopOldest", capcol.KindInternal, err)
	}
	id, err := toString(elems[1])
	if err != nil {
		return capcol.Item{}, "", capcol.NewError("PopOldest", capcol.KindInternal, err)
	}
	dataTime, err := toFloat64(elems[2])
	if err != nil {
		return capcol.Item{}, "", capcol.NewError("PopOldest", capcol.KindInternal, err)
	}
	payload, err := toBytes(elems[3])
	if err != nil {
		return capcol.Item{}, "", capcol.NewError("PopOldest", capcol.KindInternal, err)
	}

	return capcol.Item{DataID: id, DataTime: dataTime, Payload: payload}, list, nil
}

// DropCollection removes collection and every list within it.
func (d *Driver) DropCollection(ctx context.Context, collection string) error {
	ks, err := d.keySpace(collection)
	if err != nil {
		return err
	}
	_, err = d.runScript(ctx, "dropcollection", d.scripts.dropCollection,
		[]string{ks.Status(), ks.Queue()}, ks.Data(""), ks.Time(""))
	if err != nil {
		return classify("DropCollection", err)
	}
	return nil
}

// ClearCollection removes every item from every list in collection but
// keeps its Params.
func (d *Driver) ClearCollection(ctx context.Context, collection string) error {
	ks, err := d.keySpace(collection)
	if err != nil {
		return err
	}
	_, err = d.runScript(ctx, "clearcollection", d.scripts.clearCollection,
		[]string{ks.Status(), ks.Queue()}, ks.Data(""), ks.Time(""))
	if err != nil {
		return classify("ClearCollection", err)
	}
	return nil
}

// DropList removes a single list and every item within it.
func (d *Driver) DropList(ctx context.Context, collection, list string) error {
	ks, err := d.keySpace(collection)
	if err != nil {
		return err
	}
	_, err = d.runScript(ctx, "droplist", d.scripts.dropList,
		[]string{ks.Status(), ks.Queue(), ks.Data(list), ks.Time(list)}, list)
	if err != nil {
		return classify("DropList", err)
	}
	return nil
}

// Resize updates the Params governing collection.
func (d *Driver) Resize(ctx context.Context, collection string, params capcol.Params) error {
	ks, err := d.keySpace(collection)
	if err != nil {
		return err
	}
	if err := d.writeParams(ctx, ks.Status(), params); err != nil {
		return classify("Resize", err)
	}
	return nil
}

// VerifyCollection is the collection create/open operation: if
// collection's status record is missing, it is atomically created with
// params; otherwise the stored OlderAllowed, AdvanceBytes, AdvanceItems,
// MemoryReserve, and DataVersion are compared against params and
// KindInvalidArgument is returned on any mismatch (or
// KindIncompatibleDataVersion specifically for DataVersion).
func (d *Driver) VerifyCollection(ctx context.Context, collection string, params capcol.Params) (capcol.Params, error) {
	ks, err := d.keySpace(collection)
	if err != nil {
		return capcol.Params{}, err
	}
	reply, err := d.runScript(ctx, "verifycollection", d.scripts.verifyCollection,
		[]string{ks.Status()},
		boolField(params.OlderAllowed),
		params.AdvanceBytes,
		params.AdvanceItems,
		params.MemoryReserve,
		params.DataVersion,
		params.MaxItemsPerList,
	)
	if err != nil {
		return capcol.Params{}, classify("VerifyCollection", err)
	}

	elems, ok := reply.([]interface{})
	if !ok || len(elems) != 6 {
		return capcol.Params{}, capcol.NewError("VerifyCollection", capcol.KindInternal, fmt.Errorf("malformed verifycollection reply"))
	}
	older, err := toString(elems[0])
	if err != nil {
		return capcol.Params{}, capcol.NewError("VerifyCollection", capcol.KindInternal, err)
	}
	advanceBytes, err := toInt64(elems[1])
	if err != nil {
		return capcol.Params{}, capcol.NewError("VerifyCollection", capcol.KindInternal, err)
	}
	advanceItems, err := toInt64(elems[2])
	if err != nil {
		return capcol.Params{}, capcol.NewError("VerifyCollection", capcol.KindInternal, err)
	}
	memoryReserve, err := toFloat64(elems[3])
	if err != nil {
		return capcol.Params{}, capcol.NewError("VerifyCollection", capcol.KindInternal, err)
	}
	dataVersion, err := toInt64(elems[4])
	if err != nil {
		return capcol.Params{}, capcol.NewError("VerifyCollection", capcol.KindInternal, err)
	}
	maxItemsPerList, err := toInt64(elems[5])
	if err != nil {
		return capcol.Params{}, capcol.NewError("VerifyCollection", capcol.KindInternal, err)
	}

	return capcol.Params{
		MaxItemsPerList: maxItemsPerList,
		MemoryReserve:   memoryReserve,
		AdvanceBytes:    advanceBytes,
		AdvanceItems:    advanceItems,
		OlderAllowed:    older != "0",
		DataVersion:     dataVersion,
	}, nil
}
