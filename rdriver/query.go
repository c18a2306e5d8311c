package rdriver

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/arjunkota/capcol"
)

// Receive returns up to limit items from list ordered oldest first,
// starting after cursor.
func (d *Driver) Receive(ctx context.Context, collection, list string, cursor string, limit int64, mode capcol.ReceiveMode) (capcol.ReceiveResult, error) {
	if limit <= 0 {
		limit = 1
	}
	ks, err := d.keySpace(collection)
	if err != nil {
		return capcol.ReceiveResult{}, err
	}

	pop := "0"
	if mode == capcol.ReceivePop {
		pop = "1"
	}

	reply, err := d.runScript(ctx, "receive", d.scripts.receive,
		[]string{ks.Data(list), ks.Time(list), ks.Status(), ks.Queue()},
		cursor, limit, pop, list)
	if err != nil {
		return capcol.ReceiveResult{}, classify("Receive", err)
	}

	elems, ok := reply.([]interface{})
	if !ok || len(elems) == 0 {
		return capcol.ReceiveResult{}, capcol.NewError("Receive", capcol.KindInternal, fmt.Errorf("malformed receive reply"))
	}
	hasMore, err := toInt64(elems[0])
	if err != nil {
		return capcol.ReceiveResult{}, capcol.NewError("Receive", capcol.KindInternal, err)
	}

	items := make([]capcol.Item, 0, (len(elems)-1)/3)
	for i := 1; i+2 < len(elems); i += 3 {
		id, err := toString(elems[i])
		if err != nil {
			return capcol.ReceiveResult{}, capcol.NewError("Receive", capcol.KindInternal, err)
		}
		dataTime, err := toFloat64(elems[i+1])
		if err != nil {
			return capcol.ReceiveResult{}, capcol.NewError("Receive", capcol.KindInternal, err)
		}
		payload, err := toBytes(elems[i+2])
		if err != nil {
			return capcol.ReceiveResult{}, capcol.NewError("Receive", capcol.KindInternal, err)
		}
		items = append(items, capcol.Item{DataID: id, DataTime: dataTime, Payload: payload})
	}

	return capcol.ReceiveResult{Items: items, HasMore: hasMore == 1}, nil
}

// CollectionInfo reports aggregate statistics for collection.
func (d *Driver) CollectionInfo(ctx context.Context, collection string) (capcol.CollectionInfo, error) {
	ks, err := d.keySpace(collection)
	if err != nil {
		return capcol.CollectionInfo{}, err
	}

	reply, err := d.runScript(ctx, "collectioninfo", d.scripts.collectionInfo, []string{ks.Status(), ks.Queue()})
	if err != nil {
		return capcol.CollectionInfo{}, classify("CollectionInfo", err)
	}
	elems, ok := reply.([]interface{})
	if !ok || len(elems) != 5 {
		return capcol.CollectionInfo{}, capcol.NewError("CollectionInfo", capcol.KindInternal, fmt.Errorf("malformed collectioninfo reply"))
	}

	numLists, _ := toInt64(elems[0])
	numItems, _ := toInt64(elems[1])
	totalBytes, _ := toInt64(elems[2])
	oldestTime, _ := toFloat64(elems[3])
	lastRemovedTime, _ := toFloat64(elems[4])

	params, err := d.readParams(ctx, ks.Status())
	if err != nil {
		return capcol.CollectionInfo{}, classify("CollectionInfo", err)
	}

	return capcol.CollectionInfo{
		Name:            collection,
		NumLists:        numLists,
		NumItems:        numItems,
		TotalBytes:      totalBytes,
		OldestTime:      oldestTime,
		LastRemovedTime: lastRemovedTime,
		Params:          params,
	}, nil
}

// ListInfo reports statistics for a single list.
func (d *Driver) ListInfo(ctx context.Context, collection, list string) (capcol.ListInfo, error) {
	ks, err := d.keySpace(collection)
	if err != nil {
		return capcol.ListInfo{}, err
	}

	reply, err := d.runScript(ctx, "listinfo", d.scripts.listInfo,
		[]string{ks.Status(), ks.Data(list), ks.Time(list), ks.Queue()}, list)
	if err != nil {
		return capcol.ListInfo{}, classify("ListInfo", err)
	}
	elems, ok := reply.([]interface{})
	if !ok || len(elems) != 4 {
		return capcol.ListInfo{}, capcol.NewError("ListInfo", capcol.KindInternal, fmt.Errorf("malformed listinfo reply"))
	}

	numItems, _ := toInt64(elems[0])
	totalBytes, _ := toInt64(elems[1])
	oldestTime, _ := toFloat64(elems[2])
	newestTime, _ := toFloat64(elems[3])

	return capcol.ListInfo{
		Name:       list,
		NumItems:   numItems,
		TotalBytes: totalBytes,
		OldestTime: oldestTime,
		NewestTime: newestTime,
	}, nil
}

// OldestTime returns the data time of the globally oldest item in
// collection.
func (d *Driver) OldestTime(ctx context.Context, collection string) (float64, error) {
	ks, err := d.keySpace(collection)
	if err != nil {
		return 0, err
	}
	reply, err := d.runScript(ctx, "oldesttime", d.scripts.oldestTime, []string{ks.Queue()})
	if err != nil {
		return 0, classify("OldestTime", err)
	}
	return toFloat64(reply)
}

// ListExists reports whether list currently holds any items in collection.
func (d *Driver) ListExists(ctx context.Context, collection, list string) (bool, error) {
	ks, err := d.keySpace(collection)
	if err != nil {
		return false, err
	}
	_, err = d.client.ZScore(ctx, ks.Queue(), list).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, classify("ListExists", err)
	}
	return true, nil
}
