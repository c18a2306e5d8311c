package rdriver

import (
	"context"
	"strconv"

	"github.com/arjunkota/capcol"
)

// paramFields names the status-hash fields Resize writes and readParams
// reads back, alongside the running "items"/"bytes"/"bytes:<list>"/"lists"/
// "last_removed_time" fields the scripts maintain themselves.
const (
	fieldMaxItemsPerList = "p:max_items_per_list"
	fieldMemoryReserve   = "p:memory_reserve"
	fieldAdvanceBytes    = "p:advance_bytes"
	fieldAdvanceItems    = "p:advance_items"
	fieldOlderAllowed    = "p:older_allowed"
	fieldDataVersion     = "p:data_version"
)

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (d *Driver) writeParams(ctx context.Context, statusKey string, params capcol.Params) error {
	return d.client.HSet(ctx, statusKey,
		fieldMaxItemsPerList, params.MaxItemsPerList,
		fieldMemoryReserve, params.MemoryReserve,
		fieldAdvanceBytes, params.AdvanceBytes,
		fieldAdvanceItems, params.AdvanceItems,
		fieldOlderAllowed, boolField(params.OlderAllowed),
		fieldDataVersion, params.DataVersion,
	).Err()
}

func (d *Driver) readParams(ctx context.Context, statusKey string) (capcol.Params, error) {
	values, err := d.client.HMGet(ctx, statusKey,
		fieldMaxItemsPerList, fieldMemoryReserve, fieldAdvanceBytes, fieldAdvanceItems,
		fieldOlderAllowed, fieldDataVersion,
	).Result()
	if err != nil {
		return capcol.Params{}, err
	}

	params := capcol.DefaultParams()
	if v, ok := asInt64(values[0]); ok {
		params.MaxItemsPerList = v
	}
	if v, ok := asFloat64(values[1]); ok {
		params.MemoryReserve = v
	}
	if v, ok := asInt64(values[2]); ok {
		params.AdvanceBytes = v
	}
	if v, ok := asInt64(values[3]); ok {
		params.AdvanceItems = v
	}
	if s, ok := values[4].(string); ok {
		params.OlderAllowed = s != "0"
	} else {
		params.OlderAllowed = true
	}
	if v, ok := asInt64(values[5]); ok {
		params.DataVersion = v
	}
	return params, nil
}

func asInt64(v interface{}) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func asFloat64(v interface{}) (float64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
