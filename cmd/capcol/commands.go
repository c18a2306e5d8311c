package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/arjunkota/capcol"
	"github.com/arjunkota/capcol/rdriver"
)

func openDriver(cmd *cobra.Command) (*rdriver.Driver, context.Context, error) {
	cfg, err := getClientConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	ctx := context.Background()
	d, err := rdriver.Open(ctx, cfg.RedisAddr, cfg.Prefix, &redis.Options{DB: cfg.RedisDB})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return d, ctx, nil
}

func printItem(item capcol.Item, list string) {
	fmt.Printf("list=%s id=%s time=%s bytes=%d\n", list, item.DataID, formatDataTime(item.DataTime), len(item.Payload))
	fmt.Println(string(item.Payload))
}

func formatDataTime(t float64) string {
	return strconv.FormatFloat(t, 'f', 4, 64)
}

func newInsertCmd() *cobra.Command {
	var dataTime float64
	c := &cobra.Command{
		Use:   "insert <collection> <list> <data-id> <payload>",
		Short: "Insert a new item into a list",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ctx, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			t := dataTime
			if t == 0 {
				t = float64(time.Now().UnixNano()) / 1e9
			}
			return d.Insert(ctx, args[0], args[1], args[2], t, []byte(args[3]))
		},
	}
	c.Flags().Float64Var(&dataTime, "data-time", 0, "ordering time for the item (defaults to now)")
	return c
}

func newUpdateCmd() *cobra.Command {
	var dataTime float64
	c := &cobra.Command{
		Use:   "update <collection> <list> <data-id> <payload>",
		Short: "Overwrite an existing item's payload",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ctx, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			t := dataTime
			if t == 0 {
				t = float64(time.Now().UnixNano()) / 1e9
			}
			return d.Update(ctx, args[0], args[1], args[2], t, []byte(args[3]))
		},
	}
	c.Flags().Float64Var(&dataTime, "data-time", 0, "ordering time for the item (defaults to now)")
	return c
}

func newUpsertCmd() *cobra.Command {
	var dataTime float64
	c := &cobra.Command{
		Use:   "upsert <collection> <list> <data-id> <payload>",
		Short: "Insert or overwrite an item",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ctx, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			t := dataTime
			if t == 0 {
				t = float64(time.Now().UnixNano()) / 1e9
			}
			return d.Upsert(ctx, args[0], args[1], args[2], t, []byte(args[3]))
		},
	}
	c.Flags().Float64Var(&dataTime, "data-time", 0, "ordering time for the item (defaults to now)")
	return c
}

func newReceiveCmd() *cobra.Command {
	var cursor string
	var limit int64
	var pop bool
	c := &cobra.Command{
		Use:   "receive <collection> <list>",
		Short: "Read items from a list, oldest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ctx, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			mode := capcol.ReceivePeek
			if pop {
				mode = capcol.ReceivePop
			}
			res, err := d.Receive(ctx, args[0], args[1], cursor, limit, mode)
			if err != nil {
				return err
			}
			for _, item := range res.Items {
				printItem(item, args[1])
			}
			fmt.Printf("has_more=%v\n", res.HasMore)
			return nil
		},
	}
	c.Flags().StringVar(&cursor, "cursor", "", "data id to resume after")
	c.Flags().Int64Var(&limit, "limit", 100, "maximum items to return")
	c.Flags().BoolVar(&pop, "pop", false, "remove returned items from the list")
	return c
}

func newPopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pop <collection>",
		Short: "Remove and print the globally oldest item in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ctx, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			item, list, err := d.PopOldest(ctx, args[0])
			if err != nil {
				return err
			}
			printItem(item, list)
			return nil
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <collection>",
		Short: "Print aggregate statistics for a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ctx, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			info, err := d.CollectionInfo(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(info)
		},
	}
}

func newListInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-info <collection> <list>",
		Short: "Print statistics for a single list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ctx, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			info, err := d.ListInfo(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(info)
		},
	}
}

func newOldestTimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "oldest-time <collection>",
		Short: "Print the data time of the globally oldest item in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ctx, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			t, err := d.OldestTime(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(t)
			return nil
		},
	}
}

func newDropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop <collection>",
		Short: "Remove a collection and every list within it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ctx, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			return d.DropCollection(ctx, args[0])
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <collection>",
		Short: "Remove every item from a collection but keep its params",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ctx, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			return d.ClearCollection(ctx, args[0])
		},
	}
}

func newDropListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop-list <collection> <list>",
		Short: "Remove a single list and every item within it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ctx, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			return d.DropList(ctx, args[0], args[1])
		},
	}
}

func newResizeCmd() *cobra.Command {
	var maxItemsPerList int64
	var memoryReserve float64
	var advanceBytes, advanceItems int64
	var olderAllowed bool
	var dataVersion int64
	c := &cobra.Command{
		Use:   "resize <collection>",
		Short: "Update the params governing a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ctx, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			return d.Resize(ctx, args[0], capcol.Params{
				MaxItemsPerList: maxItemsPerList,
				MemoryReserve:   memoryReserve,
				AdvanceBytes:    advanceBytes,
				AdvanceItems:    advanceItems,
				OlderAllowed:    olderAllowed,
				DataVersion:     dataVersion,
			})
		},
	}
	defaults := capcol.DefaultParams()
	c.Flags().Int64Var(&maxItemsPerList, "max-items-per-list", defaults.MaxItemsPerList, "cap on items per list, 0 for unbounded")
	c.Flags().Float64Var(&memoryReserve, "memory-reserve", defaults.MemoryReserve, "fraction of the memory ceiling held back as headroom")
	c.Flags().Int64Var(&advanceBytes, "advance-bytes", defaults.AdvanceBytes, "bytes freed per eviction pass")
	c.Flags().Int64Var(&advanceItems, "advance-items", defaults.AdvanceItems, "items freed per eviction pass")
	c.Flags().BoolVar(&olderAllowed, "older-allowed", defaults.OlderAllowed, "allow inserts/updates older than the last removed item")
	c.Flags().Int64Var(&dataVersion, "data-version", defaults.DataVersion, "opaque schema marker compared on open")
	return c
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Verify connectivity to Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ctx, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := d.Ping(ctx); err != nil {
				return err
			}
			fmt.Println("PONG")
			return nil
		},
	}
}

func newVerifyCmd() *cobra.Command {
	var maxItemsPerList int64
	var memoryReserve float64
	var advanceBytes, advanceItems int64
	var olderAllowed bool
	var dataVersion int64
	c := &cobra.Command{
		Use:   "verify <collection>",
		Short: "Create a collection if absent, or open it and reject mismatched params",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ctx, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			stored, err := d.VerifyCollection(ctx, args[0], capcol.Params{
				MaxItemsPerList: maxItemsPerList,
				MemoryReserve:   memoryReserve,
				AdvanceBytes:    advanceBytes,
				AdvanceItems:    advanceItems,
				OlderAllowed:    olderAllowed,
				DataVersion:     dataVersion,
			})
			if err != nil {
				return err
			}
			return printJSON(stored)
		},
	}
	defaults := capcol.DefaultParams()
	c.Flags().Int64Var(&maxItemsPerList, "max-items-per-list", defaults.MaxItemsPerList, "cap on items per list, 0 for unbounded")
	c.Flags().Float64Var(&memoryReserve, "memory-reserve", defaults.MemoryReserve, "fraction of the memory ceiling held back as headroom")
	c.Flags().Int64Var(&advanceBytes, "advance-bytes", defaults.AdvanceBytes, "bytes freed per eviction pass")
	c.Flags().Int64Var(&advanceItems, "advance-items", defaults.AdvanceItems, "items freed per eviction pass")
	c.Flags().BoolVar(&olderAllowed, "older-allowed", defaults.OlderAllowed, "allow inserts/updates older than the last removed item")
	c.Flags().Int64Var(&dataVersion, "data-version", defaults.DataVersion, "opaque schema marker compared on open")
	return c
}

func printJSON(v interface{}) error {
	enc, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(enc))
	return nil
}
