// Package zagg provides a Go client for sorted set aggregation
// (ZUNION, ZINTER, ZUNIONSTORE, ZINTERSTORE) on Valkey or Redis,
// standalone or clustered.
//
// Arguments are built with a small encoder that is generic over the token
// type: string for ordinary keys, []byte for binary-safe keys. Both forms
// produce the same sequence:
//
//	<numkeys> <key>... [WEIGHTS <weight>...] [AGGREGATE SUM|MIN|MAX]
//
// # Example
//
//	client, _ := zagg.New(ctx, zagg.WithValkey("", "localhost:6379"))
//	defer client.Close()
//
//	opts := zagg.NewOptions(zagg.Weighted(
//	    zagg.WeightedKey[string]{Key: "{scores}:a", Weight: 1},
//	    zagg.WeightedKey[string]{Key: "{scores}:b", Weight: 3.5},
//	)).WithAggregate(zagg.Max)
//
//	n, _ := client.UnionStore(ctx, "{scores}:out", opts)
//	top, _ := client.Range(ctx, "{scores}:out", 0, 9)
//
// In cluster mode all keys of one call must hash to the same slot; use a
// hash tag as above. The server rejects cross-slot calls with CROSSSLOT.
package zagg
