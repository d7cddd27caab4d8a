// Package state holds the client-side model of an ACE unit and the rules for
// folding status payloads into it.
//
// Status arrives from two sources, WebSocket push notifications and HTTP
// polling, and both carry partial snapshots. Merge applies one payload to a
// Model and returns the result; fields the payload omits keep their previous
// values. Store wraps a single Model behind a mutex so that merges from
// either source are serialized, and lets consumers subscribe to changes.
//
//	store := state.NewStore()
//	updates := store.Subscribe()
//	store.Apply(payload)
//	<-updates
//	fmt.Print(store.Snapshot().FormatCompact())
//
// The model is never persisted.
package state
