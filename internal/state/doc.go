// Package state holds the normalized client-side entity cache and the
// dispatch bus that owns it.
//
// # Overview
//
// Every entity kind (distribution centers, food listings, providers, tax
// records, allergen alerts, users, reservations) lives in its own Table: an
// id-keyed mapping plus a "current" slot, an in-flight request counter and the
// last recorded error. State is the union of those tables and the Session.
//
// The array view that list screens render is computed on read by Table.List
// and the selectors in this package. It is never stored next to the mapping.
//
// # Transitions
//
// Tables never change in place. Each transition returns a new Table:
//
//	t = t.LoadAll(recs)     // replace mapping, clear error
//	t = t.UpsertOne(rec)    // insert, or merge fields into existing id
//	t = t.RemoveOne(id)     // delete id; unknown id is a no-op
//	t = t.SetCurrent(&rec)  // select; nil means "confirmed absent"
//	t = t.SetError(err)     // record error, mapping untouched
//	t = t.SetLoading(true)  // one more request in flight
//
// Actions wrap those transitions with a Kind so the bus can apply them:
//
//	store.Dispatch(state.UpsertOne(state.CenterKind, rec))
//
// # Partial merges
//
// A Record keeps the JSON object it was decoded from. When a response carries
// only some fields, UpsertOne overlays exactly those fields onto the stored
// record; everything else keeps its prior value. Records built from a typed
// value with NewRecord carry every field.
//
// When the id being upserted is also held by the current slot, the slot is
// merged the same way so list and detail views agree.
//
// # Current slot
//
// Current distinguishes four states:
//
//	CurrentUnloaded  nothing requested yet
//	CurrentAbsent    server said the entity does not exist (or it was removed)
//	CurrentPresent   Value returns the entity
//	CurrentFailed    the fetch failed; Err says why
//
// # Dispatch bus
//
// Store serializes reducer application under a mutex. Dispatch returns after
// the new state is visible to Snapshot. Listeners run outside the lock and see
// each dispatched state in order. A listener that dispatches does not recurse:
// its state is queued and delivered once the current round finishes.
//
// The zero Store is ready to use.
package state
