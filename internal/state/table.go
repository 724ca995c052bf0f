package state

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Entity is implemented by every record kind held in a Table.
type Entity interface {
	EntityID() int64
}

// Record pairs a decoded entity with the JSON object it came from. Keeping the
// object lets merges overwrite only the fields a response actually carried.
type Record[T Entity] struct {
	value  T
	fields map[string]json.RawMessage
}

// NewRecord builds a record from a typed value. Every field of T is present.
func NewRecord[T Entity](v T) Record[T] {
	fields := map[string]json.RawMessage{}
	if data, err := json.Marshal(v); err == nil {
		_ = json.Unmarshal(data, &fields)
	}
	return Record[T]{value: v, fields: fields}
}

// NewRecords wraps each value with NewRecord.
func NewRecords[T Entity](values ...T) []Record[T] {
	out := make([]Record[T], len(values))
	for i, v := range values {
		out[i] = NewRecord(v)
	}
	return out
}

// DecodeRecord parses one JSON object. Fields absent from raw stay absent, so
// merging the result onto an existing record leaves them untouched.
func DecodeRecord[T Entity](raw []byte) (Record[T], error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Record[T]{}, fmt.Errorf("decode record: %w", err)
	}
	if fields == nil {
		return Record[T]{}, fmt.Errorf("decode record: not an object")
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return Record[T]{}, fmt.Errorf("decode record: %w", err)
	}
	if v.EntityID() == 0 {
		return Record[T]{}, fmt.Errorf("decode record: missing id")
	}
	return Record[T]{value: v, fields: fields}, nil
}

// Value returns the typed entity.
func (r Record[T]) Value() T { return r.value }

// ID returns the entity id.
func (r Record[T]) ID() int64 { return r.value.EntityID() }

// merge overlays next's fields onto r. Neither input is modified.
func (r Record[T]) merge(next Record[T]) Record[T] {
	if r.fields == nil {
		return next
	}
	merged := make(map[string]json.RawMessage, len(r.fields)+len(next.fields))
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range next.fields {
		merged[k] = v
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return r
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return r
	}
	return Record[T]{value: v, fields: merged}
}

// CurrentState distinguishes the three meanings a nullable "current" slot
// used to conflate, plus the initial unloaded state.
type CurrentState int

const (
	CurrentUnloaded CurrentState = iota
	CurrentAbsent
	CurrentPresent
	CurrentFailed
)

func (s CurrentState) String() string {
	switch s {
	case CurrentAbsent:
		return "absent"
	case CurrentPresent:
		return "present"
	case CurrentFailed:
		return "failed"
	}
	return "unloaded"
}

// Current is the selected-entity slot of a Table.
type Current[T Entity] struct {
	State CurrentState
	Err   error
	rec   Record[T]
}

// Value returns the selected entity when State is CurrentPresent.
func (c Current[T]) Value() (T, bool) {
	if c.State != CurrentPresent {
		var zero T
		return zero, false
	}
	return c.rec.value, true
}

// Table is the immutable snapshot of one entity kind. Every transition returns
// a new Table and leaves the receiver untouched, so snapshots may be shared
// freely between goroutines. Values handed out must not be mutated.
type Table[T Entity] struct {
	byID     map[int64]Record[T]
	current  Current[T]
	inFlight int
	err      error
}

// LoadAll replaces the mapping with records keyed by id and clears the error.
func (t Table[T]) LoadAll(records []Record[T]) Table[T] {
	byID := make(map[int64]Record[T], len(records))
	for _, r := range records {
		if prev, ok := byID[r.ID()]; ok {
			byID[r.ID()] = prev.merge(r)
			continue
		}
		byID[r.ID()] = r
	}
	t.byID = byID
	t.err = nil
	return t
}

// UpsertOne inserts rec, or merges the fields it carries into the existing
// record with the same id. The current slot is merged too when it holds that id.
func (t Table[T]) UpsertOne(rec Record[T]) Table[T] {
	return t.UpsertMany([]Record[T]{rec})
}

// UpsertMany applies UpsertOne for each record in order.
func (t Table[T]) UpsertMany(recs []Record[T]) Table[T] {
	if len(recs) == 0 {
		return t
	}
	byID := t.copyMap(len(recs))
	for _, rec := range recs {
		id := rec.ID()
		if prev, ok := byID[id]; ok {
			byID[id] = prev.merge(rec)
		} else {
			byID[id] = rec
		}
		if t.current.State == CurrentPresent && t.current.rec.ID() == id {
			t.current.rec = t.current.rec.merge(rec)
		}
	}
	t.byID = byID
	t.err = nil
	return t
}

// RemoveOne deletes id. When the current slot holds id it becomes absent,
// even if the mapping never held it. An id found in neither place returns t
// unchanged.
func (t Table[T]) RemoveOne(id int64) Table[T] {
	if t.current.State == CurrentPresent && t.current.rec.ID() == id {
		t.current = Current[T]{State: CurrentAbsent}
	}
	if _, ok := t.byID[id]; !ok {
		return t
	}
	byID := t.copyMap(0)
	delete(byID, id)
	t.byID = byID
	return t
}

// SetCurrent selects rec, or marks the slot absent when rec is nil. The
// mapping is not touched.
func (t Table[T]) SetCurrent(rec *Record[T]) Table[T] {
	if rec == nil {
		t.current = Current[T]{State: CurrentAbsent}
		return t
	}
	t.current = Current[T]{State: CurrentPresent, rec: *rec}
	return t
}

// FailCurrent marks the current slot as failed to load.
func (t Table[T]) FailCurrent(err error) Table[T] {
	t.current = Current[T]{State: CurrentFailed, Err: err}
	return t
}

// SetError records the last error without touching the mapping.
func (t Table[T]) SetError(err error) Table[T] {
	t.err = err
	return t
}

// SetLoading marks one request as started (true) or finished (false). The
// table reports loading while any request is outstanding.
func (t Table[T]) SetLoading(loading bool) Table[T] {
	if loading {
		t.inFlight++
	} else if t.inFlight > 0 {
		t.inFlight--
	}
	return t
}

// Get returns the entity stored under id.
func (t Table[T]) Get(id int64) (T, bool) {
	rec, ok := t.byID[id]
	return rec.value, ok
}

// Has reports whether id is stored.
func (t Table[T]) Has(id int64) bool {
	_, ok := t.byID[id]
	return ok
}

// Len returns the number of stored entities.
func (t Table[T]) Len() int { return len(t.byID) }

// IDs returns the stored ids in ascending order.
func (t Table[T]) IDs() []int64 {
	ids := make([]int64, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// List is the array view of the mapping, ordered by id. It is computed on
// every call and never stored.
func (t Table[T]) List() []T {
	ids := t.IDs()
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = t.byID[id].value
	}
	return out
}

// Filter returns the entities matching keep, ordered by id.
func (t Table[T]) Filter(keep func(T) bool) []T {
	var out []T
	for _, v := range t.List() {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Current returns the selected-entity slot.
func (t Table[T]) Current() Current[T] { return t.current }

// Loading reports whether any request for this kind is in flight.
func (t Table[T]) Loading() bool { return t.inFlight > 0 }

// Err returns the last recorded error.
func (t Table[T]) Err() error { return t.err }

// Equal reports whether two tables hold the same entries and slots. Errors are
// compared by identity.
func (t Table[T]) Equal(o Table[T]) bool {
	if len(t.byID) != len(o.byID) || t.inFlight != o.inFlight || t.err != o.err {
		return false
	}
	for id, rec := range t.byID {
		other, ok := o.byID[id]
		if !ok || !sameFields(rec.fields, other.fields) {
			return false
		}
	}
	if t.current.State != o.current.State || t.current.Err != o.current.Err {
		return false
	}
	return t.current.State != CurrentPresent || sameFields(t.current.rec.fields, o.current.rec.fields)
}

func sameFields(a, b map[string]json.RawMessage) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || string(v) != string(w) {
			return false
		}
	}
	return true
}

func (t Table[T]) copyMap(extra int) map[int64]Record[T] {
	byID := make(map[int64]Record[T], len(t.byID)+extra)
	for id, rec := range t.byID {
		byID[id] = rec
	}
	return byID
}
