package thunks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
	"github.com/foodbridge/foodbridge/internal/state"
)

// Resource is the list/get/create/update/delete thunk set for one REST
// collection. Every operation raises the kind's loading counter for its
// duration and mutates the store only on success.
type Resource[T state.Entity] struct {
	env     *env
	kind    state.Kind[T]
	path    string
	listKey string
	itemKey string
}

func newResource[T state.Entity](e *env, k state.Kind[T], path, listKey, itemKey string) *Resource[T] {
	return &Resource[T]{env: e, kind: k, path: path, listKey: listKey, itemKey: itemKey}
}

// NewResource builds a standalone Resource for kind k at path.
func NewResource[T state.Entity](gw Gateway, bus Dispatcher, k state.Kind[T], path string, opts ...Option) *Resource[T] {
	return newResource(newEnv(gw, bus, opts), k, path, "", "")
}

// Kind returns the table the resource writes to.
func (r *Resource[T]) Kind() state.Kind[T] { return r.kind }

func (r *Resource[T]) item(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

// List replaces the table with the collection.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	return r.listAt(ctx, "list", r.path, true)
}

// listAt fetches a collection from path. replace selects loadAll over
// upsertMany.
func (r *Resource[T]) listAt(ctx context.Context, op, path string, replace bool) ([]T, error) {
	defer track(r.env, r.kind)()

	resp, err := r.env.gw.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fail(r.env, r.kind, op, err)
	}
	recs, err := decodeList[T](resp.Body, r.listKey)
	if err != nil {
		return nil, malformed(r.env, r.kind.Name(), op, err)
	}
	if replace {
		r.env.bus.Dispatch(state.LoadAll(r.kind, recs))
	} else {
		r.env.bus.Dispatch(state.UpsertMany(r.kind, recs))
	}
	r.env.observe(r.kind.Name(), op, OutcomeOK)
	return values(recs), nil
}

// Get loads one entity into the current slot. A 404 is not an error: the slot
// becomes absent and found is false.
func (r *Resource[T]) Get(ctx context.Context, id int64) (v T, found bool, err error) {
	return r.getAt(ctx, "get", r.item(id))
}

func (r *Resource[T]) getAt(ctx context.Context, op, path string) (v T, found bool, err error) {
	defer track(r.env, r.kind)()

	resp, err := r.env.gw.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		var se *foodbridge.StatusError
		if errors.As(err, &se) && se.NotFound() {
			r.env.bus.Dispatch(state.SetCurrent[T](r.kind, nil))
			r.env.observe(r.kind.Name(), op, OutcomeAbsent)
			return v, false, nil
		}
		return v, false, fail(r.env, r.kind, op, err, state.FailCurrent(r.kind, err))
	}
	rec, err := decodeOne[T](resp.Body, r.itemKey)
	if err != nil {
		return v, false, malformed(r.env, r.kind.Name(), op, err)
	}
	r.env.bus.Dispatch(state.SetCurrent(r.kind, &rec))
	r.env.observe(r.kind.Name(), op, OutcomeOK)
	return rec.Value(), true, nil
}

// Create validates in, posts it and upserts the created entity. An invalid
// payload returns *ValidationError without any request.
func (r *Resource[T]) Create(ctx context.Context, in Validator) (T, error) {
	rec, _, err := r.send(ctx, "create", http.MethodPost, r.path, in)
	return rec.Value(), err
}

// Update puts in at id and merges the response into the table and, when it
// holds id, the current slot. in is validated when it implements Validator.
func (r *Resource[T]) Update(ctx context.Context, id int64, in any) (T, error) {
	rec, _, err := r.send(ctx, "update", http.MethodPut, r.item(id), in)
	return rec.Value(), err
}

// send performs a mutating request whose 2xx body is one entity and upserts
// it. The raw body is returned for callers that read sibling fields.
func (r *Resource[T]) send(ctx context.Context, op, method, path string, in any) (state.Record[T], []byte, error) {
	if err := validate(r.env, r.kind.Name(), op, in); err != nil {
		return state.Record[T]{}, nil, err
	}
	defer track(r.env, r.kind)()

	resp, err := r.env.gw.Do(ctx, method, path, in)
	if err != nil {
		return state.Record[T]{}, nil, fail(r.env, r.kind, op, err)
	}
	rec, err := decodeOne[T](resp.Body, r.itemKey)
	if err != nil {
		return state.Record[T]{}, nil, malformed(r.env, r.kind.Name(), op, err)
	}
	r.env.bus.Dispatch(state.UpsertOne(r.kind, rec))
	r.env.observe(r.kind.Name(), op, OutcomeOK)
	return rec, resp.Body, nil
}

// Delete removes id once the server confirms it. Nothing is removed locally
// before a 2xx response.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	defer track(r.env, r.kind)()

	if _, err := r.env.gw.Do(ctx, http.MethodDelete, r.item(id), nil); err != nil {
		return fail(r.env, r.kind, "delete", err)
	}
	r.env.bus.Dispatch(state.RemoveOne(r.kind, id))
	r.env.observe(r.kind.Name(), "delete", OutcomeOK)
	return nil
}

// decodeList accepts a bare array, an object holding the array under key, or
// an object with exactly one array-valued field.
func decodeList[T state.Entity](body []byte, key string) ([]state.Record[T], error) {
	trimmed := bytes.TrimSpace(body)
	var items []json.RawMessage
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
	} else {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		raw, ok := wrapper[key]
		if !ok {
			raw, ok = singleArray(wrapper)
		}
		if !ok {
			return nil, fmt.Errorf("decode list: no array in response")
		}
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
	}
	recs := make([]state.Record[T], 0, len(items))
	for i, item := range items {
		rec, err := state.DecodeRecord[T](item)
		if err != nil {
			return nil, fmt.Errorf("decode list item %d: %w", i, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func singleArray(obj map[string]json.RawMessage) (json.RawMessage, bool) {
	var found json.RawMessage
	n := 0
	for _, v := range obj {
		t := bytes.TrimSpace(v)
		if len(t) > 0 && t[0] == '[' {
			found = t
			n++
		}
	}
	return found, n == 1
}

// decodeOne parses an entity object. Bodies that wrap the entity under one of
// keys, such as {"provider": {...}, "user": {...}}, are unwrapped.
func decodeOne[T state.Entity](body []byte, keys ...string) (state.Record[T], error) {
	rec, err := state.DecodeRecord[T](body)
	if err == nil {
		return rec, nil
	}
	var wrapper map[string]json.RawMessage
	if json.Unmarshal(body, &wrapper) != nil {
		return rec, err
	}
	for _, k := range keys {
		if raw, ok := wrapper[k]; ok {
			return state.DecodeRecord[T](raw)
		}
	}
	return rec, err
}
