package state

import (
	"errors"
	"testing"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
)

func center(id int64, name string) foodbridge.DistributionCenter {
	return foodbridge.DistributionCenter{ID: id, Name: name, Address: "1 Main St", Status: foodbridge.CenterOpen}
}

func mustDecode[T Entity](t *testing.T, raw string) Record[T] {
	t.Helper()
	rec, err := DecodeRecord[T]([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeRecord(%s): %v", raw, err)
	}
	return rec
}

func TestTable_LoadAllIsIdempotent(t *testing.T) {
	recs := NewRecords(center(1, "Hub A"), center(2, "Hub B"))

	var once Table[foodbridge.DistributionCenter]
	once = once.LoadAll(recs)
	twice := once.LoadAll(recs)

	if !once.Equal(twice) {
		t.Fatalf("LoadAll twice differs from once")
	}
	if once.Len() != 2 {
		t.Fatalf("Len = %d, want 2", once.Len())
	}
}

func TestTable_LoadAllReplacesAndClearsError(t *testing.T) {
	var tbl Table[foodbridge.DistributionCenter]
	tbl = tbl.LoadAll(NewRecords(center(1, "old"), center(2, "old")))
	tbl = tbl.SetError(errors.New("boom"))
	tbl = tbl.LoadAll(NewRecords(center(3, "new")))

	if got := tbl.IDs(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("IDs = %v, want [3]", got)
	}
	if tbl.Err() != nil {
		t.Fatalf("Err = %v, want nil", tbl.Err())
	}
}

func TestTable_RemoveAbsentIDLeavesTableUnchanged(t *testing.T) {
	var tbl Table[foodbridge.DistributionCenter]
	tbl = tbl.LoadAll(NewRecords(center(1, "Hub A")))
	rec := NewRecord(center(1, "Hub A"))
	tbl = tbl.SetCurrent(&rec)
	tbl = tbl.SetError(errors.New("kept"))

	after := tbl.RemoveOne(42)
	if !after.Equal(tbl) {
		t.Fatalf("RemoveOne(42) changed the table")
	}

	var empty Table[foodbridge.DistributionCenter]
	if !empty.RemoveOne(7).Equal(empty) {
		t.Fatalf("RemoveOne on empty table changed it")
	}
}

func TestTable_RemoveCurrentMarksAbsent(t *testing.T) {
	var tbl Table[foodbridge.Provider]
	rec := NewRecord(foodbridge.Provider{ID: 5, UserID: 9, BusinessName: "Bakery"})
	tbl = tbl.UpsertOne(rec).SetCurrent(&rec)

	tbl = tbl.RemoveOne(5)
	if tbl.Has(5) {
		t.Fatalf("id 5 still present")
	}
	if got := tbl.Current().State; got != CurrentAbsent {
		t.Fatalf("Current().State = %v, want absent", got)
	}
}

func TestTable_RemoveCurrentOnlyMarksAbsent(t *testing.T) {
	var tbl Table[foodbridge.Provider]
	other := NewRecord(foodbridge.Provider{ID: 2, BusinessName: "Deli"})
	rec := NewRecord(foodbridge.Provider{ID: 5, UserID: 9, BusinessName: "Bakery"})
	tbl = tbl.UpsertOne(other).SetCurrent(&rec)

	tbl = tbl.RemoveOne(5)
	if got := tbl.Current().State; got != CurrentAbsent {
		t.Fatalf("Current().State = %v, want absent", got)
	}
	if tbl.Len() != 1 || !tbl.Has(2) {
		t.Fatalf("mapping = %v, want only id 2", tbl.IDs())
	}
}

func TestTable_UpsertPartialMerge(t *testing.T) {
	var tbl Table[foodbridge.DistributionCenter]
	full := center(1, "Hub A")
	full.Capacity = 40
	full.FoodTypes = []string{"PRODUCE"}
	tbl = tbl.UpsertOne(NewRecord(full))

	tbl = tbl.UpsertOne(mustDecode[foodbridge.DistributionCenter](t, `{"id":1,"name":"Hub A2"}`))

	got, ok := tbl.Get(1)
	if !ok {
		t.Fatalf("id 1 missing")
	}
	if got.Name != "Hub A2" {
		t.Fatalf("Name = %q, want Hub A2", got.Name)
	}
	if got.Address != full.Address || got.Capacity != 40 || got.Status != foodbridge.CenterOpen {
		t.Fatalf("unrelated fields changed: %+v", got)
	}
	if len(got.FoodTypes) != 1 || got.FoodTypes[0] != "PRODUCE" {
		t.Fatalf("FoodTypes = %v, want [PRODUCE]", got.FoodTypes)
	}
}

func TestTable_UpsertNeverRemovesOtherKeys(t *testing.T) {
	var tbl Table[foodbridge.DistributionCenter]
	tbl = tbl.LoadAll(NewRecords(center(1, "a"), center(2, "b")))
	tbl = tbl.UpsertOne(NewRecord(center(3, "c")))
	if tbl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tbl.Len())
	}
}

func TestTable_UpsertRefreshesCurrent(t *testing.T) {
	var tbl Table[foodbridge.DistributionCenter]
	rec := NewRecord(center(1, "Hub A"))
	tbl = tbl.UpsertOne(rec).SetCurrent(&rec)

	tbl = tbl.UpsertOne(mustDecode[foodbridge.DistributionCenter](t, `{"id":1,"status":"HIGH_DEMAND"}`))

	cur, ok := tbl.Current().Value()
	if !ok {
		t.Fatalf("current slot lost")
	}
	if cur.Status != foodbridge.CenterHighDemand || cur.Name != "Hub A" {
		t.Fatalf("current = %+v, want merged status with original name", cur)
	}
	list, _ := tbl.Get(1)
	if list.Status != cur.Status {
		t.Fatalf("list and current disagree: %v vs %v", list.Status, cur.Status)
	}

	// An upsert for another id leaves the slot alone.
	tbl = tbl.UpsertOne(NewRecord(center(2, "Hub B")))
	if cur2, _ := tbl.Current().Value(); cur2.ID != 1 {
		t.Fatalf("current id = %d, want 1", cur2.ID)
	}
}

func TestTable_TransitionsDoNotAlias(t *testing.T) {
	var base Table[foodbridge.DistributionCenter]
	base = base.LoadAll(NewRecords(center(1, "a")))
	next := base.UpsertOne(NewRecord(center(2, "b")))
	if base.Len() != 1 || next.Len() != 2 {
		t.Fatalf("base Len = %d next Len = %d, want 1 and 2", base.Len(), next.Len())
	}
	_ = next.RemoveOne(1)
	if !next.Has(1) {
		t.Fatalf("RemoveOne mutated its receiver")
	}
}

func TestTable_CurrentStates(t *testing.T) {
	var tbl Table[foodbridge.Provider]
	if tbl.Current().State != CurrentUnloaded {
		t.Fatalf("initial slot = %v, want unloaded", tbl.Current().State)
	}
	tbl = tbl.SetCurrent(nil)
	if _, ok := tbl.Current().Value(); ok || tbl.Current().State != CurrentAbsent {
		t.Fatalf("SetCurrent(nil) slot = %v", tbl.Current().State)
	}
	boom := errors.New("boom")
	tbl = tbl.FailCurrent(boom)
	if tbl.Current().State != CurrentFailed || tbl.Current().Err != boom {
		t.Fatalf("FailCurrent slot = %+v", tbl.Current())
	}
	if tbl.Err() != nil {
		t.Fatalf("FailCurrent should not set the table error")
	}
}

func TestTable_SetErrorKeepsMapping(t *testing.T) {
	var tbl Table[foodbridge.DistributionCenter]
	tbl = tbl.LoadAll(NewRecords(center(1, "a")))
	tbl = tbl.SetError(errors.New("down"))
	if !tbl.Has(1) || tbl.Err() == nil {
		t.Fatalf("SetError: Has(1)=%v Err=%v", tbl.Has(1), tbl.Err())
	}
}

func TestTable_LoadingCounts(t *testing.T) {
	var tbl Table[foodbridge.FoodListing]
	tbl = tbl.SetLoading(true).SetLoading(true)
	tbl = tbl.SetLoading(false)
	if !tbl.Loading() {
		t.Fatalf("Loading = false with one request outstanding")
	}
	tbl = tbl.SetLoading(false).SetLoading(false)
	if tbl.Loading() {
		t.Fatalf("Loading = true after all requests finished")
	}
}

func TestTable_ListOrderedByID(t *testing.T) {
	var tbl Table[foodbridge.DistributionCenter]
	tbl = tbl.LoadAll(NewRecords(center(9, "c"), center(2, "a"), center(5, "b")))
	list := tbl.List()
	if len(list) != 3 || list[0].ID != 2 || list[1].ID != 5 || list[2].ID != 9 {
		t.Fatalf("List = %+v, want ids 2,5,9", list)
	}
}

func TestDecodeRecordRejectsBadInput(t *testing.T) {
	for _, raw := range []string{`[]`, `null`, `{"name":"no id"}`, `{"id":"x"}`, `nope`} {
		if _, err := DecodeRecord[foodbridge.DistributionCenter]([]byte(raw)); err == nil {
			t.Fatalf("DecodeRecord(%s) succeeded, want error", raw)
		}
	}
}
