package state

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
)

func TestStore_DispatchUpdatesSnapshot(t *testing.T) {
	var s Store

	s.Dispatch(LoadAll(CenterKind, NewRecords(center(1, "Hub A"))))

	snap := s.Snapshot()
	if got, ok := snap.Centers.Get(1); !ok || got.Name != "Hub A" {
		t.Fatalf("Centers.Get(1) = %+v, %v; want Hub A", got, ok)
	}
	s.Dispatch(nil)
	if s.Snapshot().Centers.Len() != 1 {
		t.Fatalf("nil action changed state")
	}
}

func TestStore_SnapshotIsIndependent(t *testing.T) {
	var s Store
	s.Dispatch(LoadAll(CenterKind, NewRecords(center(1, "a"))))
	before := s.Snapshot()

	s.Dispatch(UpsertOne(CenterKind, NewRecord(center(2, "b"))))
	if before.Centers.Len() != 1 {
		t.Fatalf("earlier snapshot changed: Len = %d, want 1", before.Centers.Len())
	}
	if s.Snapshot().Centers.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Snapshot().Centers.Len())
	}
}

func TestStore_ListenersSeeFullyAppliedState(t *testing.T) {
	var s Store
	var seen []int
	s.Subscribe(func(st State) {
		seen = append(seen, st.Centers.Len()+st.Listings.Len())
	})

	s.Dispatch(Batch(
		LoadAll(CenterKind, NewRecords(center(1, "a"))),
		LoadAll(ListingKind, NewRecords(foodbridge.FoodListing{ID: 1, Title: "Bread"})),
	))

	if len(seen) != 1 || seen[0] != 2 {
		t.Fatalf("listener saw %v, want one notification with both tables loaded", seen)
	}
}

func TestStore_DispatchFromListenerQueues(t *testing.T) {
	var s Store
	var order []string

	s.Subscribe(func(st State) {
		order = append(order, "first:"+strconv.Itoa(st.Centers.Len()))
		if st.Centers.Len() == 1 {
			s.Dispatch(UpsertOne(CenterKind, NewRecord(center(2, "b"))))
			order = append(order, "dispatched")
		}
	})
	s.Subscribe(func(st State) {
		order = append(order, "second:"+strconv.Itoa(st.Centers.Len()))
	})

	s.Dispatch(UpsertOne(CenterKind, NewRecord(center(1, "a"))))

	want := []string{"first:1", "dispatched", "second:1", "first:2", "second:2"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if s.Snapshot().Centers.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Snapshot().Centers.Len())
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	var s Store
	calls := 0
	unsubscribe := s.Subscribe(func(State) { calls++ })

	s.Dispatch(SetLoading(CenterKind, true))
	unsubscribe()
	unsubscribe()
	s.Dispatch(SetLoading(CenterKind, false))

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	var s Store
	var mu sync.Mutex
	notified := 0
	s.Subscribe(func(State) {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	const n = 50
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.Dispatch(UpsertOne(CenterKind, NewRecord(center(id, "c"))))
		}(int64(i))
	}
	wg.Wait()

	if got := s.Snapshot().Centers.Len(); got != n {
		t.Fatalf("Len = %d, want %d", got, n)
	}
	mu.Lock()
	defer mu.Unlock()
	if notified != n {
		t.Fatalf("notified = %d, want %d", notified, n)
	}
}

func TestStore_SessionActions(t *testing.T) {
	var s Store
	if s.Snapshot().Session.Status() != SessionUnknown {
		t.Fatalf("initial session = %v, want unknown", s.Snapshot().Session.Status())
	}

	s.Dispatch(SetSessionUser(foodbridge.User{ID: 3, UserType: foodbridge.RoleProvider}))
	s.Dispatch(SetAllergenPreferences(foodbridge.AllergenPreferences{Allergens: []string{"peanuts"}}))
	sess := s.Snapshot().Session
	if !sess.IsAuthenticated() || !sess.Is(foodbridge.RoleProvider) || sess.UserID() != 3 {
		t.Fatalf("session = %+v, want provider 3", sess)
	}

	s.Dispatch(ClearSession())
	snap := s.Snapshot()
	if snap.Session.IsAuthenticated() || snap.Session.Status() != SessionAnonymous {
		t.Fatalf("session after clear = %v", snap.Session.Status())
	}
	if _, ok := snap.Session.User(); ok {
		t.Fatalf("User() ok after clear")
	}
	if snap.AllergenPreferences != nil {
		t.Fatalf("AllergenPreferences kept after clear")
	}
	if snap.Session.Role() != "" {
		t.Fatalf("Role = %q, want empty", snap.Session.Role())
	}
}

func TestRecordSync_ConsecutiveFailures(t *testing.T) {
	var s Store
	now := time.Now()

	s.Dispatch(RecordSync(now, errors.New("fail 1")))
	if snap := s.Snapshot(); snap.Sync.ConsecutiveFailures != 1 || snap.Sync.IsOffline() {
		t.Fatalf("after 1 failure: %+v", snap.Sync)
	}
	s.Dispatch(RecordSync(now, errors.New("fail 2")))
	if snap := s.Snapshot(); !snap.Sync.IsOffline() {
		t.Fatalf("IsOffline() = false, want true with 2 failures")
	}
	s.Dispatch(RecordSync(now, nil))
	snap := s.Snapshot()
	if snap.Sync.ConsecutiveFailures != 0 || snap.Sync.LastError != nil || snap.Sync.IsOffline() {
		t.Fatalf("after success: %+v", snap.Sync)
	}
	if !snap.Sync.LastUpdated.Equal(now) {
		t.Fatalf("LastUpdated = %v, want %v", snap.Sync.LastUpdated, now)
	}
}

func TestActionTypes(t *testing.T) {
	a := Batch(SetLoading(ListingKind, true), RemoveOne(ProviderKind, 1))
	if got := a.Type(); got != "batch(foodListings/setLoading,providers/removeOne)" {
		t.Fatalf("Type = %q", got)
	}
}
