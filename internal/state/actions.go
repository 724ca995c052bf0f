package state

import (
	"strings"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
)

// State is the union of every entity table plus session-scoped values. It is a
// value type: reducers receive a copy and return the next one.
type State struct {
	Session        Session
	Centers        Table[foodbridge.DistributionCenter]
	Listings       Table[foodbridge.FoodListing]
	Providers      Table[foodbridge.Provider]
	TaxRecords     Table[foodbridge.TaxRecord]
	AllergenAlerts Table[foodbridge.AllergenAlert]
	Users          Table[foodbridge.User]
	Reservations   Table[foodbridge.Reservation]

	// AllergenPreferences is nil until loaded or saved.
	AllergenPreferences *foodbridge.AllergenPreferences
	// NearbyProviders holds provider ids in the order the server ranked them.
	NearbyProviders []int64

	Sync SyncStatus
}

// Kind names one entity table inside State.
type Kind[T Entity] struct {
	name  string
	table func(*State) *Table[T]
}

// Name is the action-type prefix for the kind.
func (k Kind[T]) Name() string { return k.name }

// Of returns the kind's table from s.
func (k Kind[T]) Of(s State) Table[T] { return *k.table(&s) }

var (
	CenterKind        = Kind[foodbridge.DistributionCenter]{"distributionCenters", func(s *State) *Table[foodbridge.DistributionCenter] { return &s.Centers }}
	ListingKind       = Kind[foodbridge.FoodListing]{"foodListings", func(s *State) *Table[foodbridge.FoodListing] { return &s.Listings }}
	ProviderKind      = Kind[foodbridge.Provider]{"providers", func(s *State) *Table[foodbridge.Provider] { return &s.Providers }}
	TaxRecordKind     = Kind[foodbridge.TaxRecord]{"taxRecords", func(s *State) *Table[foodbridge.TaxRecord] { return &s.TaxRecords }}
	AllergenAlertKind = Kind[foodbridge.AllergenAlert]{"allergenAlerts", func(s *State) *Table[foodbridge.AllergenAlert] { return &s.AllergenAlerts }}
	UserKind          = Kind[foodbridge.User]{"users", func(s *State) *Table[foodbridge.User] { return &s.Users }}
	ReservationKind   = Kind[foodbridge.Reservation]{"reservations", func(s *State) *Table[foodbridge.Reservation] { return &s.Reservations }}
)

// Action is one state transition. Reduce must be pure and must not block.
type Action interface {
	Type() string
	Reduce(State) State
}

// Reduce applies a to s.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.Reduce(s)
}

type tableAction[T Entity] struct {
	kind Kind[T]
	op   string
	fn   func(Table[T]) Table[T]
}

func (a tableAction[T]) Type() string { return a.kind.name + "/" + a.op }

func (a tableAction[T]) Reduce(s State) State {
	t := a.kind.table(&s)
	*t = a.fn(*t)
	return s
}

// LoadAll replaces the kind's mapping with recs.
func LoadAll[T Entity](k Kind[T], recs []Record[T]) Action {
	return tableAction[T]{k, "loadAll", func(t Table[T]) Table[T] { return t.LoadAll(recs) }}
}

// UpsertOne inserts or merges rec.
func UpsertOne[T Entity](k Kind[T], rec Record[T]) Action {
	return tableAction[T]{k, "upsertOne", func(t Table[T]) Table[T] { return t.UpsertOne(rec) }}
}

// UpsertMany inserts or merges each of recs.
func UpsertMany[T Entity](k Kind[T], recs []Record[T]) Action {
	return tableAction[T]{k, "upsertMany", func(t Table[T]) Table[T] { return t.UpsertMany(recs) }}
}

// RemoveOne deletes id from the kind's mapping.
func RemoveOne[T Entity](k Kind[T], id int64) Action {
	return tableAction[T]{k, "removeOne", func(t Table[T]) Table[T] { return t.RemoveOne(id) }}
}

// SetCurrent selects rec; nil marks the slot absent.
func SetCurrent[T Entity](k Kind[T], rec *Record[T]) Action {
	return tableAction[T]{k, "setCurrent", func(t Table[T]) Table[T] { return t.SetCurrent(rec) }}
}

// FailCurrent marks the kind's current slot as failed.
func FailCurrent[T Entity](k Kind[T], err error) Action {
	return tableAction[T]{k, "failCurrent", func(t Table[T]) Table[T] { return t.FailCurrent(err) }}
}

// SetError records err on the kind.
func SetError[T Entity](k Kind[T], err error) Action {
	return tableAction[T]{k, "setError", func(t Table[T]) Table[T] { return t.SetError(err) }}
}

// SetLoading marks a request on the kind as started or finished.
func SetLoading[T Entity](k Kind[T], loading bool) Action {
	return tableAction[T]{k, "setLoading", func(t Table[T]) Table[T] { return t.SetLoading(loading) }}
}

type funcAction struct {
	typ string
	fn  func(State) State
}

func (a funcAction) Type() string { return a.typ }
func (a funcAction) Reduce(s State) State { return a.fn(s) }

// SetSessionUser marks the session authenticated as u.
func SetSessionUser(u foodbridge.User) Action {
	return funcAction{"session/setUser", func(s State) State {
		s.Session = Session{status: SessionAuthenticated, user: u}
		return s
	}}
}

// ClearSession marks the session anonymous and drops user-scoped values.
func ClearSession() Action {
	return funcAction{"session/removeUser", func(s State) State {
		s.Session = Session{status: SessionAnonymous}
		s.AllergenPreferences = nil
		return s
	}}
}

// SetAllergenPreferences stores the session user's notification settings.
func SetAllergenPreferences(p foodbridge.AllergenPreferences) Action {
	return funcAction{"allergenAlerts/setPreferences", func(s State) State {
		s.AllergenPreferences = &p
		return s
	}}
}

// SetNearbyProviders stores the ranked provider ids of a proximity search.
func SetNearbyProviders(ids []int64) Action {
	dup := append([]int64(nil), ids...)
	return funcAction{"providers/setNearby", func(s State) State {
		s.NearbyProviders = dup
		return s
	}}
}

type batch []Action

func (b batch) Type() string {
	types := make([]string, len(b))
	for i, a := range b {
		types[i] = a.Type()
	}
	return "batch(" + strings.Join(types, ",") + ")"
}

func (b batch) Reduce(s State) State {
	for _, a := range b {
		s = Reduce(s, a)
	}
	return s
}

// Batch applies actions in order as a single transition; subscribers see only
// the final state.
func Batch(actions ...Action) Action {
	return batch(actions)
}
