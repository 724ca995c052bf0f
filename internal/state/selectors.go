package state

import (
	"strings"
	"time"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
)

// ListingsByProvider returns the listings owned by providerID.
func ListingsByProvider(s State, providerID int64) []foodbridge.FoodListing {
	return s.Listings.Filter(func(l foodbridge.FoodListing) bool {
		return l.ProviderID == providerID
	})
}

// AvailableListings returns listings a recipient can still claim at now.
func AvailableListings(s State, now time.Time) []foodbridge.FoodListing {
	return s.Listings.Filter(func(l foodbridge.FoodListing) bool {
		return l.Status == foodbridge.ListingAvailable && !l.Expired(now)
	})
}

// SafeListings drops available listings that carry any of the active allergen
// alerts of the session user.
func SafeListings(s State, now time.Time) []foodbridge.FoodListing {
	alerts := ActiveAlerts(s)
	var out []foodbridge.FoodListing
	for _, l := range AvailableListings(s, now) {
		safe := true
		for _, a := range alerts {
			if l.HasAllergen(a.AllergenName) {
				safe = false
				break
			}
		}
		if safe {
			out = append(out, l)
		}
	}
	return out
}

// ActiveAlerts returns the session user's enabled allergen alerts.
func ActiveAlerts(s State) []foodbridge.AllergenAlert {
	uid := s.Session.UserID()
	return s.AllergenAlerts.Filter(func(a foodbridge.AllergenAlert) bool {
		return a.IsActive && (uid == 0 || a.UserID == 0 || a.UserID == uid)
	})
}

// CentersByStatus returns centers in any of the given statuses; no statuses
// means all centers.
func CentersByStatus(s State, statuses ...foodbridge.CenterStatus) []foodbridge.DistributionCenter {
	if len(statuses) == 0 {
		return s.Centers.List()
	}
	return s.Centers.Filter(func(c foodbridge.DistributionCenter) bool {
		for _, st := range statuses {
			if c.Status == st {
				return true
			}
		}
		return false
	})
}

// SearchCenters matches query against name and address, case-insensitively.
func SearchCenters(s State, query string) []foodbridge.DistributionCenter {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Centers.List()
	}
	return s.Centers.Filter(func(c foodbridge.DistributionCenter) bool {
		return strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Address), q)
	})
}

// NearbyProviders resolves the ranked ids of the last proximity search. Ids no
// longer in the providers table are skipped.
func NearbyProviders(s State) []foodbridge.Provider {
	out := make([]foodbridge.Provider, 0, len(s.NearbyProviders))
	for _, id := range s.NearbyProviders {
		if p, ok := s.Providers.Get(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// SessionProvider returns the provider profile of the signed-in user. The
// current slot wins when it belongs to the user; otherwise the table is
// searched.
func SessionProvider(s State) (foodbridge.Provider, bool) {
	uid := s.Session.UserID()
	if uid == 0 {
		return foodbridge.Provider{}, false
	}
	if p, ok := s.Providers.Current().Value(); ok && p.UserID == uid {
		return p, true
	}
	for _, p := range s.Providers.List() {
		if p.UserID == uid {
			return p, true
		}
	}
	return foodbridge.Provider{}, false
}

// ReservationsForListing returns the reservations held against listingID.
func ReservationsForListing(s State, listingID int64) []foodbridge.Reservation {
	return s.Reservations.Filter(func(r foodbridge.Reservation) bool {
		return r.ListingID == listingID
	})
}

// TaxRecordsForYear returns records for year; zero means all years.
func TaxRecordsForYear(s State, year int) []foodbridge.TaxRecord {
	if year == 0 {
		return s.TaxRecords.List()
	}
	return s.TaxRecords.Filter(func(r foodbridge.TaxRecord) bool {
		return r.TaxYear == year
	})
}

// TotalDeduction sums the deduction amount of recs.
func TotalDeduction(recs []foodbridge.TaxRecord) float64 {
	var total float64
	for _, r := range recs {
		total += r.TaxDeductionAmount
	}
	return total
}
