package foodbridge

import (
	"strings"
	"time"
)

const serverTimestampLayout = "2006-01-02 15:04:05"

// Role is the account type attached to a user.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleProvider  Role = "PROVIDER"
	RoleRecipient Role = "RECIPIENT"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProvider, RoleRecipient:
		return true
	}
	return false
}

// CenterStatus is the operating status of a distribution center.
type CenterStatus string

const (
	CenterOpen        CenterStatus = "OPEN"
	CenterClosed      CenterStatus = "CLOSED"
	CenterMaintenance CenterStatus = "MAINTENANCE"
	CenterHighDemand  CenterStatus = "HIGH_DEMAND"
	CenterLimited     CenterStatus = "LIMITED"
	CenterAvailable   CenterStatus = "AVAILABLE"
)

// Valid reports whether s is one of the known center statuses.
func (s CenterStatus) Valid() bool {
	switch s {
	case CenterOpen, CenterClosed, CenterMaintenance, CenterHighDemand, CenterLimited, CenterAvailable:
		return true
	}
	return false
}

// FoodType categorises a listing.
type FoodType string

const (
	FoodProduce  FoodType = "PRODUCE"
	FoodBakery   FoodType = "BAKERY"
	FoodDairy    FoodType = "DAIRY"
	FoodPantry   FoodType = "PANTRY"
	FoodPrepared FoodType = "PREPARED"
	FoodFrozen   FoodType = "FROZEN"
	FoodSnacks   FoodType = "SNACKS"
	FoodOther    FoodType = "OTHER"
)

// Valid reports whether t is one of the known food types.
func (t FoodType) Valid() bool {
	switch t {
	case FoodProduce, FoodBakery, FoodDairy, FoodPantry, FoodPrepared, FoodFrozen, FoodSnacks, FoodOther:
		return true
	}
	return false
}

// ListingStatus tracks a listing through claim and pickup.
type ListingStatus string

const (
	ListingPending   ListingStatus = "PENDING"
	ListingAvailable ListingStatus = "AVAILABLE"
	ListingClaimed   ListingStatus = "CLAIMED"
	ListingCompleted ListingStatus = "COMPLETED"
	ListingExpired   ListingStatus = "EXPIRED"
)

// Valid reports whether s is one of the known listing statuses.
func (s ListingStatus) Valid() bool {
	switch s {
	case ListingPending, ListingAvailable, ListingClaimed, ListingCompleted, ListingExpired:
		return true
	}
	return false
}

// ReservationStatus tracks a recipient's claim.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCompleted ReservationStatus = "COMPLETED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Valid reports whether s is one of the known reservation statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCompleted, ReservationCancelled:
		return true
	}
	return false
}

// DistributionCenter mirrors /api/distribution-centers records.
type DistributionCenter struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	Address        string       `json:"address"`
	Latitude       float64      `json:"latitude"`
	Longitude      float64      `json:"longitude"`
	ContactPerson  string       `json:"contact_person"`
	Phone          string       `json:"phone"`
	Email          string       `json:"email"`
	OperatingHours string       `json:"operating_hours"`
	Capacity       int          `json:"capacity"`
	Status         CenterStatus `json:"status"`
	FoodTypes      []string     `json:"food_types"`
	ImageURL       string       `json:"image_url"`
	CreatedAt      string       `json:"created_at"`
}

// EntityID returns the server-assigned id.
func (c DistributionCenter) EntityID() int64 { return c.ID }

// FoodListing mirrors /api/food-listings records.
type FoodListing struct {
	ID                   int64         `json:"id"`
	ProviderID           int64         `json:"provider_id"`
	DistributionCenterID int64         `json:"distribution_center_id"`
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	FoodType             FoodType      `json:"food_type"`
	Quantity             float64       `json:"quantity"`
	Unit                 string        `json:"unit"`
	ExpirationDate       string        `json:"expiration_date"`
	PickupStart          string        `json:"pickup_start"`
	PickupEnd            string        `json:"pickup_end"`
	Status               ListingStatus `json:"status"`
	Allergens            []string      `json:"allergens"`
	CreatedAt            string        `json:"created_at"`
}

// EntityID returns the server-assigned id.
func (l FoodListing) EntityID() int64 { return l.ID }

// ParsedExpiration returns the parsed expiration timestamp.
func (l FoodListing) ParsedExpiration() time.Time {
	return parseTime(l.ExpirationDate)
}

// Expired reports whether the listing has passed its expiration at now. A
// listing without a parseable expiration never expires client-side.
func (l FoodListing) Expired(now time.Time) bool {
	exp := l.ParsedExpiration()
	return !exp.IsZero() && now.After(exp)
}

// HasAllergen reports whether the listing is tagged with name, ignoring case.
func (l FoodListing) HasAllergen(name string) bool {
	for _, a := range l.Allergens {
		if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// Provider mirrors /api/providers records.
type Provider struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"user_id"`
	BusinessName string  `json:"business_name"`
	BusinessType string  `json:"business_type"`
	Address      string  `json:"address"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email"`
	Website      string  `json:"website"`
	ImageURL     string  `json:"image_url"`
	CreatedAt    string  `json:"created_at"`
}

// EntityID returns the server-assigned id.
func (p Provider) EntityID() int64 { return p.ID }

// User mirrors the session and /api/users payloads.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	UserType     Role   `json:"user_type"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone"`
	ProfileImage string `json:"profile_image"`
}

// EntityID returns the server-assigned id.
func (u User) EntityID() int64 { return u.ID }

// DisplayName prefers the full name, then the username, then the email.
func (u User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	switch {
	case full != "":
		return full
	case u.Username != "":
		return u.Username
	}
	return u.Email
}

// TaxRecord mirrors /api/tax-records records.
type TaxRecord struct {
	ID                 int64   `json:"id"`
	ProviderID         int64   `json:"provider_id"`
	ListingID          int64   `json:"listing_id"`
	DonationDate       string  `json:"donation_date"`
	FoodValue          float64 `json:"food_value"`
	TaxDeductionAmount float64 `json:"tax_deduction_amount"`
	TaxYear            int     `json:"tax_year"`
	ReceiptNumber      string  `json:"receipt_number"`
	CreatedAt          string  `json:"created_at"`
}

// EntityID returns the server-assigned id.
func (r TaxRecord) EntityID() int64 { return r.ID }

// AllergenAlert mirrors /api/allergen-alerts records.
type AllergenAlert struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	AllergenName string `json:"allergen_name"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
}

// EntityID returns the server-assigned id.
func (a AllergenAlert) EntityID() int64 { return a.ID }

// Reservation mirrors /api/reservations records.
type Reservation struct {
	ID          int64             `json:"id"`
	ListingID   int64             `json:"listing_id"`
	RecipientID int64             `json:"recipient_id"`
	PickupTime  string            `json:"pickup_time"`
	Status      ReservationStatus `json:"status"`
	Notes       string            `json:"notes"`
	CreatedAt   string            `json:"created_at"`
}

// EntityID returns the server-assigned id.
func (r Reservation) EntityID() int64 { return r.ID }

// ParsedPickupTime returns the parsed pickup timestamp.
func (r Reservation) ParsedPickupTime() time.Time {
	return parseTime(r.PickupTime)
}

// AllergenPreferences is the notification configuration stored by
// PUT /api/allergen-alerts/preferences.
type AllergenPreferences struct {
	Allergens          []string `json:"allergens"`
	EmailNotifications bool     `json:"email_notifications"`
	SMSNotifications   bool     `json:"sms_notifications"`
	NotificationTypes  []string `json:"notification_types"`
}

// ParseTime accepts the timestamp layouts the API emits and returns the zero
// time when none match.
func ParseTime(value string) time.Time {
	return parseTime(value)
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(serverTimestampLayout, value, time.Local); err == nil {
		return t
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t
	}
	return time.Time{}
}
