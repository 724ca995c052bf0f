package foodbridge

import (
	"net/mail"
	"strings"
)

// CenterInput is the creatable subset of a DistributionCenter.
type CenterInput struct {
	Name           string       `json:"name"`
	Address        string       `json:"address"`
	Latitude       float64      `json:"latitude"`
	Longitude      float64      `json:"longitude"`
	ContactPerson  string       `json:"contact_person,omitempty"`
	Phone          string       `json:"phone,omitempty"`
	Email          string       `json:"email,omitempty"`
	OperatingHours string       `json:"operating_hours,omitempty"`
	Capacity       int          `json:"capacity,omitempty"`
	Status         CenterStatus `json:"status,omitempty"`
	FoodTypes      []string     `json:"food_types,omitempty"`
	ImageURL       string       `json:"image_url,omitempty"`
}

// Validate checks required fields and enumerations.
func (in CenterInput) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.require("name", in.Name)
	errs.require("address", in.Address)
	if in.Latitude < -90 || in.Latitude > 90 {
		errs.Add("latitude", "must be between -90 and 90")
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		errs.Add("longitude", "must be between -180 and 180")
	}
	if in.Capacity < 0 {
		errs.Add("capacity", "must not be negative")
	}
	if in.Status != "" && !in.Status.Valid() {
		errs.Add("status", "unknown status "+string(in.Status))
	}
	for _, ft := range in.FoodTypes {
		if !FoodType(ft).Valid() {
			errs.Add("food_types", "unknown food type "+ft)
			break
		}
	}
	return errs.orNil()
}

// ListingInput is the creatable subset of a FoodListing.
type ListingInput struct {
	Title                string        `json:"title"`
	Description          string        `json:"description,omitempty"`
	FoodType             FoodType      `json:"food_type,omitempty"`
	Quantity             float64       `json:"quantity"`
	Unit                 string        `json:"unit,omitempty"`
	ExpirationDate       string        `json:"expiration_date"`
	PickupStart          string        `json:"pickup_start,omitempty"`
	PickupEnd            string        `json:"pickup_end,omitempty"`
	Status               ListingStatus `json:"status,omitempty"`
	Allergens            []string      `json:"allergens,omitempty"`
	DistributionCenterID int64         `json:"distribution_center_id,omitempty"`
}

// Validate checks required fields, enumerations and the pickup window.
func (in ListingInput) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.require("title", in.Title)
	if in.Quantity <= 0 {
		errs.Add("quantity", "must be greater than zero")
	}
	if strings.TrimSpace(in.ExpirationDate) == "" {
		errs.Add("expiration_date", "is required")
	} else if parseTime(in.ExpirationDate).IsZero() {
		errs.Add("expiration_date", "is not a valid timestamp")
	}
	if in.FoodType != "" && !in.FoodType.Valid() {
		errs.Add("food_type", "unknown food type "+string(in.FoodType))
	}
	if in.Status != "" && !in.Status.Valid() {
		errs.Add("status", "unknown status "+string(in.Status))
	}
	start, end := parseTime(in.PickupStart), parseTime(in.PickupEnd)
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		errs.Add("pickup_end", "must not be before pickup_start")
	}
	return errs.orNil()
}

// ProviderInput is the creatable subset of a Provider.
type ProviderInput struct {
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type,omitempty"`
	Address      string `json:"address"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Website      string `json:"website,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
}

// Validate checks required fields.
func (in ProviderInput) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.require("business_name", in.BusinessName)
	errs.require("address", in.Address)
	if in.Email != "" {
		errs.email("email", in.Email)
	}
	return errs.orNil()
}

// AlertInput subscribes the session user to an allergen.
type AlertInput struct {
	AllergenName string `json:"allergen_name"`
}

// Validate checks required fields.
func (in AlertInput) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.require("allergen_name", in.AllergenName)
	return errs.orNil()
}

// ReservationInput claims a listing for a pickup slot.
type ReservationInput struct {
	ListingID  int64  `json:"listing_id"`
	PickupTime string `json:"pickup_time"`
	Notes      string `json:"notes,omitempty"`
}

// Validate checks required fields.
func (in ReservationInput) Validate() FieldErrors {
	errs := FieldErrors{}
	if in.ListingID <= 0 {
		errs.Add("listing_id", "is required")
	}
	if strings.TrimSpace(in.PickupTime) == "" {
		errs.Add("pickup_time", "is required")
	} else if parseTime(in.PickupTime).IsZero() {
		errs.Add("pickup_time", "is not a valid timestamp")
	}
	return errs.orNil()
}

// Credentials are posted to /api/auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks required fields.
func (in Credentials) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.require("email", in.Email)
	errs.require("password", in.Password)
	return errs.orNil()
}

// SignupInput is posted to /api/auth/signup.
type SignupInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	UserType  Role   `json:"user_type"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Validate checks required fields, the email shape and the role.
func (in SignupInput) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.require("username", in.Username)
	if errs.require("email", in.Email) {
		errs.email("email", in.Email)
	}
	if errs.require("password", in.Password) && len(in.Password) < 6 {
		errs.Add("password", "must be at least 6 characters")
	}
	if !in.UserType.Valid() {
		errs.Add("user_type", "must be one of ADMIN, PROVIDER, RECIPIENT")
	}
	return errs.orNil()
}

func (e FieldErrors) require(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "is required")
		return false
	}
	return true
}

func (e FieldErrors) email(field, value string) {
	if _, err := mail.ParseAddress(strings.TrimSpace(value)); err != nil {
		e.Add(field, "is not a valid email address")
	}
}

func (e FieldErrors) orNil() FieldErrors {
	if len(e) == 0 {
		return nil
	}
	return e
}
