package thunks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
	"github.com/foodbridge/foodbridge/internal/state"
)

// TaxRecords adds generation and download to the tax record resource.
type TaxRecords struct {
	*Resource[foodbridge.TaxRecord]
}

// ListYear replaces the table with the records of year; zero lists all years.
func (t *TaxRecords) ListYear(ctx context.Context, year int) ([]foodbridge.TaxRecord, error) {
	if year == 0 {
		return t.List(ctx)
	}
	return t.listAt(ctx, "list", t.path+"?year="+strconv.Itoa(year), true)
}

// Generate asks the server to issue the record for a completed donation.
func (t *TaxRecords) Generate(ctx context.Context, donationID int64) (foodbridge.TaxRecord, error) {
	rec, _, err := t.send(ctx, "generate", http.MethodPost, t.path+"/generate/"+strconv.FormatInt(donationID, 10), nil)
	return rec.Value(), err
}

// Download writes the rendered receipt for id to w.
func (t *TaxRecords) Download(ctx context.Context, id int64, w io.Writer) (int64, error) {
	defer track(t.env, t.kind)()

	resp, err := t.env.gw.Do(ctx, http.MethodGet, t.item(id)+"/download", nil)
	if err != nil {
		return 0, fail(t.env, t.kind, "download", err)
	}
	n, err := w.Write(resp.Body)
	if err != nil {
		t.env.observe(t.kind.Name(), "download", OutcomeError)
		return int64(n), fmt.Errorf("write tax record %d: %w", id, err)
	}
	t.env.observe(t.kind.Name(), "download", OutcomeOK)
	return int64(n), nil
}

// Alerts adds preference and toggle operations to the allergen alert resource.
type Alerts struct {
	*Resource[foodbridge.AllergenAlert]
}

// Toggle enables or disables alert id.
func (a *Alerts) Toggle(ctx context.Context, id int64, active bool) (foodbridge.AllergenAlert, error) {
	body := struct {
		IsActive bool `json:"isActive"`
	}{active}
	rec, _, err := a.send(ctx, "toggle", http.MethodPut, a.item(id)+"/toggle", body)
	return rec.Value(), err
}

// UpdatePreferences saves the session user's notification settings.
func (a *Alerts) UpdatePreferences(ctx context.Context, prefs foodbridge.AllergenPreferences) (foodbridge.AllergenPreferences, error) {
	const op = "preferences"
	defer track(a.env, a.kind)()

	resp, err := a.env.gw.Do(ctx, http.MethodPut, a.path+"/preferences", prefs)
	if err != nil {
		return foodbridge.AllergenPreferences{}, fail(a.env, a.kind, op, err)
	}
	var saved foodbridge.AllergenPreferences
	if err := json.Unmarshal(resp.Body, &saved); err != nil {
		return foodbridge.AllergenPreferences{}, malformed(a.env, a.kind.Name(), op, err)
	}
	a.env.bus.Dispatch(state.SetAllergenPreferences(saved))
	a.env.observe(a.kind.Name(), op, OutcomeOK)
	return saved, nil
}

// Users adds profile and role operations to the user resource.
type Users struct {
	*Resource[foodbridge.User]
}

// GetProfile loads the profile of id into the current slot.
func (u *Users) GetProfile(ctx context.Context, id int64) (foodbridge.User, bool, error) {
	return u.getAt(ctx, "getProfile", u.item(id)+"/profile")
}

// UpdateProfile puts in as the profile of id and merges the response.
func (u *Users) UpdateProfile(ctx context.Context, id int64, in any) (foodbridge.User, error) {
	rec, _, err := u.send(ctx, "updateProfile", http.MethodPut, u.item(id)+"/profile", in)
	return rec.Value(), err
}

// SetType changes the role of id. When the response does not echo the user,
// the role is merged locally from the request.
func (u *Users) SetType(ctx context.Context, id int64, role foodbridge.Role) error {
	const op = "setType"
	if !role.Valid() {
		errs := foodbridge.FieldErrors{}
		errs.Add("user_type", "must be one of ADMIN, PROVIDER, RECIPIENT")
		u.env.observe(u.kind.Name(), op, OutcomeInvalid)
		return &ValidationError{Fields: errs}
	}
	defer track(u.env, u.kind)()

	body := struct {
		UserType foodbridge.Role `json:"userType"`
	}{role}
	resp, err := u.env.gw.Do(ctx, http.MethodPut, u.item(id)+"/type", body)
	if err != nil {
		return fail(u.env, u.kind, op, err)
	}
	rec, err := decodeOne[foodbridge.User](resp.Body, u.itemKey)
	if err != nil {
		partial, _ := json.Marshal(map[string]any{"id": id, "user_type": role})
		if rec, err = state.DecodeRecord[foodbridge.User](partial); err != nil {
			return malformed(u.env, u.kind.Name(), op, err)
		}
	}
	u.env.bus.Dispatch(state.UpsertOne(u.kind, rec))
	u.env.observe(u.kind.Name(), op, OutcomeOK)
	return nil
}
