package thunks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
	"github.com/foodbridge/foodbridge/internal/state"
)

// Providers adds the profile and proximity lookups to the provider resource.
type Providers struct {
	*Resource[foodbridge.Provider]
	listings *Resource[foodbridge.FoodListing]
}

// GetByUserID loads the provider profile bound to userID into the current
// slot. A user without a profile yet answers 404, which leaves the slot
// absent and returns found false with no error.
func (p *Providers) GetByUserID(ctx context.Context, userID int64) (foodbridge.Provider, bool, error) {
	return p.getAt(ctx, "getByUser", p.path+"/user/"+strconv.FormatInt(userID, 10))
}

// Create validates in and posts it. The server answers either the provider or
// {"provider": ..., "user": ...}; the provider becomes current and, when the
// user is present, the session user is refreshed.
func (p *Providers) Create(ctx context.Context, in foodbridge.ProviderInput) (foodbridge.Provider, error) {
	rec, body, err := p.send(ctx, "create", http.MethodPost, p.path, in)
	if err != nil {
		return foodbridge.Provider{}, err
	}
	actions := []state.Action{state.SetCurrent(p.kind, &rec)}
	var wrapper map[string]json.RawMessage
	if json.Unmarshal(body, &wrapper) == nil {
		if raw, ok := wrapper["user"]; ok {
			var u foodbridge.User
			if err := json.Unmarshal(raw, &u); err == nil && u.ID != 0 {
				actions = append(actions, state.SetSessionUser(u))
			}
		}
	}
	p.env.bus.Dispatch(state.Batch(actions...))
	return rec.Value(), nil
}

// Listings fetches the listings owned by providerID and merges them into the
// listings table without dropping other providers' listings.
func (p *Providers) Listings(ctx context.Context, providerID int64) ([]foodbridge.FoodListing, error) {
	return p.listings.listAt(ctx, "listByProvider", p.item(providerID)+"/listings", false)
}

// Nearby runs a proximity search. Results are merged into the providers table
// and their ranked ids are stored for the NearbyProviders selector.
func (p *Providers) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]foodbridge.Provider, error) {
	const op = "nearby"
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		errs := foodbridge.FieldErrors{}
		errs.Add("location", "coordinates out of range")
		p.env.observe(p.kind.Name(), op, OutcomeInvalid)
		return nil, &ValidationError{Fields: errs}
	}
	defer track(p.env, p.kind)()

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	if radiusKm > 0 {
		q.Set("radius", strconv.FormatFloat(radiusKm, 'f', -1, 64))
	}
	resp, err := p.env.gw.Do(ctx, http.MethodGet, fmt.Sprintf("%s/nearby?%s", p.path, q.Encode()), nil)
	if err != nil {
		return nil, fail(p.env, p.kind, op, err)
	}
	recs, err := decodeList[foodbridge.Provider](resp.Body, p.listKey)
	if err != nil {
		return nil, malformed(p.env, p.kind.Name(), op, err)
	}
	ids := make([]int64, len(recs))
	for i, r := range recs {
		ids[i] = r.ID()
	}
	p.env.bus.Dispatch(state.Batch(state.UpsertMany(p.kind, recs), state.SetNearbyProviders(ids)))
	p.env.observe(p.kind.Name(), op, OutcomeOK)
	return values(recs), nil
}
