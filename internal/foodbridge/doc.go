// Package foodbridge provides the fetch gateway for the FoodBridge marketplace
// API together with the wire types it exchanges.
//
// # Overview
//
// Every network call the client makes goes through Client.Do. The gateway
// owns four concerns and nothing else:
//
//   - Path normalisation: "/distribution-centers" and "/api/distribution-centers"
//     address the same resource.
//   - CSRF: non-GET requests carry the X-CSRF-Token header, sourced from the
//     csrf_token cookie the server sets at GET /api/csrf/restore. The token is
//     restored on demand when absent and is not refreshed mid-session.
//   - Failure shape: non-2xx responses return *StatusError with the raw body
//     and a parsed Problem; transport failures wrap ErrUnavailable.
//   - Protection: an optional gobreaker circuit breaker short-circuits
//     requests with ErrUnavailable after repeated server-side failures.
//
// # Files
//
//   - client.go: Client, options, Do and CSRF handling
//   - errors.go: StatusError, Problem parsing and FieldErrors
//   - types.go: entity records and closed enumerations as the server emits them
//   - inputs.go: creatable payloads with client-side Validate methods
//
// # Usage
//
//	client, err := foodbridge.NewClient("http://127.0.0.1:5000",
//		foodbridge.WithLogger(logger),
//		foodbridge.WithBreaker(cb),
//	)
//	if err != nil {
//		return err
//	}
//	resp, err := client.Do(ctx, http.MethodGet, "/distribution-centers", nil)
//	var se *foodbridge.StatusError
//	if errors.As(err, &se) && se.NotFound() {
//		// absent, not a failure
//	}
//
// Enumerations are closed sets. Validate rejects unknown values in outgoing
// payloads, while decoded server records keep whatever the server sent.
package foodbridge
