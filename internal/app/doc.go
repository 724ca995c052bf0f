// Package app is the composition root of the foodbridge terminal client.
//
// # Startup
//
// Run performs these steps in order:
//
//  1. Load config.toml (config.Load) and apply the -poll override
//  2. Open the JSON log file (logging.New)
//  3. Build the runtime: metrics collector, circuit breaker, API gateway,
//     store and thunks (Build)
//  4. Start the /metrics listener when metrics_addr is set
//  5. Restore the CSRF token and the server session (Runtime.Bootstrap)
//  6. Start the background poller
//  7. Run the UI until the user quits or the context is cancelled
//
// Only config, logging and gateway construction errors end Run early. A
// server that is down at startup leaves the client running and offline.
//
// # Polling
//
// Each round refreshes the kinds the signed-in role looks at:
//
//   - everyone: distribution centers and food listings
//   - admin: providers and users
//   - provider: the provider's own record and listings, tax records
//   - recipient: reservations and allergen alerts
//
// A round stops at the first job that finds the server unavailable and is
// recorded with state.RecordSync. While rounds keep failing the wait doubles
// from poll_interval up to 30s. A 4xx answer means the server is reachable,
// so it never counts as a failed round.
package app
