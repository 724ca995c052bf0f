// Package thunks implements the sync operations that move entities between the
// marketplace API and the state store.
//
// Each operation performs one round-trip through a Gateway and, only when the
// server answers 2xx, dispatches the matching store action. Failures come back
// as values:
//
//	*ValidationError       payload rejected locally, no request sent
//	*RejectedError         4xx, store untouched
//	ErrServerUnavailable   5xx or transport failure, kind's error slot set
//
// A 404 from a single-entity fetch is not a failure. The current slot is
// marked absent and the call reports found == false.
//
// Resource[T] covers list/get/create/update/delete for one collection;
// Providers, TaxRecords, Alerts and Users embed it and add the endpoints
// specific to their kind. Session handles restore, login, signup and logout.
package thunks
