// Package resolve translates human-readable names into Linear ids.
//
// Team keys ("ENG") and project names ("Mobile App") are looked up through
// a persisted [cache.Store], so repeated commands cost at most one API
// round trip per name per TTL window. Both are matched ignoring case.
// Issue identifiers ("ENG-123") are resolved on every call and never
// cached.
//
// # Lookup Rules
//
//   - Fresh entry: returned without a network call
//   - Missing or expired entry: fetched, stored with the current time, persisted
//   - Fetch fails with NotFoundError: returned unchanged, cache untouched
//   - Fetch fails with RemoteUnavailableError: a cached value of any age is
//     returned with Stale set and a warning is logged; with nothing cached
//     the error is returned
//
// # Corrections
//
// List commands (teams, projects) pass their authoritative name/id pairs
// to Reconcile. Cached names that now point at a renamed entity are
// dropped, and the current names are written back.
package resolve
