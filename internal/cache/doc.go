// Package cache persists the name-to-identifier mappings used by the
// resolver.
//
// The store is a single JSON file in the linear config directory
// (cache.json next to config.toml). Keys are scoped by entity kind so a
// team and a project with the same name never collide:
//
//	{
//	  "version": 1,
//	  "entries": {
//	    "team:ENG": {"id": "team_abc123", "fetched_at": "2026-01-02T03:04:05Z"},
//	    "project:Website": {"id": "proj_9f2", "fetched_at": "2026-01-02T03:04:05Z"}
//	  }
//	}
//
// # Loading
//
// [Load] never fails on content: a missing, empty or corrupt file yields an
// empty store. Unknown fields are ignored so older binaries can read files
// written by newer ones.
//
// # Writing
//
// [Store.Save] writes the whole file to a temp file and renames it into
// place while holding an advisory lock on cache.json.lock. Concurrent
// invocations may still race; the last writer wins, which costs at most one
// extra remote lookup later.
//
// # Expiry
//
// Entries are never removed for age. [Entry.IsStale] reports whether an
// entry is older than the TTL; the resolver decides what to do with it.
package cache
