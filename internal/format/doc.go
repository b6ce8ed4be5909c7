// Package format renders timestamps and free text for terminal tables.
//
// Linear returns timestamps as RFC 3339 strings. Values that fail to
// parse are shown as their date portion (everything before the "T")
// rather than dropped.
//
// # Relative Time
//
//   - under a minute: "just now"
//   - under an hour: "N min(s) ago"
//   - under a day: "N hour(s) ago"
//   - under 30 days: "N day(s) ago"
//   - otherwise the date, "2006-01-02"
package format
