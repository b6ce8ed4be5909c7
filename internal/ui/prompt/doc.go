// Package prompt provides the interactive prompts used by "linear init".
//
// Prompts render on stderr so stdout stays clean for command output.
//
// Available prompts:
//   - [Confirm]: Yes/No confirmation prompt
//   - [Text]: Single-line text input, optionally masked
//   - [Select]: Filterable single selection from a list
package prompt
