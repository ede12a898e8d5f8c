// Package cli provides the interactive gophtasks command-line client.
//
// It wires configuration, the local SQLite store, the HTTP transport, the
// auth session and the task list controller behind a small REPL. On start the
// stored session is checked; the task list is loaded once a user is signed in.
//
// Key features:
//   - Register / Login / Logout with per-field error reporting
//   - List tasks with a progress line and an all/pending/completed filter
//   - Add, edit, toggle and delete tasks with optimistic updates
//   - Light, dark or system theme for the coloured notices
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
