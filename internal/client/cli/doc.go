// Package cli provides the interactive shoplist terminal client.
//
// It wires configuration, the local session store, the HTTP client and the
// view controllers behind a REPL. Every location change goes through the
// route guard, so protected pages are only shown with a session the backend
// still accepts.
//
// Typical flow: the stored session is restored (or the login page shown),
// the user's groups are listed, and commands act on whichever page is open:
//   - groups: search, create, open, join
//   - a group: items (add, buy, rm), members (invite, kick), leave, delete-group
//   - profile: copy, delete-account, logout
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and the command handlers for details.
package cli
