// Package client talks to the shopping-list REST backend.
//
// # Overview
//
// The package provides:
//  1. The Client interface: one method per backend endpoint (auth, users,
//     groups, members, items).
//  2. HTTPClient, a JSON-over-HTTP implementation that attaches the session
//     token (both as a bearer Authorization header and as x-auth-token), tags
//     each request with an X-Request-Id, records per-route metrics and hands
//     401 responses to the session so it can tear itself down.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Non-2xx responses come back as *APIError, which unwraps to one of the
// sentinels ErrUnauthorized, ErrForbidden, ErrNotFound or ErrUnavailable
// when the status maps to one. Transport failures wrap ErrUnavailable.
//
// All operations accept context.Context and honor cancellation.
package client
