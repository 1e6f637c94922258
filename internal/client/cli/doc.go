// Package cli provides the interactive Evently command-line client.
//
// On start it restores or discards the stored session, starts a background
// watcher that tracks whether the server is reachable, and then runs a REPL:
//
//   - login / logout
//   - whoami: print the signed-in user
//   - get <path>: call an authenticated API endpoint
//   - status: show connectivity and session state
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
