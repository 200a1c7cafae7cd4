// Package cli provides the interactive miniblog command-line client.
//
// It wires configuration, the HTTP API client and a small REPL. The
// session lives in the client's cookie jar for as long as the process runs.
//
// Commands:
//   - register / login / logout / me
//   - posts [category], mine
//   - upload <article|avatar> <file>
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
