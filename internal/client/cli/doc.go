// Package cli provides the interactive chat client.
//
// It wires configuration, the HTTP API client and a small REPL. Typical
// flow: register or log in, then either chat over the live connection
// ("chat") or send single messages over HTTP ("send").
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
