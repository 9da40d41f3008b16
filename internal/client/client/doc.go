// Package client talks to the relay server on behalf of the CLI.
//
// HTTPClient covers the request/response endpoints (register, login,
// one-shot messages, history, delete). LiveConn is a WebSocket session that
// carries sendMessage / receiveMessage frames.
//
// # Error Handling
//
// Failures are reported as sentinel errors that callers can match with
// errors.Is: ErrUnavailable when the server cannot be reached,
// ErrUnauthorized when the token is missing or rejected, and ErrRejected for
// any other non-success answer. The server's own message is kept in the
// error text.
package client
