package common

const (
	// AuthorizationHeaderName carries "Bearer <token>" on HTTP requests and
	// on the WebSocket handshake.
	AuthorizationHeaderName = "Authorization"

	// TokenQueryParam is the handshake field used by browser WebSocket
	// clients that cannot set headers.
	TokenQueryParam = "token"

	BearerPrefix = "Bearer "
)
