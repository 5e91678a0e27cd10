// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used within the lobby handlers.
// These provide more specific reasons for closure than standard codes.
const (
	BadSubprotocolError  = 3000 // Client connected with an unsupported subprotocol.
	MissingIdentityError = 3001 // Handshake carried no user id; the connection is terminated.
	InvalidTokenError    = 3002 // Provided auth token failed verification.
)
