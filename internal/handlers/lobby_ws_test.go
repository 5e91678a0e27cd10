// internal/handlers/lobby_ws_test.go
package handlers

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvankampen/fraghub/internal/auth"
	"github.com/mvankampen/fraghub/internal/identity"
	"github.com/mvankampen/fraghub/internal/session"
)

func TestIdentityFromQueryParams(t *testing.T) {
	req := httptest.NewRequest("GET", "/lobby/ws?uid=u1&name=Player+One&email=p1%40example.com&avatar=http%3A%2F%2Fx%2Fa.png", nil)

	ident, err := identityFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "u1", ident.UserID)
	assert.Equal(t, "Player One", ident.DisplayName)
	assert.Equal(t, "p1@example.com", ident.Email)
	assert.Equal(t, "http://x/a.png", ident.AvatarURL)
}

func TestIdentityRequiresUID(t *testing.T) {
	req := httptest.NewRequest("GET", "/lobby/ws?name=Nameless", nil)
	_, err := identityFromRequest(req)
	assert.ErrorIs(t, err, identity.ErrMissingUserID)
}

func TestIdentityTokenOverridesUID(t *testing.T) {
	auth.Init()
	token, err := auth.CreateJWT("token-user")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/lobby/ws?uid=query-user&name=P", nil)
	req.Header.Set("Cookie", "auth_token="+token)

	ident, err := identityFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "token-user", ident.UserID)
	assert.Equal(t, "P", ident.DisplayName)
}

func TestIdentityRejectsBadToken(t *testing.T) {
	auth.Init()
	req := httptest.NewRequest("GET", "/lobby/ws?uid=u1", nil)
	req.Header.Set("Cookie", "auth_token=not-a-token")

	_, err := identityFromRequest(req)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, identity.ErrMissingUserID)
}

func TestIdentityCloseCodes(t *testing.T) {
	assert.Equal(t, websocket.StatusCode(MissingIdentityError), identityCloseCode(identity.ErrMissingUserID))
	assert.Equal(t, websocket.StatusCode(InvalidTokenError), identityCloseCode(errors.New("invalid auth token: bad signature")))
}

// TestHandleLobbyPacketDispatch drives the packet dispatcher directly against
// a real coordinator; the websocket layer above it is exercised manually.
func TestHandleLobbyPacketDispatch(t *testing.T) {
	logger := testLogger()
	srv := NewServer(logger, nil)
	ident := identity.Identity{UserID: "u1", DisplayName: "Player One"}
	connID := uuid.New()
	require.NoError(t, srv.Registry.Register(connID, ident))
	conn := srv.Hub.Add(connID, nil, 16)

	handleLobbyPacket(&inboundPacket{
		Type: "createGame",
		Game: &session.Session{ID: "g1"},
	}, srv, conn, ident, logger)

	sess, ok := srv.Store.Get("g1")
	require.True(t, ok)
	assert.Equal(t, session.StatusOpen, sess.Status)

	// joinGame without an explicit player falls back to the connection identity.
	handleLobbyPacket(&inboundPacket{Type: "joinGame", SessionID: "g1"}, srv, conn, ident, logger)
	sess, _ = srv.Store.Get("g1")
	require.Len(t, sess.Participants, 1)
	assert.Equal(t, "u1", sess.Participants[0].UID)
	assert.Equal(t, "Player One", sess.Participants[0].DisplayName)

	handleLobbyPacket(&inboundPacket{Type: "toggleReady", SessionID: "g1", IsReady: true}, srv, conn, ident, logger)
	handleLobbyPacket(&inboundPacket{Type: "updateGame", SessionID: "g1", Status: session.StatusInProgress}, srv, conn, ident, logger)
	sess, _ = srv.Store.Get("g1")
	assert.Equal(t, session.StatusInProgress, sess.Status)

	handleLobbyPacket(&inboundPacket{Type: "leaveGame", SessionID: "g1"}, srv, conn, ident, logger)
	sess, _ = srv.Store.Get("g1")
	assert.Empty(t, sess.Participants)

	// Unknown packet type answers the sender with an error message.
	handleLobbyPacket(&inboundPacket{Type: "bogus"}, srv, conn, ident, logger)
	found := false
	for len(conn.OutChan) > 0 {
		msg := <-conn.OutChan
		if msg["type"] == "error" {
			found = true
		}
	}
	assert.True(t, found, "unknown action should produce an error message")
}
