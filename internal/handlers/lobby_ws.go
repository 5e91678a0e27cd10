// internal/handlers/lobby_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mvankampen/fraghub/internal/auth"
	"github.com/mvankampen/fraghub/internal/broadcast"
	"github.com/mvankampen/fraghub/internal/database"
	"github.com/mvankampen/fraghub/internal/identity"
	"github.com/mvankampen/fraghub/internal/middleware"
	"github.com/mvankampen/fraghub/internal/session"
)

// inboundPacket is the envelope every client event arrives in. Fields beyond
// Type are populated per event kind and ignored otherwise.
type inboundPacket struct {
	Type      string               `json:"type"`
	Game      *session.Session     `json:"game,omitempty"`
	SessionID string               `json:"sessionId,omitempty"`
	Player    *session.Participant `json:"player,omitempty"`
	UserID    string               `json:"userId,omitempty"`
	IsReady   bool                 `json:"isReady,omitempty"`
	Status    session.Status       `json:"status,omitempty"`
	Msg       string               `json:"msg,omitempty"`
}

// LobbyWSHandler upgrades the connection, registers the caller's identity,
// and pumps lobby events into the coordinator until the socket closes.
// Every connected client receives every broadcast; there is no per-session
// subscription.
func LobbyWSHandler(logger *logrus.Logger, s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"lobby"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "lobby" {
			c.Close(BadSubprotocolError, "client must speak the lobby subprotocol")
			return
		}

		ident, err := identityFromRequest(r)
		if err != nil {
			logger.Warnf("handshake identity rejected (%s): %v", remoteAddr, err)
			c.Close(identityCloseCode(err), "identity rejected")
			return
		}

		// connectionId is transport-assigned and opaque to the client.
		connID := uuid.New()
		if err := s.Registry.Register(connID, ident); err != nil {
			c.Close(MissingIdentityError, "user id required")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		conn := s.Hub.Add(connID, cancel, 16)

		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)
		logger.Infof("user %s connected as %s (%s)", ident.UserID, connID, remoteAddr)

		go writePump(ctx, c, conn, logger)

		readPump(ctx, c, s, conn, ident, logger)

		// readPump returned: the socket is gone. Remove the fanout entry
		// first so no further broadcasts queue up, then run the implicit
		// leave which also clears the registry entry.
		s.Hub.Remove(connID)
		s.Coordinator.OnDisconnect(connID)
		middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, nil)
	}
}

// identityCloseCode picks the close code for a rejected handshake. A missing
// uid and a token that failed verification are distinct conditions on the wire.
func identityCloseCode(err error) websocket.StatusCode {
	if errors.Is(err, identity.ErrMissingUserID) {
		return MissingIdentityError
	}
	return InvalidTokenError
}

// identityFromRequest builds the caller-supplied identity from the handshake.
// uid/name/email/avatar arrive as query parameters; an auth_token cookie, when
// present and valid, overrides uid with its subject claim. Identity is trusted
// as supplied, there is no authorization here.
func identityFromRequest(r *http.Request) (identity.Identity, error) {
	q := r.URL.Query()
	ident := identity.Identity{
		UserID:      q.Get("uid"),
		DisplayName: q.Get("name"),
		Email:       q.Get("email"),
		AvatarURL:   q.Get("avatar"),
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		sub, err := auth.AuthenticateJWT(cookie.Value)
		if err != nil {
			return identity.Identity{}, fmt.Errorf("invalid auth token: %w", err)
		}
		ident.UserID = sub
	}

	if ident.UserID == "" {
		return identity.Identity{}, identity.ErrMissingUserID
	}
	return ident, nil
}

// readPump handles incoming lobby events until the connection closes.
func readPump(ctx context.Context, c *websocket.Conn, s *Server, conn *broadcast.Conn, ident identity.Identity, logger *logrus.Logger) {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				logger.Infof("websocket closed normally for user %s", ident.UserID)
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("read error for user %s: %v", ident.UserID, err)
			}
			return
		}

		if typ != websocket.MessageText {
			logger.Warnf("ignoring non-text message type %d from user %s", typ, ident.UserID)
			continue
		}

		var packet inboundPacket
		if err := json.Unmarshal(msg, &packet); err != nil {
			logger.Warnf("invalid json from user %s: %v", ident.UserID, err)
			conn.WriteError("Invalid JSON format")
			continue
		}

		handleLobbyPacket(&packet, s, conn, ident, logger)
	}
}

// handleLobbyPacket dispatches one inbound event to the coordinator. Unknown
// sessions are soft failures inside the coordinator, so nothing here reports
// back to the sender except malformed packets.
func handleLobbyPacket(packet *inboundPacket, s *Server, conn *broadcast.Conn, ident identity.Identity, logger *logrus.Logger) {
	// Events that omit the acting user default to the connection identity.
	uid := packet.UserID
	if uid == "" {
		uid = ident.UserID
	}

	switch packet.Type {
	case "createGame":
		if packet.Game == nil {
			conn.WriteError("createGame requires a 'game' object")
			return
		}
		s.Coordinator.CreateSession(packet.Game)

	case "joinGame":
		if packet.SessionID == "" {
			conn.WriteError("joinGame requires a 'sessionId'")
			return
		}
		p := packet.Player
		if p == nil {
			p = &session.Participant{
				UID:         ident.UserID,
				DisplayName: ident.DisplayName,
				Email:       ident.Email,
				AvatarURL:   ident.AvatarURL,
			}
		}
		s.Coordinator.JoinSession(packet.SessionID, *p)

	case "leaveGame":
		if packet.SessionID == "" {
			conn.WriteError("leaveGame requires a 'sessionId'")
			return
		}
		s.Coordinator.LeaveSession(packet.SessionID, uid)

	case "toggleReady":
		if packet.SessionID == "" {
			conn.WriteError("toggleReady requires a 'sessionId'")
			return
		}
		s.Coordinator.SetReady(packet.SessionID, uid, packet.IsReady)

	case "updateGame":
		if packet.SessionID == "" || packet.Status == "" {
			conn.WriteError("updateGame requires 'sessionId' and 'status'")
			return
		}
		s.Coordinator.UpdateStatus(packet.SessionID, packet.Status)

	case "chat":
		if packet.Msg == "" {
			return
		}
		sender := ident.DisplayName
		if sender == "" {
			sender = ident.UserID
		}
		s.Broadcast.Publish("chat", map[string]interface{}{
			"sender": sender,
			"msg":    packet.Msg,
			"ts":     time.Now().Unix(),
		})
		if database.Configured() {
			go func(sender, text string) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := database.InsertMessage(ctx, sender, text); err != nil {
					logger.Warnf("failed to persist chat message: %v", err)
				}
			}(sender, packet.Msg)
		}

	default:
		logger.Warnf("unknown action '%s' from user %s", packet.Type, ident.UserID)
		conn.WriteError(fmt.Sprintf("Unknown action type: %s", packet.Type))
	}
}

// writePump drains the connection's outbound channel onto the socket and
// keeps the connection alive with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *broadcast.Conn, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	defer func() {
		_ = c.Close(websocket.StatusGoingAway, "write pump stopping")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-conn.OutChan:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal outgoing msg for conn %s: %v", conn.ID, err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket for conn %s: %v", conn.ID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed for conn %s: %v, assuming disconnect", conn.ID, err)
				return
			}
		}
	}
}
