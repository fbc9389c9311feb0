package echo

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/socialkit-dev/identity/internal/realtime"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsMaxMsgSize   = 4 << 10
)

// Browsers cannot set headers on websocket requests, so the access token
// arrives as a query parameter instead of a bearer header. Cross-origin
// dashboards are expected, hence the permissive origin check.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsEnvelope frames every message on the chat socket in both directions.
type wsEnvelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsConnectedPayload struct {
	ConnectionID string `json:"connectionId"`
}

type wsChatMessage struct {
	To   string `json:"to"`
	From string `json:"from,omitempty"`
	Body string `json:"body"`
}

type wsErrorPayload struct {
	Message string `json:"message"`
}

// ChatSocketHandler upgrades the connection, registers it in the hub and
// relays chat messages between users until the peer goes away.
func (a *IdentityAPI) ChatSocketHandler(c echo.Context) error {
	token := c.QueryParam("access_token")
	if token == "" {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing access_token"})
	}
	user, _, err := a.auth.Verify(c.Request().Context(), token)
	if err != nil {
		return writeError(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the handshake failure.
		return nil
	}
	defer conn.Close()

	client := realtime.NewClient(uuid.NewString(), user.ID)
	a.hub.Register(client)
	defer a.hub.Unregister(client)

	log.Info().
		Str("connection_id", client.ID).
		Str("user_id", user.ID).
		Msg("Chat socket connected")

	go writePump(conn, client)

	sendEnvelope(client, a.hub, "connected", wsConnectedPayload{ConnectionID: client.ID})

	conn.SetReadLimit(wsMaxMsgSize)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var env wsEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			sendEnvelope(client, a.hub, "error", wsErrorPayload{Message: "malformed message"})
			continue
		}
		a.handleChatEvent(client, env)
	}

	log.Info().
		Str("connection_id", client.ID).
		Str("user_id", user.ID).
		Msg("Chat socket disconnected")
	return nil
}

func (a *IdentityAPI) handleChatEvent(sender *realtime.Client, env wsEnvelope) {
	switch env.Event {
	case "message":
		var msg wsChatMessage
		if err := json.Unmarshal(env.Payload, &msg); err != nil || msg.To == "" {
			sendEnvelope(sender, a.hub, "error", wsErrorPayload{Message: "message requires a recipient"})
			return
		}
		msg.From = sender.UserID
		out, err := json.Marshal(msg)
		if err != nil {
			return
		}
		delivered := a.hub.SendToUser(msg.To, mustEnvelope("message", out))
		if delivered == 0 {
			sendEnvelope(sender, a.hub, "error", wsErrorPayload{Message: "recipient is not connected"})
		}
	case "ping":
		sendEnvelope(sender, a.hub, "pong", nil)
	default:
		sendEnvelope(sender, a.hub, "error", wsErrorPayload{Message: "unknown event " + env.Event})
	}
}

// sendEnvelope routes through the hub so delivery respects the outbox
// contract rather than writing to the socket from two goroutines. Events are
// addressed to the one connection they concern, not every tab of the user.
func sendEnvelope(c *realtime.Client, hub *realtime.Hub, event string, payload any) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return
		}
		raw = b
	}
	hub.SendToConnection(c.ID, mustEnvelope(event, raw))
}

func mustEnvelope(event string, payload json.RawMessage) []byte {
	b, _ := json.Marshal(wsEnvelope{Event: event, Payload: payload})
	return b
}

// writePump owns all writes to the websocket, draining the client outbox and
// keeping the connection alive with pings.
func writePump(conn *websocket.Conn, client *realtime.Client) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Outbox():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
