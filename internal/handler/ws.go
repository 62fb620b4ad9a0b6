package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/cartier55/coachbox-backend/internal/service"
	"github.com/cartier55/coachbox-backend/internal/ws"
)

// authWindow is how long a fresh connection has to present its token
// before being dropped.
const authWindow = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from a different origin in development;
	// auth happens in-band after the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades admin dashboard connections and attaches them to the
// presence broadcast hub.
type WSHandler struct {
	Hub    *ws.Hub
	Tokens *service.TokenService
}

func NewWSHandler(hub *ws.Hub, tokens *service.TokenService) *WSHandler {
	return &WSHandler{Hub: hub, Tokens: tokens}
}

type wsAuthMsg struct {
	Token string `json:"token"`
}

// Serve handles the websocket endpoint. Browsers cannot set an
// Authorization header on a websocket dial, so the client's first frame
// must be a JSON object carrying its access token. Admin accounts only;
// anything else closes the socket.
func (h *WSHandler) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	conn.SetReadDeadline(time.Now().Add(authWindow))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil
	}

	var auth wsAuthMsg
	if err := json.Unmarshal(frame, &auth); err != nil || auth.Token == "" {
		closeWith(conn, websocket.ClosePolicyViolation, "auth required")
		return nil
	}

	user, err := h.Tokens.ValidateAccess(c.Request().Context(), auth.Token)
	if err != nil {
		closeWith(conn, websocket.ClosePolicyViolation, "invalid token")
		return nil
	}
	if !user.CanAdmin() {
		closeWith(conn, websocket.ClosePolicyViolation, "admin only")
		return nil
	}

	log.Printf("ws: admin %s connected", user.Email)

	client := ws.NewClient(conn)
	h.Hub.Register(client)
	go client.WritePump()
	client.ReadPump(func() {
		h.Hub.Unregister(client)
		client.Close()
	})
	return nil
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	conn.Close()
}
