package ws

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/V4T54L/mafia/internal/domain/entity"
	"github.com/V4T54L/mafia/internal/domain/service"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades HTTP connections to WebSocket and wires each one
// into the domain layer: Connect mints a Session (the Client is its
// Sink), every subsequent frame goes straight to the Dispatcher, and a
// closed connection runs Disconnect.
type Handler struct {
	hub      *Hub
	sessions *service.SessionRegistry
	dispatch *service.Dispatcher
	rooms    *service.RoomService
	voice    *VoiceHandler
	logger   *slog.Logger
}

func NewHandler(hub *Hub, sessions *service.SessionRegistry, dispatch *service.Dispatcher, rooms *service.RoomService, logger *slog.Logger) *Handler {
	return &Handler{hub: hub, sessions: sessions, dispatch: dispatch, rooms: rooms, logger: logger}
}

// WithVoice attaches a VoiceHandler so incoming frames are first offered
// to WebRTC signaling before falling through to the game Dispatcher.
func (h *Handler) WithVoice(v *VoiceHandler) *Handler {
	h.voice = v
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(h.hub, conn, h.logger, h.onMessage, h.onDisconnect)
	sess := h.sessions.Connect(r.URL.Query().Get("identity"), client)
	client.Session = sess

	h.hub.Register(client)
	sess.Deliver(entity.EventInitialInformation, entity.Payload{
		"identity": sess.Identity,
		"rooms":    h.rooms.Summaries(),
	})

	go client.WritePump()
	go client.ReadPump()
}

func (h *Handler) onMessage(c *Client, data []byte) {
	if h.voice != nil && h.voice.Handle(c.Session, data) {
		return
	}
	h.dispatch.Dispatch(c.Session, data)
}

func (h *Handler) onDisconnect(c *Client) {
	if h.voice != nil {
		if room := c.Session.Room(); room != nil {
			h.voice.sfu.LeaveVoice(strconv.Itoa(room.ID), c.Session.Identity)
		}
	}
	h.sessions.Disconnect(c.Session)
}
