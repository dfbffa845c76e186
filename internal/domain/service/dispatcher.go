package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/V4T54L/mafia/internal/adapter/sfu"
	"github.com/V4T54L/mafia/internal/domain/engine"
	"github.com/V4T54L/mafia/internal/domain/entity"
)

// ClientMessage is the wire envelope of spec.md §4.2/§6: CREATE, ENTER,
// LEAVE, MESSAGE, SETUP. Unused fields are simply absent on the wire.
type ClientMessage struct {
	Type     string             `json:"type"`
	Title    string             `json:"title,omitempty"`
	Password string             `json:"password,omitempty"`
	ID       int                `json:"id,omitempty"`
	Text     string             `json:"text,omitempty"`
	Setup    *entity.SetupInput `json:"setup,omitempty"`
}

// Dispatcher is the single entry point transport adapters call with each
// inbound frame (§4.1 Dispatch(session, message)). It owns the
// room-scoped Engine lifetimes: one Engine goroutine runs per active
// match, started when the host sends "/begin". Grounded on the
// teacher's ws/router.go dispatch-by-type loop and GameService's
// per-room goroutine bookkeeping, generalized to the full message table.
type Dispatcher struct {
	sessions *SessionRegistry
	rooms    *RoomService
	logger   *slog.Logger
	voice    *sfu.SFU // optional; nil disables voice routing entirely

	mu      sync.Mutex
	engines map[int]*engine.Engine
}

func NewDispatcher(sessions *SessionRegistry, rooms *RoomService, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sessions: sessions,
		rooms:    rooms,
		logger:   logger,
		engines:  make(map[int]*engine.Engine),
	}
}

// WithVoice attaches an SFU instance so every Engine this Dispatcher
// starts gets a VoiceHook keeping voice routing in sync with the match.
func (d *Dispatcher) WithVoice(v *sfu.SFU) *Dispatcher {
	d.voice = v
	return d
}

// Dispatch parses raw and routes it per the §4.2 precondition table.
// Unknown or precondition-violating messages are silently dropped. SETUP
// rejections and CREATE/ENTER failures from the room registry are
// reported back to the sender as ERROR.
func (d *Dispatcher) Dispatch(sess *entity.Session, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	switch msg.Type {
	case "CREATE":
		d.handleCreate(sess, msg)
	case "ENTER":
		d.handleEnter(sess, msg)
	case "LEAVE":
		d.handleLeave(sess)
	case "MESSAGE":
		d.handleMessage(sess, msg)
	case "SETUP":
		d.handleSetup(sess, msg)
	}
}

func (d *Dispatcher) handleCreate(sess *entity.Session, msg ClientMessage) {
	if sess.Room() != nil {
		return
	}
	room, err := d.rooms.CreateRoom(sess, msg.Title, msg.Password)
	if err != nil {
		sess.Deliver(entity.EventError, entity.Payload{"reason": err.Error()})
		return
	}
	sess.Deliver(entity.EventNewRoom, entity.Payload{"room": room.Summary()})
}

func (d *Dispatcher) handleEnter(sess *entity.Session, msg ClientMessage) {
	if sess.Room() != nil {
		return
	}
	room, err := d.rooms.JoinRoom(msg.ID, msg.Password, sess)
	if err != nil {
		sess.Deliver(entity.EventError, entity.Payload{"reason": err.Error()})
		return
	}
	d.broadcastRoomStatus(room)
}

func (d *Dispatcher) handleLeave(sess *entity.Session) {
	if sess.Room() == nil {
		return
	}
	room := sess.Room()
	_ = d.rooms.LeaveRoom(sess)
	if room.OccupantCount() > 0 {
		d.broadcastRoomStatus(room)
	}
}

// handleMessage implements the MESSAGE precondition row: "/begin" is
// host-only and starts the room's Engine; everything else is forwarded
// into the room's Engine as a Command for its current phase handler to
// interpret (chat text or a slash-command, per §4.3's phase table).
func (d *Dispatcher) handleMessage(sess *entity.Session, msg ClientMessage) {
	room := sess.Room()
	if room == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "/begin" {
		if room.Host != sess {
			return
		}
		d.startEngine(room)
		return
	}

	d.mu.Lock()
	eng := d.engines[room.ID]
	d.mu.Unlock()
	if eng == nil {
		return
	}
	eng.Dispatch(engine.Command{Session: sess, Text: text})
}

func (d *Dispatcher) handleSetup(sess *entity.Session, msg ClientMessage) {
	room := sess.Room()
	if room == nil || room.Host != sess || msg.Setup == nil {
		return
	}
	setup, err := entity.BuildSetup(*msg.Setup)
	if err != nil {
		sess.Deliver(entity.EventError, entity.Payload{"reason": err.Error()})
		d.logger.Info("setup rejected", "room", room.ID, "err", err)
		return
	}
	room.Setup = setup
	for _, occ := range room.Occupants {
		occ.Deliver(entity.EventSetup, entity.Payload{"setup": setup})
	}
}

// startEngine begins the room's match if a valid Setup is present and
// the occupant count matches its formation size (§4.2 MESSAGE row).
func (d *Dispatcher) startEngine(room *entity.Room) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.engines[room.ID]; ok {
		return
	}
	if room.Setup == nil || len(room.Setup.Formation) != room.OccupantCount() {
		return
	}

	eng := d.rooms.NewEngine(room)
	if d.voice != nil {
		eng.VoiceHook = d.voice.ApplyRoomVoiceRouting
	}
	d.engines[room.ID] = eng
	go func() {
		eng.Begin(context.Background())
		d.mu.Lock()
		delete(d.engines, room.ID)
		d.mu.Unlock()
	}()
}

func (d *Dispatcher) broadcastRoomStatus(room *entity.Room) {
	for _, occ := range room.Occupants {
		occ.Deliver(entity.EventRoomStatus, entity.Payload{"room": room.Summary()})
	}
}
