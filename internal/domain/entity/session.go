package entity

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Session is one connected client. At most one Session per identity is
// live at a time; a newer Connect displaces an older one.
type Session struct {
	Identity string
	Sink     Sink

	mu     sync.RWMutex
	room   *Room
	player *Player
	closed bool
}

func NewSession(identity string, sink Sink) *Session {
	return &Session{Identity: identity, Sink: sink}
}

func (s *Session) Room() *Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room
}

func (s *Session) SetRoom(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = r
}

func (s *Session) Player() *Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player
}

func (s *Session) SetPlayer(p *Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = p
}

// Deliver encodes {type, content} and writes it to the transport sink,
// the Engine's only way of talking to a Session. Closed sinks are
// tolerated silently — cleanup happens on the disconnect path.
func (s *Session) Deliver(t EventType, payload Payload) {
	s.mu.RLock()
	closed := s.closed
	sink := s.Sink
	s.mu.RUnlock()
	if closed || sink == nil {
		return
	}
	frame, err := json.Marshal(struct {
		Type    EventType `json:"type"`
		Content Payload   `json:"content"`
	}{Type: t, Content: payload})
	if err != nil {
		slog.Error("session: marshal frame", "identity", s.Identity, "err", err)
		return
	}
	if err := sink.Send(frame); err != nil {
		slog.Debug("session: send on closed/failed sink", "identity", s.Identity, "err", err)
	}
}

// Close marks the Session dead; further Deliver calls are no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Session) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
