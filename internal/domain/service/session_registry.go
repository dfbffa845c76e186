package service

import (
	"log/slog"
	"sync"

	"github.com/V4T54L/mafia/internal/domain/entity"
	"github.com/V4T54L/mafia/internal/pkg/id"
)

// SessionRegistry is the server-wide connection table of spec.md §4.1:
// Connect assigns each transport connection a Session (displacing any
// existing session for the same identity with a `multiple` event),
// Disconnect tears one down, Dispatch is the single entry point transport
// adapters call with the raw inbound message. Grounded on the teacher's
// RoomService online-set / reconnect bookkeeping, generalized from
// per-room tracking to a single process-wide registry.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session // identity -> active session

	rooms  *RoomService
	logger *slog.Logger
}

func NewSessionRegistry(rooms *RoomService, logger *slog.Logger) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*entity.Session),
		rooms:    rooms,
		logger:   logger,
	}
}

// Connect admits a new transport connection. identity is empty for an
// anonymous connection, in which case a fresh one is minted. A reused
// identity displaces the prior session: the old sink receives a
// `multiple` event and is closed before the new session replaces it.
func (r *SessionRegistry) Connect(identity string, sink entity.Sink) *entity.Session {
	if identity == "" {
		identity = id.Generate()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.sessions[identity]; ok {
		old.Deliver(entity.EventMultiple, entity.Payload{"reason": "replaced by new connection"})
		old.Close()
	}

	sess := entity.NewSession(identity, sink)
	r.sessions[identity] = sess
	r.logger.Info("session connected", "identity", identity)
	return sess
}

// Disconnect removes sess from the registry and, if it was seated in a
// live room, runs the leave rules (§4.3) via the room registry.
func (r *SessionRegistry) Disconnect(sess *entity.Session) {
	r.mu.Lock()
	if r.sessions[sess.Identity] == sess {
		delete(r.sessions, sess.Identity)
	}
	r.mu.Unlock()

	sess.Close()
	if sess.Room() != nil {
		if err := r.rooms.LeaveRoom(sess); err != nil {
			r.logger.Warn("leave on disconnect failed", "identity", sess.Identity, "err", err)
		}
	}
	r.logger.Info("session disconnected", "identity", sess.Identity)
}

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
