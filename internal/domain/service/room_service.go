package service

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/V4T54L/mafia/internal/archive"
	"github.com/V4T54L/mafia/internal/domain/engine"
	"github.com/V4T54L/mafia/internal/domain/entity"
)

// RoomService (the Room Registry of spec.md §4.1) owns the room table:
// numeric, process-unique, monotonically assigned ids; create/join/leave;
// and the Engine lifetime for each active match. Adapted from the
// teacher's code-keyed RoomService — the lookup key becomes a numeric id
// per spec.md §3, and the reconnect-timeout/TTL machinery is replaced by
// spec.md §4.3's own leave semantics (mid-game leavers are queued for
// suicide, not given a grace period to reconnect).
type RoomService struct {
	mu     sync.RWMutex
	rooms  map[int]*entity.Room
	nextID int

	logger *slog.Logger
	sink   archive.Sink
	debug  bool
}

func NewRoomService(logger *slog.Logger, sink archive.Sink, debug bool) *RoomService {
	return &RoomService{
		rooms:  make(map[int]*entity.Room),
		nextID: 1,
		logger: logger,
		sink:   sink,
		debug:  debug,
	}
}

// CreateRoom implements the CREATE dispatcher entry: title trimmed to
// <=16 printable chars, capacity fixed at 15, optional password <=8
// chars (presence, not value, is exposed publicly).
func (s *RoomService) CreateRoom(host *entity.Session, title, password string) (*entity.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title = strings.TrimSpace(title)
	if len(title) > entity.MaxTitleLen {
		title = title[:entity.MaxTitleLen]
	}
	if title == "" {
		title = "Untitled"
	}
	if len(password) > entity.MaxPasswordLen {
		password = password[:entity.MaxPasswordLen]
	}

	var hash string
	if password != "" {
		h, err := archive.HashPassword(password)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	id := s.nextID
	s.nextID++

	room := entity.NewRoom(id, title, host, entity.MaxCapacity, hash)
	s.rooms[id] = room
	host.SetRoom(room)

	s.logger.Info("room created", "id", id, "title", title, "has_password", password != "")
	return room, nil
}

func (s *RoomService) GetRoom(id int) (*entity.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, entity.ErrRoomNotFound
	}
	return room, nil
}

// JoinRoom implements the ENTER dispatcher entry (§4.2): target exists,
// not full, not already INITIATING.
func (s *RoomService) JoinRoom(id int, password string, sess *entity.Session) (*entity.Room, error) {
	room, err := s.GetRoom(id)
	if err != nil {
		return nil, err
	}
	if room.HasPassword() {
		if !archive.CheckPassword(room.PasswordHash, password) {
			return nil, entity.ErrWrongPassword
		}
	}
	if err := room.AddOccupant(sess); err != nil {
		return nil, err
	}
	sess.SetRoom(room)
	s.logger.Info("session joined room", "id", id, "identity", sess.Identity, "occupants", room.OccupantCount())
	return room, nil
}

// LeaveRoom implements LEAVE (§4.2) and the leave-rules of §4.3: a
// seated alive player is queued as a leaver for the next SUICIDE
// priority step rather than killed immediately; a dead or non-seated
// occupant simply leaves; host transfer happens automatically.
func (s *RoomService) LeaveRoom(sess *entity.Session) error {
	room := sess.Room()
	if room == nil {
		return entity.ErrPlayerNotFound
	}
	if p := sess.Player(); p != nil && p.Alive() {
		p.Leaver = true
	}
	newHost := room.RemoveOccupant(sess)
	sess.SetRoom(nil)
	if newHost != nil {
		s.logger.Info("host transferred", "room", room.ID, "new_host", newHost.Identity)
	}
	if room.IsEmpty() {
		s.DeleteRoom(room.ID)
	}
	return nil
}

// DeleteRoom destroys a room immediately (spec.md §3: "destroyed when it
// becomes empty" — no grace period).
func (s *RoomService) DeleteRoom(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	s.logger.Info("room deleted", "id", id)
}

func (s *RoomService) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Summaries returns every room's lobby-list DTO, for INITIAL_INFORMATION.
func (s *RoomService) Summaries() []entity.RoomSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.RoomSummary, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r.Summary())
	}
	return out
}

// NewEngine builds an Engine for room using this service's configured
// archival sink and debug flag.
func (s *RoomService) NewEngine(room *entity.Room) *engine.Engine {
	return engine.New(room, s.sink, s.logger, s.debug)
}
