package service

import (
	"testing"

	"github.com/V4T54L/mafia/internal/domain/entity"
)

type recordingSink struct {
	frames [][]byte
	closed bool
}

func (s *recordingSink) Send(frame []byte) error {
	s.frames = append(s.frames, frame)
	return nil
}

func TestConnectDisplacesExistingSessionForSameIdentity(t *testing.T) {
	rooms := newTestRoomService()
	reg := NewSessionRegistry(rooms, testLogger())

	oldSink := &recordingSink{}
	oldSess := reg.Connect("alice", oldSink)

	newSink := &recordingSink{}
	newSess := reg.Connect("alice", newSink)

	if newSess == oldSess {
		t.Fatalf("expected a distinct Session on displacement")
	}
	if len(oldSink.frames) != 1 {
		t.Fatalf("expected the displaced sink to receive exactly one multiple event, got %d", len(oldSink.frames))
	}
	if !oldSess.IsClosed() {
		t.Fatalf("expected displaced session to be closed")
	}
	if reg.Count() != 1 {
		t.Fatalf("expected registry to hold exactly the new session, got %d", reg.Count())
	}
}

func TestConnectMintsIdentityWhenAnonymous(t *testing.T) {
	rooms := newTestRoomService()
	reg := NewSessionRegistry(rooms, testLogger())

	sess := reg.Connect("", &recordingSink{})
	if sess.Identity == "" {
		t.Fatalf("expected a minted identity for an anonymous connection")
	}
}

func TestDisconnectLeavesSeatedRoom(t *testing.T) {
	rooms := newTestRoomService()
	reg := NewSessionRegistry(rooms, testLogger())

	host := reg.Connect("host", &recordingSink{})
	room, err := rooms.CreateRoom(host, "table", "")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	reg.Disconnect(host)

	if _, err := rooms.GetRoom(room.ID); err != entity.ErrRoomNotFound {
		t.Fatalf("expected room deleted after its only occupant disconnects, got %v", err)
	}
}
