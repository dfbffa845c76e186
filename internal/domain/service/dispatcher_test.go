package service

import (
	"encoding/json"
	"testing"

	"github.com/V4T54L/mafia/internal/domain/entity"
)

func newTestDispatcher() (*Dispatcher, *RoomService, *SessionRegistry) {
	rooms := newTestRoomService()
	sessions := NewSessionRegistry(rooms, testLogger())
	return NewDispatcher(sessions, rooms, testLogger()), rooms, sessions
}

func send(d *Dispatcher, sess *entity.Session, msg ClientMessage) {
	raw, _ := json.Marshal(msg)
	d.Dispatch(sess, raw)
}

func TestDispatchCreateThenEnter(t *testing.T) {
	d, _, sessions := newTestDispatcher()

	hostSink := &recordingSink{}
	host := sessions.Connect("host", hostSink)
	send(d, host, ClientMessage{Type: "CREATE", Title: "table"})

	if host.Room() == nil {
		t.Fatalf("expected host seated in a room after CREATE")
	}
	if len(hostSink.frames) != 1 {
		t.Fatalf("expected one NEW_ROOM frame, got %d", len(hostSink.frames))
	}

	guestSink := &recordingSink{}
	guest := sessions.Connect("guest", guestSink)
	send(d, guest, ClientMessage{Type: "ENTER", ID: host.Room().ID})

	if guest.Room() != host.Room() {
		t.Fatalf("expected guest to join host's room")
	}
}

func TestDispatchCreateIgnoredWhenAlreadySeated(t *testing.T) {
	d, _, sessions := newTestDispatcher()
	host := sessions.Connect("host", &recordingSink{})
	send(d, host, ClientMessage{Type: "CREATE", Title: "table"})
	first := host.Room()

	send(d, host, ClientMessage{Type: "CREATE", Title: "second"})
	if host.Room() != first {
		t.Fatalf("expected a second CREATE from an already-seated session to be ignored")
	}
}

func TestDispatchSetupRejectsMalformedRole(t *testing.T) {
	d, _, sessions := newTestDispatcher()
	hostSink := &recordingSink{}
	host := sessions.Connect("host", hostSink)
	send(d, host, ClientMessage{Type: "CREATE", Title: "table"})

	send(d, host, ClientMessage{Type: "SETUP", Setup: &entity.SetupInput{
		Formation: []entity.SlotSpec{{Role: "NotARealRole"}},
	}})

	if host.Room().Setup != nil {
		t.Fatalf("expected malformed setup to be rejected")
	}
	if len(hostSink.frames) != 2 {
		t.Fatalf("expected NEW_ROOM + ERROR frames, got %d", len(hostSink.frames))
	}
}

func TestDispatchSetupAcceptedByHostOnly(t *testing.T) {
	d, _, sessions := newTestDispatcher()
	host := sessions.Connect("host", &recordingSink{})
	send(d, host, ClientMessage{Type: "CREATE", Title: "table"})
	room := host.Room()

	guest := sessions.Connect("guest", &recordingSink{})
	send(d, guest, ClientMessage{Type: "ENTER", ID: room.ID})

	formation := make([]entity.SlotSpec, entity.MinFormation)
	for i := range formation {
		formation[i] = entity.SlotSpec{Role: entity.RoleCitizen}
	}
	formation[0] = entity.SlotSpec{Role: entity.RoleMafioso}
	send(d, guest, ClientMessage{Type: "SETUP", Setup: &entity.SetupInput{Formation: formation}})
	if room.Setup != nil {
		t.Fatalf("expected non-host SETUP to be ignored")
	}

	send(d, host, ClientMessage{Type: "SETUP", Setup: &entity.SetupInput{Formation: formation}})
	if room.Setup == nil {
		t.Fatalf("expected host SETUP to be accepted")
	}
}

func TestDispatchLeaveDeletesEmptyRoom(t *testing.T) {
	d, rooms, sessions := newTestDispatcher()
	host := sessions.Connect("host", &recordingSink{})
	send(d, host, ClientMessage{Type: "CREATE", Title: "table"})
	room := host.Room()

	send(d, host, ClientMessage{Type: "LEAVE"})

	if _, err := rooms.GetRoom(room.ID); err != entity.ErrRoomNotFound {
		t.Fatalf("expected room deleted after its only occupant leaves, got %v", err)
	}
}
