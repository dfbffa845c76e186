package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/V4T54L/mafia/internal/archive"
	"github.com/V4T54L/mafia/internal/domain/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopSink struct{ calls int }

func (s *nopSink) Archive(archive.GameData) { s.calls++ }

func newTestRoomService() *RoomService {
	return NewRoomService(testLogger(), &nopSink{}, true)
}

func TestCreateRoomAssignsMonotonicIDs(t *testing.T) {
	svc := newTestRoomService()
	host1 := entity.NewSession("host1", nil)
	host2 := entity.NewSession("host2", nil)

	r1, err := svc.CreateRoom(host1, "first", "")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	r2, err := svc.CreateRoom(host2, "second", "")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if r2.ID != r1.ID+1 {
		t.Fatalf("expected monotonic ids, got %d then %d", r1.ID, r2.ID)
	}
	if host1.Room() != r1 {
		t.Fatalf("expected host1 seated in r1")
	}
}

func TestCreateRoomTruncatesOversizedTitle(t *testing.T) {
	svc := newTestRoomService()
	host := entity.NewSession("host", nil)

	long := "this title is way too long for a room"
	room, err := svc.CreateRoom(host, long, "")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if len(room.Title) > entity.MaxTitleLen {
		t.Fatalf("expected title truncated to %d, got %q", entity.MaxTitleLen, room.Title)
	}
}

func TestJoinRoomRejectsWrongPassword(t *testing.T) {
	svc := newTestRoomService()
	host := entity.NewSession("host", nil)
	room, err := svc.CreateRoom(host, "locked", "secret")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	guest := entity.NewSession("guest", nil)
	if _, err := svc.JoinRoom(room.ID, "wrong", guest); err != entity.ErrWrongPassword {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if _, err := svc.JoinRoom(room.ID, "secret", guest); err != nil {
		t.Fatalf("expected successful join, got %v", err)
	}
}

func TestLeaveRoomQueuesAliveSeatedPlayerAsLeaver(t *testing.T) {
	svc := newTestRoomService()
	host := entity.NewSession("host", nil)
	room, err := svc.CreateRoom(host, "table", "")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	player := entity.NewPlayer(0, "host", host)
	player.Convert(entity.NewRole(entity.RoleCitizen, nil))
	host.SetPlayer(player)
	room.Players = []*entity.Player{player}

	guest := entity.NewSession("guest", nil)
	if _, err := svc.JoinRoom(room.ID, "", guest); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	if err := svc.LeaveRoom(host); err != nil {
		t.Fatalf("LeaveRoom: %v", err)
	}
	if !player.Leaver {
		t.Fatalf("expected alive seated player to be queued as a leaver")
	}
	if player.Alive() != true {
		t.Fatalf("leave must not kill immediately, only queue")
	}
	if room.Host != guest {
		t.Fatalf("expected host transferred to remaining occupant")
	}
}

func TestLeaveRoomDeletesEmptyRoom(t *testing.T) {
	svc := newTestRoomService()
	host := entity.NewSession("host", nil)
	room, err := svc.CreateRoom(host, "table", "")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	if err := svc.LeaveRoom(host); err != nil {
		t.Fatalf("LeaveRoom: %v", err)
	}
	if _, err := svc.GetRoom(room.ID); err != entity.ErrRoomNotFound {
		t.Fatalf("expected room deleted once empty, got %v", err)
	}
}
