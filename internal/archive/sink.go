// Package archive implements the durable write-behind archival sink of
// spec.md §4.6: a completed match's transcript is handed off and
// persisted without blocking the Engine's release of the room to IDLE.
package archive

import (
	"github.com/V4T54L/mafia/internal/domain/entity"
)

// GameData is the completed-match payload handed to a Sink.
type GameData struct {
	RoomID     int
	Title      string
	Private    bool
	Setup      *entity.Setup
	Transcript []entity.TranscriptRow
}

// Sink accepts a completed GameData and performs a durable write-behind.
// Archive must return promptly (typically after only enqueuing work) —
// actual persistence happens on a background task, per §4.6.
type Sink interface {
	Archive(data GameData)
}
