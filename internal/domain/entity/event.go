package entity

import "time"

// EventType enumerates the server-to-client message vocabulary.
type EventType string

const (
	EventInitialInformation EventType = "INITIAL_INFORMATION"
	EventConnect            EventType = "CONNECT"
	EventDisconnect         EventType = "DISCONNECT"
	EventMultiple           EventType = "multiple"
	EventNewRoom            EventType = "NEW_ROOM"
	EventDeletedRoom        EventType = "DELETED_ROOM"
	EventRoomStatus         EventType = "ROOM_STATUS"
	EventGameInfo           EventType = "GAME_INFO"
	EventEnter              EventType = "ENTER"
	EventLeave              EventType = "LEAVE"
	EventPhase              EventType = "PHASE"
	EventTime               EventType = "TIME"
	EventNickname           EventType = "NICKNAME"
	EventNicknameConfirmed  EventType = "NICKNAME_CONFIRMED"
	EventLineup             EventType = "LINEUP"
	EventEmployed           EventType = "EMPLOYED"
	EventTeammates          EventType = "TEAMMATES"
	EventMessage            EventType = "MESSAGE"
	EventPM                 EventType = "PM"
	EventPMSent             EventType = "PM_SENT"
	EventVote               EventType = "VOTE"
	EventVoteExecResult     EventType = "VOTE_EXECUTION_RESULT"
	EventVisit              EventType = "VISIT"
	EventAct                EventType = "ACT"
	EventSecondVisit        EventType = "SECOND_VISIT"
	EventSuicide            EventType = "SUICIDE"
	EventAbilityResult      EventType = "ABILITY_RESULT"
	EventSound              EventType = "SOUND"
	EventDead               EventType = "DEAD"
	EventIdentityReveal     EventType = "IDENTITY_REVEAL"
	EventNumberOfDead       EventType = "NUMBER_OF_DEAD"
	EventDayEvent           EventType = "DAY_EVENT"
	EventFinish             EventType = "FINISH"
	EventBackToIdle         EventType = "BACK_TO_IDLE"
	EventError              EventType = "ERROR"
	EventBlackmailed        EventType = "BLACKMAILED"
	EventBoom               EventType = "BOOM"
	EventSetup              EventType = "SETUP"
	EventVoiceAnswer        EventType = "VOICE_ANSWER"
)

// Sink is the transport write-end owned by a Session. Implementations
// must tolerate being called after the underlying connection closed.
type Sink interface {
	Send(frame []byte) error
}

// Payload is an opaque JSON-convertible map carried by an Event.
type Payload map[string]any

// Event is emitted by the Engine (or the session/room registry) and
// routed by the Emitter to its Recipients.
type Event struct {
	Type       EventType
	Recipients []*Session
	Payload    Payload
	Sender     *Session
	NoRecord   bool
}

// TranscriptRow is the serialized, append-only record of one Event.
type TranscriptRow struct {
	Type EventType `json:"type"`
	From string    `json:"from"`
	To   []string  `json:"to"`
	Time time.Time `json:"time"`
	Body Payload   `json:"content"`
}

// Emitter delivers Events to Sessions and, while a Room is in-game,
// mirrors non-NoRecord events into the Room's transcript. One Emitter
// is owned per Room and called only from that Room's Engine task.
type Emitter struct {
	room *Room
}

func NewEmitter(room *Room) *Emitter {
	return &Emitter{room: room}
}

// Emit delivers ev and, if applicable, appends it to the transcript.
// Delivery failures on a disconnected sink are swallowed; cleanup runs
// via the disconnect path, not here.
func (e *Emitter) Emit(ev Event) {
	if e.room.Phase() != PhaseIdle && !ev.NoRecord {
		to := make([]string, 0, len(ev.Recipients))
		for _, r := range ev.Recipients {
			to = append(to, r.Identity)
		}
		from := ""
		if ev.Sender != nil {
			from = ev.Sender.Identity
		}
		e.room.AppendTranscript(TranscriptRow{
			Type: ev.Type,
			From: from,
			To:   to,
			Time: now(),
			Body: ev.Payload,
		})
	}
	for _, r := range ev.Recipients {
		r.Deliver(ev.Type, ev.Payload)
	}
}

// now is a seam so tests can stand in a fixed clock without the
// toolchain ever being invoked here; production uses wall time.
var now = time.Now
