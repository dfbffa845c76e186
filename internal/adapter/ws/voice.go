package ws

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/V4T54L/mafia/internal/adapter/sfu"
	"github.com/V4T54L/mafia/internal/domain/entity"
	"github.com/pion/webrtc/v4"
)

// voiceMessage is the signaling envelope for WebRTC join/leave/offer/
// candidate/speaking frames. It rides the same WebSocket connection as
// game messages but never reaches the domain Dispatcher: voice is an
// adjunct adapter concern, not game state, so it is handled here
// directly against the SFU.
type voiceMessage struct {
	Type      string                     `json:"type"`
	Offer     *webrtc.SessionDescription `json:"offer,omitempty"`
	Candidate *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
	Speaking  bool                       `json:"speaking,omitempty"`
}

// VoiceHandler routes voice-signaling frames for one connection's
// Session to the SFU. It is the replacement for the teacher's deleted
// router.go voice handlers (handleVoiceJoin/Offer/Candidate/etc.), now
// standalone rather than folded into the game message dispatch-by-type
// loop.
type VoiceHandler struct {
	sfu    *sfu.SFU
	logger *slog.Logger
}

func NewVoiceHandler(s *sfu.SFU, logger *slog.Logger) *VoiceHandler {
	return &VoiceHandler{sfu: s, logger: logger}
}

// Handle dispatches one voice frame for sess. ok reports whether raw was
// recognized as a voice message at all; callers fall through to the
// game Dispatcher when it is false.
func (h *VoiceHandler) Handle(sess *entity.Session, raw []byte) (ok bool) {
	var msg voiceMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
		return false
	}

	room := sess.Room()
	if room == nil {
		return true
	}
	code := strconv.Itoa(room.ID)

	switch msg.Type {
	case "VOICE_JOIN":
		if _, err := h.sfu.JoinVoice(code, sess.Identity); err != nil {
			sess.Deliver(entity.EventError, entity.Payload{"reason": err.Error()})
			return true
		}
		h.sfu.ApplyRoomVoiceRouting(room)

	case "VOICE_LEAVE":
		h.sfu.LeaveVoice(code, sess.Identity)

	case "VOICE_OFFER":
		if msg.Offer == nil {
			return true
		}
		answer, err := h.sfu.HandleOffer(code, sess.Identity, *msg.Offer)
		if err != nil {
			h.logger.Warn("voice offer failed", "room", room.ID, "identity", sess.Identity, "err", err)
			sess.Deliver(entity.EventError, entity.Payload{"reason": err.Error()})
			return true
		}
		sess.Deliver(entity.EventVoiceAnswer, entity.Payload{"answer": answer})

	case "VOICE_CANDIDATE":
		if msg.Candidate == nil {
			return true
		}
		if err := h.sfu.AddICECandidate(code, sess.Identity, *msg.Candidate); err != nil {
			h.logger.Warn("voice candidate failed", "room", room.ID, "identity", sess.Identity, "err", err)
		}

	case "VOICE_SPEAKING":
		h.sfu.SetSpeakingState(code, sess.Identity, msg.Speaking)

	default:
		return false
	}

	return true
}
