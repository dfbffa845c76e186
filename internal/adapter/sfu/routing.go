package sfu

import "github.com/V4T54L/mafia/internal/domain/entity"

// PlayerVoiceState holds a player's voice routing state
type PlayerVoiceState struct {
	ID       string
	Team     entity.Team
	IsAlive  bool
	CanSpeak bool
	CanHear  []string // IDs of players this one can hear
}

// VoiceRoutingState represents the full voice routing configuration
type VoiceRoutingState struct {
	Phase   entity.Phase
	Players []PlayerVoiceState
}

// isNightPhase reports the only phase where teams are split into private
// channels; every other phase either hears everyone (lobby/game over) or
// hears every living player (day phases).
func isNightPhase(phase entity.Phase) bool {
	return phase == entity.PhaseNight
}

// isLobbyLikePhase covers states with no living/dead distinction yet, or
// the match having ended - everyone hears everyone.
func isLobbyLikePhase(phase entity.Phase) bool {
	switch phase {
	case entity.PhaseIdle, entity.PhaseInitiating, entity.PhaseNicknameSelection, entity.PhaseFinishing:
		return true
	}
	return false
}

// CalculateRouting determines voice permissions based on game phase.
// Returns a map of playerID -> PlayerVoiceState. At night, each non-Town
// team (Mafia, Triad, Cult, ...) gets its own private channel instead of
// a single binary mafia/town split; Town has no night channel at all.
func CalculateRouting(phase entity.Phase, players []PlayerInfo) map[string]PlayerVoiceState {
	result := make(map[string]PlayerVoiceState)

	allAlive := make([]string, 0, len(players))
	allPlayers := make([]string, 0, len(players))
	aliveByTeam := make(map[entity.Team][]string)

	for _, p := range players {
		allPlayers = append(allPlayers, p.ID)
		if p.IsAlive {
			allAlive = append(allAlive, p.ID)
			aliveByTeam[p.Team] = append(aliveByTeam[p.Team], p.ID)
		}
	}

	for _, p := range players {
		state := PlayerVoiceState{
			ID:      p.ID,
			Team:    p.Team,
			IsAlive: p.IsAlive,
		}

		switch {
		case isLobbyLikePhase(phase):
			state.CanSpeak = true
			state.CanHear = allPlayers

		case isNightPhase(phase):
			switch {
			case !p.IsAlive:
				state.CanSpeak = false
				state.CanHear = []string{}
			case p.Team == entity.TeamTown:
				// Town has no private night channel; the original has
				// no analogue for a nocturnal town chat.
				state.CanSpeak = false
				state.CanHear = []string{}
			default:
				state.CanSpeak = true
				state.CanHear = aliveByTeam[p.Team]
			}

		default:
			// Day phases: dead can listen in on the living, muted;
			// living speak and hear every living player.
			if !p.IsAlive {
				state.CanSpeak = false
				state.CanHear = allAlive
			} else {
				state.CanSpeak = true
				state.CanHear = allAlive
			}
		}

		result[p.ID] = state
	}

	return result
}

// PlayerInfo holds basic player info for routing calculation
type PlayerInfo struct {
	ID      string
	Team    entity.Team
	IsAlive bool
}

// Router handles voice routing for a room
type Router struct {
	room *VoiceRoom
}

// NewRouter creates a new voice router
func NewRouter(room *VoiceRoom) *Router {
	return &Router{room: room}
}

// ApplyRouting applies voice routing based on game state
func (r *Router) ApplyRouting(state VoiceRoutingState) {
	routing := CalculateRouting(state.Phase, convertToPlayerInfo(state.Players))

	for playerID, voiceState := range routing {
		participant := r.room.GetParticipant(playerID)
		if participant == nil {
			continue
		}

		participant.SetCanSpeak(voiceState.CanSpeak)
		participant.SetCanHear(voiceState.CanHear)
	}
}

// SetCanSpeak sets speaking permission for a player
func (r *Router) SetCanSpeak(playerID string, canSpeak bool) {
	participant := r.room.GetParticipant(playerID)
	if participant != nil {
		participant.SetCanSpeak(canSpeak)
	}
}

// SubscribeToOnly sets which players a participant can hear
func (r *Router) SubscribeToOnly(playerID string, targetIDs []string) {
	participant := r.room.GetParticipant(playerID)
	if participant != nil {
		participant.SetCanHear(targetIDs)
	}
}

func convertToPlayerInfo(players []PlayerVoiceState) []PlayerInfo {
	result := make([]PlayerInfo, len(players))
	for i, p := range players {
		result[i] = PlayerInfo{
			ID:      p.ID,
			Team:    p.Team,
			IsAlive: p.IsAlive,
		}
	}
	return result
}
