package engine

import (
	"math/rand/v2"

	"github.com/V4T54L/mafia/internal/domain/entity"
)

// seatPlayersAndAssignRoles runs trial() against the room's Setup,
// shuffles the result together with the seated occupants (debug mode
// preserves order for reproducibility), and builds each seat's Player
// and Role, wiring each into its team's private chat.
func (e *Engine) seatPlayersAndAssignRoles() {
	roles := e.Room.Setup.Trial()
	if !e.debug {
		rand.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })
	}

	n := len(roles)
	players := make([]*entity.Player, n)
	for i := 0; i < n; i++ {
		var sess *entity.Session
		if i < len(e.Room.Occupants) {
			sess = e.Room.Occupants[i]
		}
		nickname := ""
		if sess != nil {
			nickname = sess.Identity
		}
		p := entity.NewPlayer(i, nickname, sess)
		p.Convert(entity.NewRole(roles[i], e.Room.Setup.Constraints[roles[i]]))
		if sess != nil {
			sess.SetPlayer(p)
		}
		players[i] = p
	}
	e.Room.Players = players
	e.Room.Day = 0

	for _, p := range players {
		kind, ok := chatKindFor(p.Role().Team())
		if !ok {
			continue
		}
		e.Room.PrivateChats[kind] = append(e.Room.PrivateChats[kind], p)
	}
	for _, p := range players {
		if p.Role().ID == entity.RoleSpy {
			e.Room.PrivateChats[entity.ChatSpy] = append(e.Room.PrivateChats[entity.ChatSpy], p)
		}
		if p.Role().ID == entity.RoleMason || p.Role().ID == entity.RoleMasonLeader {
			e.Room.PrivateChats[entity.ChatMason] = append(e.Room.PrivateChats[entity.ChatMason], p)
		}
	}

	e.Emitter.Emit(entity.Event{
		Type:       entity.EventLineup,
		Recipients: e.sessions(),
		Payload:    entity.Payload{"count": n},
	})
	for _, p := range players {
		if sess := p.Session(); sess != nil {
			e.Emitter.Emit(entity.Event{
				Type:       entity.EventEmployed,
				Recipients: []*entity.Session{sess},
				Payload:    entity.Payload{"role": p.Role().ID, "seat": p.Seat},
			})
		}
	}
}

func chatKindFor(t entity.Team) (entity.ChatKind, bool) {
	switch t {
	case entity.TeamMafia:
		return entity.ChatMafia, true
	case entity.TeamTriad:
		return entity.ChatTriad, true
	case entity.TeamCult:
		return entity.ChatCult, true
	default:
		return "", false
	}
}

// announceDeaths publishes each newly-dead Player's death and, when
// applicable, their identity reveal.
func (e *Engine) announceDeaths() {
	var dead []int
	for _, p := range e.Room.Players {
		if !p.Alive() && !p.AnnouncedDead {
			p.AnnouncedDead = true
			dead = append(dead, p.Seat)
		}
	}
	if len(dead) == 0 {
		return
	}
	e.Emitter.Emit(entity.Event{
		Type:       entity.EventDead,
		Recipients: e.sessions(),
		Payload:    entity.Payload{"seats": dead},
	})
	e.Emitter.Emit(entity.Event{
		Type:       entity.EventNumberOfDead,
		Recipients: e.sessions(),
		Payload:    entity.Payload{"count": len(dead)},
	})
}

// gameOver implements the §4.4 game-over rule: fewer than 3 survivors
// ends the match; otherwise a faction-survival check decides.
func (e *Engine) gameOver() bool {
	alive := e.Room.AlivePlayers()
	if len(alive) < 3 {
		return true
	}
	teams := map[entity.Team]int{}
	for _, p := range alive {
		teams[p.Role().Team()]++
	}
	townOnly := teams[entity.TeamMafia] == 0 && teams[entity.TeamTriad] == 0 && teams[entity.TeamCult] == 0 && teams[entity.TeamNeutralKilling] == 0
	if townOnly {
		return true
	}
	mafiaWins := teams[entity.TeamMafia] > 0 && teams[entity.TeamTriad] == 0 && teams[entity.TeamCult] == 0 && teams[entity.TeamNeutralKilling] == 0
	triadWins := teams[entity.TeamTriad] > 0 && teams[entity.TeamMafia] == 0 && teams[entity.TeamCult] == 0 && teams[entity.TeamNeutralKilling] == 0
	cultWins := teams[entity.TeamCult] > 0 && teams[entity.TeamMafia] == 0 && teams[entity.TeamTriad] == 0 && teams[entity.TeamNeutralKilling] == 0
	nkCount := teams[entity.TeamNeutralKilling]
	nkEnds := nkCount > 0 && nkCount <= 2 && teams[entity.TeamTown] == 0 && teams[entity.TeamMafia] == 0 && teams[entity.TeamTriad] == 0 && teams[entity.TeamCult] == 0

	if len(alive) == 2 {
		for _, p := range alive {
			if p.Role().ID == entity.RoleCitizen {
				return true // 1-vs-1 containing a Citizen forces a Town tie-win
			}
		}
	}

	return mafiaWins || triadWins || cultWins || nkEnds
}
