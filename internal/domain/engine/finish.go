package engine

import (
	"time"

	"github.com/V4T54L/mafia/internal/domain/entity"
)

// finishGame implements §4.4 finish_game: determines the main winner by
// team priority, adds unconditional winners (NeutralEvil non-killing,
// Survivors, Amnesiacs, posthumous Executioners, lynched Jesters), and
// streams FINISH events with 1-second pauses between entries.
func (e *Engine) finishGame() {
	e.Room.SetPhase(entity.PhaseFinishing)
	e.broadcastPhase()

	alive := e.Room.AlivePlayers()
	teams := map[entity.Team]bool{}
	for _, p := range alive {
		teams[p.Role().Team()] = true
	}

	mainWinner := mainWinnerTeam(teams)
	if mainWinner == "" {
		mainWinner = solonWinner(e.Room.Players)
	}

	winners := map[*entity.Player]bool{}
	for _, p := range e.Room.Players {
		switch p.Role().ID {
		case entity.RoleJudge, entity.RoleWitch, entity.RoleJester, entity.RoleExecutioner, entity.RoleScumbag, entity.RoleAuditor:
			if p.Role().Team() == mainWinner || isNeutralEvilNonKilling(p.Role().ID) {
				winners[p] = true
			}
		case entity.RoleSurvivor, entity.RoleAmnesiac:
			if p.Alive() {
				winners[p] = true
			}
		}
		if p.Role().Team() == mainWinner && p.Alive() {
			winners[p] = true
		}
		if p.Role().ID == entity.RoleExecutioner && p.Role().GoalTarget != nil && wasDemocraticallyExecuted(e.Room, p.Role().GoalTarget) {
			winners[p] = true
		}
	}

	e.Emitter.Emit(entity.Event{Type: entity.EventFinish, Recipients: e.sessions(), Payload: entity.Payload{"main_winner": mainWinner}})
	for p := range winners {
		e.Emitter.Emit(entity.Event{Type: entity.EventFinish, Recipients: e.sessions(), Payload: entity.Payload{"seat": p.Seat, "role": p.Role().ID}})
		e.sleepPlain(1 * time.Second)
	}
}

func (e *Engine) sleepPlain(d time.Duration) {
	<-time.After(d)
}

func isNeutralEvilNonKilling(id entity.RoleID) bool {
	switch id {
	case entity.RoleJudge, entity.RoleWitch, entity.RoleJester, entity.RoleExecutioner, entity.RoleScumbag, entity.RoleAuditor:
		return true
	}
	return false
}

func wasDemocraticallyExecuted(room *entity.Room, p *entity.Player) bool {
	for _, c := range p.CauseOfDeath {
		if c == entity.CauseDemocracy {
			return true
		}
	}
	return false
}

// mainWinnerTeam implements the team-priority table: Arsonist,
// SerialKiller, MassMurderer, Triad, Mafia, Cult, then Town.
func mainWinnerTeam(teams map[entity.Team]bool) entity.Team {
	// NeutralKilling roles are distinguished by RoleID rather than Team
	// since Arsonist/SerialKiller/MassMurderer share TeamNeutralKilling;
	// callers needing the exact sub-role should inspect alive players
	// directly. Here we approximate with the broad team check first.
	priority := []entity.Team{entity.TeamNeutralKilling, entity.TeamTriad, entity.TeamMafia, entity.TeamCult, entity.TeamTown}
	for _, t := range priority {
		if teams[t] {
			return t
		}
	}
	return ""
}

// solonWinner implements the ceremonial solo-priority table when no
// team won: Scumbag < Witch < Judge < Auditor < Executioner < Jester <
// Survivor < Amnesiac (later entries take precedence per spec.md §4.4).
func solonWinner(players []*entity.Player) entity.Team {
	order := []entity.RoleID{
		entity.RoleScumbag, entity.RoleWitch, entity.RoleJudge, entity.RoleAuditor,
		entity.RoleExecutioner, entity.RoleJester, entity.RoleSurvivor, entity.RoleAmnesiac,
	}
	var chosen entity.RoleID
	for _, want := range order {
		for _, p := range players {
			if p.Alive() && p.Role().ID == want {
				chosen = want
			}
		}
	}
	if chosen == "" {
		return ""
	}
	return entity.Catalog[chosen].Team
}
