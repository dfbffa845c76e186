package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/V4T54L/mafia/internal/domain/entity"
)

// runVoteSubloop implements the vote subloop of spec.md §4.3: repeated
// VOTE -> ELECTION -> (DEFENSE -> VOTE_EXECUTION -> LAST_WORDS | direct
// hang) rounds until either no election fires, a skip-majority ends the
// round, or (in lynch mode) the quota is reached.
func (e *Engine) runVoteSubloop(ctx context.Context) {
	for _, p := range e.Room.Players {
		p.ResetVote()
	}
	e.Room.ExecutedToday = nil
	quota := e.lynchQuota()
	hangedThisDay := 0

	for {
		e.Room.SetPhase(entity.PhaseVote)
		e.broadcastPhase()

		elected, skipped := e.runVoteRound(ctx)
		if skipped || elected == nil {
			return
		}

		e.Room.SetPhase(entity.PhaseElection)
		e.broadcastPhase()
		e.sleep(ctx, e.timers["ELECTION"])
		e.Emitter.Emit(entity.Event{
			Type:       entity.EventVote,
			Recipients: e.sessions(),
			Payload:    entity.Payload{"elected": elected.Seat},
		})

		var guilty bool
		// Open Question decision: lynch takes priority over court and
		// skips DEFENSE/VOTE_EXECUTION entirely (SPEC_FULL.md §Open
		// Question Decisions #2).
		if e.Room.InLynch {
			guilty = true
		} else if e.Room.InCourt {
			guilty = e.runDefenseAndCourt(ctx, elected)
		} else {
			guilty = e.runDefenseAndCourt(ctx, elected)
		}

		if guilty {
			e.Room.SetPhase(entity.PhaseLastWords)
			e.broadcastPhase()
			e.wait(ctx, "LAST_WORDS", e.handleLastWords(elected))

			e.hang(elected)
			hangedThisDay++
		}

		for _, p := range e.Room.Players {
			p.ResetVote()
		}

		if !e.Room.InLynch || hangedThisDay >= quota {
			return
		}
	}
}

func (e *Engine) lynchQuota() int {
	if !e.Room.InLynch {
		return 1
	}
	for _, p := range e.Room.AlivePlayers() {
		if p.Role().ID == entity.RoleMarshall {
			if q, ok := p.Role().Constraints[entity.ConstraintQuotaPerLynch].(int); ok {
				return q
			}
		}
	}
	return 1
}

// runVoteRound runs one VOTE timer, processing /vote and /skip commands
// until the election condition fires (§4.3 voting rules) or time runs
// out. Returns (elected, skippedRound).
func (e *Engine) runVoteRound(ctx context.Context) (*entity.Player, bool) {
	var elected *entity.Player
	var skipped bool

	remaining := func() int { return len(e.Room.AlivePlayers()) }

	e.countdown(ctx, e.timers["VOTE"], func(cmd Command) bool {
		actor := cmd.Session.Player()
		if actor == nil || !actor.Alive() {
			return false
		}
		switch {
		case strings.HasPrefix(cmd.Text, "/vote "):
			idxStr := strings.TrimSpace(strings.TrimPrefix(cmd.Text, "/vote "))
			seat, err := strconv.Atoi(idxStr)
			if err != nil {
				return false
			}
			target := e.Room.PlayerBySeat(seat)
			if target == nil || !target.Alive() {
				return false
			}
			e.castVote(actor, target)
		case cmd.Text == "/skip":
			e.castSkip(actor)
		default:
			return false
		}

		n := remaining()
		for _, p := range e.Room.AlivePlayers() {
			if p.Vote.VotedCount > n/2 {
				elected = p
				return true
			}
		}
		skipCount := 0
		for _, p := range e.Room.AlivePlayers() {
			if p.Vote.VotedSkip {
				skipCount++
			}
		}
		if skipCount > n/2 {
			skipped = true
			return true
		}
		return false
	})

	return elected, skipped
}

func (e *Engine) castVote(voter, target *entity.Player) {
	if voter.Vote.VotedTo != nil {
		voter.Vote.VotedTo.Vote.VotedCount -= voter.Role().VotesHeld
	}
	if voter.Vote.VotedSkip {
		voter.Vote.VotedSkip = false
	}
	voter.Vote.VotedTo = target
	target.Vote.VotedCount += voter.Role().VotesHeld
}

func (e *Engine) castSkip(voter *entity.Player) {
	if voter.Vote.VotedTo != nil {
		voter.Vote.VotedTo.Vote.VotedCount -= voter.Role().VotesHeld
		voter.Vote.VotedTo = nil
	}
	voter.Vote.VotedSkip = true
}

// runDefenseAndCourt runs DEFENSE then VOTE_EXECUTION, returning whether
// elected hangs (sum of weighted GUILTY/INNOCENT/ABSTENTION votes > 0).
func (e *Engine) runDefenseAndCourt(ctx context.Context, elected *entity.Player) bool {
	e.Room.SetPhase(entity.PhaseDefense)
	e.broadcastPhase()
	e.wait(ctx, "DEFENSE", nil)

	e.Room.SetPhase(entity.PhaseVoteExecution)
	e.broadcastPhase()

	sum := 0
	e.countdown(ctx, e.timers["VOTE_EXECUTION"], func(cmd Command) bool {
		actor := cmd.Session.Player()
		if actor == nil || !actor.Alive() || actor == elected {
			return false
		}
		switch cmd.Text {
		case "/guilty":
			actor.Vote.TrialChoice = "GUILTY"
		case "/innocent":
			actor.Vote.TrialChoice = "INNOCENT"
		case "/abstention":
			actor.Vote.TrialChoice = "ABSTENTION"
		}
		return false
	})
	for _, p := range e.Room.AlivePlayers() {
		switch p.Vote.TrialChoice {
		case "GUILTY":
			sum += p.Role().VotesHeld
		case "INNOCENT":
			sum -= p.Role().VotesHeld
		}
	}
	e.Emitter.Emit(entity.Event{
		Type:       entity.EventVoteExecResult,
		Recipients: e.sessions(),
		Payload:    entity.Payload{"sum": sum},
	})
	return sum > 0
}

// handleLastWords lets a lynched Jester submit "/visit <idx>" during
// LAST_WORDS to choose up to the VICTIMS option's count of haunt
// victims, queued for the next SUICIDE priority step.
func (e *Engine) handleLastWords(elected *entity.Player) func(Command) bool {
	if elected.Role().ID != entity.RoleJester {
		return nil
	}
	limit := 1
	if v, ok := elected.Role().Constraints[entity.ConstraintVictims].(int); ok {
		limit = v
	}
	return func(cmd Command) bool {
		if cmd.Session.Player() != elected || !strings.HasPrefix(cmd.Text, "/visit ") {
			return false
		}
		seat, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(cmd.Text, "/visit ")))
		if err != nil {
			return false
		}
		target := e.Room.PlayerBySeat(seat)
		if target == nil || !target.Alive() || target == elected {
			return false
		}
		for _, t := range elected.HauntTargets {
			if t == target {
				return false
			}
		}
		elected.HauntTargets = append(elected.HauntTargets, target)
		return len(elected.HauntTargets) >= limit
	}
}

func (e *Engine) hang(elected *entity.Player) {
	elected.Kill(entity.CauseDemocracy)
	e.Room.ExecutedToday = append(e.Room.ExecutedToday, elected)
}

func (e *Engine) revealExecuted() {
	for _, p := range e.Room.ExecutedToday {
		e.Emitter.Emit(entity.Event{
			Type:       entity.EventIdentityReveal,
			Recipients: e.sessions(),
			Payload: entity.Payload{
				"seat": p.Seat,
				"role": p.Role().ID,
			},
		})
	}
}
