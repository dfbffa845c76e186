package engine

import (
	"context"
	"strings"

	"github.com/V4T54L/mafia/internal/domain/entity"
)

// runEvening runs the EVENING phase: the five pre-night hooks of
// spec.md §4.3, in order, then the phase's chat window.
func (e *Engine) runEvening(ctx context.Context) {
	e.Room.SetPhase(entity.PhaseEvening)
	e.broadcastPhase()

	e.promoteMasonLeader()
	e.promoteBoss(entity.TeamMafia, entity.ChatMafia, entity.RoleMafioso, entity.RoleGodfather)
	e.promoteBoss(entity.TeamTriad, entity.ChatTriad, entity.RoleEnforcer, entity.RoleDragonHead)
	e.queueCounselSuicides()
	e.runJailQueue()
	e.emitInformationalHooks()

	e.wait(ctx, "EVENING", e.handleEveningChat)
}

// promoteMasonLeader: if no live MasonLeader exists but a live Mason
// does, promote the first Mason to MasonLeader (hook 1).
func (e *Engine) promoteMasonLeader() {
	var hasLeader bool
	var firstMason *entity.Player
	for _, p := range e.Room.AlivePlayers() {
		if p.Role().ID == entity.RoleMasonLeader {
			hasLeader = true
		}
		if p.Role().ID == entity.RoleMason && firstMason == nil {
			firstMason = p
		}
	}
	if !hasLeader && firstMason != nil {
		entity.ResolveConversion(firstMason, entity.RoleMasonLeader, nil)
	}
}

// promoteBoss implements hook 2: if no chat member holds an active
// killing role, and some member has an IdentityInvestigating role with
// PROMOTED set, promote that member to boss; otherwise promote the
// chat's first member to the team's intern.
func (e *Engine) promoteBoss(team entity.Team, kind entity.ChatKind, intern, boss entity.RoleID) {
	chat := e.Room.PrivateChats[kind]
	var hasActiveKiller, hasBoss bool
	var promotedCandidate, first *entity.Player
	for _, p := range chat {
		if !p.Alive() {
			continue
		}
		if first == nil {
			first = p
		}
		if p.Role().Has(entity.CapKillingVisiting) || p.Role().Has(entity.CapBoss) {
			hasActiveKiller = true
		}
		if p.Role().ID == boss {
			hasBoss = true
		}
		if p.Role().Has(entity.CapIdentityInvestigating) {
			if b, ok := p.Role().Constraints[entity.ConstraintPromoted].(bool); ok && b {
				promotedCandidate = p
			}
		}
	}
	if hasBoss || hasActiveKiller {
		return
	}
	if promotedCandidate != nil {
		entity.ResolveConversion(promotedCandidate, boss, nil)
		return
	}
	if first != nil {
		entity.ResolveConversion(first, intern, nil)
	}
}

// queueCounselSuicides implements hook 3.
func (e *Engine) queueCounselSuicides() {
	for _, p := range e.Room.AlivePlayers() {
		if p.Role().ID != entity.RoleCounsel {
			continue
		}
		goal := p.Role().GoalTarget
		if goal == nil || goal.Alive() {
			continue
		}
		ifFail, _ := p.Role().Constraints[entity.ConstraintIfFail].(string)
		if ifFail == "SUICIDE" {
			p.Leaver = true // queued for the SUICIDE priority slot, which a heal can still cancel
		}
	}
}

// runJailQueue implements hook 4: if no execution occurred today, each
// queued jailor jails their target unless already jailed (conflict is
// logged, not silently resolved — Open Question decision #3).
func (e *Engine) runJailQueue() {
	if len(e.Room.ExecutedToday) > 0 {
		return
	}
	jailedAlready := map[*entity.Player]bool{}
	for _, p := range e.Room.AlivePlayers() {
		if !p.Role().Has(entity.CapJailing) {
			continue
		}
		target := p.Role().GoalTarget
		if target == nil {
			continue
		}
		if target.JailedBy != nil || jailedAlready[target] {
			e.emitResult(entity.AbilityResult{Individual: map[*entity.Player]entity.Payload{
				p: {string(entity.ResultKeyType): entity.ResultJailed, string(entity.ResultKeySuccess): false},
			}})
			e.logger.Info("engine: jail conflict", "room", e.Room.ID, "target_seat", target.Seat, "jailor_seat", p.Seat)
			continue
		}
		entity.ResolveJail(target, e.Room.Day, p)
		jailedAlready[target] = true
	}
}

// jailorExecute implements interaction contract 5's execute half: the
// jailor kills its jailed target directly, at ABSOLUTE offense, bypassing
// CanKill's defense comparison and the heal stack entirely — a jailed
// target already sits outside the night's visit/heal resolution.
func (e *Engine) jailorExecute(jailor *entity.Player) {
	target := jailor.Role().GoalTarget
	if target == nil || !target.Alive() || target.JailedBy != jailor {
		return
	}
	target.Kill(entity.CauseJailor)
	e.emitResult(entity.AbilityResult{Individual: map[*entity.Player]entity.Payload{
		target: {string(entity.ResultKeyType): entity.ResultKilled, string(entity.ResultKeyBy): "Jailor"},
		jailor: {string(entity.ResultKeyType): entity.ResultKilled, string(entity.ResultKeySuccess): true},
	}})
}

// emitInformationalHooks implements hook 5: Survivors, Amnesiacs, and
// Arsonists receive informational results each evening.
func (e *Engine) emitInformationalHooks() {
	for _, p := range e.Room.AlivePlayers() {
		switch p.Role().ID {
		case entity.RoleSurvivor:
			e.emitResult(entity.AbilityResult{Individual: map[*entity.Player]entity.Payload{
				p: {string(entity.ResultKeyType): entity.ResultNotified, "opportunity": p.Role().Opportunity},
			}})
		case entity.RoleAmnesiac:
			var pool []int
			for _, dead := range e.Room.Players {
				if !dead.Alive() {
					pool = append(pool, dead.Seat)
				}
			}
			e.emitResult(entity.AbilityResult{Individual: map[*entity.Player]entity.Payload{
				p: {string(entity.ResultKeyType): entity.ResultNotified, "pool": pool},
			}})
		case entity.RoleArsonist:
			var oiled []int
			for _, target := range e.Room.Players {
				if target.DayRecord(e.Room.Day).Target == p {
					oiled = append(oiled, target.Seat)
				}
			}
			e.emitResult(entity.AbilityResult{Individual: map[*entity.Player]entity.Payload{
				p: {string(entity.ResultKeyType): entity.ResultNotified, "oiled": oiled},
			}})
		}
	}
}

// handleEveningChat implements the EVENING chat-routing precedence of
// spec.md §4.3. Returns false always: evening chat never ends the phase
// early, it just routes messages until the timer elapses.
func (e *Engine) handleEveningChat(cmd Command) bool {
	actor := cmd.Session.Player()
	if actor == nil {
		return false
	}
	text := sanitize(cmd.Text)
	if text == "" {
		return false
	}

	if actor.BlackmailedOnDay == e.Room.Day {
		if !isAllowedBlackmailedCommand(text) {
			cmd.Session.Deliver(entity.EventError, entity.Payload{"reason": "blackmailed: only /suicide and /visit permitted"})
		}
		return false
	}

	if actor.JailedBy != nil {
		e.relayToJailor(actor, text)
		return false
	}

	if actor.Role().Has(entity.CapJailing) && actor.Role().GoalTarget != nil {
		if strings.HasPrefix(text, "/act") {
			e.jailorExecute(actor)
			return false
		}
		e.relayToJailed(actor, text)
		return false
	}

	for kind, members := range e.Room.PrivateChats {
		if containsPlayer(members, actor) {
			e.routeTeamChat(kind, actor, text)
			return false
		}
	}

	if actor.Role().Has(entity.CapCrying) {
		e.Emitter.Emit(entity.Event{
			Type:       entity.EventMessage,
			Recipients: e.sessions(),
			Payload:    entity.Payload{"text": text, "from": actor.Nickname},
			Sender:     cmd.Session,
		})
	}
	return false
}

func isAllowedBlackmailedCommand(text string) bool {
	return hasPrefix(text, "/suicide") || hasPrefix(text, "/visit")
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func containsPlayer(members []*entity.Player, p *entity.Player) bool {
	for _, m := range members {
		if m == p {
			return true
		}
	}
	return false
}

func (e *Engine) relayToJailor(jailed *entity.Player, text string) {
	jailor := jailed.JailedBy
	sess := jailor.Session()
	if sess != nil {
		e.Emitter.Emit(entity.Event{Type: entity.EventPM, Recipients: []*entity.Session{sess}, Payload: entity.Payload{"text": text, "from": jailed.Nickname}})
	}
	for kind, members := range e.Room.PrivateChats {
		if containsPlayer(members, jailor) {
			e.routeTeamChat(kind, jailor, text)
		}
	}
}

func (e *Engine) relayToJailed(jailor *entity.Player, text string) {
	target := jailor.Role().GoalTarget
	if target == nil {
		return
	}
	sess := target.Session()
	if sess != nil {
		e.Emitter.Emit(entity.Event{Type: entity.EventPM, Recipients: []*entity.Session{sess}, Payload: entity.Payload{"text": text, "role": jailor.Role().ID}})
	}
	for kind, members := range e.Room.PrivateChats {
		if containsPlayer(members, jailor) {
			e.routeTeamChat(kind, jailor, text)
		}
	}
}

func (e *Engine) routeTeamChat(kind entity.ChatKind, actor *entity.Player, text string) {
	var recipients []*entity.Session
	for _, m := range e.Room.PrivateChats[kind] {
		if sess := m.Session(); sess != nil {
			recipients = append(recipients, sess)
		}
	}
	e.Emitter.Emit(entity.Event{Type: entity.EventMessage, Recipients: recipients, Payload: entity.Payload{"text": text, "from": actor.Nickname, "chat": kind}})

	if kind == entity.ChatMafia || kind == entity.ChatTriad {
		var spyRecipients []*entity.Session
		for _, m := range e.Room.PrivateChats[entity.ChatSpy] {
			if sess := m.Session(); sess != nil {
				spyRecipients = append(spyRecipients, sess)
			}
		}
		if len(spyRecipients) > 0 {
			e.Emitter.Emit(entity.Event{Type: entity.EventMessage, Recipients: spyRecipients, Payload: entity.Payload{"text": text, "from": string(kind)}})
		}
	}
}

// sanitize truncates to <=128 chars and collapses whitespace runs, per
// spec.md §6 message sanitation.
func sanitize(text string) string {
	if len(text) > 128 {
		text = text[:128]
	}
	out := make([]byte, 0, len(text))
	lastSpace := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		isSpace := c == ' ' || c == '\t' || c == '\n' || c == '\r'
		if isSpace {
			if !lastSpace && len(out) > 0 {
				out = append(out, ' ')
			}
			lastSpace = true
			continue
		}
		out = append(out, c)
		lastSpace = false
	}
	for len(out) > 0 && out[len(out)-1] == ' ' {
		out = out[:len(out)-1]
	}
	return string(out)
}
