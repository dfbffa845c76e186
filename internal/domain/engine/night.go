package engine

import (
	"context"
	"sort"

	"github.com/V4T54L/mafia/internal/domain/entity"
)

// priorityStep names one entry in the fixed night-resolution order of
// spec.md §4.4, confirmed against original_source/game.py's
// trigger_night_events priority tuple. second is true for a role's
// second appearance (its second_task rather than visit/act).
type priorityStep struct {
	roles   []entity.RoleID
	second  bool
	suicide bool // the single SUICIDE slot: resolves leaver and Jester-haunt queues
}

// nightPriority is the totally ordered priority list. Earlier wins.
var nightPriority = []priorityStep{
	{roles: []entity.RoleID{entity.RoleSurvivor, entity.RoleCitizen}}, // vest
	{roles: []entity.RoleID{entity.RoleWitch}},
	// INACTIVE: non-visiting, non-active-only roles handled inline below.
	{roles: []entity.RoleID{entity.RoleEscort, entity.RoleConsort, entity.RoleLiaison}},
	{roles: []entity.RoleID{entity.RoleBeguiler, entity.RoleDeceiver}},
	{roles: []entity.RoleID{entity.RoleFramer, entity.RoleForger}},
	{roles: []entity.RoleID{entity.RoleArsonist}}, // oil
	{roles: []entity.RoleID{entity.RoleDoctor, entity.RoleWitchDoctor}},
	{roles: []entity.RoleID{entity.RoleBodyguard}},
	{roles: []entity.RoleID{entity.RoleVeteran, entity.RoleJailor, entity.RoleKidnapper, entity.RoleInterrogator, entity.RoleVigilante}},
	{roles: []entity.RoleID{entity.RoleMafioso, entity.RoleGodfather, entity.RoleEnforcer, entity.RoleDragonHead}},
	{roles: []entity.RoleID{entity.RoleSerialKiller, entity.RoleArsonist}}, // ignite
	{roles: []entity.RoleID{entity.RoleMasonLeader, entity.RoleMassMurderer}}, // kill
	{roles: []entity.RoleID{entity.RoleWitch}, suicide: true}, // curse / SUICIDE
	{roles: []entity.RoleID{entity.RoleJanitor, entity.RoleIncenseMaster}},
	{roles: []entity.RoleID{entity.RoleCoroner, entity.RoleDetective, entity.RoleLookout, entity.RoleSheriff}},
	{roles: []entity.RoleID{entity.RoleConsigliere, entity.RoleAdministrator, entity.RoleAgent, entity.RoleVanguard}},
	{roles: []entity.RoleID{entity.RoleSpy, entity.RoleInvestigator, entity.RoleAuditor}},
	{roles: []entity.RoleID{entity.RoleMasonLeader, entity.RoleCultist, entity.RoleWitchDoctor}, second: true}, // recruit/convert
	{roles: []entity.RoleID{entity.RoleGodfather, entity.RoleDragonHead}, second: true},                       // recruit
	{roles: []entity.RoleID{entity.RoleAmnesiac, entity.RoleBlackmailer, entity.RoleSilencer}},
}

// RunNightResolver walks nightPriority once and invokes ability hooks on
// each live actor whose role matches that step, in seat-index order
// within a step (§5 ordering guarantee b). Two-appearance roles
// (Arsonist/MasonLeader/Godfather-DragonHead/WitchDoctor) dispatch to
// second_task on their second listing instead of visit/act.
func (e *Engine) RunNightResolver(ctx context.Context) {
	day := e.Room.Day
	fired := map[*entity.Player]bool{}

	// INACTIVE step: roles that are neither Visiting nor ActiveOnly but
	// may yet be targeted this night (e.g. Citizen) — nothing to
	// dispatch, included for ordering fidelity only.

	for _, step := range nightPriority {
		actors := e.liveActorsForStep(step.roles)
		sort.Slice(actors, func(i, j int) bool { return actors[i].Seat < actors[j].Seat })
		for _, actor := range actors {
			role := actor.Role()
			if !role.CanAct() && role.Opportunity != -1 {
				continue
			}
			rec := actor.DayRecord(day)
			if rec.Blocked {
				e.dispatchInactive(actor, day)
				fired[actor] = true
				role.ConsumeOpportunity()
				continue
			}
			blocked := rec.Target == nil && !rec.Active && fired[actor]

			switch {
			case step.second, role.ID == entity.RoleArsonist && fired[actor]:
				e.dispatchSecondTask(actor, day)
			case role.ID == entity.RoleWitch:
				if !step.suicide {
					e.dispatchWitch(actor, day)
				}
			case role.Has(entity.CapJailing):
				e.dispatchJailAct(actor, day)
			case role.Has(entity.CapBlocking):
				e.dispatchBlock(actor, day)
			case role.Has(entity.CapHiding):
				e.dispatchHide(actor, day)
			case role.Has(entity.CapHealing):
				e.dispatchHeal(actor, day)
			case role.ID == entity.RoleBodyguard:
				e.dispatchBodyguard(actor, day)
			case role.Has(entity.CapInvestigating), role.Has(entity.CapWatching), role.Has(entity.CapFollowing):
				e.dispatchInvestigate(actor, day)
			case role.Has(entity.CapFraming), role.Has(entity.CapVisiting):
				e.dispatchVisit(actor, day)
			case role.Has(entity.CapActiveOnly):
				e.dispatchAct(actor, day)
			default:
				if blocked {
					e.dispatchInactive(actor, day)
				}
			}
			fired[actor] = true
			role.ConsumeOpportunity()
		}
		if step.suicide {
			e.resolveSuicideQueue(day)
		}
	}

	// Veteran alerts must see every visit recorded across the full
	// priority order (a Mafioso visiting an alert Veteran dispatches
	// after the Veteran's own step), so this runs once the whole
	// priority list has fired rather than immediately after Veteran's
	// own step.
	e.resolveVeteranAlerts(day)
	e.resolveAttacks(day)
	e.runAfterNightCleanup()
}

func (e *Engine) liveActorsForStep(roles []entity.RoleID) []*entity.Player {
	want := map[entity.RoleID]bool{}
	for _, r := range roles {
		want[r] = true
	}
	var out []*entity.Player
	for _, p := range e.Room.AlivePlayers() {
		if p.Role() != nil && want[p.Role().ID] {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) dispatchVisit(actor *entity.Player, day int) {
	target := actor.Role().GoalTarget
	target = entity.ApplyHiding(target)
	res := entity.Visit(actor, day, target)
	e.emitResult(res)
}

func (e *Engine) dispatchAct(actor *entity.Player, day int) {
	res := entity.Act(actor, day)
	e.emitResult(res)
}

// dispatchBlock implements interaction contract 6: Escort/Consort/
// Liaison still record their own visit, but the target's action for the
// night is nulled unless the target is an alert Veteran, which is
// immune to blocking.
func (e *Engine) dispatchBlock(actor *entity.Player, day int) {
	target := actor.Role().GoalTarget
	target = entity.ApplyHiding(target)
	res := entity.Visit(actor, day, target)
	e.emitResult(res)
	if target == nil {
		return
	}
	if target.Role().ID == entity.RoleVeteran && target.Role().CanAct() {
		return
	}
	entity.ResolveBlock(target, day)
	e.emitResult(entity.AbilityResult{Individual: map[*entity.Player]entity.Payload{
		target: {string(entity.ResultKeyType): entity.ResultBlocked, string(entity.ResultKeyBy): actor.Nickname},
	}})
}

// dispatchHide implements interaction contract 1: Beguiler/Deceiver
// still record their own visit, and the target becomes hidden behind
// the actor for the rest of the night's redirects.
func (e *Engine) dispatchHide(actor *entity.Player, day int) {
	target := actor.Role().GoalTarget
	res := entity.Visit(actor, day, target)
	e.emitResult(res)
	if target != nil {
		target.IsBehind = actor
	}
}

// dispatchHeal implements interaction contract 3's healer-side half:
// Doctor/WitchDoctor still record their own visit, and the healer is
// pushed onto the target's heal stack for resolveAttacks to consume.
func (e *Engine) dispatchHeal(actor *entity.Player, day int) {
	target := actor.Role().GoalTarget
	target = entity.ApplyHiding(target)
	res := entity.Visit(actor, day, target)
	e.emitResult(res)
	entity.ApplyHealing(target, day, actor)
}

// dispatchBodyguard implements interaction contract 4's guard-side half:
// the Bodyguard still records its own visit, and is pushed onto the
// target's bodyguard stack for resolveAttacks to consume.
func (e *Engine) dispatchBodyguard(actor *entity.Player, day int) {
	target := actor.Role().GoalTarget
	target = entity.ApplyHiding(target)
	res := entity.Visit(actor, day, target)
	e.emitResult(res)
	entity.ApplyBodyguard(target, day, actor)
}

// dispatchInvestigate implements interaction contracts 7-8: Investigating/
// Watching/Following roles still record their own visit, and the actor
// additionally receives the target's detection report, honoring
// detection immunity and framing.
func (e *Engine) dispatchInvestigate(actor *entity.Player, day int) {
	target := actor.Role().GoalTarget
	target = entity.ApplyHiding(target)
	res := entity.Visit(actor, day, target)
	if target != nil {
		report := entity.ReportFor(target, day)
		res.Individual[actor][string(entity.ResultKeyResult)] = report
	}
	e.emitResult(res)
}

// dispatchWitch implements interaction contract 2: the Witch visits its
// controlled target and overwrites that target's chosen action with the
// Witch's second target.
func (e *Engine) dispatchWitch(actor *entity.Player, day int) {
	controlled := actor.Role().GoalTarget
	res := entity.Visit(actor, day, controlled)
	e.emitResult(res)
	if controlled == nil || !controlled.Alive() {
		return
	}
	newTarget := actor.Role().SecondTarget
	entity.ApplyWitchControl(controlled, day, newTarget, actor)
	e.emitResult(entity.AbilityResult{Individual: map[*entity.Player]entity.Payload{
		actor: {string(entity.ResultKeyType): entity.ResultContacted, string(entity.ResultKeyResult): controlled.Seat},
	}})
}

// resolveVeteranAlerts implements the Veteran half of interaction
// contract 6's exemption: every Veteran who went active (alert) this
// night kills each of its recorded visitors at its offense level.
func (e *Engine) resolveVeteranAlerts(day int) {
	for _, p := range e.Room.AlivePlayers() {
		if p.Role().ID != entity.RoleVeteran {
			continue
		}
		rec := p.DayRecord(day)
		if !rec.Active {
			continue
		}
		for _, visitor := range rec.VisitedBy {
			if !visitor.Alive() {
				continue
			}
			if entity.CanKill(p.Role().OffenseLevel, visitor.Role().DefenseLevel) {
				visitor.Kill(causeForRole(entity.RoleVeteran))
				e.emitResult(entity.AbilityResult{Individual: map[*entity.Player]entity.Payload{
					visitor: {string(entity.ResultKeyType): entity.ResultKilled, string(entity.ResultKeyBy): "Veteran"},
				}})
			}
		}
	}
}

func (e *Engine) dispatchJailAct(actor *entity.Player, day int) {
	target := actor.Role().GoalTarget
	if target == nil {
		return
	}
	entity.ResolveJail(target, day, actor)
	e.emitResult(entity.AbilityResult{Individual: map[*entity.Player]entity.Payload{
		target: {string(entity.ResultKeyType): entity.ResultJailed, string(entity.ResultKeyBy): actor.Nickname},
	}})
}

func (e *Engine) dispatchSecondTask(actor *entity.Player, day int) {
	target := actor.Role().GoalTarget
	if target == nil {
		return
	}
	switch actor.Role().ID {
	case entity.RoleMasonLeader, entity.RoleCultist, entity.RoleWitchDoctor, entity.RoleGodfather, entity.RoleDragonHead:
		if entity.ResolveConversion(target, teamRecruitRole(actor.Role().ID), nil) {
			e.emitResult(entity.AbilityResult{Individual: map[*entity.Player]entity.Payload{
				target: {string(entity.ResultKeyType): entity.ResultConverted, string(entity.ResultKeyInto): string(actor.Role().Team())},
			}})
		}
	case entity.RoleArsonist:
		if entity.CanKill(actor.Role().OffenseLevel, target.Role().DefenseLevel) {
			target.Kill(entity.CauseArson)
			e.emitResult(entity.AbilityResult{Individual: map[*entity.Player]entity.Payload{
				target: {string(entity.ResultKeyType): entity.ResultKilled, string(entity.ResultKeyBy): "Arsonist"},
			}})
		}
	}
}

func teamRecruitRole(recruiter entity.RoleID) entity.RoleID {
	switch recruiter {
	case entity.RoleMasonLeader:
		return entity.RoleMason
	case entity.RoleCultist:
		return entity.RoleCultist
	case entity.RoleWitchDoctor:
		return entity.RoleWitchDoctor
	case entity.RoleGodfather:
		return entity.RoleMafioso
	case entity.RoleDragonHead:
		return entity.RoleEnforcer
	}
	return entity.RoleCitizen
}

// resolveSuicideQueue fires the single SUICIDE priority slot: leavers
// (§4.3 leave semantics) and a lynched Jester's chosen haunt victims
// (§4.4 finish_game, "select suiciders per option VICTIMS"), each still
// subject to heal.
func (e *Engine) resolveSuicideQueue(day int) {
	for _, source := range e.Room.Players {
		for _, target := range source.HauntTargets {
			if !target.Alive() {
				continue
			}
			healed := entity.ResolveSuicide(target, day, entity.CauseSuicide)
			e.Emitter.Emit(entity.Event{
				Type:       entity.EventSuicide,
				Recipients: e.sessions(),
				Payload:    entity.Payload{"seat": target.Seat, "healed": healed, "haunted_by": source.Seat},
			})
		}
		source.HauntTargets = nil
	}
	for _, p := range e.Room.AlivePlayers() {
		if !p.Leaver {
			continue
		}
		healed := entity.ResolveSuicide(p, day, entity.CauseSuicide)
		p.Leaver = false
		e.Emitter.Emit(entity.Event{
			Type:       entity.EventSuicide,
			Recipients: e.sessions(),
			Payload:    entity.Payload{"seat": p.Seat, "healed": healed},
		})
	}
}

func (e *Engine) dispatchInactive(actor *entity.Player, day int) {
	res := entity.ActionWhenInactive(actor, day, actor.JailedBy)
	e.emitResult(res)
}

// resolveAttacks walks every KillingVisiting/CriminalKillingVisiting
// actor's declared target and applies heal/bodyguard interaction
// contracts 3-4 before recording a death.
func (e *Engine) resolveAttacks(day int) {
	for _, attacker := range e.Room.AlivePlayers() {
		role := attacker.Role()
		if !role.Has(entity.CapKillingVisiting) && !role.Has(entity.CapCriminalKillingVisiting) {
			continue
		}
		target := attacker.DayRecord(day).Target
		if target == nil || !target.Alive() {
			continue
		}
		if intercepted, _ := entity.ResolveBodyguard(target, day, attacker); intercepted {
			e.emitResult(entity.AbilityResult{Individual: map[*entity.Player]entity.Payload{
				target: {string(entity.ResultKeyType): entity.ResultBodyguarded},
			}})
			continue
		}
		if cancelled, healer := entity.ResolveHeal(target, day, role.OffenseLevel); cancelled {
			e.emitResult(entity.AbilityResult{Individual: map[*entity.Player]entity.Payload{
				target:  {string(entity.ResultKeyType): entity.ResultHealed},
				healer:  {string(entity.ResultKeyType): entity.ResultHealed, string(entity.ResultKeySuccess): true},
			}})
			continue
		}
		if entity.CanKill(role.OffenseLevel, target.Role().DefenseLevel) {
			target.Kill(causeForRole(role.ID))
			e.emitResult(entity.AbilityResult{Individual: map[*entity.Player]entity.Payload{
				target: {string(entity.ResultKeyType): entity.ResultKilled, string(entity.ResultKeyBy): string(role.ID)},
			}})
		}
	}
}

func causeForRole(id entity.RoleID) entity.CauseOfDeath {
	switch id {
	case entity.RoleMafioso, entity.RoleGodfather:
		return entity.CauseMafia
	case entity.RoleEnforcer, entity.RoleDragonHead:
		return entity.CauseTriad
	case entity.RoleSerialKiller:
		return entity.CauseSerial
	case entity.RoleMassMurderer:
		return entity.CauseMass
	case entity.RoleVeteran:
		return entity.CauseVeteran
	case entity.RoleVigilante:
		return entity.CauseVigilante
	default:
		return entity.CauseMafia
	}
}

func (e *Engine) runAfterNightCleanup() {
	for _, p := range e.Room.Players {
		if r := p.Role(); r != nil {
			entity.AfterNight(r)
		}
	}
}

func (e *Engine) emitResult(res entity.AbilityResult) {
	if len(res.Individual) == 0 {
		return
	}
	for p, payload := range res.Individual {
		sess := p.Session()
		if sess == nil {
			continue
		}
		e.Emitter.Emit(entity.Event{
			Type:       entity.EventAbilityResult,
			Recipients: []*entity.Session{sess},
			Payload:    payload,
		})
	}
	if res.Sound != "" {
		e.Emitter.Emit(entity.Event{
			Type:       entity.EventSound,
			Recipients: e.sessions(),
			Payload:    entity.Payload{"sound": res.Sound},
			NoRecord:   true,
		})
	}
}
