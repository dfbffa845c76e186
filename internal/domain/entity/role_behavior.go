package entity

// role_behavior.go implements the generic, capability-driven ability
// hooks and interaction contracts of spec.md §4.4. Concrete roles do not
// each carry a hand-written implementation; instead NightResolver (in
// the engine package) dispatches by RoleDescriptor.Capabilities and
// calls the shared functions below, parameterized by the Role's own
// fields (OffenseLevel, Constraints, GoalTarget, ...).

// Visit records actor's declared intention to act on target this night.
// Default behavior: marks visits[day]=target, adds actor to
// target.visited_by[day], and returns a VISIT AbilityResult. Hiding
// redirect and Witch control (interaction contracts 1-2) are applied by
// the night resolver around this call, not inside it, since they require
// cross-player state the resolver alone holds at scheduling time.
func Visit(actor *Player, day int, target *Player) AbilityResult {
	rec := actor.DayRecord(day)
	rec.Target = target
	rec.Active = true
	if target != nil {
		tRec := target.DayRecord(day)
		tRec.VisitedBy = append(tRec.VisitedBy, actor)
	}
	return AbilityResult{Individual: map[*Player]Payload{
		actor: {string(ResultKeyType): ResultVisit},
	}}
}

// Act performs a self- or non-targeted night action (Veteran alert,
// Jailor execute, Arsonist ignite).
func Act(actor *Player, day int) AbilityResult {
	actor.DayRecord(day).Active = true
	return AbilityResult{Individual: map[*Player]Payload{
		actor: {string(ResultKeyType): ResultAct},
	}}
}

// ActionWhenInactive is the fallback fired when an actor chose neither
// visit nor act this night (SerialKiller jailbreak/block-retaliation,
// Arsonist passive oiling of blockers).
func ActionWhenInactive(actor *Player, day int, blocker *Player) AbilityResult {
	if blocker == nil {
		return AbilityResult{}
	}
	switch actor.Role().ID {
	case RoleSerialKiller:
		blocker.Kill(CauseSerial)
		return AbilityResult{Individual: map[*Player]Payload{
			blocker: {string(ResultKeyType): ResultKilled, string(ResultKeyBy): "SerialKiller"},
		}}
	case RoleArsonist:
		return AbilityResult{Individual: map[*Player]Payload{
			blocker: {string(ResultKeyType): ResultThreatened, string(ResultKeyBy): "Arsonist"},
		}}
	}
	return AbilityResult{}
}

// AfterNight performs end-of-night cleanup common to most roles: it
// restores a Convertable flag cleared for the night (e.g. by Bodyguard
// protection) to the descriptor's value. GoalTarget is left unchanged.
func AfterNight(r *Role) {
	if !r.Descriptor.Convertable {
		return
	}
	r.Convertable = r.Descriptor.Convertable
}

// BlockReaction records the player who blocked an actor, for roles that
// retaliate against blockers (SerialKiller, Arsonist).
type BlockReaction struct {
	Blocker *Player
}

// ApplyHiding implements interaction contract 1: if hidden stood behind
// cover, any visitor targeting hidden is redirected to cover. If the
// visitor is KillingVisiting and ends up targeting itself through this
// redirect, it dies to its own attack unless healed (resolved by the
// caller's heal-stack pass, not here).
func ApplyHiding(visitorTarget *Player) *Player {
	if visitorTarget == nil || visitorTarget.IsBehind == nil {
		return visitorTarget
	}
	return visitorTarget.IsBehind
}

// ApplyWitchControl implements interaction contract 2: during the
// Witch's visit, it overwrites controlled.visits[day] with the Witch's
// chosen second target, discarding the actor's original intention.
func ApplyWitchControl(controlled *Player, day int, newTarget *Player, witch *Player) {
	rec := controlled.DayRecord(day)
	rec.Target = newTarget
	controlled.ControlledBy = witch
}

// ApplyHealing implements interaction contract 3's healer-side half: the
// healer is pushed onto target.healed_by for the night. ResolveHeal pops
// the stack when an attack on target actually resolves.
func ApplyHealing(target *Player, day int, healer *Player) {
	if target == nil {
		return
	}
	rec := target.DayRecord(day)
	rec.HealedBy = append(rec.HealedBy, healer)
}

// ResolveHeal implements interaction contract 3: a Healing role adds
// itself to target.healed_by. When a later attack on target resolves and
// CanKill(attacker, target), the stack is popped and the attack is
// cancelled; the healer and the target are each notified. Returns true
// if the attack was cancelled.
func ResolveHeal(target *Player, day int, attackOffense Level) (cancelled bool, healer *Player) {
	rec := target.DayRecord(day)
	if len(rec.HealedBy) == 0 {
		return false, nil
	}
	if !CanKill(attackOffense, target.Role().DefenseLevel) {
		return false, nil
	}
	healer = rec.HealedBy[len(rec.HealedBy)-1]
	rec.HealedBy = rec.HealedBy[:len(rec.HealedBy)-1]
	return true, healer
}

// ApplyBodyguard implements interaction contract 4's guard-side half: the
// bodyguard is pushed onto target.bodyguarded_by for the night.
// ResolveBodyguard pops the stack when an attack on target resolves.
func ApplyBodyguard(target *Player, day int, guard *Player) {
	if target == nil {
		return
	}
	rec := target.DayRecord(day)
	rec.Bodyguards = append(rec.Bodyguards, guard)
}

// ResolveBodyguard implements interaction contract 4: when an attacker
// resolves against a target with a non-empty bodyguarded_by stack, the
// topmost bodyguard intercepts — the bodyguard dies to DUTY, the
// attacker is attacked back at STRONG offense, and the original target
// survives (marked BODYGUARDED). If the attacker itself has bodyguards,
// the same resolution recurses on the attacker.
func ResolveBodyguard(target *Player, day int, attacker *Player) (intercepted bool, bodyguard *Player) {
	rec := target.DayRecord(day)
	if len(rec.Bodyguards) == 0 {
		return false, nil
	}
	bodyguard = rec.Bodyguards[len(rec.Bodyguards)-1]
	rec.Bodyguards = rec.Bodyguards[:len(rec.Bodyguards)-1]
	bodyguard.Kill(CauseDuty)
	if attacker != nil {
		if cancelled, bgAttacker := ResolveBodyguard(attacker, day, bodyguard); cancelled {
			_ = bgAttacker
		} else if CanKill(LevelStrong, attacker.Role().DefenseLevel) {
			attacker.Kill(CauseDuty)
		}
		target.Role().Convertable = false // BG renders target non-convertible for the night
	}
	return true, bodyguard
}

// ResolveJail implements interaction contract 5. The jailor's target's
// defense is raised to at least BASIC for the night and its ability is
// cancelled; during EVENING the jailor may choose to execute the target
// at ABSOLUTE offense, bypassing defense and the heal stack entirely. A
// SerialKiller jailed by a non-acting jailor kills the jailor via
// ActionWhenInactive at the engine's discretion.
func ResolveJail(target *Player, day int, jailor *Player) {
	target.JailedBy = jailor
	if target.Role().DefenseLevel < LevelBasic {
		target.Role().DefenseLevel = LevelBasic
	}
	rec := target.DayRecord(day)
	rec.Target = nil
	rec.Active = false
}

// ResolveBlock implements interaction contract 6: a Blocking role nulls
// its target's action for the night, unless the target is a Veteran on
// alert (the caller is responsible for that exemption, since only it
// knows which roles are alert-immune).
func ResolveBlock(target *Player, day int) {
	rec := target.DayRecord(day)
	rec.Target = nil
	rec.Active = false
	rec.Blocked = true
}

// ResolveFraming implements interaction contract 7: a Framer/Forger
// overwrites the target's apparent investigation outputs for the night.
func ResolveFraming(target *Player, fakeRole RoleID, fakeTarget *Player) {
	target.Frame = &FrameData{Role: fakeRole, Target: fakeTarget}
}

// DetectionReport is what an investigative hook sees for a target,
// honoring interaction contract 8 (detection immunity) and 7 (framing).
type DetectionReport struct {
	Role   RoleID
	Target *Player
	Active bool
	Crimes CrimeType
}

// ReportFor builds the DetectionReport an investigator sees for target
// on day, applying detection immunity and frame substitution.
func ReportFor(target *Player, day int) DetectionReport {
	if target.Role().DetectionImmune {
		return DetectionReport{Role: RoleCitizen, Active: false}
	}
	if target.Frame != nil {
		return DetectionReport{Role: target.Frame.Role, Target: target.Frame.Target, Active: target.DayRecord(day).Active, Crimes: target.CrimeBitmap}
	}
	rec := target.DayRecord(day)
	return DetectionReport{Role: target.Role().ID, Target: rec.Target, Active: rec.Active, Crimes: target.CrimeBitmap}
}

// ResolveConversion implements interaction contract 9: conversion is
// gated by target.role.convertable. On success a new Role is pushed onto
// the target's history stack. Chat membership is not changed here: the
// target is neither added to the new team's chat nor removed from the old.
func ResolveConversion(target *Player, newRoleID RoleID, overrides map[ConstraintKey]any) bool {
	if !target.Role().Convertable {
		return false
	}
	target.Convert(NewRole(newRoleID, overrides))
	return true
}

// ResolveSuicide implements interaction contract 10: Jester-triggered and
// leaver suicides execute in the single SUICIDE priority slot, still
// subject to heal. Returns true if the suicide was healed away.
func ResolveSuicide(p *Player, day int, cause CauseOfDeath) (healed bool) {
	if cancelled, _ := ResolveHeal(p, day, LevelAbsolute); cancelled {
		return true
	}
	p.Kill(cause)
	return false
}
