package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/V4T54L/mafia/internal/domain/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seatPlayer(seat int, nickname string, roleID entity.RoleID) (*entity.Session, *entity.Player) {
	sess := entity.NewSession(nickname, nil)
	p := entity.NewPlayer(seat, nickname, sess)
	p.Convert(entity.NewRole(roleID, nil))
	sess.SetPlayer(p)
	return sess, p
}

func newTestEngine(players []*entity.Player, occupants []*entity.Session) *Engine {
	host := occupants[0]
	room := entity.NewRoom(1, "table", host, entity.MaxCapacity, "")
	room.Occupants = occupants
	room.Players = players
	room.SetPhase(entity.PhaseNight)
	return New(room, nil, testLogger(), true)
}

func TestResolveSuicideQueueKillsHauntTargetsAndClearsQueue(t *testing.T) {
	jesterSess, jester := seatPlayer(0, "jester", entity.RoleJester)
	victimSess, victim := seatPlayer(1, "victim", entity.RoleCitizen)
	jester.HauntTargets = append(jester.HauntTargets, victim)

	eng := newTestEngine([]*entity.Player{jester, victim}, []*entity.Session{jesterSess, victimSess})

	eng.resolveSuicideQueue(1)

	if victim.Alive() {
		t.Fatalf("expected haunted victim dead")
	}
	if len(jester.HauntTargets) != 0 {
		t.Fatalf("expected HauntTargets cleared after resolution")
	}
}

func TestResolveSuicideQueueSkipsAlreadyDeadTarget(t *testing.T) {
	jesterSess, jester := seatPlayer(0, "jester", entity.RoleJester)
	victimSess, victim := seatPlayer(1, "victim", entity.RoleCitizen)
	victim.Kill(entity.CauseMafia)
	jester.HauntTargets = append(jester.HauntTargets, victim)

	eng := newTestEngine([]*entity.Player{jester, victim}, []*entity.Session{jesterSess, victimSess})
	eng.resolveSuicideQueue(1)

	if len(victim.CauseOfDeath) != 1 {
		t.Fatalf("expected no second kill recorded for an already-dead target, got %v", victim.CauseOfDeath)
	}
}

func TestResolveSuicideQueueKillsLeaversAndClearsFlag(t *testing.T) {
	sess, leaver := seatPlayer(0, "leaver", entity.RoleCitizen)
	leaver.Leaver = true

	eng := newTestEngine([]*entity.Player{leaver}, []*entity.Session{sess})
	eng.resolveSuicideQueue(1)

	if leaver.Alive() {
		t.Fatalf("expected leaver dead after SUICIDE priority resolves")
	}
	if leaver.Leaver {
		t.Fatalf("expected Leaver flag cleared after resolution")
	}
}

func TestHandleLastWordsCollectsJesterVictimsUpToLimit(t *testing.T) {
	jesterSess, jester := seatPlayer(0, "jester", entity.RoleJester)
	v1Sess, v1 := seatPlayer(1, "v1", entity.RoleCitizen)
	_ = v1Sess
	v2Sess, v2 := seatPlayer(2, "v2", entity.RoleCitizen)
	_ = v2Sess

	eng := newTestEngine([]*entity.Player{jester, v1, v2}, []*entity.Session{jesterSess, v1Sess, v2Sess})
	jester.Role().Constraints[entity.ConstraintVictims] = 2

	handle := eng.handleLastWords(jester)
	if handle == nil {
		t.Fatalf("expected a handler for a lynched Jester")
	}

	if stop := handle(Command{Session: jesterSess, Text: "/visit 1"}); stop {
		t.Fatalf("expected not stopped before limit reached")
	}
	if stop := handle(Command{Session: jesterSess, Text: "/visit 2"}); !stop {
		t.Fatalf("expected stop once the victim limit is reached")
	}
	if len(jester.HauntTargets) != 2 {
		t.Fatalf("expected 2 haunt targets queued, got %d", len(jester.HauntTargets))
	}
}

func TestHandleLastWordsNilForNonJester(t *testing.T) {
	_, citizen := seatPlayer(0, "citizen", entity.RoleCitizen)
	eng := newTestEngine([]*entity.Player{citizen}, []*entity.Session{entity.NewSession("citizen", nil)})
	if eng.handleLastWords(citizen) != nil {
		t.Fatalf("expected nil handler for a non-Jester elected player")
	}
}

func TestRunNightResolverDoctorHealCancelsMafiaKill(t *testing.T) {
	mafSess, maf := seatPlayer(0, "maf", entity.RoleMafioso)
	docSess, doc := seatPlayer(1, "doc", entity.RoleDoctor)
	victimSess, victim := seatPlayer(2, "victim", entity.RoleCitizen)

	maf.Role().GoalTarget = victim
	maf.Role().Opportunity = -1
	doc.Role().GoalTarget = victim
	doc.Role().Opportunity = -1

	eng := newTestEngine([]*entity.Player{maf, doc, victim}, []*entity.Session{mafSess, docSess, victimSess})
	eng.Room.Day = 1
	eng.RunNightResolver(context.Background())

	if !victim.Alive() {
		t.Fatalf("expected healed victim to survive a Mafia kill")
	}
}

func TestRunNightResolverEscortBlockClearsMafiaTarget(t *testing.T) {
	mafSess, maf := seatPlayer(0, "maf", entity.RoleMafioso)
	escSess, esc := seatPlayer(1, "esc", entity.RoleEscort)
	victimSess, victim := seatPlayer(2, "victim", entity.RoleCitizen)

	maf.Role().GoalTarget = victim
	maf.Role().Opportunity = -1
	esc.Role().GoalTarget = maf
	esc.Role().Opportunity = -1

	eng := newTestEngine([]*entity.Player{maf, esc, victim}, []*entity.Session{mafSess, escSess, victimSess})
	eng.Room.Day = 1
	eng.RunNightResolver(context.Background())

	if !victim.Alive() {
		t.Fatalf("expected a blocked Mafioso's kill to be nulled")
	}
	if maf.DayRecord(1).Target != nil {
		t.Fatalf("expected the blocked Mafioso's target cleared")
	}
}

func TestRunNightResolverBeguilerHidingRedirectsVisit(t *testing.T) {
	sherSess, sher := seatPlayer(0, "sheriff", entity.RoleSheriff)
	hiddenSess, hidden := seatPlayer(1, "hidden", entity.RoleCitizen)
	begSess, beg := seatPlayer(2, "beguiler", entity.RoleBeguiler)

	beg.Role().GoalTarget = hidden
	beg.Role().Opportunity = -1
	sher.Role().GoalTarget = hidden
	sher.Role().Opportunity = -1

	eng := newTestEngine([]*entity.Player{sher, hidden, beg}, []*entity.Session{sherSess, hiddenSess, begSess})
	eng.Room.Day = 1
	eng.RunNightResolver(context.Background())

	if hidden.IsBehind != beg {
		t.Fatalf("expected hidden player to be marked behind the Beguiler")
	}
	if len(beg.DayRecord(1).VisitedBy) != 1 {
		t.Fatalf("expected the Sheriff's visit redirected onto the Beguiler, got visited_by=%v", beg.DayRecord(1).VisitedBy)
	}
}

func TestRunNightResolverWitchControlOverwritesTarget(t *testing.T) {
	witchSess, witch := seatPlayer(0, "witch", entity.RoleWitch)
	controlledSess, controlled := seatPlayer(1, "controlled", entity.RoleVigilante)
	forcedSess, forced := seatPlayer(2, "forced", entity.RoleCitizen)

	witch.Role().GoalTarget = controlled
	witch.Role().SecondTarget = forced
	witch.Role().Opportunity = -1

	eng := newTestEngine([]*entity.Player{witch, controlled, forced}, []*entity.Session{witchSess, controlledSess, forcedSess})
	eng.Room.Day = 1
	eng.RunNightResolver(context.Background())

	if controlled.DayRecord(1).Target != forced {
		t.Fatalf("expected Witch to overwrite the controlled player's target")
	}
	if controlled.ControlledBy != witch {
		t.Fatalf("expected controlled player's ControlledBy set to the Witch")
	}
}

func TestRunNightResolverBodyguardInterceptsMafiaKill(t *testing.T) {
	mafSess, maf := seatPlayer(0, "maf", entity.RoleMafioso)
	bgSess, bg := seatPlayer(1, "bg", entity.RoleBodyguard)
	victimSess, victim := seatPlayer(2, "victim", entity.RoleCitizen)

	maf.Role().GoalTarget = victim
	maf.Role().Opportunity = -1
	bg.Role().GoalTarget = victim
	bg.Role().Opportunity = -1

	eng := newTestEngine([]*entity.Player{maf, bg, victim}, []*entity.Session{mafSess, bgSess, victimSess})
	eng.Room.Day = 1
	eng.RunNightResolver(context.Background())

	if !victim.Alive() {
		t.Fatalf("expected the bodyguarded victim to survive")
	}
	if bg.Alive() {
		t.Fatalf("expected the Bodyguard to die intercepting the attack")
	}
}

type testSink struct{ frames [][]byte }

func (s *testSink) Send(frame []byte) error {
	s.frames = append(s.frames, frame)
	return nil
}

func TestRunNightResolverSheriffReceivesInvestigationResult(t *testing.T) {
	sink := &testSink{}
	sherSess := entity.NewSession("sheriff", sink)
	sher := entity.NewPlayer(0, "sheriff", sherSess)
	sher.Convert(entity.NewRole(entity.RoleSheriff, nil))
	sherSess.SetPlayer(sher)

	targetSess, target := seatPlayer(1, "target", entity.RoleCitizen)

	sher.Role().GoalTarget = target
	sher.Role().Opportunity = -1

	eng := newTestEngine([]*entity.Player{sher, target}, []*entity.Session{sherSess, targetSess})
	eng.RunNightResolver(context.Background())

	if len(sink.frames) == 0 {
		t.Fatalf("expected the Sheriff to receive an ABILITY_RESULT frame")
	}
}

func TestRunNightResolverAlertVeteranKillsVisitor(t *testing.T) {
	vetSess, vet := seatPlayer(0, "vet", entity.RoleVeteran)
	mafSess, maf := seatPlayer(1, "maf", entity.RoleMafioso)

	maf.Role().GoalTarget = vet
	maf.Role().Opportunity = -1

	eng := newTestEngine([]*entity.Player{vet, maf}, []*entity.Session{vetSess, mafSess})
	eng.RunNightResolver(context.Background())

	if maf.Alive() {
		t.Fatalf("expected a Mafioso visiting an alert Veteran to die")
	}
	if !vet.Alive() {
		t.Fatalf("expected the alert Veteran to survive (its attacker died before resolving)")
	}
}
