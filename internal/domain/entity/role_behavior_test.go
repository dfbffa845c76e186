package entity

import "testing"

func TestResolveSuicideKillsWhenNotHealed(t *testing.T) {
	p := NewPlayer(0, "jester-victim", nil)
	p.Convert(NewRole(RoleCitizen, nil))

	healed := ResolveSuicide(p, 1, CauseSuicide)
	if healed {
		t.Fatalf("expected not healed")
	}
	if p.Alive() {
		t.Fatalf("expected player dead after unhealed suicide")
	}
}

func TestResolveSuicideCancelledByHeal(t *testing.T) {
	p := NewPlayer(0, "jester-victim", nil)
	p.Convert(NewRole(RoleCitizen, nil))
	p.DayRecord(1).HealedBy = append(p.DayRecord(1).HealedBy, NewPlayer(1, "doctor", nil))

	healed := ResolveSuicide(p, 1, CauseSuicide)
	if !healed {
		t.Fatalf("expected healed")
	}
	if !p.Alive() {
		t.Fatalf("expected player alive after healed suicide")
	}
}
