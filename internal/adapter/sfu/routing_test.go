package sfu

import (
	"testing"

	"github.com/V4T54L/mafia/internal/domain/entity"
)

func contains(xs []string, target string) bool {
	for _, x := range xs {
		if x == target {
			return true
		}
	}
	return false
}

func TestCalculateRoutingNightSplitsPerTeam(t *testing.T) {
	players := []PlayerInfo{
		{ID: "town1", Team: entity.TeamTown, IsAlive: true},
		{ID: "mafia1", Team: entity.TeamMafia, IsAlive: true},
		{ID: "mafia2", Team: entity.TeamMafia, IsAlive: true},
		{ID: "triad1", Team: entity.TeamTriad, IsAlive: true},
	}

	routing := CalculateRouting(entity.PhaseNight, players)

	if routing["town1"].CanSpeak {
		t.Fatalf("expected Town to have no night channel")
	}
	if !routing["mafia1"].CanSpeak || !contains(routing["mafia1"].CanHear, "mafia2") {
		t.Fatalf("expected mafia1 to hear mafia2 at night")
	}
	if contains(routing["mafia1"].CanHear, "triad1") {
		t.Fatalf("expected mafia and triad to be on separate night channels")
	}
	if !contains(routing["triad1"].CanHear, "triad1") {
		t.Fatalf("expected a lone triad member to still be routed its own channel")
	}
}

func TestCalculateRoutingDeadMutedAtNight(t *testing.T) {
	players := []PlayerInfo{
		{ID: "dead-mafia", Team: entity.TeamMafia, IsAlive: false},
	}
	routing := CalculateRouting(entity.PhaseNight, players)
	state := routing["dead-mafia"]
	if state.CanSpeak || len(state.CanHear) != 0 {
		t.Fatalf("expected dead player fully muted at night, got %+v", state)
	}
}

func TestCalculateRoutingDayEveryoneAliveHearsAlive(t *testing.T) {
	players := []PlayerInfo{
		{ID: "alive1", Team: entity.TeamTown, IsAlive: true},
		{ID: "alive2", Team: entity.TeamMafia, IsAlive: true},
		{ID: "dead1", Team: entity.TeamTown, IsAlive: false},
	}
	routing := CalculateRouting(entity.PhaseDiscussion, players)

	if !routing["alive1"].CanSpeak || !contains(routing["alive1"].CanHear, "alive2") {
		t.Fatalf("expected alive players to hear each other during the day")
	}
	if routing["dead1"].CanSpeak {
		t.Fatalf("expected dead players muted during the day")
	}
	if !contains(routing["dead1"].CanHear, "alive1") {
		t.Fatalf("expected dead players to still hear the living during the day")
	}
}

func TestCalculateRoutingLobbyEveryoneHearsEveryone(t *testing.T) {
	players := []PlayerInfo{
		{ID: "p1", Team: entity.TeamTown, IsAlive: true},
		{ID: "p2", Team: entity.TeamMafia, IsAlive: true},
	}
	routing := CalculateRouting(entity.PhaseNicknameSelection, players)

	for _, id := range []string{"p1", "p2"} {
		if !routing[id].CanSpeak || len(routing[id].CanHear) != 2 {
			t.Fatalf("expected lobby phase to let %s hear everyone, got %+v", id, routing[id])
		}
	}
}
