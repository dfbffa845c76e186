package entity

// CauseOfDeath names why a Player died; cause_of_death is a list so a
// player can accumulate multiple simultaneous fatal attacks in one
// night — P1 only asks whether the list is non-empty.
type CauseOfDeath string

const (
	CauseMafia     CauseOfDeath = "MAFIA"
	CauseTriad     CauseOfDeath = "TRIAD"
	CauseWitch     CauseOfDeath = "WITCH"
	CauseHidden    CauseOfDeath = "HIDDEN"
	CauseSerial    CauseOfDeath = "SERIAL_KILLER"
	CauseMass      CauseOfDeath = "MASS_MURDERER"
	CauseArson     CauseOfDeath = "ARSONIST"
	CauseVeteran   CauseOfDeath = "VETERAN"
	CauseVigilante CauseOfDeath = "VIGILANTE"
	CauseDuty      CauseOfDeath = "DUTY" // bodyguard dying for its target
	CauseDemocracy CauseOfDeath = "DEMOCRACY"
	CauseSuicide   CauseOfDeath = "SUICIDE"
	CauseJailor    CauseOfDeath = "JAILOR"
)

// DayAction is the per-day record of a Player's night behavior.
type DayAction struct {
	Target     *Player // visit target chosen this night, nil if none
	VisitedBy  []*Player
	Active     bool // true once act()/second_task() fired
	HealedBy   []*Player
	Bodyguards []*Player
	Blocked    bool // cleared by a Blocking role this night (interaction contract 6)
}

// VoteState is a Player's transient voting-phase state, reset each
// sub-round of the vote subloop (§4.3).
type VoteState struct {
	VotedTo     *Player
	VotedSkip   bool
	VotedCount  int // incoming votes received, weighted by caster's VotesHeld
	TrialChoice string // GUILTY | INNOCENT | ABSTENTION
}

// FrameData holds a Framer/Forger's substitution for one target.
type FrameData struct {
	Role   RoleID
	Target *Player
}

// Player is the in-game incarnation of a Session's user for one match.
type Player struct {
	Seat     int
	Nickname string

	RoleHistory []*Role // conversion pushes, never overwrites

	Actions map[int]*DayAction // keyed by day number

	CrimeBitmap CrimeType
	LastWill    string

	JailedBy    *Player
	ControlledBy *Player // set by Witch
	IsBehind    *Player  // set by Hiding (the hider this player is standing behind)

	CauseOfDeath   []CauseOfDeath
	AnnouncedDead  bool

	Vote VoteState

	Frame *FrameData

	BlackmailedOnDay int // day number blackmailed, 0 == not blackmailed

	DeadSanitized bool

	Leaver bool // left mid-game while alive; queued for SUICIDE priority

	HauntTargets []*Player // lynched Jester's chosen victims, queued for the SUICIDE priority step

	session *Session
}

// NewPlayer seats a fresh Player for session at the given seat index.
func NewPlayer(seat int, nickname string, session *Session) *Player {
	return &Player{
		Seat:     seat,
		Nickname: nickname,
		Actions:  make(map[int]*DayAction),
		session:  session,
	}
}

// Role returns the active (top-of-stack) Role, or nil if none assigned.
func (p *Player) Role() *Role {
	if len(p.RoleHistory) == 0 {
		return nil
	}
	return p.RoleHistory[len(p.RoleHistory)-1]
}

// Convert pushes r onto the role-history stack as the new active role.
// Prior Role instances remain addressable, e.g. for identity-reveal of
// converted players on death.
func (p *Player) Convert(r *Role) {
	r.Player = p
	p.RoleHistory = append(p.RoleHistory, r)
}

// Alive reports P1: alive iff no recorded cause of death.
func (p *Player) Alive() bool { return len(p.CauseOfDeath) == 0 }

// Kill records a fatal attack. Multiple simultaneous causes may stack in
// the same night; the player is dead as soon as any are recorded.
func (p *Player) Kill(cause CauseOfDeath) {
	p.CauseOfDeath = append(p.CauseOfDeath, cause)
}

// DayRecord returns (creating if absent) the action record for day.
func (p *Player) DayRecord(day int) *DayAction {
	a, ok := p.Actions[day]
	if !ok {
		a = &DayAction{}
		p.Actions[day] = a
	}
	return a
}

// ResetVote clears transient per-sub-round voting state.
func (p *Player) ResetVote() {
	p.Vote = VoteState{}
}

// Session returns the connected Session seating this Player, or nil if
// the seat has been vacated by a leaving client.
func (p *Player) Session() *Session { return p.session }

func (p *Player) SetSession(s *Session) { p.session = s }

// PlayerDTO is the wire-level summary of a seated Player.
type PlayerDTO struct {
	Seat     int    `json:"seat"`
	Nickname string `json:"nickname"`
	Alive    bool   `json:"alive"`
}

func (p *Player) ToDTO() PlayerDTO {
	return PlayerDTO{Seat: p.Seat, Nickname: p.Nickname, Alive: p.Alive()}
}
