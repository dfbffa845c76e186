package entity

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrSetupMalformed marks a setup referencing unknown vocabulary
// (tampered/invalid role names, constraint keys, exclusion entries).
var ErrSetupMalformed = errors.New("setup malformed")

// ErrSetupInvalid marks a well-formed but unplayable setup.
var ErrSetupInvalid = errors.New("setup invalid")

// SlotSpec is one formation entry: either a specific RoleID or an
// abstract category such as "any town" / "any killing".
type SlotSpec struct {
	Role     RoleID // empty if Category is set
	Category string // "any", "any <team>", "Killing", etc.
}

// Setup is a validated, immutable game configuration.
type Setup struct {
	Title       string
	Inventor    string
	Formation   []SlotSpec
	Constraints map[RoleID]map[ConstraintKey]any
	Exclusion   map[int][]string // slot index -> excluded role/team/"Killing" tokens

	pools [][]RoleID // pool_per_slot, computed at validation time
}

// SetupInput is the raw, client-supplied description before validation.
type SetupInput struct {
	Title       string
	Inventor    string
	Formation   []SlotSpec
	Constraints map[RoleID]map[ConstraintKey]any
	Exclusion   map[int][]string
}

// BuildSetup validates in and returns an immutable Setup, or a wrapped
// ErrSetupMalformed / ErrSetupInvalid.
func BuildSetup(in SetupInput) (*Setup, error) {
	if len(in.Formation) == 0 {
		return nil, fmt.Errorf("%w: empty formation", ErrSetupMalformed)
	}
	for i, slot := range in.Formation {
		if slot.Role != "" {
			d, ok := Catalog[slot.Role]
			if !ok {
				return nil, fmt.Errorf("%w: slot %d names unknown role %q", ErrSetupMalformed, i, slot.Role)
			}
			if d.Disabled {
				return nil, fmt.Errorf("%w: slot %d names disabled role %q", ErrSetupMalformed, i, slot.Role)
			}
		} else if !validCategory(slot.Category) {
			return nil, fmt.Errorf("%w: slot %d names unknown category %q", ErrSetupMalformed, i, slot.Category)
		}
	}
	for role, opts := range in.Constraints {
		d, ok := Catalog[role]
		if !ok {
			return nil, fmt.Errorf("%w: constraints reference unknown role %q", ErrSetupMalformed, role)
		}
		for k := range opts {
			if _, ok := d.ModifiableOptions[k]; !ok {
				return nil, fmt.Errorf("%w: role %q has no modifiable option %q", ErrSetupMalformed, role, k)
			}
		}
	}
	for slotIdx, tokens := range in.Exclusion {
		if slotIdx < 0 || slotIdx >= len(in.Formation) {
			return nil, fmt.Errorf("%w: exclusion references unknown slot %d", ErrSetupMalformed, slotIdx)
		}
		for _, tok := range tokens {
			if !validExclusionToken(tok, in.Formation[slotIdx]) {
				return nil, fmt.Errorf("%w: exclusion token %q invalid for slot %d", ErrSetupMalformed, tok, slotIdx)
			}
		}
	}

	if len(in.Formation) < MinFormation || len(in.Formation) > MaxFormation {
		return nil, fmt.Errorf("%w: formation length %d out of [%d,%d]", ErrSetupInvalid, len(in.Formation), MinFormation, MaxFormation)
	}

	s := &Setup{
		Title:       in.Title,
		Inventor:    in.Inventor,
		Formation:   in.Formation,
		Constraints: in.Constraints,
		Exclusion:   in.Exclusion,
	}

	pools := make([][]RoleID, len(in.Formation))
	for i, slot := range in.Formation {
		pool := poolForSlot(slot, in.Exclusion[i])
		if len(pool) == 0 {
			return nil, fmt.Errorf("%w: slot %d has an empty pool", ErrSetupInvalid, i)
		}
		pools[i] = pool
	}
	s.pools = pools

	seen := map[RoleID]int{}
	teamsPresent := map[Team]bool{}
	for i, pool := range pools {
		if len(pool) == 1 {
			seen[pool[0]]++
			if Catalog[pool[0]].Unique && seen[pool[0]] > 1 {
				return nil, fmt.Errorf("%w: unique role %q appears more than once (slot %d)", ErrSetupInvalid, pool[0], i)
			}
		}
		for _, r := range pool {
			teamsPresent[Catalog[r].Team] = true
		}
	}

	if !hasOpposingFactions(teamsPresent) {
		return nil, fmt.Errorf("%w: no opposing factions", ErrSetupInvalid)
	}

	for i, pool := range pools {
		for _, r := range pool {
			if r == RoleSpy {
				if !teamsPresent[TeamMafia] && !teamsPresent[TeamTriad] {
					return nil, fmt.Errorf("%w: Spy requires Mafia or Triad (slot %d)", ErrSetupInvalid, i)
				}
			}
			if r == RoleExecutioner {
				targetIsTown, _ := boolConstraint(in.Constraints, r, ConstraintTargetIsTown)
				if targetIsTown && !teamsPresent[TeamTown] {
					return nil, fmt.Errorf("%w: Executioner with TARGET_IS_TOWN requires a Town slot", ErrSetupInvalid)
				}
			}
		}
	}

	return s, nil
}

func boolConstraint(m map[RoleID]map[ConstraintKey]any, role RoleID, key ConstraintKey) (bool, bool) {
	opts, ok := m[role]
	if !ok {
		return false, false
	}
	v, ok := opts[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func validCategory(cat string) bool {
	switch cat {
	case "any", "Killing":
		return true
	}
	for _, t := range []Team{TeamTown, TeamMafia, TeamTriad, TeamNeutralBenign, TeamNeutralEvil, TeamNeutralKilling} {
		if cat == "any "+string(t) {
			return true
		}
	}
	return false
}

func validExclusionToken(tok string, slot SlotSpec) bool {
	if _, ok := Catalog[RoleID(tok)]; ok {
		return true
	}
	if tok == "Killing" {
		return true
	}
	if slot.Category == "any" {
		for _, t := range []Team{TeamTown, TeamMafia, TeamTriad, TeamNeutralBenign, TeamNeutralEvil, TeamNeutralKilling} {
			if tok == string(t) {
				return true
			}
		}
	}
	return false
}

// poolForSlot computes pool_per_slot: the concrete roles that could fill
// slot given its match/exclusion filters.
func poolForSlot(slot SlotSpec, excluded []string) []RoleID {
	excl := map[string]bool{}
	for _, e := range excluded {
		excl[e] = true
	}
	var pool []RoleID
	for id, d := range Catalog {
		if d.Disabled {
			continue
		}
		if !slotMatches(slot, id, d) {
			continue
		}
		if excl[string(id)] {
			continue
		}
		if excl["Killing"] && d.Alignment == AlignKilling {
			continue
		}
		if excl[string(d.Team)] {
			continue
		}
		pool = append(pool, id)
	}
	return pool
}

func slotMatches(slot SlotSpec, id RoleID, d *RoleDescriptor) bool {
	if slot.Role != "" {
		return id == slot.Role
	}
	switch slot.Category {
	case "any":
		return true
	case "Killing":
		return d.Alignment == AlignKilling
	default:
		for _, t := range []Team{TeamTown, TeamMafia, TeamTriad, TeamNeutralBenign, TeamNeutralEvil, TeamNeutralKilling} {
			if slot.Category == "any "+string(t) {
				return d.Team == t
			}
		}
	}
	return false
}

func hasOpposingFactions(present map[Team]bool) bool {
	for t := range present {
		for _, opp := range Against(t) {
			if present[opp] {
				return true
			}
		}
	}
	return false
}

// Trial picks one concrete role per slot by uniform-random choice from
// pool_per_slot. Called by the Engine at game start and by validation as
// a feasibility probe (§4.5).
func (s *Setup) Trial() []RoleID {
	result := make([]RoleID, len(s.pools))
	for i, pool := range s.pools {
		result[i] = pool[rand.IntN(len(pool))]
	}
	return result
}

// PoolForSlot exposes pool_per_slot for tests / P9.
func (s *Setup) PoolForSlot(i int) []RoleID { return s.pools[i] }
