package entity

// RoleDescriptor is the registry row for one concrete role: its fixed
// team/alignment/capabilities and the defaults a fresh Role instance is
// built from. Populated once at package init, mirroring the explicit
// registry spec.md §9 calls for in place of the source's reflection-based
// role/team discovery.
type RoleDescriptor struct {
	ID           RoleID
	Team         Team
	Alignment    Alignment
	Capabilities Capability

	Unique bool // cannot appear twice in a formation

	DefaultOffense     Level
	DefaultDefense     Level
	Blockable          bool
	Healable           bool
	DetectionImmune    bool
	Convertable        bool
	CanTargetSelf      bool
	ForDead            bool
	DefaultOpportunity int // -1 == unlimited
	DefaultVotes       int

	DefaultConstraints  map[ConstraintKey]any
	ModifiableOptions   map[ConstraintKey][]any

	Disabled bool // present in the catalog but rejected by the setup validator by default (Framer, Forger)
}

const (
	RoleCitizen        RoleID = "Citizen"
	RoleSurvivor       RoleID = "Survivor"
	RoleExecutioner    RoleID = "Executioner"
	RoleJester         RoleID = "Jester"
	RoleScumbag        RoleID = "Scumbag"
	RoleSpy            RoleID = "Spy"
	RoleStump          RoleID = "Stump"
	RoleMason          RoleID = "Mason"
	RoleMasonLeader    RoleID = "MasonLeader"
	RoleMarshall       RoleID = "Marshall"
	RoleMayor          RoleID = "Mayor"
	RoleJudge          RoleID = "Judge"
	RoleCrier          RoleID = "Crier"
	RoleSheriff        RoleID = "Sheriff"
	RoleCoroner        RoleID = "Coroner"
	RoleDetective      RoleID = "Detective"
	RoleLookout        RoleID = "Lookout"
	RoleAgent          RoleID = "Agent"
	RoleVanguard       RoleID = "Vanguard"
	RoleInvestigator   RoleID = "Investigator"
	RoleSecretary      RoleID = "Secretary"
	RoleConsigliere    RoleID = "Consigliere"
	RoleAdministrator  RoleID = "Administrator"
	RoleCounsel        RoleID = "Counsel"
	RoleBeguiler       RoleID = "Beguiler"
	RoleDeceiver       RoleID = "Deceiver"
	RoleEscort         RoleID = "Escort"
	RoleConsort        RoleID = "Consort"
	RoleLiaison        RoleID = "Liaison"
	RoleFramer         RoleID = "Framer"
	RoleForger         RoleID = "Forger"
	RoleBlackmailer    RoleID = "Blackmailer"
	RoleSilencer       RoleID = "Silencer"
	RoleJanitor        RoleID = "Janitor"
	RoleIncenseMaster  RoleID = "IncenseMaster"
	RoleBodyguard      RoleID = "Bodyguard"
	RoleJailor         RoleID = "Jailor"
	RoleKidnapper      RoleID = "Kidnapper"
	RoleInterrogator   RoleID = "Interrogator"
	RoleVeteran        RoleID = "Veteran"
	RoleVigilante      RoleID = "Vigilante"
	RoleMafioso        RoleID = "Mafioso"
	RoleEnforcer       RoleID = "Enforcer"
	RoleGodfather      RoleID = "Godfather"
	RoleDragonHead     RoleID = "DragonHead"
	RoleCultist        RoleID = "Cultist"
	RoleDoctor         RoleID = "Doctor"
	RoleWitchDoctor    RoleID = "WitchDoctor"
	RoleWitch          RoleID = "Witch"
	RoleAuditor        RoleID = "Auditor"
	RoleAmnesiac       RoleID = "Amnesiac"
	RoleSerialKiller   RoleID = "SerialKiller"
	RoleMassMurderer   RoleID = "MassMurderer"
	RoleArsonist       RoleID = "Arsonist"
)

// Catalog is the process-wide role registry, populated at init time.
var Catalog map[RoleID]*RoleDescriptor

func reg(d RoleDescriptor) {
	if d.DefaultConstraints == nil {
		d.DefaultConstraints = map[ConstraintKey]any{}
	}
	cp := d
	Catalog[d.ID] = &cp
}

func init() {
	Catalog = make(map[RoleID]*RoleDescriptor, 64)

	reg(RoleDescriptor{ID: RoleCitizen, Team: TeamTown, Alignment: AlignBenign, DefaultDefense: LevelNone, Convertable: true, DefaultVotes: 1})
	reg(RoleDescriptor{ID: RoleSurvivor, Team: TeamNeutralBenign, Alignment: AlignBenign, Capabilities: CapSurviving, Convertable: true, DefaultOpportunity: 4, DefaultConstraints: map[ConstraintKey]any{ConstraintOpportunity: 4}})
	reg(RoleDescriptor{ID: RoleExecutioner, Team: TeamNeutralEvil, Alignment: AlignEvil, Unique: true, Convertable: false, DefaultConstraints: map[ConstraintKey]any{ConstraintTargetIsTown: false}})
	reg(RoleDescriptor{ID: RoleJester, Team: TeamNeutralEvil, Alignment: AlignEvil, Unique: true, Convertable: false,
		DefaultConstraints: map[ConstraintKey]any{ConstraintVictims: 1},
		ModifiableOptions:  map[ConstraintKey][]any{ConstraintVictims: {1, 2, 3}}})
	reg(RoleDescriptor{ID: RoleScumbag, Team: TeamNeutralEvil, Alignment: AlignEvil, Convertable: true})
	reg(RoleDescriptor{ID: RoleSpy, Team: TeamSpy, Alignment: AlignSupport, Capabilities: CapIdentityInvestigating, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleStump, Team: TeamTown, Alignment: AlignBenign, Convertable: true})

	reg(RoleDescriptor{ID: RoleMason, Team: TeamMason, Alignment: AlignSupport, Convertable: true})
	reg(RoleDescriptor{ID: RoleMasonLeader, Team: TeamMason, Alignment: AlignPower, Capabilities: CapBoss | CapActiveOnly, Unique: true, Convertable: true, DefaultOpportunity: -1})

	reg(RoleDescriptor{ID: RoleMarshall, Team: TeamTown, Alignment: AlignGovernment, Capabilities: CapActiveOnly, Unique: true, Convertable: true, DefaultConstraints: map[ConstraintKey]any{ConstraintQuotaPerLynch: 1}})
	reg(RoleDescriptor{ID: RoleMayor, Team: TeamTown, Alignment: AlignGovernment, Capabilities: CapActiveOnly, Unique: true, Convertable: true, DefaultVotes: 1})
	reg(RoleDescriptor{ID: RoleJudge, Team: TeamNeutralEvil, Alignment: AlignEvil, Capabilities: CapActiveOnly, Unique: true})
	reg(RoleDescriptor{ID: RoleCrier, Team: TeamTown, Alignment: AlignSupport, Capabilities: CapCrying, Convertable: true})

	reg(RoleDescriptor{ID: RoleSheriff, Team: TeamTown, Alignment: AlignInvestigative, Capabilities: CapVisiting | CapInvestigating, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleCoroner, Team: TeamTown, Alignment: AlignInvestigative, Capabilities: CapVisiting | CapInvestigating | CapWatching, ForDead: true, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleDetective, Team: TeamTown, Alignment: AlignInvestigative, Capabilities: CapVisiting | CapInvestigating | CapFollowing, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleLookout, Team: TeamTown, Alignment: AlignInvestigative, Capabilities: CapVisiting | CapWatching, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleAgent, Team: TeamMafia, Alignment: AlignInvestigative, Capabilities: CapVisiting | CapWatching, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleVanguard, Team: TeamTriad, Alignment: AlignInvestigative, Capabilities: CapVisiting | CapWatching, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleInvestigator, Team: TeamTown, Alignment: AlignInvestigative, Capabilities: CapVisiting | CapInvestigating, Convertable: true, DefaultOpportunity: -1, DefaultConstraints: map[ConstraintKey]any{ConstraintDetectExactRole: false}})
	reg(RoleDescriptor{ID: RoleSecretary, Team: TeamTown, Alignment: AlignInvestigative, Capabilities: CapVisiting | CapInvestigating, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleConsigliere, Team: TeamMafia, Alignment: AlignInvestigative, Capabilities: CapVisiting | CapInvestigating, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleAdministrator, Team: TeamTriad, Alignment: AlignInvestigative, Capabilities: CapVisiting | CapInvestigating, Convertable: true, DefaultOpportunity: -1})

	reg(RoleDescriptor{ID: RoleCounsel, Team: TeamTown, Alignment: AlignGovernment, Unique: true, Convertable: true, DefaultConstraints: map[ConstraintKey]any{ConstraintIfFail: "NONE"}})

	reg(RoleDescriptor{ID: RoleBeguiler, Team: TeamMafia, Alignment: AlignDeception, Capabilities: CapVisiting | CapHiding, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleDeceiver, Team: TeamTriad, Alignment: AlignDeception, Capabilities: CapVisiting | CapHiding, Convertable: true, DefaultOpportunity: -1})

	reg(RoleDescriptor{ID: RoleEscort, Team: TeamTown, Alignment: AlignSupport, Capabilities: CapVisiting | CapBlocking, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleConsort, Team: TeamMafia, Alignment: AlignSupport, Capabilities: CapVisiting | CapBlocking, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleLiaison, Team: TeamTriad, Alignment: AlignSupport, Capabilities: CapVisiting | CapBlocking, Convertable: true, DefaultOpportunity: -1})

	reg(RoleDescriptor{ID: RoleFramer, Team: TeamMafia, Alignment: AlignDeception, Capabilities: CapVisiting | CapFraming, Convertable: true, Disabled: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleForger, Team: TeamTriad, Alignment: AlignDeception, Capabilities: CapVisiting | CapFraming, Convertable: true, Disabled: true, DefaultOpportunity: -1})

	reg(RoleDescriptor{ID: RoleBlackmailer, Team: TeamMafia, Alignment: AlignDeception, Capabilities: CapVisiting, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleSilencer, Team: TeamTriad, Alignment: AlignDeception, Capabilities: CapVisiting, Convertable: true, DefaultOpportunity: -1})

	reg(RoleDescriptor{ID: RoleJanitor, Team: TeamMafia, Alignment: AlignDeception, Capabilities: CapVisiting | CapSanitizing, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleIncenseMaster, Team: TeamTriad, Alignment: AlignDeception, Capabilities: CapVisiting | CapSanitizing, Convertable: true, DefaultOpportunity: -1})

	reg(RoleDescriptor{ID: RoleBodyguard, Team: TeamTown, Alignment: AlignProtective, Capabilities: CapVisiting, DefaultDefense: LevelBasic, DefaultOffense: LevelStrong, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleDoctor, Team: TeamTown, Alignment: AlignProtective, Capabilities: CapVisiting | CapHealing, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleWitchDoctor, Team: TeamMafia, Alignment: AlignProtective, Capabilities: CapVisiting | CapHealing, Convertable: true, DefaultOpportunity: -1})

	reg(RoleDescriptor{ID: RoleJailor, Team: TeamTown, Alignment: AlignGovernment, Capabilities: CapActiveOnly | CapJailing, Unique: true, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleKidnapper, Team: TeamMafia, Alignment: AlignGovernment, Capabilities: CapActiveOnly | CapJailing, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleInterrogator, Team: TeamTriad, Alignment: AlignGovernment, Capabilities: CapActiveOnly | CapJailing, Convertable: true, DefaultOpportunity: -1})

	reg(RoleDescriptor{ID: RoleVeteran, Team: TeamTown, Alignment: AlignKilling, Capabilities: CapActiveOnly, DefaultOffense: LevelStrong, DefaultDefense: LevelNone, DefaultOpportunity: 3, DefaultConstraints: map[ConstraintKey]any{ConstraintOpportunity: 3}, Convertable: true})
	reg(RoleDescriptor{ID: RoleVigilante, Team: TeamTown, Alignment: AlignKilling, Capabilities: CapActiveOnly, DefaultOffense: LevelBasic, DefaultOpportunity: 3, DefaultConstraints: map[ConstraintKey]any{ConstraintOpportunity: 3}, Convertable: true})

	reg(RoleDescriptor{ID: RoleMafioso, Team: TeamMafia, Alignment: AlignKilling, Capabilities: CapVisiting | CapKillingVisiting, DefaultOffense: LevelBasic, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleEnforcer, Team: TeamTriad, Alignment: AlignKilling, Capabilities: CapVisiting | CapKillingVisiting, DefaultOffense: LevelBasic, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleGodfather, Team: TeamMafia, Alignment: AlignKilling, Capabilities: CapVisiting | CapKillingVisiting | CapBoss, DefaultOffense: LevelBasic, Unique: true, Convertable: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleDragonHead, Team: TeamTriad, Alignment: AlignKilling, Capabilities: CapVisiting | CapKillingVisiting | CapBoss, DefaultOffense: LevelBasic, Unique: true, Convertable: true, DefaultOpportunity: -1})

	reg(RoleDescriptor{ID: RoleCultist, Team: TeamCult, Alignment: AlignDeception, Convertable: true, DefaultOpportunity: -1})

	reg(RoleDescriptor{ID: RoleWitch, Team: TeamNeutralEvil, Alignment: AlignDeception, Capabilities: CapVisiting, Unique: true, Healable: false, DefaultOpportunity: -1, DefaultConstraints: map[ConstraintKey]any{ConstraintNotified: false}})
	reg(RoleDescriptor{ID: RoleAuditor, Team: TeamNeutralEvil, Alignment: AlignInvestigative, Capabilities: CapVisiting | CapInvestigating, Unique: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleAmnesiac, Team: TeamNeutralBenign, Alignment: AlignSupport, Unique: true, DefaultOpportunity: -1})

	reg(RoleDescriptor{ID: RoleSerialKiller, Team: TeamNeutralKilling, Alignment: AlignKilling, Capabilities: CapVisiting | CapCriminalKillingVisiting, DefaultOffense: LevelBasic, DefaultDefense: LevelNone, Unique: true, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleMassMurderer, Team: TeamNeutralKilling, Alignment: AlignKilling, Capabilities: CapActiveOnly, DefaultOffense: LevelBasic, Unique: true, Healable: false, DefaultOpportunity: -1})
	reg(RoleDescriptor{ID: RoleArsonist, Team: TeamNeutralKilling, Alignment: AlignKilling, Capabilities: CapVisiting | CapActiveAndVisiting, DefaultOffense: LevelAbsolute, Unique: true, DefaultOpportunity: -1})
}

// Against reports the set of Teams the given Team competes against, used
// by the setup validator's "opposing factions" feasibility check.
func Against(t Team) []Team {
	switch t {
	case TeamTown:
		return []Team{TeamMafia, TeamTriad, TeamCult, TeamNeutralKilling}
	case TeamMafia:
		return []Team{TeamTown, TeamTriad, TeamCult}
	case TeamTriad:
		return []Team{TeamTown, TeamMafia, TeamCult}
	case TeamCult:
		return []Team{TeamTown, TeamMafia, TeamTriad}
	case TeamNeutralKilling:
		return []Team{TeamTown}
	default:
		return nil
	}
}

// CrimeType is a bitmask of crimes a Player may be guilty of, read by
// Coroner/Sheriff-style investigation and cleared by Janitor/
// IncenseMaster sanitizing.
type CrimeType uint32

const (
	CrimeMurder      CrimeType = 1 << iota
	CrimeConspiracy
	CrimeCorruption
	CrimeKidnapping
	CrimeTrespassing
	CrimeBlackmail
	CrimeArson
)
