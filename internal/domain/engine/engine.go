package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/V4T54L/mafia/internal/archive"
	"github.com/V4T54L/mafia/internal/domain/entity"
)

// Command is one piece of session-originated input routed into the
// Engine's single command channel by the dispatcher (§4.2, §9
// "Cooperative control flow"). It is the only way a Session task may
// influence Room state; the Engine task is the sole mutator.
type Command struct {
	Session *entity.Session
	Text    string
}

// Engine is the cooperative, single-threaded state machine owned by one
// Room (§4.3, §5). All game mutation for the Room happens inside Run.
type Engine struct {
	Room    *entity.Room
	Emitter *entity.Emitter
	Sink    archive.Sink

	// VoiceHook, if set, is called after every phase broadcast so an
	// adjunct adapter (the SFU) can re-derive who hears whom. Nil in
	// tests and in any deployment with voice chat disabled.
	VoiceHook func(*entity.Room)

	cmdCh  chan Command
	logger *slog.Logger
	timers TimerTable
	debug  bool
}

// New builds an Engine for room. timers selects the production or debug
// table per the DEBUG config flag (§4.3).
func New(room *entity.Room, sink archive.Sink, logger *slog.Logger, debug bool) *Engine {
	timers := ProdTimers
	if debug {
		timers = DebugTimers
	}
	return &Engine{
		Room:    room,
		Emitter: entity.NewEmitter(room),
		Sink:    sink,
		cmdCh:   make(chan Command, 64),
		logger:  logger,
		timers:  timers,
		debug:   debug,
	}
}

// Dispatch enqueues a command for the Engine's owning task to process.
// Safe to call from any Session task.
func (e *Engine) Dispatch(c Command) {
	select {
	case e.cmdCh <- c:
	default:
		e.logger.Warn("engine: command channel full, dropping", "room", e.Room.ID)
	}
}

// Begin is the host's `/begin` command: IDLE -> INITIATING ->
// NICKNAME_SELECTION, then the main loop, guarded by a top-level recover
// that turns any invariant violation into a BOOM broadcast (§5
// Cancellation, §7 Engine invariant violation).
func (e *Engine) Begin(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("engine: invariant violation, aborting match", "room", e.Room.ID, "panic", r)
			e.broadcastBoom()
			e.Room.SetPhase(entity.PhaseIdle)
		}
	}()
	e.Room.SetPhase(entity.PhaseInitiating)
	e.broadcastPhase()

	e.Room.SetPhase(entity.PhaseNicknameSelection)
	e.broadcastPhase()
	e.wait(ctx, "NICKNAME_SELECTION", nil)

	e.seatPlayersAndAssignRoles()

	e.runMainLoop(ctx)

	e.finishGame()

	if e.Sink != nil {
		e.Sink.Archive(archive.GameData{
			RoomID:     e.Room.ID,
			Title:      e.Room.Title,
			Private:    e.Room.HasPassword(),
			Setup:      e.Room.Setup,
			Transcript: e.Room.Transcript(),
		})
	}
	e.Room.SetPhase(entity.PhaseIdle)
	e.Emitter.Emit(entity.Event{
		Type:       entity.EventBackToIdle,
		Recipients: e.sessions(),
		NoRecord:   true,
	})
}

func (e *Engine) runMainLoop(ctx context.Context) {
	for {
		e.runEvening(ctx)

		e.Room.SetPhase(entity.PhaseNight)
		e.broadcastPhase()
		e.RunNightResolver(ctx)
		e.sleep(ctx, e.timers["NIGHT_SLEEP"])

		e.Room.Day++
		for _, p := range e.Room.Players {
			p.DayRecord(e.Room.Day)
		}

		e.Room.SetPhase(entity.PhaseMorning)
		e.broadcastPhase()
		e.announceDeaths()
		if e.gameOver() {
			return
		}

		e.Room.SetPhase(entity.PhaseDiscussion)
		e.broadcastPhase()
		e.wait(ctx, "DISCUSSION", nil)

		e.runVoteSubloop(ctx)

		e.Room.SetPhase(entity.PhasePostExecution)
		e.broadcastPhase()
		e.revealExecuted()
		e.Room.InCourt = false
		e.Room.InLynch = false

		if e.gameOver() {
			return
		}
	}
}

func (e *Engine) broadcastPhase() {
	e.Emitter.Emit(entity.Event{
		Type:       entity.EventPhase,
		Recipients: e.sessions(),
		Payload:    entity.Payload{"phase": e.Room.Phase()},
	})
	e.broadcastRoomStatus()
	if e.VoiceHook != nil {
		e.VoiceHook(e.Room)
	}
}

func (e *Engine) broadcastRoomStatus() {
	e.Emitter.Emit(entity.Event{
		Type:       entity.EventRoomStatus,
		Recipients: e.sessions(),
		Payload:    entity.Payload{"room": e.Room.Summary()},
		NoRecord:   true,
	})
}

func (e *Engine) broadcastBoom() {
	e.Emitter.Emit(entity.Event{
		Type:       entity.EventBoom,
		Recipients: e.sessions(),
		NoRecord:   true,
	})
}

func (e *Engine) sessions() []*entity.Session {
	out := make([]*entity.Session, 0, len(e.Room.Occupants))
	out = append(out, e.Room.Occupants...)
	return out
}

// wait blocks for the named phase's timer, processing commands via
// handle (nil to ignore input) and emitting TIME announcements at the
// marks in Announcements. Returns early if ctx is cancelled.
func (e *Engine) wait(ctx context.Context, phaseKey string, handle func(Command) (stop bool)) {
	budget := e.timers[phaseKey]
	e.countdown(ctx, budget, handle)
}

func (e *Engine) countdown(ctx context.Context, budget time.Duration, handle func(Command) (stop bool)) {
	deadline := time.Now().Add(budget)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	announced := map[time.Duration]bool{}
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case cmd := <-e.cmdCh:
			if handle != nil && handle(cmd) {
				return
			}
		case <-ticker.C:
			for _, mark := range Announcements {
				if mark <= budget && remaining <= mark && !announced[mark] {
					announced[mark] = true
					e.Emitter.Emit(entity.Event{
						Type:       entity.EventTime,
						Recipients: e.sessions(),
						Payload:    entity.Payload{"remaining": int(mark.Seconds())},
						NoRecord:   true,
					})
				}
			}
		}
	}
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
