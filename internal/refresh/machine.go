// internal/refresh/machine.go
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/infohud/internal/content"
	"github.com/tamzrod/infohud/internal/display"
	"github.com/tamzrod/infohud/internal/flash"
	"github.com/tamzrod/infohud/internal/power"
	"github.com/tamzrod/infohud/internal/rotation"
	"github.com/tamzrod/infohud/internal/update"
)

// Config holds the per-run thresholds. Immutable once the machine is built.
type Config struct {
	ShutdownPercent   int
	StaleAfter        time.Duration
	DeferralPriority  int // flashes above this priority defer update checks
	MaxRenderAttempts int
	CallTimeout       time.Duration
	Header            bool // stamp date, time and cached weather on every frame
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		ShutdownPercent:   5,
		StaleAfter:        2 * time.Minute,
		DeferralPriority:  5,
		MaxRenderAttempts: 3,
		CallTimeout:       10 * time.Second,
	}
}

// Rotation selects regular content. *rotation.Scheduler satisfies it.
type Rotation interface {
	NextRegular(ctx context.Context, now time.Time, lastShown map[string]time.Time, cache map[string]content.Item) (rotation.Selection, error)
}

// Deps are the collaborators consulted on every tick.
type Deps struct {
	Power    power.Monitor
	Checker  update.Checker // nil disables update checks
	Applier  update.Applier
	Queue    *flash.Queue
	Rotation Rotation
	Sink     display.Sink
}

// Machine decides what happens on each tick.
// It holds no per-tick state; see State.
type Machine struct {
	cfg  Config
	deps Deps
	log  *slog.Logger

	// one in-flight call per collaborator
	powerGate, sinkGate, checkGate, applyGate gate
}

func New(cfg Config, deps Deps, log *slog.Logger) (*Machine, error) {
	if deps.Power == nil || deps.Queue == nil || deps.Rotation == nil || deps.Sink == nil {
		return nil, errors.New("refresh: power, queue, rotation and sink are required")
	}
	if deps.Checker != nil && deps.Applier == nil {
		return nil, errors.New("refresh: update checker requires an applier")
	}
	if cfg.MaxRenderAttempts <= 0 {
		return nil, errors.New("refresh: max render attempts must be > 0")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Machine{
		cfg:       cfg,
		deps:      deps,
		log:       log,
		powerGate: newGate(),
		sinkGate:  newGate(),
		checkGate: newGate(),
		applyGate: newGate(),
	}, nil
}

// Step runs one tick at now and returns the decision and the next state.
// Order: power gate, expiry purge, deferral-gated update, flash, rotation.
// Exactly one decision per tick; Step never fails.
func (m *Machine) Step(ctx context.Context, now time.Time, prev State) (Decision, State) {
	st := prev.Clone()

	if st.Phase == PhaseShutDown {
		return Decision{Action: ActionShutdown, Reason: "shut down"}, st
	}

	// ------------------------------------------------------------
	// 1. POWER GATE
	// ------------------------------------------------------------
	st.Phase = PhaseChecking

	batt, degraded, ok := m.sampleBattery(ctx, now, &st)
	if !ok {
		return m.shutdown(&st, "battery state unknown", degraded), st
	}
	if batt.Critical(m.cfg.ShutdownPercent) {
		return m.shutdown(&st, fmt.Sprintf("battery at %d%% and not charging", batt.Percent), degraded), st
	}

	// ------------------------------------------------------------
	// 2. EXPIRY (before any peek)
	// ------------------------------------------------------------
	for _, msg := range m.deps.Queue.PurgeExpired(now) {
		m.log.Info("refresh: flash expired unshown",
			"flash_id", msg.ID,
			"priority", msg.Priority,
			"origin", msg.Origin.String(),
		)
	}

	// ------------------------------------------------------------
	// 3. UPDATE (never short-circuits the tick)
	// ------------------------------------------------------------
	m.maybeUpdate(ctx, now, &st)

	// ------------------------------------------------------------
	// 4-6. DECIDE + RENDER
	// ------------------------------------------------------------
	st.Phase = PhaseDeciding
	d := m.decide(ctx, now, &st)
	d.Degraded = degraded

	st.Phase = PhaseIdle
	return d, st
}

// sampleBattery returns the reading to gate on. On sensor failure the
// last known-good reading is used while it is within StaleAfter.
func (m *Machine) sampleBattery(ctx context.Context, now time.Time, st *State) (power.BatteryState, bool, bool) {
	b, err := call(ctx, m.powerGate, m.cfg.CallTimeout, m.deps.Power.Sample)
	if err == nil {
		// bookkeeping uses the tick clock
		b.SampledAt = now
		st.Battery = b
		return b, false, true
	}

	if st.Battery.Fresh(now, m.cfg.StaleAfter) {
		m.log.Warn("refresh: battery sensor failed, using last known-good reading",
			"error", err,
			"percent", st.Battery.Percent,
			"age", now.Sub(st.Battery.SampledAt).String(),
		)
		return st.Battery, true, true
	}

	m.log.Error("refresh: battery sensor failed and no fresh reading is cached",
		"error", err,
	)
	return power.BatteryState{}, true, false
}

func (m *Machine) shutdown(st *State, reason string, degraded bool) Decision {
	st.Phase = PhaseShutDown
	m.log.Error("refresh: shutting down", "reason", reason)
	return Decision{Action: ActionShutdown, Reason: reason, Degraded: degraded}
}

// updateDeferred reports whether an active or pending flash above the
// deferral threshold must not be delayed by an update check.
func (m *Machine) updateDeferred(now time.Time, st *State) (int, bool) {
	if a := st.Active; a != nil && now.Before(a.HoldUntil) && a.Message.Priority > m.cfg.DeferralPriority {
		return a.Message.Priority, true
	}
	if p, ok := m.deps.Queue.MaxPriority(); ok && p > m.cfg.DeferralPriority {
		return p, true
	}
	return 0, false
}

func (m *Machine) maybeUpdate(ctx context.Context, now time.Time, st *State) {
	if m.deps.Checker == nil && st.PendingUpdate == nil {
		return
	}
	if p, deferred := m.updateDeferred(now, st); deferred {
		m.log.Debug("refresh: update check deferred by flash", "priority", p)
		return
	}

	desc := st.PendingUpdate
	if desc == nil {
		d, err := call(ctx, m.checkGate, m.cfg.CallTimeout, m.deps.Checker.Check)
		if err != nil {
			m.log.Warn("refresh: update check failed", "error", err)
			return
		}
		if d == nil {
			return
		}
		desc = d
	}

	if m.deps.Applier == nil {
		return
	}

	err := do(ctx, m.applyGate, m.cfg.CallTimeout, func(ctx context.Context) error {
		return m.deps.Applier.Apply(ctx, *desc)
	})
	if err != nil {
		pending := *desc
		st.PendingUpdate = &pending
		m.log.Warn("refresh: update apply failed, retrying next tick",
			"version", desc.Version,
			"error", err,
		)
		return
	}

	st.PendingUpdate = nil
	m.log.Info("refresh: update applied", "version", desc.Version)
}

func (m *Machine) decide(ctx context.Context, now time.Time, st *State) Decision {
	if a := st.Active; a != nil {
		if now.Before(a.HoldUntil) {
			return Decision{Action: ActionSkip, FlashID: a.Message.ID, Reason: "flash on screen"}
		}
		st.Active = nil
	}

	if msg, ok := m.deps.Queue.PeekNext(); ok {
		return m.renderFlash(ctx, now, st, msg)
	}
	return m.renderRegular(ctx, now, st)
}

func (m *Machine) renderFlash(ctx context.Context, now time.Time, st *State, msg flash.Message) Decision {
	st.Phase = PhaseRendering
	it := m.decorate(now, st, msg.Item())

	if err := m.render(ctx, it); err != nil {
		if errors.Is(err, ErrBusy) {
			// not an attempt: the panel never saw this flash
			return Decision{Action: ActionSkip, FlashID: msg.ID, Reason: "display busy", Err: err}
		}
		attempts, dropped := m.deps.Queue.RecordFailure(msg.ID, m.cfg.MaxRenderAttempts)
		if dropped {
			m.log.Error("refresh: flash dropped after repeated render failures",
				"flash_id", msg.ID,
				"attempts", attempts,
				"error", err,
			)
		} else {
			m.log.Warn("refresh: flash render failed, will retry",
				"flash_id", msg.ID,
				"attempts", attempts,
				"error", err,
			)
		}
		return Decision{Action: ActionSkip, FlashID: msg.ID, Reason: "flash render failed", Err: err}
	}

	m.deps.Queue.DequeueShown(msg.ID)
	st.Active = &ActiveFlash{Message: msg, ShownAt: now, HoldUntil: msg.HoldUntil(now)}
	st.OnScreen = msg.ID

	return Decision{Action: ActionRenderFlash, Content: &it, FlashID: msg.ID, Reason: "flash"}
}

func (m *Machine) renderRegular(ctx context.Context, now time.Time, st *State) Decision {
	sel, err := m.deps.Rotation.NextRegular(ctx, now, st.LastShown, st.Cache)
	if err != nil {
		m.log.Warn("refresh: no regular content", "error", err)
		return Decision{Action: ActionSkip, Reason: "nothing to show", Err: err}
	}

	if sel.Redisplay && sel.Item.ID == st.OnScreen {
		return Decision{Action: ActionSkip, Slot: sel.Slot, Redisplay: true, Reason: "unchanged"}
	}

	st.Phase = PhaseRendering
	it := m.decorate(now, st, sel.Item)

	if err := m.render(ctx, it); err != nil {
		if errors.Is(err, ErrBusy) {
			return Decision{Action: ActionSkip, Slot: sel.Slot, Reason: "display busy", Err: err}
		}
		m.log.Warn("refresh: content render failed",
			"slot", sel.Slot,
			"item_id", it.ID,
			"error", err,
		)
		return Decision{Action: ActionSkip, Slot: sel.Slot, Reason: "render failed", Err: err}
	}

	st.OnScreen = it.ID
	if !sel.Redisplay {
		st.LastShown[sel.Slot] = now
		st.Cache[sel.Slot] = sel.Item
	}

	return Decision{
		Action:    ActionRenderContent,
		Content:   &it,
		Slot:      sel.Slot,
		Redisplay: sel.Redisplay,
		Reason:    "rotation",
	}
}

func (m *Machine) render(ctx context.Context, it content.Item) error {
	err := do(ctx, m.sinkGate, m.cfg.CallTimeout, func(ctx context.Context) error {
		return m.deps.Sink.Render(ctx, it)
	})
	if err != nil && !errors.Is(err, display.ErrRender) {
		err = fmt.Errorf("%w: %w", display.ErrRender, err)
	}
	return err
}
