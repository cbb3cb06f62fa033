// internal/status/tracker.go
package status

import (
	"math"
	"time"

	"github.com/tamzrod/infohud/internal/refresh"
)

// Tracker derives status snapshots from tick outcomes.
// Not safe for concurrent use; owned by the status loop.
type Tracker struct {
	snap          Snapshot
	degradedSince time.Time
}

func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Observe folds one tick into the snapshot.
func (t *Tracker) Observe(now time.Time, d refresh.Decision, st refresh.State, queueDepth int) Snapshot {
	s := t.snap

	switch {
	case d.Action == refresh.ActionShutdown:
		s.Health = HealthShutDown
	case d.Degraded:
		s.Health = HealthDegraded
	case d.Err != nil:
		s.Health = HealthError
	default:
		s.Health = HealthOK
	}

	if d.Degraded {
		if t.degradedSince.IsZero() {
			t.degradedSince = now
		}
	} else {
		t.degradedSince = time.Time{}
	}

	s.Battery = clampU16(st.Battery.Percent)
	s.Charging = 0
	if st.Battery.Charging {
		s.Charging = 1
	}
	s.LastAction = actionCode(d.Action)
	s.QueueDepth = clampU16(queueDepth)
	s.SecondsDegraded = t.seconds(now)

	t.snap = s
	return s
}

// Tick refreshes the seconds counter between ticks.
func (t *Tracker) Tick(now time.Time) Snapshot {
	t.snap.SecondsDegraded = t.seconds(now)
	return t.snap
}

// Snapshot returns the current snapshot.
func (t *Tracker) Snapshot() Snapshot { return t.snap }

func (t *Tracker) seconds(now time.Time) uint16 {
	if t.degradedSince.IsZero() {
		return 0
	}
	// HARD INVARIANT: seconds_degraded MUST NOT wrap
	return clampU16(int(now.Sub(t.degradedSince) / time.Second))
}

func actionCode(a refresh.Action) uint16 {
	switch a {
	case refresh.ActionSkip:
		return ActionSkip
	case refresh.ActionRenderContent:
		return ActionRenderContent
	case refresh.ActionRenderFlash:
		return ActionRenderFlash
	case refresh.ActionShutdown:
		return ActionShutdown
	}
	return ActionNone
}

func clampU16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}
