// internal/refresh/state.go
package refresh

import (
	"maps"
	"time"

	"github.com/tamzrod/infohud/internal/content"
	"github.com/tamzrod/infohud/internal/flash"
	"github.com/tamzrod/infohud/internal/power"
	"github.com/tamzrod/infohud/internal/update"
)

// ActiveFlash is the flash currently held on screen.
type ActiveFlash struct {
	Message   flash.Message
	ShownAt   time.Time
	HoldUntil time.Time
}

// State is everything the machine remembers between ticks.
// It is owned by the caller and passed into every Step; Step never
// mutates the value it receives. Zero State is a valid cold start.
type State struct {
	Phase Phase

	// Battery is the last known-good reading, stamped with the tick clock.
	Battery power.BatteryState

	LastShown map[string]time.Time    // per rotation slot
	Cache     map[string]content.Item // last fresh item per slot, for re-display
	Active    *ActiveFlash
	OnScreen  string // id of the item currently displayed

	PendingUpdate *update.Descriptor // apply failed; retried next tick
}

// Clone returns a deep copy safe to mutate.
func (s State) Clone() State {
	out := s
	out.LastShown = maps.Clone(s.LastShown)
	if out.LastShown == nil {
		out.LastShown = make(map[string]time.Time)
	}
	out.Cache = maps.Clone(s.Cache)
	if out.Cache == nil {
		out.Cache = make(map[string]content.Item)
	}
	if s.Active != nil {
		a := *s.Active
		out.Active = &a
	}
	if s.PendingUpdate != nil {
		d := *s.PendingUpdate
		out.PendingUpdate = &d
	}
	return out
}
