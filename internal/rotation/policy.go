// internal/rotation/policy.go
package rotation

import (
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/infohud/internal/content"
)

// Slot is one configured content kind with its own refresh interval.
type Slot struct {
	Name     string
	Kind     content.Kind
	Interval time.Duration
	TTL      time.Duration // cached item lifetime for re-display, 0 = no limit
}

// Policy is the ordered slot list. Earlier slots win ties.
// It is immutable for the lifetime of a Scheduler.
type Policy []Slot

// Validate checks policy shape.
func (p Policy) Validate() error {
	if len(p) == 0 {
		return errors.New("rotation: policy has no slots")
	}
	seen := make(map[string]struct{}, len(p))
	for i, s := range p {
		if s.Name == "" {
			return fmt.Errorf("rotation: slot %d has no name", i)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("rotation: slot %q defined twice", s.Name)
		}
		seen[s.Name] = struct{}{}
		if s.Interval <= 0 {
			return fmt.Errorf("rotation: slot %q interval must be > 0", s.Name)
		}
	}
	return nil
}

// due reports whether slot s must be refreshed at now.
// A slot that was never shown is always due.
func (s Slot) due(now time.Time, lastShown map[string]time.Time) bool {
	last, ok := lastShown[s.Name]
	if !ok {
		return true
	}
	return now.Sub(last) >= s.Interval
}

// overdue is how far past its interval the slot is; negative when not yet due.
func (s Slot) overdue(now time.Time, lastShown map[string]time.Time) time.Duration {
	return now.Sub(lastShown[s.Name]) - s.Interval
}
