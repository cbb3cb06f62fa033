// internal/power/power.go
package power

import (
	"context"
	"errors"
	"time"

	"github.com/tamzrod/infohud/internal/x/mathx"
)

// ErrSensorUnavailable is wrapped by every Monitor failure.
var ErrSensorUnavailable = errors.New("power: sensor unavailable")

// BatteryState is one reading of the UPS.
// Charging reports that external power is present.
type BatteryState struct {
	Percent   int
	Charging  bool
	SampledAt time.Time
}

// Monitor abstracts the battery/UPS sensor.
type Monitor interface {
	Sample(ctx context.Context) (BatteryState, error)
}

// Critical reports whether the reading must force a shutdown.
func (b BatteryState) Critical(shutdownPercent int) bool {
	return b.Percent <= shutdownPercent && !b.Charging
}

// Fresh reports whether a cached reading is still usable at now.
func (b BatteryState) Fresh(now time.Time, staleAfter time.Duration) bool {
	if b.SampledAt.IsZero() {
		return false
	}
	return now.Sub(b.SampledAt) <= staleAfter
}

// ClampPercent bounds a raw gauge value to 0..100.
func ClampPercent(v float64) int {
	return int(mathx.Clamp(v, 0, 100) + 0.5)
}

// Static is a fixed reading for bench setups without a UPS.
type Static struct {
	Percent  int
	Charging bool
	Now      func() time.Time
}

func (s Static) Sample(ctx context.Context) (BatteryState, error) {
	if err := ctx.Err(); err != nil {
		return BatteryState{}, errors.Join(ErrSensorUnavailable, err)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return BatteryState{
		Percent:   mathx.Clamp(s.Percent, 0, 100),
		Charging:  s.Charging,
		SampledAt: now(),
	}, nil
}
