// internal/power/i2cgauge/gauge.go
package i2cgauge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/drivers"

	"github.com/tamzrod/infohud/internal/power"
)

// PiSugar 3 register map.
const (
	DefaultAddr uint16 = 0x57

	regPowerStatus byte = 0x02 // bit 7: external power present
	regPercent     byte = 0x2A // 0..100

	bitExternalPower byte = 0x80
)

// Gauge implements power.Monitor by reading a PiSugar 3 fuel gauge over I2C.
// The bus is any drivers.I2C: a periph host bus on Linux, a fake in tests.
type Gauge struct {
	mu   sync.Mutex
	bus  drivers.I2C
	addr uint16
	now  func() time.Time
}

// New creates a gauge on an already-open bus.
func New(bus drivers.I2C, addr uint16) (*Gauge, error) {
	if bus == nil {
		return nil, errors.New("i2cgauge: bus required")
	}
	if addr == 0 {
		addr = DefaultAddr
	}
	return &Gauge{bus: bus, addr: addr, now: time.Now}, nil
}

// Sample reads charge percent and external power bit.
// I2C transactions cannot be cancelled; ctx is only checked up front.
func (g *Gauge) Sample(ctx context.Context) (power.BatteryState, error) {
	if err := ctx.Err(); err != nil {
		return power.BatteryState{}, fmt.Errorf("%w: %v", power.ErrSensorUnavailable, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	pct, err := g.readReg(regPercent)
	if err != nil {
		return power.BatteryState{}, err
	}
	st, err := g.readReg(regPowerStatus)
	if err != nil {
		return power.BatteryState{}, err
	}

	return power.BatteryState{
		Percent:   power.ClampPercent(float64(pct)),
		Charging:  st&bitExternalPower != 0,
		SampledAt: g.now(),
	}, nil
}

func (g *Gauge) readReg(reg byte) (byte, error) {
	var r [1]byte
	if err := g.bus.Tx(g.addr, []byte{reg}, r[:]); err != nil {
		return 0, fmt.Errorf("%w: i2c read 0x%02x@0x%02x: %v", power.ErrSensorUnavailable, reg, g.addr, err)
	}
	return r[0], nil
}
