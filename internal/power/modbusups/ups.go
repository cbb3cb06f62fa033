// internal/power/modbusups/ups.go
package modbusups

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/infohud/internal/power"
)

// Client abstracts the register reads the UPS monitor needs.
// The monitor depends on geometry only.
type Client interface {
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
	ReadInputRegisters(addr, qty uint16) ([]uint16, error)   // FC 4
}

// Config is the minimal runtime config the monitor needs.
type Config struct {
	FC               uint8 // 3 or 4
	PercentRegister  uint16
	PercentScale     float64 // raw * scale = percent
	ChargingRegister *uint16 // non-zero value means external power
}

// Monitor implements power.Monitor over Modbus registers.
type Monitor struct {
	cfg    Config
	client Client
	now    func() time.Time
}

// New creates a monitor with immutable config.
func New(cfg Config, client Client) (*Monitor, error) {
	if client == nil {
		return nil, errors.New("modbusups: client required")
	}
	if cfg.FC != 3 && cfg.FC != 4 {
		return nil, fmt.Errorf("modbusups: unsupported function code %d", cfg.FC)
	}
	if cfg.PercentScale == 0 {
		cfg.PercentScale = 1
	}
	return &Monitor{cfg: cfg, client: client, now: time.Now}, nil
}

// Sample performs exactly one read cycle.
// All-or-nothing: any failure aborts the cycle.
// Modbus calls are bounded by the transport timeout, not ctx.
func (m *Monitor) Sample(ctx context.Context) (power.BatteryState, error) {
	if err := ctx.Err(); err != nil {
		return power.BatteryState{}, fmt.Errorf("%w: %v", power.ErrSensorUnavailable, err)
	}

	raw, err := m.read(m.cfg.PercentRegister)
	if err != nil {
		return power.BatteryState{}, err
	}

	st := power.BatteryState{
		Percent:   power.ClampPercent(float64(raw) * m.cfg.PercentScale),
		SampledAt: m.now(),
	}

	if m.cfg.ChargingRegister != nil {
		v, err := m.read(*m.cfg.ChargingRegister)
		if err != nil {
			return power.BatteryState{}, err
		}
		st.Charging = v != 0
	}

	return st, nil
}

func (m *Monitor) read(addr uint16) (uint16, error) {
	var (
		regs []uint16
		err  error
	)
	switch m.cfg.FC {
	case 3:
		regs, err = m.client.ReadHoldingRegisters(addr, 1)
	case 4:
		regs, err = m.client.ReadInputRegisters(addr, 1)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: modbus fc%d addr %d: %v", power.ErrSensorUnavailable, m.cfg.FC, addr, err)
	}
	if len(regs) < 1 {
		return 0, fmt.Errorf("%w: modbus fc%d addr %d: empty response", power.ErrSensorUnavailable, m.cfg.FC, addr)
	}
	return regs[0], nil
}
