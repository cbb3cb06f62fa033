// internal/power/i2cgauge/gauge_test.go
package i2cgauge

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tamzrod/infohud/internal/power"
)

type fakeI2C struct {
	mu   sync.Mutex
	regs map[byte]byte
	fail bool
	addr uint16
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.addr = addr
	if f.fail {
		return errors.New("nack")
	}
	if len(w) == 1 && len(r) == 1 {
		r[0] = f.regs[w[0]]
	}
	return nil
}

func TestSample_ReadsRegisters(t *testing.T) {
	bus := &fakeI2C{regs: map[byte]byte{
		regPercent:     64,
		regPowerStatus: 0x80,
	}}

	g, err := New(bus, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	b, err := g.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if b.Percent != 64 || !b.Charging {
		t.Fatalf("unexpected reading %+v", b)
	}
	if bus.addr != DefaultAddr {
		t.Fatalf("addr=0x%02x", bus.addr)
	}
}

func TestSample_ClampsGarbage(t *testing.T) {
	bus := &fakeI2C{regs: map[byte]byte{regPercent: 0xFF}}
	g, _ := New(bus, DefaultAddr)

	b, err := g.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if b.Percent != 100 || b.Charging {
		t.Fatalf("unexpected reading %+v", b)
	}
}

func TestSample_BusError(t *testing.T) {
	g, _ := New(&fakeI2C{fail: true}, DefaultAddr)
	if _, err := g.Sample(context.Background()); !errors.Is(err, power.ErrSensorUnavailable) {
		t.Fatalf("expected ErrSensorUnavailable, got %v", err)
	}
}
