// internal/writer/status_writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/tamzrod/infohud/internal/status"
)

type writeCall struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeRegisterWriter struct {
	writes []writeCall
	fail   bool
}

func (f *fakeRegisterWriter) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.fail {
		return errors.New("connection reset")
	}
	f.writes = append(f.writes, writeCall{unitID: unitID, addr: addr, regs: append([]uint16(nil), regs...)})
	return nil
}

func (f *fakeRegisterWriter) last() writeCall { return f.writes[len(f.writes)-1] }

func plan() *StatusPlan {
	return &StatusPlan{Endpoint: "status-endpoint", UnitID: 1, BaseSlot: 2, DeviceName: "DEV-01"}
}

func TestDisabledWithoutPlan(t *testing.T) {
	if _, enabled := NewDeviceStatusWriter(nil, &fakeRegisterWriter{}); enabled {
		t.Fatalf("status writer should be disabled")
	}
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeRegisterWriter{}
	sw, _ := NewDeviceStatusWriter(plan(), cli)

	// ---- first write: FULL ASSERT ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK, Battery: 80}); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}
	w := cli.last()
	if len(w.regs) != status.SlotsPerDevice || w.addr != 2*status.SlotsPerDevice || w.unitID != 1 {
		t.Fatalf("expected full block at %d, got %d regs at %d", 2*status.SlotsPerDevice, len(w.regs), w.addr)
	}
	name := status.EncodeDeviceName("DEV-01")
	for i := range name {
		if w.regs[status.SlotDeviceNameStart+i] != name[i] {
			t.Fatalf("device name slot %d mismatch", i)
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	n := len(cli.writes)
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK, Battery: 79}); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}
	if len(cli.writes) != n+1 {
		t.Fatalf("expected 1 incremental write, got %d", len(cli.writes)-n)
	}
	w = cli.last()
	if len(w.regs) != 1 || w.addr != 2*status.SlotsPerDevice+status.SlotBatteryPercent || w.regs[0] != 79 {
		t.Fatalf("incremental write=%+v", w)
	}
}

func TestUnchangedSnapshotWritesNothing(t *testing.T) {
	cli := &fakeRegisterWriter{}
	sw, _ := NewDeviceStatusWriter(plan(), cli)

	s := status.Snapshot{Health: status.HealthOK, QueueDepth: 1}
	_ = sw.WriteStatus(s)
	_ = sw.WriteStatus(s)

	if len(cli.writes) != 1 {
		t.Fatalf("writes=%d", len(cli.writes))
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeRegisterWriter{}
	sw, _ := NewDeviceStatusWriter(plan(), cli)

	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthOK})

	cli.fail = true
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthDegraded}); err == nil {
		t.Fatalf("expected error")
	}

	cli.fail = false
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthDegraded, SecondsDegraded: 3}); err != nil {
		t.Fatalf("recovery write failed: %v", err)
	}
	if len(cli.last().regs) != status.SlotsPerDevice {
		t.Fatalf("expected full re-assert after failure")
	}
}
