// internal/status/encode.go
package status

// Encode converts a Snapshot into the live slots of a status block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, LiveSlots)

	regs[SlotHealthCode] = s.Health
	regs[SlotBatteryPercent] = s.Battery
	regs[SlotCharging] = s.Charging
	regs[SlotLastAction] = s.LastAction
	regs[SlotQueueDepth] = s.QueueDepth
	regs[SlotSecondsDegraded] = s.SecondsDegraded

	return regs
}

// EncodeBlock returns the full block: live slots, zeroed reserved range
// and the device name at the end.
func EncodeBlock(s Snapshot, name string) []uint16 {
	regs := make([]uint16, SlotsPerDevice)
	copy(regs, Encode(s))
	copy(regs[SlotDeviceNameStart:], EncodeDeviceName(name))
	return regs
}

// EncodeDeviceName packs up to 16 ASCII characters into 8 uint16 registers.
// Each register stores two ASCII bytes in big-endian order.
func EncodeDeviceName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
