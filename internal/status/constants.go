// internal/status/constants.go
package status

// Status block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per device.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the display health state.
const SlotHealthCode = 0

// SlotBatteryPercent holds the last battery reading (0-100).
const SlotBatteryPercent = 1

// SlotCharging is 1 while external power is present.
const SlotCharging = 2

// SlotLastAction holds the last tick's action code.
const SlotLastAction = 3

// SlotQueueDepth holds the number of pending flash messages.
const SlotQueueDepth = 4

// SlotSecondsDegraded holds how long the battery sensor has been failing.
const SlotSecondsDegraded = 5

// LiveSlots is the number of leading slots rewritten incrementally.
const LiveSlots = 6

// ---- RESERVED RANGE ----

// Slots 6-10 are reserved for future use.
const SlotReservedStart = 6
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state before the first tick.
const HealthUnknown uint16 = 0

// HealthOK represents a tick that completed without failure.
const HealthOK uint16 = 1

// HealthDegraded means the battery reading came from the cache.
const HealthDegraded uint16 = 2

// HealthError means the last tick turned into a Skip because of a failure.
const HealthError uint16 = 3

// HealthShutDown is terminal.
const HealthShutDown uint16 = 4

// ---- ACTION CODES ----

const (
	ActionNone          uint16 = 0
	ActionSkip          uint16 = 1
	ActionRenderContent uint16 = 2
	ActionRenderFlash   uint16 = 3
	ActionShutdown      uint16 = 4
)
