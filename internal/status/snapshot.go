// internal/status/snapshot.go
package status

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health          uint16
	Battery         uint16
	Charging        uint16
	LastAction      uint16
	QueueDepth      uint16
	SecondsDegraded uint16
}
