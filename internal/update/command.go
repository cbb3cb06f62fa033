// internal/update/command.go
package update

import (
	"context"
	"fmt"
	"sync"

	"github.com/tamzrod/infohud/internal/syscmd"
)

// CommandApplier runs a configured command to install a release.
// The descriptor is exported as HUD_UPDATE_VERSION, HUD_UPDATE_URL and
// HUD_UPDATE_SHA256.
type CommandApplier struct {
	cmd syscmd.Command

	mu      sync.Mutex
	applied string
}

// NewCommandApplier parses the command line. current is the running version,
// which is treated as already applied.
func NewCommandApplier(line, current string) (*CommandApplier, error) {
	cmd, err := syscmd.Parse(line)
	if err != nil {
		return nil, err
	}
	return &CommandApplier{cmd: cmd, applied: current}, nil
}

func (a *CommandApplier) Apply(ctx context.Context, d Descriptor) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if d.Version == "" {
		return fmt.Errorf("%w: empty version", ErrApply)
	}
	if d.Version == a.applied {
		return nil
	}

	if _, err := a.cmd.Run(ctx,
		"HUD_UPDATE_VERSION="+d.Version,
		"HUD_UPDATE_URL="+d.URL,
		"HUD_UPDATE_SHA256="+d.SHA256,
	); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrApply, d.Version, err)
	}

	a.applied = d.Version
	return nil
}

// Applied returns the last successfully applied version.
func (a *CommandApplier) Applied() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.applied
}
