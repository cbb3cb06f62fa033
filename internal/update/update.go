// internal/update/update.go
package update

import (
	"context"
	"errors"
)

// ErrApply is wrapped by every Applier failure.
var ErrApply = errors.New("update: apply failed")

// Descriptor identifies one available release.
type Descriptor struct {
	Version string
	URL     string
	SHA256  string
}

// Checker reports an available update, or nil when the running version is current.
type Checker interface {
	Check(ctx context.Context) (*Descriptor, error)
}

// Applier installs a release. Applying an already-applied version is a no-op.
type Applier interface {
	Apply(ctx context.Context, d Descriptor) error
}
