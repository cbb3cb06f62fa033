// internal/display/pngsink/pngsink.go
package pngsink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tamzrod/infohud/internal/content"
	"github.com/tamzrod/infohud/internal/display"
	"github.com/tamzrod/infohud/internal/display/compose"
)

// FrameName is the file holding the frame currently "on screen".
const FrameName = "frame.png"

// Sink writes each frame to Dir/frame.png, replacing it atomically.
// Viewers polling the file never see a partial frame.
type Sink struct {
	dir      string
	composer *compose.Composer
}

func New(dir string, c *compose.Composer) (*Sink, error) {
	if dir == "" || c == nil {
		return nil, errors.New("pngsink: dir and composer required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("pngsink: %w", err)
	}
	return &Sink{dir: dir, composer: c}, nil
}

func (s *Sink) Render(ctx context.Context, it content.Item) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", display.ErrRender, err)
	}
	b, err := s.composer.PNG(it)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".frame-*.png")
	if err != nil {
		return fmt.Errorf("%w: %v", display.ErrRender, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", display.ErrRender, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", display.ErrRender, err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("%w: %v", display.ErrRender, err)
	}
	return nil
}

// Path returns the location of the current frame.
func (s *Sink) Path() string {
	return filepath.Join(s.dir, FrameName)
}
