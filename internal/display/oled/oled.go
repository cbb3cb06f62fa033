// internal/display/oled/oled.go
package oled

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/tamzrod/infohud/internal/content"
	"github.com/tamzrod/infohud/internal/display"
	"github.com/tamzrod/infohud/internal/display/compose"
)

// panel is the part of *ssd1306.Dev the sink drives.
type panel interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

var _ panel = (*ssd1306.Dev)(nil)

// Sink draws frames on an SSD1306 OLED (bench stand-in for the e-paper).
type Sink struct {
	mu       sync.Mutex
	dev      panel
	composer *compose.Composer
}

// Open initializes periph, opens the named I2C bus (empty = first) and
// the panel at its fixed address. The returned closer releases the bus.
func Open(bus string) (*Sink, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("oled: host init: %w", err)
	}
	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, nil, fmt.Errorf("oled: open bus %q: %w", bus, err)
	}
	dev, err := ssd1306.NewI2C(b, &ssd1306.DefaultOpts)
	if err != nil {
		b.Close()
		return nil, nil, fmt.Errorf("oled: init panel: %w", err)
	}
	s, err := newSink(dev)
	if err != nil {
		b.Close()
		return nil, nil, err
	}
	return s, b.Close, nil
}

func newSink(dev panel) (*Sink, error) {
	if dev == nil {
		return nil, errors.New("oled: nil panel")
	}
	r := dev.Bounds()
	c, err := compose.New(r.Dx(), r.Dy())
	if err != nil {
		return nil, err
	}
	return &Sink{dev: dev, composer: c}, nil
}

func (s *Sink) Render(ctx context.Context, it content.Item) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", display.ErrRender, err)
	}
	frame, err := s.composer.Frame(it)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.dev.Draw(s.dev.Bounds(), frame, image.Point{}); err != nil {
		return fmt.Errorf("%w: oled: %v", display.ErrRender, err)
	}
	return nil
}

// Sleep blanks the panel and turns it off.
func (s *Sink) Sleep(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.Halt()
}
