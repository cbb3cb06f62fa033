// internal/display/oled/oled_test.go
package oled

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/tamzrod/infohud/internal/content"
	"github.com/tamzrod/infohud/internal/display"
)

type fakePanel struct {
	frames  []image.Image
	halted  bool
	drawErr error
}

func (p *fakePanel) Bounds() image.Rectangle { return image.Rect(0, 0, 128, 64) }

func (p *fakePanel) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if p.drawErr != nil {
		return p.drawErr
	}
	p.frames = append(p.frames, src)
	return nil
}

func (p *fakePanel) Halt() error {
	p.halted = true
	return nil
}

func TestSink_RenderAndSleep(t *testing.T) {
	p := &fakePanel{}
	s, err := newSink(p)
	if err != nil {
		t.Fatalf("newSink: %v", err)
	}

	if err := s.Render(context.Background(), content.Item{Kind: content.KindStock, Payload: content.Payload{Title: "Markets"}}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(p.frames) != 1 || p.frames[0].Bounds().Dx() != 128 {
		t.Fatalf("frames=%d", len(p.frames))
	}

	var sl display.Sleeper = s
	if err := sl.Sleep(context.Background()); err != nil || !p.halted {
		t.Fatalf("sleep err=%v halted=%v", err, p.halted)
	}
}

func TestSink_DrawErrorIsRenderError(t *testing.T) {
	s, _ := newSink(&fakePanel{drawErr: errors.New("nack")})

	err := s.Render(context.Background(), content.Item{Kind: content.KindNews})
	if !errors.Is(err, display.ErrRender) {
		t.Fatalf("err=%v", err)
	}
}
