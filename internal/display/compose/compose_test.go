// internal/display/compose/compose_test.go
package compose

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/font/basicfont"

	"github.com/tamzrod/infohud/internal/content"
	"github.com/tamzrod/infohud/internal/display"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h)) // all black
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func darkPixels(g *image.Gray) int {
	n := 0
	for _, p := range g.Pix {
		if p < 128 {
			n++
		}
	}
	return n
}

func TestFrame_TextItem(t *testing.T) {
	c, err := New(296, 152)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	frame, err := c.Frame(content.Item{
		Kind: content.KindNews,
		Payload: content.Payload{
			Title: "Headline",
			Lines: []string{"first paragraph of the story", "second paragraph"},
		},
	})
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if frame.Bounds().Dx() != 296 || frame.Bounds().Dy() != 152 {
		t.Fatalf("bounds=%v", frame.Bounds())
	}
	if darkPixels(frame) == 0 {
		t.Fatalf("nothing drawn")
	}
	// bottom right corner stays blank
	if frame.GrayAt(295, 151) != (color.Gray{Y: 0xff}) {
		t.Fatalf("corner not white")
	}
}

func TestFrame_ImageFillsFrame(t *testing.T) {
	c, _ := New(100, 50)

	frame, err := c.Frame(content.Item{
		Kind:    content.KindImage,
		Payload: content.Payload{Title: "cat.png", Image: pngOf(t, 200, 100)},
	})
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if frame.GrayAt(50, 25).Y > 10 {
		t.Fatalf("image not scaled into frame")
	}
}

func TestFrame_BadImage(t *testing.T) {
	c, _ := New(100, 50)

	_, err := c.Frame(content.Item{
		Kind:    content.KindImage,
		Payload: content.Payload{Image: []byte("not an image")},
	})
	if !errors.Is(err, display.ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
}

func TestPNG_Decodes(t *testing.T) {
	c, _ := New(64, 32)

	b, err := c.PNG(content.Item{Kind: content.KindFlash, Payload: content.Payload{Title: "hi"}})
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 64 {
		t.Fatalf("bounds=%v", img.Bounds())
	}
}

func TestWrap(t *testing.T) {
	face := basicfont.Face7x13 // 7px advance

	got := wrap(face, "aaa bbb ccc", 7*7)
	if len(got) != 2 || got[0] != "aaa bbb" || got[1] != "ccc" {
		t.Fatalf("wrap=%q", got)
	}

	got = wrap(face, "abcdefghij", 7*4)
	if len(got) != 3 || got[0] != "abcd" || got[2] != "ij" {
		t.Fatalf("hard cut=%q", got)
	}
}

func TestNew_RejectsEmptyFrame(t *testing.T) {
	if _, err := New(0, 10); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFrame_HeaderBand(t *testing.T) {
	c, _ := New(296, 152)

	plain, err := c.Frame(content.Item{Kind: content.KindNews, Payload: content.Payload{Title: "Headline"}})
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	withHeader, err := c.Frame(content.Item{Kind: content.KindNews, Payload: content.Payload{
		Title:  "Headline",
		Header: "Wed May 1  09:00  64°F Sunny",
	}})
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}

	// full-width rule under the header line
	y := margin + lineHeight
	if withHeader.GrayAt(c.Width-1, y).Y != 0 {
		t.Fatalf("header rule missing")
	}
	if plain.GrayAt(c.Width-1, y).Y == 0 {
		t.Fatalf("rule drawn without header")
	}
	if darkPixels(withHeader) <= darkPixels(plain) {
		t.Fatalf("header text not drawn")
	}
}

func TestFrame_HeaderAboveFullImage(t *testing.T) {
	c, _ := New(100, 60)

	frame, err := c.Frame(content.Item{
		Kind:    content.KindImage,
		Payload: content.Payload{Image: pngOf(t, 200, 100), Header: "Wed 09:00"},
	})
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	// the header line keeps a white background right of its text
	if frame.GrayAt(98, 2).Y != 0xff {
		t.Fatalf("image drawn over header")
	}
	if frame.GrayAt(50, 45).Y > 10 {
		t.Fatalf("image not drawn below header")
	}
}

func TestFrame_LongHeaderTruncated(t *testing.T) {
	c, _ := New(60, 40)
	long := "Wed May 1  09:00  64°F Partly cloudy with a chance of rain"
	if _, err := c.Frame(content.Item{Kind: content.KindNews, Payload: content.Payload{Header: long}}); err != nil {
		t.Fatalf("Frame: %v", err)
	}
}
