// internal/display/compose/compose.go
package compose

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/tamzrod/infohud/internal/content"
	"github.com/tamzrod/infohud/internal/display"
)

func init() {
	// bmp is not registered by the standard library
	image.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
}

const (
	margin     = 4
	lineHeight = 15
	titleRule  = 2
)

// Composer lays an item out on a fixed-size grayscale frame.
type Composer struct {
	Width  int
	Height int
	Face   font.Face
}

func New(width, height int) (*Composer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("compose: invalid frame %dx%d", width, height)
	}
	return &Composer{Width: width, Height: height, Face: basicfont.Face7x13}, nil
}

// Frame renders it. A header, when set, takes the top line. Image items
// fill the rest; everything else gets a title bar, wrapped lines and, if
// present, a thumbnail on the right.
func (c *Composer) Frame(it content.Item) (*image.Gray, error) {
	dst := image.NewGray(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	var pic image.Image
	if len(it.Payload.Image) > 0 {
		img, _, err := image.Decode(bytes.NewReader(it.Payload.Image))
		if err != nil {
			return nil, fmt.Errorf("%w: decode image: %v", display.ErrRender, err)
		}
		pic = img
	}

	body := dst.Bounds()
	if h := it.Payload.Header; h != "" {
		if limit := fixed.I(c.Width - 2*margin); font.MeasureString(c.Face, h) > limit {
			h = h[:cut(c.Face, h, limit)]
		}
		c.drawLine(dst, margin, margin, h)
		y := margin + lineHeight
		draw.Draw(dst, image.Rect(0, y, c.Width, y+1), image.Black, image.Point{}, draw.Src)
		body.Min.Y = y + 1
	}

	if pic != nil && (it.Kind == content.KindImage || (it.Payload.Title == "" && len(it.Payload.Lines) == 0)) {
		fit(dst, body, pic)
		return dst, nil
	}

	text := body.Inset(margin)
	if pic != nil {
		thumb := image.Rect(c.Width*2/3, text.Min.Y, c.Width-margin, c.Height-margin)
		fit(dst, thumb, pic)
		text.Max.X = thumb.Min.X - margin
	}

	y := text.Min.Y
	if it.Payload.Title != "" {
		for _, l := range wrap(c.Face, it.Payload.Title, text.Dx()) {
			if y+lineHeight > text.Max.Y {
				break
			}
			c.drawLine(dst, text.Min.X, y, l)
			y += lineHeight
		}
		rule := image.Rect(text.Min.X, y+1, text.Max.X, y+1+titleRule)
		draw.Draw(dst, rule, image.Black, image.Point{}, draw.Src)
		y += titleRule + margin
	}

	for _, para := range it.Payload.Lines {
		for _, l := range wrap(c.Face, para, text.Dx()) {
			if y+lineHeight > text.Max.Y {
				return dst, nil
			}
			c.drawLine(dst, text.Min.X, y, l)
			y += lineHeight
		}
	}
	return dst, nil
}

// PNG renders it and encodes the frame.
func (c *Composer) PNG(it content.Item) ([]byte, error) {
	frame, err := c.Frame(it)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", display.ErrRender, err)
	}
	return buf.Bytes(), nil
}

func (c *Composer) drawLine(dst draw.Image, x, y int, s string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: c.Face,
		Dot:  fixed.P(x, y+c.Face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// fit scales src into r keeping its aspect ratio, centered.
func fit(dst draw.Image, r image.Rectangle, src image.Image) {
	sb := src.Bounds()
	if sb.Empty() || r.Empty() {
		return
	}
	w, h := r.Dx(), sb.Dy()*r.Dx()/sb.Dx()
	if h > r.Dy() {
		w, h = sb.Dx()*r.Dy()/sb.Dy(), r.Dy()
	}
	x := r.Min.X + (r.Dx()-w)/2
	y := r.Min.Y + (r.Dy()-h)/2
	draw.CatmullRom.Scale(dst, image.Rect(x, y, x+w, y+h), src, sb, draw.Over, nil)
}

// wrap breaks s into lines no wider than width pixels.
// A single word wider than width is hard-cut.
func wrap(face font.Face, s string, width int) []string {
	limit := fixed.I(width)
	var out []string
	var cur string

	for _, word := range strings.Fields(s) {
		cand := word
		if cur != "" {
			cand = cur + " " + word
		}
		if font.MeasureString(face, cand) <= limit {
			cur = cand
			continue
		}
		if cur != "" {
			out = append(out, cur)
		}
		for font.MeasureString(face, word) > limit && len(word) > 1 {
			n := cut(face, word, limit)
			out = append(out, word[:n])
			word = word[n:]
		}
		cur = word
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func cut(face font.Face, s string, limit fixed.Int26_6) int {
	n := 1
	for i := range s {
		if i == 0 {
			continue
		}
		if font.MeasureString(face, s[:i]) > limit {
			break
		}
		n = i
	}
	return n
}
