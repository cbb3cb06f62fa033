// internal/content/images/images.go
package images

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/infohud/internal/content"
)

var imageExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
}

// Provider cycles through the image files of one directory in name order.
// The directory is re-listed on every fetch so files can be added at runtime.
type Provider struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	next int
}

func New(dir string) (*Provider, error) {
	if dir == "" {
		return nil, errors.New("images: dir required")
	}
	return &Provider{dir: dir, now: time.Now}, nil
}

func (p *Provider) Kind() content.Kind { return content.KindImage }

func (p *Provider) Fetch(ctx context.Context) (content.Item, error) {
	if err := ctx.Err(); err != nil {
		return content.Item{}, fmt.Errorf("%w: images: %v", content.ErrProviderUnavailable, err)
	}

	files, err := p.list()
	if err != nil {
		return content.Item{}, fmt.Errorf("%w: images: %v", content.ErrProviderUnavailable, err)
	}
	if len(files) == 0 {
		return content.Item{}, fmt.Errorf("%w: images: no images in %s", content.ErrProviderUnavailable, p.dir)
	}

	p.mu.Lock()
	idx := p.next % len(files)
	p.next = idx + 1
	p.mu.Unlock()

	name := files[idx]
	b, err := os.ReadFile(filepath.Join(p.dir, name))
	if err != nil {
		return content.Item{}, fmt.Errorf("%w: images: %v", content.ErrProviderUnavailable, err)
	}

	return content.Item{
		ID:   uuid.NewString(),
		Kind: content.KindImage,
		Payload: content.Payload{
			Title: name,
			Image: b,
		},
		GeneratedAt: p.now(),
	}, nil
}

func (p *Provider) list() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExt[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
