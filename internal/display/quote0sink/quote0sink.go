// internal/display/quote0sink/quote0sink.go
package quote0sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/1set/quote0"

	"github.com/tamzrod/infohud/internal/content"
	"github.com/tamzrod/infohud/internal/display"
	"github.com/tamzrod/infohud/internal/display/compose"
)

// Quote/0 panels are 296x152.
const (
	Width  = 296
	Height = 152
)

// imageSender is the part of *quote0.Client the sink uses.
type imageSender interface {
	SendImage(ctx context.Context, payload quote0.ImageRequest) (*quote0.APIResponse, error)
}

// Sink pushes composed frames to a Quote/0 e-ink panel over its REST API.
type Sink struct {
	client   imageSender
	composer *compose.Composer
}

// New builds a sink for one device. baseURL may be empty for the public API.
// Extra options are applied after the defaults.
func New(token, deviceID, baseURL string, extra ...quote0.ClientOption) (*Sink, error) {
	opts := []quote0.ClientOption{quote0.WithDefaultDeviceID(deviceID)}
	if baseURL != "" {
		opts = append(opts, quote0.WithBaseURL(baseURL))
	}
	opts = append(opts, extra...)
	client, err := quote0.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("quote0sink: %w", err)
	}
	c, err := compose.New(Width, Height)
	if err != nil {
		return nil, err
	}
	return &Sink{client: client, composer: c}, nil
}

func (s *Sink) Render(ctx context.Context, it content.Item) error {
	b, err := s.composer.PNG(it)
	if err != nil {
		return err
	}

	_, err = s.client.SendImage(ctx, quote0.ImageRequest{
		RefreshNow: quote0.Bool(true),
		ImageBytes: b,
		Link:       it.Payload.Link,
		Border:     quote0.BorderWhite,
	})
	if err != nil {
		if quote0.IsRateLimitError(err) {
			return fmt.Errorf("%w: quote0 rate limited: %v", display.ErrRender, err)
		}
		var apiErr *quote0.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("%w: quote0 status %d: %v", display.ErrRender, apiErr.StatusCode, err)
		}
		return fmt.Errorf("%w: quote0: %v", display.ErrRender, err)
	}
	return nil
}
