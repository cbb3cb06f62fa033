// internal/ingest/ingest.go
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/infohud/internal/flash"
)

// ErrInvalidPayload is wrapped by every rejected inbound payload.
var ErrInvalidPayload = errors.New("ingest: invalid payload")

// Enqueuer is the only queue operation ingestion surfaces need.
type Enqueuer interface {
	Enqueue(m flash.Message) error
}

// Payload is the JSON shape accepted by every surface.
//
//	{"id":"...","title":"...","text":"...","image":"<base64>",
//	 "priority":7,"display_ms":60000,"ttl_ms":3600000}
type Payload struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title,omitempty"`
	Text      string `json:"text,omitempty"`
	Image     []byte `json:"image,omitempty"`
	Priority  int    `json:"priority"`
	DisplayMs int    `json:"display_ms,omitempty"`
	TTLMs     int    `json:"ttl_ms,omitempty"`
}

// Decoder turns payloads into queue messages, filling defaults.
type Decoder struct {
	DefaultDisplay time.Duration
	DefaultTTL     time.Duration
	Now            func() time.Time
}

// Decode parses a JSON payload.
func (d Decoder) Decode(data []byte, origin flash.Origin) (flash.Message, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return flash.Message{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return d.Build(p, origin)
}

// Build validates p and stamps it. A missing id gets a random UUID.
func (d Decoder) Build(p Payload, origin flash.Origin) (flash.Message, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Text = strings.TrimSpace(p.Text)

	if p.Title == "" && p.Text == "" && len(p.Image) == 0 {
		return flash.Message{}, fmt.Errorf("%w: title, text or image required", ErrInvalidPayload)
	}
	if p.DisplayMs < 0 || p.TTLMs < 0 {
		return flash.Message{}, fmt.Errorf("%w: durations must be >= 0", ErrInvalidPayload)
	}

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	at := now()

	id := strings.TrimSpace(p.ID)
	if id == "" {
		id = uuid.NewString()
	}

	display := d.DefaultDisplay
	if p.DisplayMs > 0 {
		display = time.Duration(p.DisplayMs) * time.Millisecond
	}
	ttl := d.DefaultTTL
	if p.TTLMs > 0 {
		ttl = time.Duration(p.TTLMs) * time.Millisecond
	}

	m := flash.Message{
		ID:         id,
		Title:      p.Title,
		Text:       p.Text,
		Image:      p.Image,
		Priority:   p.Priority,
		Origin:     origin,
		ReceivedAt: at,
		DisplayFor: display,
	}
	if ttl > 0 {
		m.ExpiresAt = at.Add(ttl)
	}
	return m, nil
}
