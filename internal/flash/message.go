// internal/flash/message.go
package flash

import (
	"fmt"
	"time"

	"github.com/tamzrod/infohud/internal/content"
)

// Origin identifies the ingestion surface that produced a Message.
type Origin uint8

const (
	OriginMQTT Origin = iota + 1
	OriginWebhook
	OriginAPI
	OriginDiscord
)

func (o Origin) String() string {
	switch o {
	case OriginMQTT:
		return "mqtt"
	case OriginWebhook:
		return "webhook"
	case OriginAPI:
		return "api"
	case OriginDiscord:
		return "discord"
	}
	return fmt.Sprintf("origin(%d)", uint8(o))
}

// Message is an out-of-band item that preempts rotation.
// Owned by the Queue from Enqueue until dequeued or expired.
type Message struct {
	ID       string
	Title    string
	Text     string
	Image    []byte
	Priority int // higher preempts lower
	Origin   Origin

	ReceivedAt time.Time
	DisplayFor time.Duration
	ExpiresAt  time.Time // zero = never
}

// Expired reports whether the message may no longer be shown at now.
func (m Message) Expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && !now.Before(m.ExpiresAt)
}

// HoldUntil is the end of the on-screen hold once shown at shownAt,
// capped at expiry.
func (m Message) HoldUntil(shownAt time.Time) time.Time {
	end := shownAt.Add(m.DisplayFor)
	if !m.ExpiresAt.IsZero() && m.ExpiresAt.Before(end) {
		return m.ExpiresAt
	}
	return end
}

// Item converts the message into a renderable content item.
func (m Message) Item() content.Item {
	var lines []string
	if m.Text != "" {
		lines = []string{m.Text}
	}
	return content.Item{
		ID:   m.ID,
		Kind: content.KindFlash,
		Payload: content.Payload{
			Title: m.Title,
			Lines: lines,
			Image: m.Image,
		},
		GeneratedAt: m.ReceivedAt,
	}
}
