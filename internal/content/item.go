// internal/content/item.go
package content

import (
	"fmt"
	"time"
)

// Kind identifies the source of an Item.
type Kind uint8

const (
	KindNews Kind = iota + 1
	KindStock
	KindImage
	KindWeather
	KindFlash
)

var kindNames = map[Kind]string{
	KindNews:    "news",
	KindStock:   "stock",
	KindImage:   "image",
	KindWeather: "weather",
	KindFlash:   "flash",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a config kind name to a Kind.
// Flash is not a rotation kind and is rejected.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s && k != KindFlash {
			return k, nil
		}
	}
	return 0, fmt.Errorf("content: unknown kind %q", s)
}

// Payload is the renderable body of an Item.
// Providers fill what they have; sinks render what is present.
type Payload struct {
	Title    string
	Lines    []string
	Image    []byte // encoded png/jpeg/bmp
	ImageURL string
	Link     string

	// Brief is a one-line summary other frames may quote, e.g. "72°F Sunny".
	Brief string
	// Header is drawn above the body when set.
	Header string
}

// Item is one renderable unit of content.
// Immutable once produced.
type Item struct {
	ID          string
	Kind        Kind
	Slot        string // rotation slot that produced it; empty for flashes
	Payload     Payload
	GeneratedAt time.Time
	TTL         time.Duration // 0 = no limit
}

// Expired reports whether the item is past its TTL at now.
func (it Item) Expired(now time.Time) bool {
	if it.TTL <= 0 {
		return false
	}
	return now.Sub(it.GeneratedAt) > it.TTL
}

// WithSlot returns a copy bound to a rotation slot and TTL.
func (it Item) WithSlot(slot string, ttl time.Duration) Item {
	it.Slot = slot
	if ttl > 0 {
		it.TTL = ttl
	}
	it.Payload.Lines = append([]string(nil), it.Payload.Lines...)
	return it
}
