// internal/refresh/header.go
package refresh

import (
	"time"

	"github.com/tamzrod/infohud/internal/content"
)

const headerLayout = "Mon Jan 2  15:04"

// decorate returns it as it goes to the panel. Bookkeeping keeps the
// undecorated item.
func (m *Machine) decorate(now time.Time, st *State, it content.Item) content.Item {
	if !m.cfg.Header {
		return it
	}
	it.Payload.Header = headerLine(now, it, st.Cache)
	return it
}

// headerLine is the frame header: date and time, then the brief of the
// weather being shown or else the newest unexpired cached weather item.
func headerLine(now time.Time, it content.Item, cache map[string]content.Item) string {
	line := now.Format(headerLayout)

	w, ok := it, it.Kind == content.KindWeather
	if !ok {
		for _, c := range cache {
			if c.Kind != content.KindWeather || c.Expired(now) {
				continue
			}
			if !ok || c.GeneratedAt.After(w.GeneratedAt) {
				w, ok = c, true
			}
		}
	}
	if ok && w.Payload.Brief != "" {
		line += "  " + w.Payload.Brief
	}
	return line
}
