// internal/refresh/decision.go
package refresh

import (
	"fmt"

	"github.com/tamzrod/infohud/internal/content"
)

// Action is the single outcome of a tick.
type Action uint8

const (
	ActionSkip Action = iota
	ActionRenderContent
	ActionRenderFlash
	ActionShutdown
)

func (a Action) String() string {
	switch a {
	case ActionSkip:
		return "skip"
	case ActionRenderContent:
		return "render_content"
	case ActionRenderFlash:
		return "render_flash"
	case ActionShutdown:
		return "shutdown"
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// Phase is the machine's position in the tick cycle.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseChecking
	PhaseDeciding
	PhaseRendering
	PhaseShutDown // terminal
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseChecking:
		return "checking"
	case PhaseDeciding:
		return "deciding"
	case PhaseRendering:
		return "rendering"
	case PhaseShutDown:
		return "shut_down"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Decision is produced fresh by every tick and never persisted.
// Content is set iff Action is RenderContent or RenderFlash, and in that
// case the item has already reached the sink.
type Decision struct {
	Action    Action
	Content   *content.Item
	Slot      string // RenderContent only
	FlashID   string
	Redisplay bool // content came from the re-display cache
	Degraded  bool // battery reading came from the last known-good cache
	Reason    string
	Err       error // failure that turned the tick into a Skip, if any
}
