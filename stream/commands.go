package stream

import (
	"fmt"
	"log/slog"
)

// Controller is the part of a running game clients may drive.
type Controller interface {
	Paused() bool
	TogglePause()
	Reset() error
	SetSpeed(n int)
}

// Apply performs cmd on c.
func Apply(c Controller, cmd Command) error {
	switch cmd.Action {
	case ActionPause:
		if !c.Paused() {
			c.TogglePause()
		}
	case ActionResume:
		if c.Paused() {
			c.TogglePause()
		}
	case ActionReset:
		return c.Reset()
	case ActionSpeed:
		c.SetSpeed(cmd.Speed)
	default:
		return fmt.Errorf("stream: unknown action %q", cmd.Action)
	}
	return nil
}

// Drain applies every queued command without blocking.
func (h *Hub) Drain(c Controller) {
	if h == nil {
		return
	}
	for {
		select {
		case cmd := <-h.commands:
			if err := Apply(c, cmd); err != nil {
				slog.Warn("stream command failed", "action", cmd.Action, "error", err)
			}
		default:
			return
		}
	}
}
