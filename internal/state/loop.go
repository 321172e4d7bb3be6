package state

import (
	"fmt"

	"go.uber.org/zap"
)

// Renderer draws a state. It must not keep or modify s.
type Renderer interface {
	Render(s State) error
}

// Run renders s, waits for the next message and applies it, until a Quit
// arrives. The mailbox is closed on return so producers stop sending. Render
// failures are logged and do not stop the loop.
func Run(mailbox *Mailbox, renderer Renderer, s State, log *zap.SugaredLogger) State {
	defer mailbox.Close()

	for {
		if err := renderer.Render(s); err != nil {
			log.Warnw("render failed", "error", err)
		}

		msg, ok := mailbox.Recv()
		if !ok {
			return s
		}
		log.Debugw("dispatching message", "type", fmt.Sprintf("%T", msg), "backlog", mailbox.Len())

		next, running := Apply(s, msg)
		if !running {
			log.Infow("quit requested")
			return s
		}
		s = next
	}
}
