package wizard

// KeyEvent is a key press as reported by the view.
type KeyEvent struct {
	Key        string `json:"key"`
	Meta       bool   `json:"meta"`
	Ctrl       bool   `json:"ctrl"`
	InTextarea bool   `json:"inTextarea"`
}

// Action is what a key press asked for.
type Action string

const (
	ActionNone   Action = "none"
	ActionNext   Action = "next"
	ActionBack   Action = "back"
	ActionFinish Action = "finish"
)

// HandleKey applies the keyboard shortcuts:
//
//	Cmd/Ctrl+Enter on the last step  finish
//	Escape                           back
//	Enter outside a textarea         next, unless on the last step
//
// Back and next are applied here; finish is only reported, because saving
// needs the store. The error is ErrGate when next was blocked.
func (c *Controller) HandleKey(ev KeyEvent) (Action, error) {
	mod := ev.Meta || ev.Ctrl

	if mod && ev.Key == "Enter" && c.step == TotalSteps {
		return ActionFinish, nil
	}

	if ev.Key == "Escape" {
		c.Back()
		return ActionBack, nil
	}

	if ev.Key == "Enter" && !ev.InTextarea {
		if c.step < TotalSteps {
			return ActionNext, c.Next()
		}
	}

	return ActionNone, nil
}
