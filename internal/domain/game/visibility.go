package game

import "github.com/okian/reflex/internal/domain/clock"

// FocusSource delivers host focus/backgrounding signals. Subscribe invokes
// fn with false when the host loses focus and true when it regains it.
type FocusSource interface {
	Subscribe(fn func(visible bool)) clock.CancelFunc
}

// FocusSourceFunc adapts a subscription function to the FocusSource
// interface.
type FocusSourceFunc func(fn func(visible bool)) clock.CancelFunc

func (f FocusSourceFunc) Subscribe(fn func(visible bool)) clock.CancelFunc {
	return f(fn)
}

// FocusMonitor aborts a live session when the host is backgrounded. It has
// no effect while the session is idle or already terminal; Session.Abort
// enforces that, so the monitor itself stays stateless.
type FocusMonitor struct {
	cancel clock.CancelFunc
}

// WatchFocus subscribes sess to src's backgrounding signal.
func WatchFocus(src FocusSource, sess *Session) *FocusMonitor {
	m := &FocusMonitor{}
	m.cancel = src.Subscribe(func(visible bool) {
		if !visible {
			sess.Abort(TerminalBackgrounded)
		}
	})
	return m
}

// Stop detaches the monitor from its source.
func (m *FocusMonitor) Stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}
