// Package navigation models the screen graph of the shell.
package navigation

import (
	"errors"
	"fmt"
)

// Route names a screen.
type Route string

const (
	Splash Route = "Splash"
	Login  Route = "Login"
	SignUp Route = "SignUp"
	Home   Route = "Home"
)

// Event is something that moves the flow from one screen to another.
type Event string

const (
	// EventSessionActive and EventSessionAbsent resolve the splash screen.
	EventSessionActive Event = "session_active"
	EventSessionAbsent Event = "session_absent"
	// EventShowSignUp and EventShowSignIn follow the links between the forms.
	EventShowSignUp Event = "show_sign_up"
	EventShowSignIn Event = "show_sign_in"
	EventSignedIn   Event = "signed_in"
	EventSignedUp   Event = "signed_up"
	EventLoggedOut  Event = "logged_out"
)

var (
	ErrInvalidTransition = errors.New("invalid navigation transition")
	ErrNoHistory         = errors.New("no screen to go back to")
)

type transition struct {
	to Route
	// reset replaces the whole history with the target screen.
	reset bool
}

var transitions = map[Route]map[Event]transition{
	Splash: {
		EventSessionActive: {to: Home},
		EventSessionAbsent: {to: Login},
	},
	Login: {
		EventShowSignUp: {to: SignUp},
		EventSignedIn:   {to: Home, reset: true},
	},
	SignUp: {
		EventShowSignIn: {to: Login},
		EventSignedUp:   {to: Login},
	},
	Home: {
		EventLoggedOut: {to: Splash, reset: true},
	},
}

// Flow is the navigation state machine with a back stack. It starts on
// Splash and has no terminal state. A Flow is not safe for concurrent use.
type Flow struct {
	history []Route
}

// NewFlow returns a flow on the Splash screen.
func NewFlow() *Flow {
	return &Flow{history: []Route{Splash}}
}

// Current returns the visible screen.
func (f *Flow) Current() Route {
	return f.history[len(f.history)-1]
}

// History returns a copy of the back stack, oldest first.
func (f *Flow) History() []Route {
	out := make([]Route, len(f.history))
	copy(out, f.history)
	return out
}

// Fire applies ev to the current screen and returns the new screen.
// Navigating to a screen already on the stack pops back to it instead of
// pushing a duplicate.
func (f *Flow) Fire(ev Event) (Route, error) {
	from := f.Current()
	t, ok := transitions[from][ev]
	if !ok {
		return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, from)
	}

	switch {
	case t.reset:
		f.history = []Route{t.to}
	default:
		if i := f.indexOf(t.to); i >= 0 {
			f.history = f.history[:i+1]
		} else {
			f.history = append(f.history, t.to)
		}
	}
	return t.to, nil
}

// Back pops the current screen.
func (f *Flow) Back() (Route, error) {
	if len(f.history) < 2 {
		return f.Current(), ErrNoHistory
	}
	f.history = f.history[:len(f.history)-1]
	return f.Current(), nil
}

func (f *Flow) indexOf(r Route) int {
	for i, h := range f.history {
		if h == r {
			return i
		}
	}
	return -1
}
