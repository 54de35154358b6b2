package navigation

import (
	"errors"
	"reflect"
	"testing"
)

func mustFire(t *testing.T, f *Flow, ev Event, want Route) {
	t.Helper()
	got, err := f.Fire(ev)
	if err != nil {
		t.Fatalf("fire %s: %v", ev, err)
	}
	if got != want {
		t.Fatalf("fire %s: expected %s, got %s", ev, want, got)
	}
}

func TestInitialScreenIsSplash(t *testing.T) {
	if got := NewFlow().Current(); got != Splash {
		t.Fatalf("expected Splash, got %s", got)
	}
}

func TestSplashResolution(t *testing.T) {
	f := NewFlow()
	mustFire(t, f, EventSessionActive, Home)

	f = NewFlow()
	mustFire(t, f, EventSessionAbsent, Login)
}

func TestSignInReplacesHistory(t *testing.T) {
	f := NewFlow()
	mustFire(t, f, EventSessionAbsent, Login)
	mustFire(t, f, EventSignedIn, Home)

	if h := f.History(); !reflect.DeepEqual(h, []Route{Home}) {
		t.Fatalf("expected history [Home], got %v", h)
	}
	if _, err := f.Back(); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("expected no back navigation to Login, got %v", err)
	}
}

func TestFormLinksAndSignUp(t *testing.T) {
	f := NewFlow()
	mustFire(t, f, EventSessionAbsent, Login)
	mustFire(t, f, EventShowSignUp, SignUp)
	mustFire(t, f, EventShowSignIn, Login)

	if h := f.History(); !reflect.DeepEqual(h, []Route{Splash, Login}) {
		t.Fatalf("returning to Login should pop, got %v", h)
	}

	mustFire(t, f, EventShowSignUp, SignUp)
	mustFire(t, f, EventSignedUp, Login)
	if f.Current() != Login {
		t.Fatalf("sign-up must land on Login, got %s", f.Current())
	}
}

func TestLogoutReturnsToSplash(t *testing.T) {
	f := NewFlow()
	mustFire(t, f, EventSessionActive, Home)
	mustFire(t, f, EventLoggedOut, Splash)

	if h := f.History(); !reflect.DeepEqual(h, []Route{Splash}) {
		t.Fatalf("expected history [Splash], got %v", h)
	}
	// The graph is cyclic: splash resolves again.
	mustFire(t, f, EventSessionAbsent, Login)
}

func TestInvalidTransitionKeepsState(t *testing.T) {
	f := NewFlow()
	got, err := f.Fire(EventSignedIn)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if got != Splash || f.Current() != Splash {
		t.Fatalf("state changed on invalid transition: %s", f.Current())
	}

	mustFire(t, f, EventSessionActive, Home)
	if _, err := f.Fire(EventShowSignUp); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from Home, got %v", err)
	}
}

func TestBack(t *testing.T) {
	f := NewFlow()
	mustFire(t, f, EventSessionAbsent, Login)
	mustFire(t, f, EventShowSignUp, SignUp)

	got, err := f.Back()
	if err != nil || got != Login {
		t.Fatalf("back: got %s err=%v", got, err)
	}
	got, err = f.Back()
	if err != nil || got != Splash {
		t.Fatalf("back: got %s err=%v", got, err)
	}
	if _, err := f.Back(); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}
}
