// Package shell drives the navigation flow from controller outcomes. It is
// the surface a presentation layer calls with user intents.
package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/authshell/authshell/internal/auth"
	"github.com/authshell/authshell/internal/navigation"
	"github.com/authshell/authshell/internal/notification"
	"github.com/authshell/authshell/internal/session"
)

// ErrWrongScreen is returned when an intent does not belong to the visible
// screen, e.g. submitting the sign-in form while Home is shown.
var ErrWrongScreen = errors.New("intent not available on the current screen")

// Controller is the session use-case layer.
type Controller interface {
	AttemptSignIn(ctx context.Context, creds auth.Credentials) (auth.Outcome, error)
	AttemptSignUp(ctx context.Context, in auth.SignUpInput) (auth.Outcome, error)
	ResolveInitialRoute(ctx context.Context) navigation.Route
	Logout(ctx context.Context) (navigation.Route, error)
}

// ProfileReader reads the stored profile for the Home screen.
type ProfileReader interface {
	Profile(ctx context.Context) (session.Profile, bool, error)
}

// View is the navigation state handed to the presentation layer.
type View struct {
	Screen  navigation.Route   `json:"screen"`
	History []navigation.Route `json:"history"`
}

// SubmitResult pairs an attempt outcome with the screen shown afterwards.
type SubmitResult struct {
	Outcome auth.Outcome
	View    View
}

// Options configures a Shell.
type Options struct {
	// SplashDelay is how long Launch keeps the splash screen up.
	SplashDelay time.Duration
	Notifier    notification.Notifier
	Logger      *slog.Logger
}

// Shell owns the navigation flow. It is safe for concurrent use; the lock is
// never held across a remote call or the splash delay. While a form submit is
// outstanding every other intent is refused with auth.ErrSubmissionInProgress,
// so the screen the submit started on is still current when its result lands.
type Shell struct {
	mu         sync.Mutex
	flow       *navigation.Flow
	submitting bool
	ctl      Controller
	profiles ProfileReader
	opts     Options
}

// New builds a shell on the Splash screen.
func New(ctl Controller, profiles ProfileReader, opts Options) *Shell {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = notification.NewLoggerNotifier(opts.Logger)
	}
	return &Shell{flow: navigation.NewFlow(), ctl: ctl, profiles: profiles, opts: opts}
}

// View returns the current navigation state.
func (s *Shell) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Launch waits out the splash delay and then routes to Home or Login
// depending on the persisted session flag.
func (s *Shell) Launch(ctx context.Context) (View, error) {
	if err := s.requireScreen(navigation.Splash); err != nil {
		return s.View(), err
	}

	if s.opts.SplashDelay > 0 {
		timer := time.NewTimer(s.opts.SplashDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return s.View(), ctx.Err()
		case <-timer.C:
		}
	}

	ev := navigation.EventSessionAbsent
	if s.ctl.ResolveInitialRoute(ctx) == navigation.Home {
		ev = navigation.EventSessionActive
	}
	return s.fire(ev)
}

// ShowSignUp follows the sign-up link on the Login screen.
func (s *Shell) ShowSignUp() (View, error) {
	return s.fire(navigation.EventShowSignUp)
}

// ShowSignIn follows the sign-in link on the SignUp screen.
func (s *Shell) ShowSignIn() (View, error) {
	return s.fire(navigation.EventShowSignIn)
}

// Back pops the back stack.
func (s *Shell) Back() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return s.viewLocked(), auth.ErrSubmissionInProgress
	}
	_, err := s.flow.Back()
	return s.viewLocked(), err
}

// SubmitSignIn runs the sign-in use case and moves to Home on success.
func (s *Shell) SubmitSignIn(ctx context.Context, creds auth.Credentials) (SubmitResult, error) {
	if err := s.beginSubmit(navigation.Login); err != nil {
		return SubmitResult{View: s.View()}, err
	}

	out, err := s.ctl.AttemptSignIn(ctx, creds)
	if err != nil {
		return SubmitResult{View: s.endSubmit("")}, err
	}
	if out.Kind != auth.Success {
		return SubmitResult{Outcome: out, View: s.endSubmit("")}, nil
	}

	view := s.endSubmit(navigation.EventSignedIn)
	s.notify(ctx, notification.KindSignedIn, creds.Email, view.Screen)
	return SubmitResult{Outcome: out, View: view}, nil
}

// SubmitSignUp runs the sign-up use case and returns to Login on success.
func (s *Shell) SubmitSignUp(ctx context.Context, in auth.SignUpInput) (SubmitResult, error) {
	if err := s.beginSubmit(navigation.SignUp); err != nil {
		return SubmitResult{View: s.View()}, err
	}

	out, err := s.ctl.AttemptSignUp(ctx, in)
	if err != nil {
		return SubmitResult{View: s.endSubmit("")}, err
	}
	if out.Kind != auth.Success {
		return SubmitResult{Outcome: out, View: s.endSubmit("")}, nil
	}

	view := s.endSubmit(navigation.EventSignedUp)
	s.notify(ctx, notification.KindSignedUp, in.Email, view.Screen)
	return SubmitResult{Outcome: out, View: view}, nil
}

// Logout clears the session and resets to Splash. The flow is reset even if
// clearing the store failed; that error is returned alongside the view.
func (s *Shell) Logout(ctx context.Context) (View, error) {
	if err := s.requireScreen(navigation.Home); err != nil {
		return s.View(), err
	}

	_, clearErr := s.ctl.Logout(ctx)
	view, err := s.fire(navigation.EventLoggedOut)
	if err != nil {
		return view, err
	}
	s.notify(ctx, notification.KindLoggedOut, "", view.Screen)
	return view, clearErr
}

// Greeting returns the stored profile name shown on Home, or "" when no
// profile is stored.
func (s *Shell) Greeting(ctx context.Context) (string, error) {
	p, ok, err := s.profiles.Profile(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return p.Name, nil
}

func (s *Shell) fire(ev navigation.Event) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return s.viewLocked(), auth.ErrSubmissionInProgress
	}
	_, err := s.flow.Fire(ev)
	return s.viewLocked(), err
}

func (s *Shell) requireScreen(r navigation.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkScreenLocked(r)
}

func (s *Shell) checkScreenLocked(r navigation.Route) error {
	if s.submitting {
		return auth.ErrSubmissionInProgress
	}
	if cur := s.flow.Current(); cur != r {
		return fmt.Errorf("%w: on %s, need %s", ErrWrongScreen, cur, r)
	}
	return nil
}

// beginSubmit claims the submit slot for a form shown on r.
func (s *Shell) beginSubmit(r navigation.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkScreenLocked(r); err != nil {
		return err
	}
	s.submitting = true
	return nil
}

// endSubmit releases the submit slot, applying ev first when it is set.
// The flow cannot have moved since beginSubmit, so ev always applies.
func (s *Shell) endSubmit(ev navigation.Event) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if ev != "" {
		if _, err := s.flow.Fire(ev); err != nil {
			s.opts.Logger.Error("post-submit transition rejected", slog.String("event", string(ev)), slog.Any("error", err))
		}
	}
	return s.viewLocked()
}

func (s *Shell) viewLocked() View {
	return View{Screen: s.flow.Current(), History: s.flow.History()}
}

func (s *Shell) notify(ctx context.Context, kind, email string, screen navigation.Route) {
	err := s.opts.Notifier.Notify(ctx, notification.Event{Kind: kind, Email: email, Screen: string(screen)})
	if err != nil {
		s.opts.Logger.Warn("session notification failed", slog.String("kind", kind), slog.Any("error", err))
	}
}
