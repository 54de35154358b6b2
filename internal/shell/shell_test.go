package shell

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/authshell/authshell/internal/auth"
	"github.com/authshell/authshell/internal/kv"
	"github.com/authshell/authshell/internal/logging"
	"github.com/authshell/authshell/internal/navigation"
	"github.com/authshell/authshell/internal/notification"
	"github.com/authshell/authshell/internal/remote"
	"github.com/authshell/authshell/internal/session"
)

type recordingNotifier struct {
	events []notification.Event
}

func (r *recordingNotifier) Notify(_ context.Context, ev notification.Event) error {
	r.events = append(r.events, ev)
	return nil
}

type fixture struct {
	shell    *Shell
	store    *session.Store
	notifier *recordingNotifier
	calls    *atomic.Int32
	body     *atomic.Value
}

func newFixture(t *testing.T, delay time.Duration) *fixture {
	t.Helper()
	calls := &atomic.Int32{}
	body := &atomic.Value{}
	body.Store(`{"status":200}`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body.Load().(string)))
	}))
	t.Cleanup(srv.Close)

	store, err := session.NewStore(kv.NewMemory(), session.PasswordPlain)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	logger := logging.Discard()
	ctl := auth.NewController(remote.NewClient(srv.URL, 0), store, logger)
	n := &recordingNotifier{}
	sh := New(ctl, store, Options{SplashDelay: delay, Notifier: n, Logger: logger})
	return &fixture{shell: sh, store: store, notifier: n, calls: calls, body: body}
}

func TestLaunchWithoutSessionShowsLogin(t *testing.T) {
	f := newFixture(t, 0)
	view, err := f.shell.Launch(context.Background())
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if view.Screen != navigation.Login {
		t.Fatalf("expected Login, got %s", view.Screen)
	}
}

func TestLaunchWithSessionShowsHome(t *testing.T) {
	f := newFixture(t, 0)
	if err := f.store.SetLoggedIn(context.Background(), true); err != nil {
		t.Fatalf("set logged in: %v", err)
	}
	view, err := f.shell.Launch(context.Background())
	if err != nil || view.Screen != navigation.Home {
		t.Fatalf("expected Home, got %s err=%v", view.Screen, err)
	}
}

func TestLaunchHonoursContextDuringSplash(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	view, err := f.shell.Launch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if view.Screen != navigation.Splash {
		t.Fatalf("expected to stay on Splash, got %s", view.Screen)
	}
}

func TestSignInScenario(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	if _, err := f.shell.Launch(ctx); err != nil {
		t.Fatalf("launch: %v", err)
	}

	res, err := f.shell.SubmitSignIn(ctx, auth.Credentials{Email: "a@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Outcome.Kind != auth.Success {
		t.Fatalf("expected success, got %+v", res.Outcome)
	}
	if !reflect.DeepEqual(res.View.History, []navigation.Route{navigation.Home}) {
		t.Fatalf("expected history [Home], got %v", res.View.History)
	}
	if in, _ := f.store.IsLoggedIn(ctx); !in {
		t.Fatalf("expected session flag")
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0].Kind != notification.KindSignedIn {
		t.Fatalf("expected signed_in event, got %+v", f.notifier.events)
	}
}

func TestSignInRejectedStaysOnLogin(t *testing.T) {
	f := newFixture(t, 0)
	f.body.Store(`{"status":401,"message":"Invalid credentials"}`)
	ctx := context.Background()
	f.shell.Launch(ctx)

	res, err := f.shell.SubmitSignIn(ctx, auth.Credentials{Email: "a@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Outcome.Kind != auth.Failed || res.Outcome.Message != "Invalid credentials" {
		t.Fatalf("unexpected outcome %+v", res.Outcome)
	}
	if res.View.Screen != navigation.Login {
		t.Fatalf("expected Login, got %s", res.View.Screen)
	}
	if in, _ := f.store.IsLoggedIn(ctx); in {
		t.Fatalf("flag must stay unset")
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("no event expected, got %+v", f.notifier.events)
	}
}

func TestSignUpMismatchIssuesNoRequest(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.shell.Launch(ctx)
	if _, err := f.shell.ShowSignUp(); err != nil {
		t.Fatalf("show sign-up: %v", err)
	}

	res, err := f.shell.SubmitSignUp(ctx, auth.SignUpInput{
		Name: "Ann", MobileNumber: "0123456789", Email: "ann@example.com",
		Password: "secret", ConfirmPassword: "nope",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Outcome.Kind != auth.Invalid {
		t.Fatalf("expected invalid, got %+v", res.Outcome)
	}
	if f.calls.Load() != 0 {
		t.Fatalf("expected no remote call, got %d", f.calls.Load())
	}
	if res.View.Screen != navigation.SignUp {
		t.Fatalf("expected to stay on SignUp, got %s", res.View.Screen)
	}
}

func TestFullJourney(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.shell.Launch(ctx)
	f.shell.ShowSignUp()

	res, err := f.shell.SubmitSignUp(ctx, auth.SignUpInput{
		Name: "Ann", MobileNumber: "0123456789", Email: "ann@example.com",
		Password: "secret", ConfirmPassword: "secret",
	})
	if err != nil || res.Outcome.Kind != auth.Success {
		t.Fatalf("sign-up: %+v err=%v", res.Outcome, err)
	}
	if res.View.Screen != navigation.Login {
		t.Fatalf("sign-up should land on Login, got %s", res.View.Screen)
	}

	if _, err := f.shell.SubmitSignIn(ctx, auth.Credentials{Email: "ann@example.com", Password: "secret"}); err != nil {
		t.Fatalf("sign-in: %v", err)
	}
	name, err := f.shell.Greeting(ctx)
	if err != nil || name != "Ann" {
		t.Fatalf("greeting: %q err=%v", name, err)
	}

	view, err := f.shell.Logout(ctx)
	if err != nil || view.Screen != navigation.Splash {
		t.Fatalf("logout: %s err=%v", view.Screen, err)
	}
	if name, _ := f.shell.Greeting(ctx); name != "" {
		t.Fatalf("greeting after logout should be empty, got %q", name)
	}

	view, err = f.shell.Launch(ctx)
	if err != nil || view.Screen != navigation.Login {
		t.Fatalf("relaunch: %s err=%v", view.Screen, err)
	}

	kinds := []string{}
	for _, ev := range f.notifier.events {
		kinds = append(kinds, ev.Kind)
	}
	want := []string{notification.KindSignedUp, notification.KindSignedIn, notification.KindLoggedOut}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("expected events %v, got %v", want, kinds)
	}
}

func TestIntentsOnWrongScreen(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	if _, err := f.shell.SubmitSignIn(ctx, auth.Credentials{}); !errors.Is(err, ErrWrongScreen) {
		t.Fatalf("sign-in on Splash: expected ErrWrongScreen, got %v", err)
	}
	if _, err := f.shell.Logout(ctx); !errors.Is(err, ErrWrongScreen) {
		t.Fatalf("logout on Splash: expected ErrWrongScreen, got %v", err)
	}
	if _, err := f.shell.ShowSignIn(); !errors.Is(err, navigation.ErrInvalidTransition) {
		t.Fatalf("show sign-in on Splash: expected ErrInvalidTransition, got %v", err)
	}

	f.shell.Launch(ctx)
	if _, err := f.shell.Launch(ctx); !errors.Is(err, ErrWrongScreen) {
		t.Fatalf("second launch: expected ErrWrongScreen, got %v", err)
	}
}

// blockingController holds AttemptSignIn until release is closed.
type blockingController struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingController) AttemptSignIn(ctx context.Context, _ auth.Credentials) (auth.Outcome, error) {
	close(b.entered)
	<-b.release
	return auth.Outcome{Kind: auth.Success}, nil
}

func (b *blockingController) AttemptSignUp(context.Context, auth.SignUpInput) (auth.Outcome, error) {
	return auth.Outcome{Kind: auth.Success}, nil
}

func (b *blockingController) ResolveInitialRoute(context.Context) navigation.Route {
	return navigation.Login
}

func (b *blockingController) Logout(context.Context) (navigation.Route, error) {
	return navigation.Splash, nil
}

func TestIntentsRefusedWhileSignInOutstanding(t *testing.T) {
	ctl := &blockingController{entered: make(chan struct{}), release: make(chan struct{})}
	n := &recordingNotifier{}
	sh := New(ctl, nil, Options{Notifier: n, Logger: logging.Discard()})
	ctx := context.Background()
	if _, err := sh.Launch(ctx); err != nil {
		t.Fatalf("launch: %v", err)
	}

	type submitted struct {
		res SubmitResult
		err error
	}
	done := make(chan submitted, 1)
	go func() {
		res, err := sh.SubmitSignIn(ctx, auth.Credentials{Email: "a@b.com", Password: "secret"})
		done <- submitted{res, err}
	}()
	<-ctl.entered

	if _, err := sh.ShowSignUp(); !errors.Is(err, auth.ErrSubmissionInProgress) {
		t.Fatalf("show sign-up mid-submit: expected ErrSubmissionInProgress, got %v", err)
	}
	if _, err := sh.Back(); !errors.Is(err, auth.ErrSubmissionInProgress) {
		t.Fatalf("back mid-submit: expected ErrSubmissionInProgress, got %v", err)
	}
	if _, err := sh.SubmitSignIn(ctx, auth.Credentials{Email: "a@b.com", Password: "secret"}); !errors.Is(err, auth.ErrSubmissionInProgress) {
		t.Fatalf("second submit: expected ErrSubmissionInProgress, got %v", err)
	}
	if got := sh.View().Screen; got != navigation.Login {
		t.Fatalf("expected Login while submitting, got %s", got)
	}

	close(ctl.release)
	out := <-done
	if out.err != nil {
		t.Fatalf("submit: %v", out.err)
	}
	if !reflect.DeepEqual(out.res.View.History, []navigation.Route{navigation.Home}) {
		t.Fatalf("expected history [Home], got %v", out.res.View.History)
	}
	if len(n.events) != 1 || n.events[0].Screen != string(navigation.Home) {
		t.Fatalf("expected one signed_in event on Home, got %+v", n.events)
	}

	if _, err := sh.Logout(ctx); err != nil {
		t.Fatalf("logout after submit: %v", err)
	}
}
