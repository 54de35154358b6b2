// Package auth implements the sign-in and sign-up use cases on top of the
// remote client and the session store.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/authshell/authshell/internal/navigation"
	"github.com/authshell/authshell/internal/remote"
	"github.com/authshell/authshell/internal/session"
	"github.com/authshell/authshell/internal/validation"
)

// ErrSubmissionInProgress is returned when a submit arrives while another
// one is still outstanding.
var ErrSubmissionInProgress = errors.New("a submission is already in progress")

// Authenticator is the remote side of sign-in and sign-up.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) remote.Result
	SignUp(ctx context.Context, req remote.SignUpRequest) remote.Result
}

// SessionStore persists session state.
type SessionStore interface {
	SetLoggedIn(ctx context.Context, loggedIn bool) error
	IsLoggedIn(ctx context.Context) (bool, error)
	SaveProfile(ctx context.Context, p session.Profile) error
	Clear(ctx context.Context) error
}

// Controller orchestrates validation, the remote call and persistence for
// one user action at a time.
type Controller struct {
	remote   Authenticator
	store    SessionStore
	logger   *slog.Logger
	inFlight atomic.Bool
}

// NewController wires a controller.
func NewController(remote Authenticator, store SessionStore, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{remote: remote, store: store, logger: logger}
}

// AttemptSignIn validates creds, calls the remote service and sets the
// session flag on success. Invalid input never reaches the remote service.
func (c *Controller) AttemptSignIn(ctx context.Context, creds Credentials) (Outcome, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return Outcome{}, ErrSubmissionInProgress
	}
	defer c.inFlight.Store(false)

	if errs := validation.ValidateSignIn(creds.Email, creds.Password); !errs.Valid() {
		return invalid(errs), nil
	}

	log := c.logger.With(slog.String("attempt_id", uuid.NewString()), slog.String("op", "sign_in"))
	res := c.remote.SignIn(ctx, creds.Email, creds.Password)
	if res.Status != remote.Authenticated {
		log.Info("sign-in failed", slog.String("result", res.Status.String()), slog.Any("error", res.Err))
		return failed(res.Message), nil
	}

	out := Outcome{Kind: Success}
	if err := c.store.SetLoggedIn(ctx, true); err != nil {
		log.Error("sign-in succeeded but session flag was not persisted", slog.Any("error", err))
		out.StorageErr = err
	}
	log.Info("sign-in succeeded")
	return out, nil
}

// AttemptSignUp validates in, creates the account remotely and persists the
// whole profile on success. Nothing is persisted on failure.
func (c *Controller) AttemptSignUp(ctx context.Context, in SignUpInput) (Outcome, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return Outcome{}, ErrSubmissionInProgress
	}
	defer c.inFlight.Store(false)

	errs := validation.ValidateSignUp(in.Name, in.MobileNumber, in.Email, in.Password, in.ConfirmPassword)
	if !errs.Valid() {
		return invalid(errs), nil
	}

	log := c.logger.With(slog.String("attempt_id", uuid.NewString()), slog.String("op", "sign_up"))
	res := c.remote.SignUp(ctx, remote.SignUpRequest{
		Email:        in.Email,
		Password:     in.Password,
		Name:         in.Name,
		MobileNumber: in.MobileNumber,
	})
	if res.Status != remote.Authenticated {
		log.Info("sign-up failed", slog.String("result", res.Status.String()), slog.Any("error", res.Err))
		return failed(res.Message), nil
	}

	out := Outcome{Kind: Success}
	err := c.store.SaveProfile(ctx, session.Profile{
		Name:         in.Name,
		Email:        in.Email,
		Password:     in.Password,
		MobileNumber: in.MobileNumber,
	})
	if err != nil {
		log.Error("sign-up succeeded but profile was not persisted", slog.Any("error", err))
		out.StorageErr = err
	}
	log.Info("sign-up succeeded")
	return out, nil
}

// ResolveInitialRoute picks the first screen after the splash. An unreadable
// store is treated as signed out.
func (c *Controller) ResolveInitialRoute(ctx context.Context) navigation.Route {
	loggedIn, err := c.store.IsLoggedIn(ctx)
	if err != nil {
		c.logger.Error("failed to read login status", slog.Any("error", err))
		return navigation.Login
	}
	if loggedIn {
		return navigation.Home
	}
	return navigation.Login
}

// Logout clears every stored session key. The route is Splash even when
// clearing fails; the error is returned for the caller to surface.
func (c *Controller) Logout(ctx context.Context) (navigation.Route, error) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("failed to clear session", slog.Any("error", err))
		return navigation.Splash, err
	}
	c.logger.Info("logged out")
	return navigation.Splash, nil
}
