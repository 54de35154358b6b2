package notification

import (
	"context"
	"log/slog"
)

// Session lifecycle kinds.
const (
	KindSignedIn  = "signed_in"
	KindSignedUp  = "signed_up"
	KindLoggedOut = "logged_out"
)

// Event describes a session lifecycle change.
type Event struct {
	Kind  string
	Email string
	// Screen is the route the shell moved to.
	Screen string
}

// Notifier forwards session events to whoever listens (analytics, push,
// the host app).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LoggerNotifier writes events to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Notify logs the event. A nil notifier or logger drops it.
func (n *LoggerNotifier) Notify(_ context.Context, event Event) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("session event", "kind", event.Kind, "email", event.Email, "screen", event.Screen)
	return nil
}
