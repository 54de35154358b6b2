package notification

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLoggerNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := n.Notify(context.Background(), Event{Kind: KindSignedIn, Email: "a@b.com", Screen: "Home"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"kind=signed_in", "email=a@b.com", "screen=Home"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestNilLoggerNotifier(t *testing.T) {
	var n *LoggerNotifier
	if err := n.Notify(context.Background(), Event{Kind: KindLoggedOut}); err != nil {
		t.Fatalf("nil notifier should drop events, got %v", err)
	}
}
