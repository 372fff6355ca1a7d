package logs

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestMultiHandlerFansOutToAllHandlers(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}}

	slog.New(h).Info("slot claimed", "slot_id", "abc")

	for name, buf := range map[string]*bytes.Buffer{"first": &a, "second": &b} {
		if !strings.Contains(buf.String(), "slot claimed") {
			t.Errorf("%s handler missing record: %q", name, buf.String())
		}
		if !strings.Contains(buf.String(), "abc") {
			t.Errorf("%s handler missing attr: %q", name, buf.String())
		}
	}
}

func TestMultiHandlerRespectsPerHandlerLevels(t *testing.T) {
	var debugOut, warnOut bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&debugOut, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&warnOut, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("Enabled(debug) = false, want true while any child accepts it")
	}

	slog.New(h).Debug("capacity check")

	if !strings.Contains(debugOut.String(), "capacity check") {
		t.Errorf("debug handler missing record: %q", debugOut.String())
	}
	if warnOut.Len() != 0 {
		t.Errorf("warn handler received debug record: %q", warnOut.String())
	}
}

func TestMultiHandlerWithAttrsAndGroup(t *testing.T) {
	var a, b bytes.Buffer
	var h slog.Handler = &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	}}

	h = h.WithAttrs([]slog.Attr{slog.String("service", "hirelink_backend")})
	h = h.WithGroup("booking")

	slog.New(h).Info("confirmed", "token_len", 64)

	for name, buf := range map[string]*bytes.Buffer{"first": &a, "second": &b} {
		out := buf.String()
		if !strings.Contains(out, "hirelink_backend") {
			t.Errorf("%s handler lost WithAttrs state: %q", name, out)
		}
		if !strings.Contains(out, "booking") {
			t.Errorf("%s handler lost WithGroup state: %q", name, out)
		}
	}
}
