package grouplog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestColorHandler_FormatsModuleAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := (&colorHandler{w: &buf, level: slog.LevelInfo}).WithAttrs([]slog.Attr{slog.String("module", "groupdoc")})

	rec := slog.NewRecord(time.Time{}, slog.LevelInfo, "page done", 0)
	rec.AddAttrs(slog.Int("page_num", 3))
	if err := h.Handle(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "[groupdoc]") {
		t.Errorf("missing module prefix: %q", out)
	}
	if !strings.Contains(out, "page done (page_num=3)") {
		t.Errorf("missing message/attrs: %q", out)
	}
}

func TestColorHandler_LevelGate(t *testing.T) {
	var buf bytes.Buffer
	h := &colorHandler{w: &buf, level: slog.LevelWarn}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info must be filtered at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error must pass at warn level")
	}
}
