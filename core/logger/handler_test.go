package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emit(t *testing.T, format logFormat, fn func(log *slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	fn(slog.New(handler))
	require.NoError(t, aw.Flush())
	require.NoError(t, aw.Close())
	return strings.TrimSpace(buf.String())
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	line := emit(t, formatKV, func(log *slog.Logger) {
		ctx := WithRID(Background(), "rid-123")
		ctx = WithUpdateMeta(ctx, 42, 7, 9)
		LogEvent(ctx, log.With("component", "app"), slog.LevelInfo, "test.event",
			slog.String("status", "ok"),
			slog.String("cause", "unit"),
		)
	})

	tokens := strings.Split(line, " ")
	require.GreaterOrEqual(t, len(tokens), 6, line)
	expected := []string{"ts=", "level=INFO", "component=app", "event=test.event", "status=ok", "rid=rid-123"}
	for i, prefix := range expected {
		assert.Truef(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, expected prefix %s", i, tokens[i], prefix)
	}
	assert.Contains(t, line, "user_id=7")
	assert.Contains(t, line, "chat_id=9")
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	line := emit(t, formatJSON, func(log *slog.Logger) {
		ctx := WithRID(Background(), "rid-json")
		LogEvent(ctx, log.With("component", "service.qazo"), slog.LevelError, "qazo.failed",
			slog.String("status", "fail"),
			Err(errors.New("boom")),
		)
	})

	require.True(t, strings.HasPrefix(line, "{"), line)
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"service.qazo"`, `"event":"qazo.failed"`, `"status":"fail"`, `"rid":"rid-json"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		require.Greaterf(t, idx, pos, "prefix %s out of order in %s", pref, line)
		pos = idx
	}

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &decoded))
	assert.Equal(t, "boom", decoded["err"])
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	raw := "123:456:789"
	kv := emit(t, formatKV, func(log *slog.Logger) {
		LogEvent(WithRID(Background(), raw), log, slog.LevelInfo, "rid.test")
	})
	assert.Contains(t, kv, "rid="+CompactRID(raw))
	assert.NotContains(t, kv, "rid_full=")

	js := emit(t, formatJSON, func(log *slog.Logger) {
		LogEvent(WithRID(Background(), raw), log, slog.LevelInfo, "rid.test")
	})
	assert.Contains(t, js, `"rid":"`+CompactRID(raw)+`"`)
	assert.Contains(t, js, `"rid_full":"`+raw+`"`)
	assert.Contains(t, js, `"ts_unix_nano"`)
}

func TestStructuredHandlerNormalizesValues(t *testing.T) {
	line := emit(t, formatKV, func(log *slog.Logger) {
		ctx := WithRunID(Background(), "sweep-1")
		LogEvent(ctx, log, slog.LevelInfo, "notifier.sweep",
			slog.Duration("duration", 1500*time.Microsecond),
			slog.String("outcome", "bogus"),
			slog.String("status", "OK"),
			slog.String("empty", ""),
			slog.Group("cron", slog.Int("entries", 2)),
		)
	})
	assert.Contains(t, line, "duration_ms=2")
	assert.Contains(t, line, "status=ok")
	assert.Contains(t, line, "run_id=sweep-1")
	assert.Contains(t, line, "cron.entries=2")
	assert.Contains(t, line, "component=app")
	assert.NotContains(t, line, "outcome=")
	assert.NotContains(t, line, "empty=")
}

func TestStructuredHandlerRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 0)
	log := slog.New(newStructuredHandler(handlerConfig{level: slog.LevelWarn, writer: aw, format: formatKV}))
	log.Info("dropped")
	log.Warn("kept")
	require.NoError(t, aw.Close())
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "event=kept")
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	got := []bool{s.Allow(), s.Allow(), s.Allow(), s.Allow()}
	assert.Equal(t, []bool{true, false, false, true}, got)

	s.Set(0, 0)
	assert.True(t, s.Allow())
}

func TestParseRatioSpec(t *testing.T) {
	cases := map[string][2]int{
		"1/10": {1, 10},
		"20":   {1, 20},
		"x/y":  {0, 0},
		"0":    {0, 0},
	}
	for in, want := range cases {
		num, den := parseRatioSpec(in)
		assert.Equal(t, want, [2]int{num, den}, in)
	}
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, "ab\tc", Sanitize("a\x00b\tc\u200b"))
	assert.Equal(t, "Бомд", SanitizeLimit("Бомдод", 4))
	assert.Equal(t, "", SanitizeLimit("anything", 0))
}

func TestCompactRID(t *testing.T) {
	assert.Equal(t, "z.a.1", CompactRID("35:10:1"))
	assert.Equal(t, "not-a-rid", CompactRID("not-a-rid"))
	assert.Equal(t, "1:x:2", CompactRID("1:x:2"))
}
