package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

func TestSetup_Destination(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		restore := captureStdout(t)

		var file bytes.Buffer
		m := NewSlogManager()
		m.Setup(&file, "info", nil)
		m.Logger().Info("to file")

		assert.Empty(t, restore())
		assert.Contains(t, file.String(), "to file")
	})

	t.Run("stdout without file", func(t *testing.T) {
		restore := captureStdout(t)

		m := NewSlogManager()
		m.Setup(nil, "info", nil)
		m.Logger().Info("to console")

		assert.Contains(t, restore(), "to console")
	})
}

func TestSetup_Level(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
	}{
		{"debug", true},
		{"info", false},
		{"warn", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, tt.level, nil)

			m.Logger().Debug("inspect")
			m.Logger().Error("move failed")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("inspect")))
			assert.Contains(t, buf.String(), "move failed")
		})
	}
}

func TestSetup_SecondCallSwitchesFile(t *testing.T) {
	var before, after bytes.Buffer
	m := NewSlogManager()

	m.Setup(&before, "info", nil)
	m.Logger().Info("cycle 1")
	m.Setup(&after, "info", nil)
	m.Logger().Info("cycle 2")

	assert.NotContains(t, before.String(), "cycle 2")
	assert.Contains(t, after.String(), "cycle 2")
}

func TestSetup_TimeIsRFC3339UTC(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)
	m.Logger().Info("stamp")

	assert.Regexp(t, `^time=\d{4}-\d\d-\d\dT\d\d:\d\d:\d\dZ `, buf.String())
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	assert.Equal(t, slog.Default(), NewSlogManager().Logger())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for input, want := range tests {
		assert.Equal(t, want, parseLevel(input), "level %q", input)
	}
}

func TestOTelProvider(t *testing.T) {
	m := NewSlogManager()
	require.NoError(t, m.Flush(context.Background()), "flush without provider")

	var buf bytes.Buffer
	m.Setup(&buf, "info", sdklog.NewLoggerProvider())
	m.Logger().Info("bridged")

	assert.Contains(t, buf.String(), "bridged")
	assert.NoError(t, m.Flush(context.Background()))
}

// gelfSink collects what the GELF handler writes.
type gelfSink struct {
	bytes.Buffer
	closed bool
}

func (g *gelfSink) Close() error {
	g.closed = true
	return nil
}

func TestSetup_GraylogReceivesJSON(t *testing.T) {
	var file bytes.Buffer
	sink := &gelfSink{}

	m := NewSlogManager()
	m.UseGraylogWriter(sink)
	m.Setup(&file, "info", nil)
	m.Logger().Info("trap placed", "x", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(sink.Bytes(), &entry))
	assert.Equal(t, "trap placed", entry["msg"])
	assert.Equal(t, float64(3), entry["x"])
	assert.Contains(t, file.String(), "trap placed")

	require.NoError(t, m.Close())
	assert.True(t, sink.closed)
	assert.NoError(t, m.Close(), "second close is a no-op")
}

func TestConnectGraylog_BadAddress(t *testing.T) {
	m := NewSlogManager()
	assert.Error(t, m.ConnectGraylog("no-port-here"))
}

func TestSetup_ContextProvider(t *testing.T) {
	var buf bytes.Buffer
	tracked := 2

	m := NewSlogManager()
	m.Context = func() []slog.Attr {
		return []slog.Attr{slog.Int("tracked", tracked)}
	}
	m.Setup(&buf, "info", nil)

	m.Logger().Info("first")
	tracked = 3
	m.Logger().Info("second")

	out := buf.String()
	assert.Contains(t, out, `msg=first tracked=2`)
	assert.Contains(t, out, `msg=second tracked=3`)
}

// captureStdout points osStdout at a pipe. The returned func restores it and
// returns what was written.
func captureStdout(t *testing.T) func() string {
	t.Helper()

	r, w, err := osPipe()
	require.NoError(t, err)

	prev := osStdout
	osStdout = w

	return func() string {
		w.Close()
		osStdout = prev
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		r.Close()
		return buf.String()
	}
}
