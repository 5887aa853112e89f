package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	for _, cfg := range []LogConfig{
		{},
		{Level: LevelDebug, Format: "console", OutputPaths: []string{"stdout"}},
		{Level: "WARN", Format: "json"},
	} {
		l, err := NewLogger(cfg)
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func TestNewLoggerErrors(t *testing.T) {
	_, err := NewLogger(LogConfig{Level: "verbose"})
	assert.Error(t, err)
	_, err = NewLogger(LogConfig{Format: "xml"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"Info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"ERROR": zapcore.ErrorLevel,
	}
	for s, want := range cases {
		got, err := ParseLevel(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
}

func TestFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core).Named("pipeline").With(String("run", "a"))
	l.Info("frame done",
		Int("frame", 3),
		Int64("hits", 7),
		Float64("cutoff", 6.5),
		Bool("ordered", true),
		Duration("took", time.Second),
		Strings("rules", []string{"HBDonor"}),
		Err(errors.New("boom")),
		Any("other", struct{}{}),
	)
	l.Debug("quiet")

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "pipeline", entry.LoggerName)
	ctx := entry.ContextMap()
	assert.Equal(t, "a", ctx["run"])
	assert.Equal(t, int64(3), ctx["frame"])
	assert.Equal(t, 6.5, ctx["cutoff"])
	assert.Equal(t, true, ctx["ordered"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestNopAndDefault(t *testing.T) {
	n := NewNopLogger()
	n.Debug("x")
	n.Info("x")
	n.Warn("x")
	n.Error("x")
	assert.Equal(t, n, n.With(String("a", "b")).Named("c"))

	old := Default()
	defer SetDefault(old)
	core, logs := observer.New(zapcore.InfoLevel)
	SetDefault(NewLoggerFromCore(core))
	SetDefault(nil)
	Default().Warn("careful")
	assert.Equal(t, 1, logs.FilterMessage("careful").Len())
	assert.Equal(t, "<nil>", Err(nil).Value)
}
