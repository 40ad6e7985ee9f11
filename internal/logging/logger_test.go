package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type panicHandler struct{}

func (panicHandler) Enabled(context.Context, slog.Level) bool  { panic("enabled") }
func (panicHandler) Handle(context.Context, slog.Record) error { panic("handle") }
func (h panicHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h panicHandler) WithGroup(string) slog.Handler           { return h }

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSafe_SwallowsPanics(t *testing.T) {
	logger := slog.New(Safe(panicHandler{}))
	assert.NotPanics(t, func() {
		logger.Error("boom", "err", errors.New("x"))
		logger.With("k", "v").WithGroup("g").Info("still fine")
	})
}

func TestSafe_SwallowsWriteErrors(t *testing.T) {
	logger := NewWithWriter(failingWriter{}, slog.LevelDebug)
	assert.NotPanics(t, func() {
		logger.Info("lost")
	})
	assert.NoError(t, logger.Handler().Handle(context.Background(), slog.Record{}))
}

func TestSafe_Idempotent(t *testing.T) {
	h := Safe(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Equal(t, h, Safe(h))
}

func TestNewWithWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)
	logger.Info("failed", "error", "nope")
	assert.Contains(t, buf.String(), "err=nope")
	assert.NotContains(t, buf.String(), "error=")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

type panicOnDerive struct{ panicHandler }

func (panicOnDerive) WithAttrs([]slog.Attr) slog.Handler { panic("attrs") }
func (panicOnDerive) WithGroup(string) slog.Handler      { panic("group") }

func TestGuard(t *testing.T) {
	assert.Nil(t, Guard(nil))

	logger := Guard(slog.New(panicOnDerive{}))
	assert.Same(t, logger, Guard(logger))
	assert.NotPanics(t, func() {
		logger.With("process_id", "p-1").WithGroup("g").Info("still fine")
	})
}
