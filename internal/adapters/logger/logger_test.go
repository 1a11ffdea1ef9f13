package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"wg-parser-service/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPoster struct {
	mu    sync.Mutex
	tags  []string
	posts []port.Fields
}

func (r *recordingPoster) Post(tag string, message interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = append(r.tags, tag)
	r.posts = append(r.posts, message.(port.Fields))
	return nil
}

func (r *recordingPoster) Close() error { return nil }

func TestSlogAdapter_JSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, IsJSON: true, Level: slog.LevelDebug})

	logger.WithFields(port.Fields{"city": "berlin"}).Error("collect failed", errors.New("boom"), port.Fields{"page": 3})

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "collect failed", record["msg"])
	assert.Equal(t, "berlin", record["city"])
	assert.Equal(t, float64(3), record["page"])
	assert.Equal(t, "boom", record["error"])
}

func TestSlogAdapter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, IsJSON: true, Level: slog.LevelWarn})

	logger.Info("skipped", nil)
	assert.Empty(t, buf.String())

	logger.Warn("kept", nil)
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}

func TestFluentLoggerAdapter(t *testing.T) {
	poster := &recordingPoster{}
	logger, err := NewFluentLoggerAdapter(poster, slog.LevelInfo)
	require.NoError(t, err)

	scoped := logger.WithFields(port.Fields{"component": "collector"})
	scoped.Debug("below min level", nil)
	scoped.Error("fetch failed", errors.New("timeout"), port.Fields{"page": 1})

	require.Len(t, poster.posts, 1)
	assert.Equal(t, "error", poster.tags[0])
	post := poster.posts[0]
	assert.Equal(t, "collector", post["component"])
	assert.Equal(t, "timeout", post["error"])
	assert.Equal(t, "fetch failed", post["message"])
	assert.NotEmpty(t, post["timestamp"])

	// поля родителя не изменились
	assert.Empty(t, logger.fields)
}

func TestNewFluentLoggerAdapter_NilClient(t *testing.T) {
	_, err := NewFluentLoggerAdapter(nil, nil)
	assert.Error(t, err)
}

func TestMultiLoggerAdapter(t *testing.T) {
	first, second := &recordingPoster{}, &recordingPoster{}
	l1, _ := NewFluentLoggerAdapter(first, slog.LevelDebug)
	l2, _ := NewFluentLoggerAdapter(second, slog.LevelDebug)

	multi, err := NewMultiLoggerAdapter(l1, l2)
	require.NoError(t, err)

	multi.WithFields(port.Fields{"run_id": "r1"}).Info("done", nil)

	require.Len(t, first.posts, 1)
	require.Len(t, second.posts, 1)
	assert.Equal(t, "r1", first.posts[0]["run_id"])
	assert.Equal(t, "r1", second.posts[0]["run_id"])

	_, err = NewMultiLoggerAdapter()
	assert.Error(t, err)
	_, err = NewMultiLoggerAdapter(nil)
	assert.Error(t, err)
}

func TestMultiLoggerAdapter_FlattensNested(t *testing.T) {
	first, second := &recordingPoster{}, &recordingPoster{}
	l1, _ := NewFluentLoggerAdapter(first, slog.LevelDebug)
	l2, _ := NewFluentLoggerAdapter(second, slog.LevelDebug)

	inner, err := NewMultiLoggerAdapter(l1, nil)
	require.NoError(t, err)
	outer, err := NewMultiLoggerAdapter(inner, l2)
	require.NoError(t, err)
	assert.Equal(t, 2, outer.Len())

	outer.Warn("page limit reached", nil)
	assert.Len(t, first.posts, 1)
	assert.Len(t, second.posts, 1)
}

type capturedEntry struct {
	level  string
	msg    string
	err    error
	fields port.Fields
}

type capturingLogger struct {
	entries []capturedEntry
}

func (l *capturingLogger) Debug(msg string, fields port.Fields) {
	l.entries = append(l.entries, capturedEntry{level: "debug", msg: msg, fields: fields})
}
func (l *capturingLogger) Info(msg string, fields port.Fields) {
	l.entries = append(l.entries, capturedEntry{level: "info", msg: msg, fields: fields})
}
func (l *capturingLogger) Warn(msg string, fields port.Fields) {
	l.entries = append(l.entries, capturedEntry{level: "warn", msg: msg, fields: fields})
}
func (l *capturingLogger) Error(msg string, err error, fields port.Fields) {
	l.entries = append(l.entries, capturedEntry{level: "error", msg: msg, err: err, fields: fields})
}
func (l *capturingLogger) WithFields(port.Fields) port.LoggerPort { return l }

func TestKeyValueBridge_Fields(t *testing.T) {
	captured := &capturingLogger{}
	bridge := NewKeyValueBridge(captured)

	closeErr := errors.New("channel closed")
	bridge.Error(closeErr, "Connection lost", "queue_name", "wg_update_tasks_queue", 42, "tag", "cause", closeErr, "dangling")

	require.Len(t, captured.entries, 1)
	e := captured.entries[0]
	assert.Equal(t, "error", e.level)
	assert.Equal(t, closeErr, e.err)
	assert.Equal(t, port.Fields{
		"queue_name": "wg_update_tasks_queue",
		"42":         "tag",
		"cause":      "channel closed",
		badKey:       "dangling",
	}, e.fields)

	bridge.Info("Publisher ready")
	assert.Nil(t, captured.entries[1].fields)
}

func TestKeyValueBridge_CronOptions(t *testing.T) {
	captured := &capturingLogger{}
	bridge := NewKeyValueBridge(captured, WithPrefix("cron: "), WithInfoAsDebug())

	bridge.Info("wake", "now", "2024-03-01")
	bridge.Error(errors.New("panic"), "job failed")

	require.Len(t, captured.entries, 2)
	assert.Equal(t, "debug", captured.entries[0].level)
	assert.Equal(t, "cron: wake", captured.entries[0].msg)
	assert.Equal(t, "error", captured.entries[1].level)
	assert.Equal(t, "cron: job failed", captured.entries[1].msg)
}
