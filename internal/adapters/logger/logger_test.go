package logger_adapter

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"kama-bff/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedPost struct {
	tag  string
	data port.Fields
}

type fakeFluent struct {
	mu    sync.Mutex
	posts []capturedPost
}

func (f *fakeFluent) Post(tag string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, capturedPost{tag: tag, data: message.(port.Fields)})
	return nil
}

func (f *fakeFluent) Close() error { return nil }

func TestFluentAdapter_FiltersByLevelAndMergesFields(t *testing.T) {
	client := &fakeFluent{}
	adapter, err := NewFluentLoggerAdapter(client, slog.LevelInfo)
	require.NoError(t, err)

	logger := adapter.WithFields(port.Fields{"trace_id": "t-1"})
	logger.Debug("hidden", nil)
	logger.Error("boom", errors.New("bad"), port.Fields{"user_id": "u1"})

	require.Len(t, client.posts, 1)
	post := client.posts[0]
	assert.Equal(t, "error", post.tag)
	assert.Equal(t, "t-1", post.data["trace_id"])
	assert.Equal(t, "u1", post.data["user_id"])
	assert.Equal(t, "bad", post.data["error"])
	assert.Equal(t, "boom", post.data["message"])
}

func TestSlogAdapter_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, IsJSON: true, Level: slog.LevelDebug})

	logger.WithFields(port.Fields{"trace_id": "t-2"}).Info("hello", port.Fields{"count": 3})

	out := buf.String()
	assert.Contains(t, out, `"trace_id":"t-2"`)
	assert.Contains(t, out, `"count":3`)
	assert.Contains(t, out, `"msg":"hello"`)
}

func TestMultilogger_FansOut(t *testing.T) {
	a, b := &fakeFluent{}, &fakeFluent{}
	la, _ := NewFluentLoggerAdapter(a, slog.LevelDebug)
	lb, _ := NewFluentLoggerAdapter(b, slog.LevelDebug)

	multi, err := NewMultiloggerAdapter(la, nil, lb)
	require.NoError(t, err)
	multi.WithFields(port.Fields{"k": "v"}).Warn("w", nil)

	assert.Len(t, a.posts, 1)
	assert.Len(t, b.posts, 1)

	_, err = NewMultiloggerAdapter()
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
