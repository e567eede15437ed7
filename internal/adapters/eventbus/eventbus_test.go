package eventbus

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type silentLogger struct{}

func (silentLogger) Info(string, port.Fields)                 {}
func (silentLogger) Warn(string, port.Fields)                 {}
func (silentLogger) Error(string, error, port.Fields)         {}
func (silentLogger) Debug(string, port.Fields)                {}
func (l silentLogger) WithFields(port.Fields) port.LoggerPort { return l }

func TestDispatcher_DeliversToAllListeners(t *testing.T) {
	d := NewDispatcher(10, silentLogger{})
	defer d.Close()

	var mu sync.Mutex
	got := map[string]int{}
	done := make(chan struct{}, 4)

	listener := func(name string) port.RefreshListener {
		return func(_ context.Context, e domain.RefreshMatchingPropertiesEvent) {
			mu.Lock()
			got[name]++
			mu.Unlock()
			done <- struct{}{}
		}
	}
	d.Subscribe(listener("a"))
	unsubscribe := d.Subscribe(listener("b"))

	require.NoError(t, d.PublishRefresh(context.Background(), domain.RefreshMatchingPropertiesEvent{UserID: "u1"}))
	waitFor(t, done, 2)

	unsubscribe()
	unsubscribe()

	require.NoError(t, d.PublishRefresh(context.Background(), domain.RefreshMatchingPropertiesEvent{UserID: "u1"}))
	waitFor(t, done, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, got["a"])
	assert.Equal(t, 1, got["b"])
}

func TestDispatcher_PanickingListenerDoesNotStopBus(t *testing.T) {
	d := NewDispatcher(10, silentLogger{})
	defer d.Close()

	done := make(chan struct{}, 1)
	d.Subscribe(func(context.Context, domain.RefreshMatchingPropertiesEvent) { panic("boom") })
	d.Subscribe(func(context.Context, domain.RefreshMatchingPropertiesEvent) { done <- struct{}{} })

	require.NoError(t, d.PublishRefresh(context.Background(), domain.RefreshMatchingPropertiesEvent{UserID: "u1"}))
	waitFor(t, done, 1)
}

func TestDispatcher_ClosedRejectsEvents(t *testing.T) {
	d := NewDispatcher(1, silentLogger{})
	d.Close()
	err := d.PublishRefresh(context.Background(), domain.RefreshMatchingPropertiesEvent{})
	assert.ErrorIs(t, err, ErrBusClosed)
}

type recordingPublisher struct {
	events []domain.RefreshMatchingPropertiesEvent
	err    error
}

func (p *recordingPublisher) PublishRefresh(_ context.Context, e domain.RefreshMatchingPropertiesEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func TestCompositePublisher_SetsOriginAndFansOut(t *testing.T) {
	local, remote := &recordingPublisher{}, &recordingPublisher{}
	p := NewCompositePublisher(local, remote, "instance-1")

	require.NoError(t, p.PublishRefresh(context.Background(), domain.RefreshMatchingPropertiesEvent{UserID: "u1"}))
	require.Len(t, local.events, 1)
	require.Len(t, remote.events, 1)
	assert.Equal(t, "instance-1", local.events[0].Origin)
	assert.Equal(t, "instance-1", remote.events[0].Origin)

	remote.err = errors.New("broker down")
	err := p.PublishRefresh(context.Background(), domain.RefreshMatchingPropertiesEvent{UserID: "u1"})
	assert.ErrorIs(t, err, remote.err)
	assert.Len(t, local.events, 2)
}

func TestSSEHub_RoutesByUser(t *testing.T) {
	hub := NewSSEHub(1, silentLogger{})
	ch1 := hub.AddClient("u1")
	ch2 := hub.AddClient("u2")

	hub.OnRefresh(context.Background(), domain.RefreshMatchingPropertiesEvent{UserID: "u1", Reason: domain.RefreshAlertToggled})

	select {
	case msg := <-ch1:
		assert.True(t, strings.HasPrefix(string(msg), "event: refreshMatchingProperties\n"))
		assert.Contains(t, string(msg), `"reason":"alert_toggled"`)
	default:
		t.Fatal("expected message for u1")
	}
	assert.Len(t, ch2, 0)

	// переполнение не блокирует
	hub.OnRefresh(context.Background(), domain.RefreshMatchingPropertiesEvent{UserID: "u1"})
	hub.OnRefresh(context.Background(), domain.RefreshMatchingPropertiesEvent{UserID: "u1"})
	assert.Len(t, ch1, 1)

	hub.RemoveClient("u1", ch1)
	assert.Equal(t, 0, hub.ClientsCount("u1"))
	assert.Equal(t, 1, hub.ClientsCount("u2"))
}

func waitFor(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delivery %d of %d", i+1, n)
		}
	}
}
