package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionRegistry_ReusesLiveSession(t *testing.T) {
	r := newSessionRegistry[alertSession](10, time.Minute)
	defer r.stop()

	a := r.get("u1")
	assert.Same(t, a, r.get("u1"))
	assert.NotSame(t, a, r.get("u2"))
}

func TestSessionRegistry_IdleSessionIsRecreated(t *testing.T) {
	r := newSessionRegistry[favoriteSession](10, 20*time.Millisecond)
	defer r.stop()

	first := r.get("u1")
	first.ids = []string{"p1"}

	time.Sleep(40 * time.Millisecond)

	second := r.get("u1")
	assert.NotSame(t, first, second)
	assert.Empty(t, second.ids)
}
