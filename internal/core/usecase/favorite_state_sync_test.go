package usecase

import (
	"context"
	"testing"

	"kama-bff/internal/constants"
	"kama-bff/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteLoad_WritesCache(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	uc := NewFavoriteStateSyncUseCase(&fakeFavoritesAPI{ids: []string{"p1", "p2"}}, store, nil)

	snap := uc.Load(ctx, testUser)
	assert.Equal(t, []string{"p1", "p2"}, snap.PropertyIDs)
	assert.False(t, snap.FromCache)

	var cached []string
	require.True(t, readKey(t, store, constants.FavoritesCacheKey, &cached))
	assert.Equal(t, []string{"p1", "p2"}, cached)
}

func TestFavoriteLoad_FallsBackToCache(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	writeKey(t, store, constants.FavoritesCacheKey, []string{"p9"})

	uc := NewFavoriteStateSyncUseCase(&fakeFavoritesAPI{listErr: errBackendDown}, store, nil)
	snap := uc.Load(ctx, testUser)

	assert.Equal(t, []string{"p9"}, snap.PropertyIDs)
	assert.True(t, snap.FromCache)
	assert.Equal(t, domain.MsgFavoritesLoadFailed, snap.Error)
}

func TestFavoriteToggle_AddAndRemove(t *testing.T) {
	ctx := context.Background()
	api := &fakeFavoritesAPI{}
	uc := NewFavoriteStateSyncUseCase(api, newMemoryStore(), nil)
	uc.Load(ctx, testUser)

	snap, err := uc.Toggle(ctx, testUser, "p1")
	require.NoError(t, err)
	assert.True(t, snap.Contains("p1"))
	assert.Equal(t, []string{"p1"}, api.added)

	snap, err = uc.Toggle(ctx, testUser, "p1")
	require.NoError(t, err)
	assert.False(t, snap.Contains("p1"))
	assert.Equal(t, []string{"p1"}, api.removed)
}

func TestFavoriteToggle_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	api := &fakeFavoritesAPI{ids: []string{"p1"}, rmErr: errBackendDown}
	uc := NewFavoriteStateSyncUseCase(api, store, nil)
	uc.Load(ctx, testUser)

	snap, err := uc.Toggle(ctx, testUser, "p1")
	require.ErrorIs(t, err, errBackendDown)
	assert.True(t, snap.Contains("p1"))
	assert.Equal(t, domain.MsgFavoriteFailed, snap.Error)

	var cached []string
	require.True(t, readKey(t, store, constants.FavoritesCacheKey, &cached))
	assert.Equal(t, []string{"p1"}, cached)
}

func TestFavoriteToggle_RejectsEmptyID(t *testing.T) {
	uc := NewFavoriteStateSyncUseCase(&fakeFavoritesAPI{}, newMemoryStore(), nil)
	_, err := uc.Toggle(context.Background(), testUser, "")
	assert.ErrorIs(t, err, domain.ErrInvalidPropertyID)
}

func TestFavoriteToggle_SeedReadFailureLeavesCache(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{memoryStore: newMemoryStore()}
	writeKey(t, store.memoryStore, constants.FavoritesCacheKey, []string{"p1", "p2"})

	api := &fakeFavoritesAPI{}
	uc := NewFavoriteStateSyncUseCase(api, store, nil)
	defer uc.Close()

	store.failGet = true
	_, err := uc.Toggle(ctx, testUser, "p3")
	require.NoError(t, err)
	store.failGet = false

	assert.Equal(t, []string{"p3"}, api.added)

	var cached []string
	require.True(t, readKey(t, store.memoryStore, constants.FavoritesCacheKey, &cached))
	assert.Equal(t, []string{"p1", "p2"}, cached)
}
