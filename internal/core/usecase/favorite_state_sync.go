package usecase

import (
	"context"
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
	"sync"
)

type favoriteSession struct {
	mu        sync.Mutex
	loaded    bool
	ids       []string
	lastError string
}

// FavoriteStateSyncUseCase держит список избранного пользователя. Переключение
// оптимистичное: локальный список меняется сразу и откатывается при ошибке сервера.
type FavoriteStateSyncUseCase struct {
	api     port.FavoritesAPIPort
	store   port.KeyValueStorePort
	metrics port.MetricsPort

	sessions *sessionRegistry[favoriteSession]
}

func NewFavoriteStateSyncUseCase(api port.FavoritesAPIPort, store port.KeyValueStorePort, metrics port.MetricsPort) *FavoriteStateSyncUseCase {
	if metrics == nil {
		metrics = port.NewNoopMetrics()
	}
	return &FavoriteStateSyncUseCase{
		api:      api,
		store:    store,
		metrics:  metrics,
		sessions: newSessionRegistry[favoriteSession](defaultSessionMaxSize, defaultSessionIdleTTL),
	}
}

func (uc *FavoriteStateSyncUseCase) session(userID string) *favoriteSession {
	return uc.sessions.get(userID)
}

// Close останавливает фоновую очистку сессий.
func (uc *FavoriteStateSyncUseCase) Close() {
	uc.sessions.stop()
}

func (uc *FavoriteStateSyncUseCase) Load(ctx context.Context, userID string) domain.FavoritesSnapshot {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "FavoriteStateSync.Load",
		"user_id":  userID,
	})
	ucLogger.Info("Use case started", nil)

	s := uc.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	state := newLocalState(uc.store, userID)

	ids, err := uc.api.ListFavoriteIDs(ctx, userID)
	if err == nil {
		s.ids = append([]string{}, ids...)
		s.loaded = true
		s.lastError = ""
		if err := state.SaveFavoritesCache(ctx, s.ids); err != nil {
			ucLogger.Error("Failed to persist favorites cache", err, nil)
		}
		ucLogger.Info("Use case finished successfully", port.Fields{"favorites_count": len(s.ids)})
		return favoritesSnapshotOf(s, false)
	}

	ucLogger.Error("Failed to fetch favorites from server, falling back to local cache", err, nil)
	uc.metrics.UpstreamFailure("list_favorites")
	s.lastError = domain.MsgFavoritesLoadFailed

	cached, found, cacheErr := state.FavoritesCache(ctx)
	if cacheErr != nil {
		ucLogger.Warn("Could not read local favorites cache", port.Fields{"error": cacheErr.Error()})
	}
	if found && len(cached) > 0 {
		s.ids = cached
		s.loaded = true
		uc.metrics.LocalFallback("favorites")
		return favoritesSnapshotOf(s, true)
	}
	return favoritesSnapshotOf(s, false)
}

// Toggle добавляет объявление в избранное или убирает его оттуда.
func (uc *FavoriteStateSyncUseCase) Toggle(ctx context.Context, userID, propertyID string) (domain.FavoritesSnapshot, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "FavoriteStateSync.Toggle",
		"user_id":     userID,
		"property_id": propertyID,
	})
	ucLogger.Info("Use case started", nil)

	if propertyID == "" {
		return domain.FavoritesSnapshot{}, domain.ErrInvalidPropertyID
	}

	s := uc.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	state := newLocalState(uc.store, userID)
	// без прочитанного снимка запись в кэш затёрла бы остальные избранные
	persist := true
	if !s.loaded {
		cached, _, err := state.FavoritesCache(ctx)
		if err != nil {
			ucLogger.Warn("Could not seed favorites from local cache, cache left untouched", port.Fields{"error": err.Error()})
			persist = false
		} else {
			s.ids = cached
			s.loaded = true
		}
	}
	saveCache := func(ids []string, msg string) {
		if !persist {
			return
		}
		if err := state.SaveFavoritesCache(ctx, ids); err != nil {
			ucLogger.Error(msg, err, nil)
		}
	}

	previous := append([]string{}, s.ids...)
	wasFavorite := favoritesSnapshotOf(s, false).Contains(propertyID)

	if wasFavorite {
		s.ids = withoutID(s.ids, propertyID)
	} else {
		s.ids = append(s.ids, propertyID)
	}
	saveCache(s.ids, "Failed to persist favorites cache")

	var err error
	if wasFavorite {
		err = uc.api.RemoveFavorite(ctx, userID, propertyID)
	} else {
		err = uc.api.AddFavorite(ctx, userID, propertyID)
	}
	if err != nil {
		ucLogger.Error("Server rejected favorite update, rolling back", err, port.Fields{"was_favorite": wasFavorite})
		uc.metrics.UpstreamFailure("toggle_favorite")

		s.ids = previous
		s.lastError = domain.MsgFavoriteFailed
		saveCache(s.ids, "Failed to persist favorites rollback")
		return favoritesSnapshotOf(s, false), err
	}

	s.lastError = ""
	ucLogger.Info("Use case finished successfully", port.Fields{"is_favorite": !wasFavorite})
	return favoritesSnapshotOf(s, false), nil
}

func favoritesSnapshotOf(s *favoriteSession, fromCache bool) domain.FavoritesSnapshot {
	ids := make([]string, len(s.ids))
	copy(ids, s.ids)
	return domain.FavoritesSnapshot{
		PropertyIDs: ids,
		Error:       s.lastError,
		FromCache:   fromCache,
	}
}

func withoutID(ids []string, id string) []string {
	kept := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}
