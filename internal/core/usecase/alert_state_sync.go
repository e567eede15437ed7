package usecase

import (
	"context"
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
	"strconv"
	"sync"
	"time"
)

// alertSession - состояние алертов одного пользователя в памяти.
// Все операции пользователя выполняются под mu, в порядке вызова.
type alertSession struct {
	mu        sync.Mutex
	loaded    bool
	alerts    []domain.Alert
	lastError string
}

// AlertStateSyncUseCase сводит список алертов с сервера с локально сохранёнными
// флагами активности и снимком списка, который служит запасным вариантом при сбое.
type AlertStateSyncUseCase struct {
	api       port.AlertsAPIPort
	store     port.KeyValueStorePort
	publisher port.RefreshPublisherPort
	metrics   port.MetricsPort
	now       func() time.Time

	sessions *sessionRegistry[alertSession]

	// последний выданный запасной id, чтобы два создания в одну миллисекунду не совпали
	idMu           sync.Mutex
	lastFallbackID int64
}

func NewAlertStateSyncUseCase(
	api port.AlertsAPIPort,
	store port.KeyValueStorePort,
	publisher port.RefreshPublisherPort,
	metrics port.MetricsPort,
) *AlertStateSyncUseCase {
	if metrics == nil {
		metrics = port.NewNoopMetrics()
	}
	return &AlertStateSyncUseCase{
		api:       api,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
		sessions:  newSessionRegistry[alertSession](defaultSessionMaxSize, defaultSessionIdleTTL),
	}
}

func (uc *AlertStateSyncUseCase) session(userID string) *alertSession {
	return uc.sessions.get(userID)
}

// Close останавливает фоновую очистку сессий.
func (uc *AlertStateSyncUseCase) Close() {
	uc.sessions.stop()
}

// fallbackID - id на основе текущего времени в мс, строго возрастающий.
func (uc *AlertStateSyncUseCase) fallbackID() string {
	uc.idMu.Lock()
	defer uc.idMu.Unlock()

	id := uc.now().UnixMilli()
	if id <= uc.lastFallbackID {
		id = uc.lastFallbackID + 1
	}
	uc.lastFallbackID = id
	return strconv.FormatInt(id, 10)
}

// Load запрашивает алерты с сервера. При сбое показывает локальный снимок,
// если он не пуст, иначе оставляет то, что уже было в памяти.
func (uc *AlertStateSyncUseCase) Load(ctx context.Context, userID string) domain.AlertsSnapshot {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "AlertStateSync.Load",
		"user_id":  userID,
	})
	ucLogger.Info("Use case started", nil)

	s := uc.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	state := newLocalState(uc.store, userID)

	remote, err := uc.api.ListAlerts(ctx, userID)
	if err == nil {
		flags, flagsErr := state.ActiveFlags(ctx)
		if flagsErr != nil {
			ucLogger.Warn("Could not read local active flags, using server values", port.Fields{"error": flagsErr.Error()})
		}
		s.alerts = mergeActiveFlags(remote, flags)
		s.loaded = true
		s.lastError = ""

		ucLogger.Info("Use case finished successfully", port.Fields{"alerts_count": len(s.alerts)})
		return snapshotOf(s, false)
	}

	ucLogger.Error("Failed to fetch alerts from server, falling back to local cache", err, nil)
	uc.metrics.UpstreamFailure("list_alerts")

	fromCache := false
	cached, cacheErr := state.AlertsCache(ctx)
	if cacheErr != nil {
		ucLogger.Warn("Could not read local alerts cache", port.Fields{"error": cacheErr.Error()})
	}
	if len(cached) > 0 {
		flags, _ := state.ActiveFlags(ctx)
		s.alerts = mergeActiveFlags(cached, flags)
		s.loaded = true
		fromCache = true
		uc.metrics.LocalFallback("alerts")
		ucLogger.Info("Serving alerts from local cache", port.Fields{"alerts_count": len(s.alerts)})
	}
	s.lastError = domain.MsgAlertsLoadFailed

	return snapshotOf(s, fromCache)
}

// Create создаёт алерт на сервере и добавляет его в память и локальный снимок.
// При ошибке сервера локальное состояние не меняется.
func (uc *AlertStateSyncUseCase) Create(ctx context.Context, userID string, criteria domain.AlertCriteria) (*domain.Alert, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "AlertStateSync.Create",
		"user_id":  userID,
	})
	ucLogger.Info("Use case started", nil)

	s := uc.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := uc.api.CreateAlert(ctx, userID, criteria)
	if err != nil {
		ucLogger.Error("Server rejected alert creation", err, nil)
		uc.metrics.UpstreamFailure("create_alert")
		s.lastError = domain.MsgAlertCreateFailed
		return nil, err
	}

	alert := domain.AlertFromCriteria(criteria)
	if created != nil {
		alert = *created
	} else {
		ucLogger.Warn("Server response has no alert body, using submitted criteria", nil)
	}
	if alert.ID == "" {
		alert.ID = uc.fallbackID()
	}
	alert.Active = false

	state := newLocalState(uc.store, userID)
	uc.ensureLoaded(ctx, s, state, ucLogger)

	s.alerts = append(s.alerts, alert)
	s.lastError = ""

	// при ошибке чтения снимок не перезаписывается, иначе он потеряет остальные алерты
	if cached, cacheErr := state.AlertsCache(ctx); cacheErr != nil {
		ucLogger.Warn("Could not read local alerts cache, skipping append", port.Fields{"error": cacheErr.Error()})
	} else if err := state.SaveAlertsCache(ctx, append(cached, alert)); err != nil {
		ucLogger.Error("Failed to persist alerts cache", err, nil)
	}

	uc.publish(ctx, ucLogger, userID, alert.ID, domain.RefreshAlertCreated)

	ucLogger.Info("Use case finished successfully", port.Fields{"alert_id": alert.ID})
	return &alert, nil
}

// Delete удаляет алерт на сервере, затем из памяти, снимка и карты флагов.
func (uc *AlertStateSyncUseCase) Delete(ctx context.Context, userID, alertID string) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "AlertStateSync.Delete",
		"user_id":  userID,
		"alert_id": alertID,
	})
	ucLogger.Info("Use case started", nil)

	s := uc.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := uc.api.DeleteAlert(ctx, userID, alertID); err != nil {
		ucLogger.Error("Server rejected alert deletion", err, nil)
		uc.metrics.UpstreamFailure("delete_alert")
		s.lastError = domain.MsgAlertDeleteFailed
		return err
	}

	s.alerts = withoutAlert(s.alerts, alertID)
	s.lastError = ""

	state := newLocalState(uc.store, userID)

	if cached, err := state.AlertsCache(ctx); err != nil {
		ucLogger.Warn("Could not read local alerts cache, skipping prune", port.Fields{"error": err.Error()})
	} else if err := state.SaveAlertsCache(ctx, withoutAlert(cached, alertID)); err != nil {
		ucLogger.Error("Failed to prune alerts cache", err, nil)
	}

	if flags, err := state.ActiveFlags(ctx); err != nil {
		ucLogger.Warn("Could not read local active flags, skipping prune", port.Fields{"error": err.Error()})
	} else {
		delete(flags, alertID)
		if err := state.SaveActiveFlags(ctx, flags); err != nil {
			ucLogger.Error("Failed to prune active flags", err, nil)
		}
	}

	uc.publish(ctx, ucLogger, userID, alertID, domain.RefreshAlertDeleted)

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

// Toggle переключает флаг активности только локально: сервер не вызывается.
// Отображаемое значение - всегда последнее переключённое.
func (uc *AlertStateSyncUseCase) Toggle(ctx context.Context, userID, alertID string) (*domain.Alert, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "AlertStateSync.Toggle",
		"user_id":  userID,
		"alert_id": alertID,
	})
	ucLogger.Info("Use case started", nil)

	if userID == "" {
		return nil, domain.ErrInvalidUserID
	}
	if alertID == "" {
		return nil, domain.ErrInvalidAlertID
	}

	s := uc.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	state := newLocalState(uc.store, userID)
	uc.ensureLoaded(ctx, s, state, ucLogger)

	idx := -1
	for i := range s.alerts {
		if s.alerts[i].ID == alertID {
			idx = i
			break
		}
	}
	if idx < 0 {
		ucLogger.Warn("Alert not found in session", nil)
		return nil, domain.ErrAlertNotFound
	}

	// Хранилище общее для всех экземпляров: переключаем последнее сохранённое
	// значение, а не копию в памяти, которая могла устареть.
	flags, flagsErr := state.ActiveFlags(ctx)
	current := s.alerts[idx].Active
	if flagsErr == nil {
		if stored, ok := flags[alertID]; ok {
			current = stored
		}
	}

	s.alerts[idx].Active = !current
	toggled := s.alerts[idx]

	if flagsErr != nil {
		ucLogger.Warn("Could not read local active flags, flag kept in memory only", port.Fields{"error": flagsErr.Error()})
	} else {
		flags[alertID] = toggled.Active
		if err := state.SaveActiveFlags(ctx, flags); err != nil {
			ucLogger.Error("Failed to persist active flag", err, nil)
		}
	}

	uc.publish(ctx, ucLogger, userID, alertID, domain.RefreshAlertToggled)

	ucLogger.Info("Use case finished successfully", port.Fields{"active": toggled.Active})
	return &toggled, nil
}

// ensureLoaded поднимает состояние из локального снимка, если Load ещё не вызывался
// (например, после перезапуска сервиса).
func (uc *AlertStateSyncUseCase) ensureLoaded(ctx context.Context, s *alertSession, state localState, logger port.LoggerPort) {
	if s.loaded {
		return
	}

	// при ошибке сессия остаётся незагруженной и поднимется при следующем вызове
	cached, err := state.AlertsCache(ctx)
	if err != nil {
		logger.Warn("Could not seed session from local cache", port.Fields{"error": err.Error()})
		return
	}
	flags, _ := state.ActiveFlags(ctx)
	s.alerts = mergeActiveFlags(cached, flags)
	s.loaded = true
}

func (uc *AlertStateSyncUseCase) publish(ctx context.Context, logger port.LoggerPort, userID, alertID string, reason domain.RefreshReason) {
	if uc.publisher == nil {
		return
	}
	event := domain.RefreshMatchingPropertiesEvent{
		UserID:     userID,
		Reason:     reason,
		AlertID:    alertID,
		OccurredAt: uc.now().UTC(),
	}
	if err := uc.publisher.PublishRefresh(ctx, event); err != nil {
		logger.Warn("Failed to publish refresh event", port.Fields{"error": err.Error(), "reason": string(reason)})
		return
	}
	uc.metrics.RefreshPublished(string(reason))
}

func snapshotOf(s *alertSession, fromCache bool) domain.AlertsSnapshot {
	alerts := make([]domain.Alert, len(s.alerts))
	copy(alerts, s.alerts)
	return domain.AlertsSnapshot{
		Alerts:    alerts,
		Error:     s.lastError,
		FromCache: fromCache,
	}
}

func withoutAlert(alerts []domain.Alert, alertID string) []domain.Alert {
	kept := make([]domain.Alert, 0, len(alerts))
	for _, a := range alerts {
		if a.ID != alertID {
			kept = append(kept, a)
		}
	}
	return kept
}
