package usecase

import (
	"context"
	"errors"
	"kama-bff/internal/core/domain"
	"sync"
	"time"
)

var errBackendDown = errors.New("backend down")

// ============================================
// Фейки портов для тестов
// ============================================

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// flakyStore - memoryStore, чьё чтение можно сломать.
type flakyStore struct {
	*memoryStore
	failGet bool
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errBackendDown
	}
	return f.memoryStore.Get(ctx, key)
}

type fakeAlertsAPI struct {
	alerts    []domain.Alert
	listErr   error
	created   *domain.Alert
	createErr error
	deleteErr error
	matching  []domain.Property
	matchErr  error

	createCalls int
	deleteCalls int
	matchCalls  int
}

func (f *fakeAlertsAPI) ListAlerts(context.Context, string) ([]domain.Alert, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Alert(nil), f.alerts...), nil
}

func (f *fakeAlertsAPI) CreateAlert(context.Context, string, domain.AlertCriteria) (*domain.Alert, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeAlertsAPI) DeleteAlert(context.Context, string, string) error {
	f.deleteCalls++
	return f.deleteErr
}

func (f *fakeAlertsAPI) ListMatchingProperties(context.Context, string) ([]domain.Property, error) {
	f.matchCalls++
	if f.matchErr != nil {
		return nil, f.matchErr
	}
	return f.matching, nil
}

type fakeFavoritesAPI struct {
	ids     []string
	listErr error
	addErr  error
	rmErr   error

	added   []string
	removed []string
}

func (f *fakeFavoritesAPI) ListFavoriteIDs(context.Context, string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.ids...), nil
}

func (f *fakeFavoritesAPI) AddFavorite(_ context.Context, _ string, propertyID string) error {
	f.added = append(f.added, propertyID)
	return f.addErr
}

func (f *fakeFavoritesAPI) RemoveFavorite(_ context.Context, _ string, propertyID string) error {
	f.removed = append(f.removed, propertyID)
	return f.rmErr
}

type recordingPublisher struct {
	events []domain.RefreshMatchingPropertiesEvent
}

func (p *recordingPublisher) PublishRefresh(_ context.Context, e domain.RefreshMatchingPropertiesEvent) error {
	p.events = append(p.events, e)
	return nil
}

type fakePropertiesAPI struct {
	page  *domain.PropertyPage
	err   error
	calls int
	last  domain.SearchFilters
}

func (f *fakePropertiesAPI) FindProperties(_ context.Context, filters domain.SearchFilters, page, limit int, _, _ string) (*domain.PropertyPage, error) {
	f.calls++
	f.last = filters
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.page
	cp.Pagination.Current = page
	return &cp, nil
}

// mapCache - PropertyCachePort без TTL.
type mapCache struct {
	pages map[string]*domain.PropertyPage
	lists map[string][]domain.Property
}

func newMapCache() *mapCache {
	return &mapCache{pages: map[string]*domain.PropertyPage{}, lists: map[string][]domain.Property{}}
}

func (c *mapCache) GetPage(key string) (*domain.PropertyPage, bool) {
	p, ok := c.pages[key]
	return p, ok
}

func (c *mapCache) SetPage(key string, page *domain.PropertyPage, _ time.Duration) {
	c.pages[key] = page
}

func (c *mapCache) GetList(key string) ([]domain.Property, bool) {
	l, ok := c.lists[key]
	return l, ok
}

func (c *mapCache) SetList(key string, properties []domain.Property, _ time.Duration) {
	c.lists[key] = properties
}

func (c *mapCache) Delete(key string) {
	delete(c.pages, key)
	delete(c.lists, key)
}
