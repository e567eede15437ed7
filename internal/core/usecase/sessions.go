package usecase

import (
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
)

const (
	defaultSessionMaxSize = 10000
	defaultSessionIdleTTL = 30 * time.Minute
)

// sessionRegistry хранит сессии пользователей в LRU-кэше. Сессия, к которой
// не обращались дольше idleTTL, создаётся заново и поднимается из KV-хранилища.
type sessionRegistry[T any] struct {
	mu      sync.Mutex
	cache   *ccache.Cache[*T]
	idleTTL time.Duration
}

func newSessionRegistry[T any](maxSize int64, idleTTL time.Duration) *sessionRegistry[T] {
	if maxSize <= 0 {
		maxSize = defaultSessionMaxSize
	}
	if idleTTL <= 0 {
		idleTTL = defaultSessionIdleTTL
	}
	return &sessionRegistry[T]{
		cache:   ccache.New(ccache.Configure[*T]().MaxSize(maxSize)),
		idleTTL: idleTTL,
	}
}

// get возвращает сессию пользователя, создавая её при промахе или истечении срока.
// Под mu, чтобы два параллельных запроса не получили разные сессии.
func (r *sessionRegistry[T]) get(userID string) *T {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item := r.cache.Get(userID); item != nil && !item.Expired() {
		item.Extend(r.idleTTL)
		return item.Value()
	}
	s := new(T)
	r.cache.Set(userID, s, r.idleTTL)
	return s
}

func (r *sessionRegistry[T]) stop() {
	r.cache.Stop()
}
