package port

import "context"

// KeyValueStorePort - долговременное хранилище локального состояния пользователя
// (флаги активности алертов, снимки списков). Значения - сериализованный JSON.
type KeyValueStorePort interface {
	// Get возвращает found=false, если ключа нет.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
