package constants

// Ключи локального состояния пользователя в KeyValueStore.
const (
	AlertActiveKey    = "kama_alert_active"
	AlertsCacheKey    = "kama_alerts_cache"
	FavoritesCacheKey = "kama_favorites_cache"
)

// UserScopedKey - ключ хранилища для конкретного пользователя: "<userID>:<name>".
func UserScopedKey(userID, name string) string {
	return userID + ":" + name
}
