package domain

// FavoritesSnapshot - список id избранных объявлений пользователя.
type FavoritesSnapshot struct {
	PropertyIDs []string `json:"propertyIds"`
	Error       string   `json:"error,omitempty"`
	FromCache   bool     `json:"fromCache"`
}

// Contains сообщает, есть ли объявление в избранном.
func (s FavoritesSnapshot) Contains(propertyID string) bool {
	for _, id := range s.PropertyIDs {
		if id == propertyID {
			return true
		}
	}
	return false
}
