package domain

// Claims - данные пользователя из проверенного токена.
type Claims struct {
	UserID string
	Email  string
	Role   string
}
