package contextkeys

import "context"

type authKeyType struct{}

var authKey = authKeyType{}

// Principal - аутентифицированный пользователь запроса и его исходный токен,
// который пробрасывается в бэкенд Kama.
type Principal struct {
	UserID string
	Token  string
}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, authKey, p)
}

// PrincipalFromContext возвращает ok=false для анонимного запроса.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(authKey).(Principal)
	return p, ok
}
