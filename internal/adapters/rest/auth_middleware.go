package rest

import (
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
	"net/http"
	"strings"
)

// tokenCookieName - cookie, которую ставит фронтенд Kama после входа.
// EventSource не умеет передавать заголовки, поэтому SSE авторизуется через неё.
const tokenCookieName = "token"

// AuthMiddleware проверяет bearer-токен и кладёт пользователя в контекст.
// Без валидного токена отвечает 401 со ссылкой на страницу входа.
func AuthMiddleware(validator port.TokenValidatorPort, loginURL string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"middleware": "Auth"})

			token := extractToken(r)
			if token == "" {
				logger.Warn("Request without token", nil)
				writeLoginRequired(w, loginURL)
				return
			}

			claims, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				logger.Warn("Token rejected", port.Fields{"error": err.Error()})
				writeLoginRequired(w, loginURL)
				return
			}

			ctx := contextkeys.ContextWithPrincipal(r.Context(), contextkeys.Principal{
				UserID: claims.UserID,
				Token:  token,
			})
			ctx = contextkeys.ContextWithLogger(ctx, contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
				"user_id": claims.UserID,
			}))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(tokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func writeLoginRequired(w http.ResponseWriter, loginURL string) {
	RespondWithJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:    domain.MsgLoginRequired,
		LoginURL: loginURL,
	})
}

// userIDFromContext - ID пользователя, положенный AuthMiddleware.
func userIDFromContext(r *http.Request) (string, bool) {
	p, ok := contextkeys.PrincipalFromContext(r.Context())
	if !ok || p.UserID == "" {
		return "", false
	}
	return p.UserID, true
}
