package rest

import (
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
	"kama-bff/internal/core/port/usecases_port"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type FavoritesHandler struct {
	favoritesUC usecases_port.FavoriteStateSyncPort
	loginURL    string
}

func NewFavoritesHandler(favoritesUC usecases_port.FavoriteStateSyncPort, loginURL string) *FavoritesHandler {
	return &FavoritesHandler{favoritesUC: favoritesUC, loginURL: loginURL}
}

// GetFavorites обрабатывает GET /api/v1/favorites
func (h *FavoritesHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeLoginRequired(w, h.loginURL)
		return
	}

	snapshot := h.favoritesUC.Load(r.Context(), userID)
	if snapshot.PropertyIDs == nil {
		snapshot.PropertyIDs = []string{}
	}
	RespondWithJSON(w, http.StatusOK, snapshot)
}

// ToggleFavorite обрабатывает POST /api/v1/favorites/{propertyID}/toggle.
// При ошибке сервера состояние уже откатано, клиент получает откатанный снимок.
func (h *FavoritesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ToggleFavorite"})

	userID, ok := userIDFromContext(r)
	if !ok {
		writeLoginRequired(w, h.loginURL)
		return
	}
	propertyID := chi.URLParam(r, "propertyID")

	snapshot, err := h.favoritesUC.Toggle(r.Context(), userID, propertyID)
	if err != nil {
		logger.Error("ToggleFavorite use case failed", err, port.Fields{"property_id": propertyID})
		respondWithError(w, err, domain.MsgFavoriteFailed, h.loginURL)
		return
	}
	if snapshot.PropertyIDs == nil {
		snapshot.PropertyIDs = []string{}
	}

	RespondWithJSON(w, http.StatusOK, FavoriteToggleResponse{
		FavoritesSnapshot: snapshot,
		PropertyID:        propertyID,
		IsFavorite:        snapshot.Contains(propertyID),
	})
}
