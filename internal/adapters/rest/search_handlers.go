package rest

import (
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
	"kama-bff/internal/core/port/usecases_port"
	"net/http"
)

// SearchHandler - публичный поиск объявлений.
type SearchHandler struct {
	interpretUC   usecases_port.InterpretSearchQueryUseCasePort
	searchUC      usecases_port.SearchPropertiesUseCasePort
	defaultStatus string
}

func NewSearchHandler(
	interpretUC usecases_port.InterpretSearchQueryUseCasePort,
	searchUC usecases_port.SearchPropertiesUseCasePort,
	defaultStatus string,
) *SearchHandler {
	return &SearchHandler{
		interpretUC:   interpretUC,
		searchUC:      searchUC,
		defaultStatus: defaultStatus,
	}
}

// GetFilters обрабатывает GET /api/v1/search/filters?q=&category=
func (h *SearchHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	category := domain.ParseSearchCategory(query.Get("category"))

	filters := h.interpretUC.Execute(query.Get("q"), category, h.defaultStatus)
	RespondWithJSON(w, http.StatusOK, filters)
}

// FindProperties обрабатывает GET /api/v1/properties
func (h *SearchHandler) FindProperties(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "FindProperties"})

	query := r.URL.Query()
	req := domain.SearchRequest{
		Query:         query.Get("q"),
		Category:      domain.ParseSearchCategory(query.Get("category")),
		DefaultStatus: h.defaultStatus,
		Page:          queryInt(r, "page"),
		Limit:         queryInt(r, "limit"),
		Sort:          query.Get("sort"),
		Surface:       query.Get("surface"),
	}

	handlerLogger := logger.WithFields(port.Fields{
		"category": string(req.Category),
		"page":     req.Page,
	})
	handlerLogger.Info("Processing search request", nil)

	page, err := h.searchUC.Execute(r.Context(), req)
	if err != nil {
		handlerLogger.Error("Search use case failed", err, nil)
		respondWithError(w, err, domain.MsgSearchFailed, "")
		return
	}

	handlerLogger.Info("Search finished", port.Fields{"items_on_page": len(page.Properties)})
	RespondWithJSON(w, http.StatusOK, page)
}
