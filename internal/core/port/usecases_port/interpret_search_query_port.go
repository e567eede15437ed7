package usecases_port

import "kama-bff/internal/core/domain"

type InterpretSearchQueryUseCasePort interface {
	Execute(query string, category domain.SearchCategory, defaultStatus string) domain.SearchFilters
}
