package usecase

import (
	"errors"
	"kama-bff/internal/core/domain"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// Числа больше этого порога считаются ценой, остальные (больше нуля) - количеством комнат.
	priceThreshold = 10000

	statusOnline = "online"
	rentValue    = "rent"
)

var (
	integerToken = regexp.MustCompile(`^\d+$`)
	rangeToken   = regexp.MustCompile(`^\d+-\d+$`)

	buyTypes = domain.TypeFilter{"maison", "appartement", "terrain"}
)

// InterpretSearchQueryUseCase превращает строку поиска в структурированные фильтры.
// Чистая функция: одинаковые входные данные дают одинаковый результат.
type InterpretSearchQueryUseCase struct{}

func NewInterpretSearchQueryUseCase() *InterpretSearchQueryUseCase {
	return &InterpretSearchQueryUseCase{}
}

func (uc *InterpretSearchQueryUseCase) Execute(query string, category domain.SearchCategory, defaultStatus string) domain.SearchFilters {
	filters := domain.SearchFilters{Status: defaultStatus}

	for _, token := range strings.Fields(query) {
		switch {
		case integerToken.MatchString(token):
			uc.applyNumber(&filters, parseInt(token))

		case rangeToken.MatchString(token):
			bounds := strings.SplitN(token, "-", 2)
			minPrice, maxPrice := parseInt(bounds[0]), parseInt(bounds[1])
			filters.MinPrice = &minPrice
			filters.MaxPrice = &maxPrice

		default:
			word := capitalize(token)
			if filters.City == "" {
				filters.City = word
			} else {
				filters.City += " " + word
			}
		}
	}

	switch category {
	case domain.CategoryBuy:
		filters.Type = append(domain.TypeFilter(nil), buyTypes...)
		filters.Availability = ""
	case domain.CategoryRent:
		filters.Availability = rentValue
	case domain.CategoryVacation:
		filters.Type = domain.TypeFilter{string(domain.CategoryVacation)}
	default:
		// перекрывает статус, переданный вызывающей стороной
		filters.Status = statusOnline
	}

	return filters
}

// applyNumber: первое большое число - максимальная цена, следующее меньшее - минимальная.
// Большее число после уже заданного максимума отбрасывается.
func (uc *InterpretSearchQueryUseCase) applyNumber(filters *domain.SearchFilters, n int64) {
	switch {
	case n > priceThreshold:
		if filters.MaxPrice == nil {
			filters.MaxPrice = &n
		} else if n < *filters.MaxPrice {
			filters.MinPrice = &n
		}
	case n > 0:
		filters.Rooms = &n
	}
}

// capitalize: первая буква заглавная, остальные строчные.
// cases.Caser хранит состояние, поэтому создаётся на каждый вызов.
func capitalize(token string) string {
	runes := []rune(cases.Lower(language.French).String(token))
	if len(runes) == 0 {
		return ""
	}
	head := cases.Upper(language.French).String(string(runes[0]))
	return head + string(runes[1:])
}

// parseInt разбирает строку из цифр. Переполнение даёт максимум int64.
func parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return n
		}
		return 0
	}
	return n
}
