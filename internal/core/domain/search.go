package domain

import "encoding/json"

// SearchCategory - контекст просмотра, из которого пришёл пользователь (маршрут страницы).
type SearchCategory string

const (
	CategoryBuy      SearchCategory = "acheter"
	CategoryRent     SearchCategory = "louer"
	CategoryVacation SearchCategory = "vacances"
	CategoryAll      SearchCategory = "all"
)

// ParseSearchCategory приводит значение маршрута к категории. Неизвестные значения
// считаются CategoryAll.
func ParseSearchCategory(raw string) SearchCategory {
	switch SearchCategory(raw) {
	case CategoryBuy, CategoryRent, CategoryVacation:
		return SearchCategory(raw)
	default:
		return CategoryAll
	}
}

// TypeFilter - тип объекта. Один элемент сериализуется строкой, несколько - списком.
type TypeFilter []string

func (t TypeFilter) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

func (t *TypeFilter) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = TypeFilter{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = TypeFilter(list)
	return nil
}

// SearchFilters - структурированные фильтры, выведенные из строки поиска и категории.
// Не сохраняются, строятся заново на каждый запрос.
type SearchFilters struct {
	Type         TypeFilter `json:"type,omitempty"`
	Availability string     `json:"availability,omitempty"`
	City         string     `json:"city,omitempty"`
	MinPrice     *int64     `json:"minPrice,omitempty"`
	MaxPrice     *int64     `json:"maxPrice,omitempty"`
	Rooms        *int64     `json:"rooms,omitempty"`
	Status       string     `json:"status,omitempty"`
}

// SearchRequest - параметры поиска объявлений, пришедшие от клиента.
type SearchRequest struct {
	Query         string
	Category      SearchCategory
	DefaultStatus string
	Page          int
	Limit         int
	Sort          string
	Surface       string
}
