package domain

import "time"

// AlertCriteria - сохранённые пользователем критерии поиска.
type AlertCriteria struct {
	Title    string   `json:"title"`
	Type     string   `json:"type,omitempty"`
	City     string   `json:"city,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	Rooms    *int     `json:"rooms,omitempty"`
}

// Alert - алерт в том виде, в котором его видит пользователь.
// Active может быть перекрыт локально сохранённым флагом.
type Alert struct {
	ID        string     `json:"_id"`
	Title     string     `json:"title"`
	Type      string     `json:"type,omitempty"`
	City      string     `json:"city,omitempty"`
	MinPrice  *float64   `json:"minPrice,omitempty"`
	MaxPrice  *float64   `json:"maxPrice,omitempty"`
	Rooms     *int       `json:"rooms,omitempty"`
	Active    bool       `json:"active"`
	LastSent  *time.Time `json:"lastSent,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// AlertFromCriteria строит алерт из введённых критериев (без id).
func AlertFromCriteria(c AlertCriteria) Alert {
	return Alert{
		Title:    c.Title,
		Type:     c.Type,
		City:     c.City,
		MinPrice: c.MinPrice,
		MaxPrice: c.MaxPrice,
		Rooms:    c.Rooms,
	}
}

// AlertsSnapshot - то, что отображается после загрузки списка алертов.
type AlertsSnapshot struct {
	Alerts    []Alert `json:"alerts"`
	Error     string  `json:"error,omitempty"`
	FromCache bool    `json:"fromCache"`
}
