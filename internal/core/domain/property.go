package domain

// Property - карточка объявления в том виде, в котором её отдаёт бэкенд Kama.
type Property struct {
	ID           string   `json:"_id"`
	Title        string   `json:"title"`
	Type         string   `json:"type"`
	Availability string   `json:"availability,omitempty"`
	City         string   `json:"city"`
	Price        float64  `json:"price"`
	Rooms        int      `json:"rooms,omitempty"`
	Surface      float64  `json:"surface,omitempty"`
	Status       string   `json:"status"`
	Images       []string `json:"images,omitempty"`
}

type Pagination struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

// PropertyPage - одна страница результатов поиска.
type PropertyPage struct {
	Properties []Property    `json:"properties"`
	Pagination Pagination    `json:"pagination"`
	Filters    SearchFilters `json:"filters"`
}
