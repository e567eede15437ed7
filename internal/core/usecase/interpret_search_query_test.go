package usecase

import (
	"math"
	"testing"

	"kama-bff/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestInterpretSearchQuery(t *testing.T) {
	uc := NewInterpretSearchQueryUseCase()

	testCases := []struct {
		name     string
		query    string
		category domain.SearchCategory
		status   string
		expected domain.SearchFilters
	}{
		{
			name:     "city and rooms for rent",
			query:    "paris 3",
			category: domain.CategoryRent,
			status:   "approved",
			expected: domain.SearchFilters{City: "Paris", Rooms: int64Ptr(3), Availability: "rent", Status: "approved"},
		},
		{
			name:     "price range to buy",
			query:    "150000-300000",
			category: domain.CategoryBuy,
			status:   "approved",
			expected: domain.SearchFilters{
				MinPrice: int64Ptr(150000),
				MaxPrice: int64Ptr(300000),
				Type:     domain.TypeFilter{"maison", "appartement", "terrain"},
				Status:   "approved",
			},
		},
		{
			name:     "multi word city with max price on all",
			query:    "saint malo 500000",
			category: domain.CategoryAll,
			status:   "approved",
			expected: domain.SearchFilters{City: "Saint Malo", MaxPrice: int64Ptr(500000), Status: "online"},
		},
		{
			name:     "Libreville 15000000 2",
			query:    "Libreville 15000000 2",
			category: domain.CategoryAll,
			expected: domain.SearchFilters{City: "Libreville", MaxPrice: int64Ptr(15000000), Rooms: int64Ptr(2), Status: "online"},
		},
		{
			name:     "200000 150000 keeps descending order",
			query:    "200000 150000",
			category: domain.CategoryAll,
			expected: domain.SearchFilters{MaxPrice: int64Ptr(200000), MinPrice: int64Ptr(150000), Status: "online"},
		},
		{
			name:     "second smaller price becomes min",
			query:    "400000 200000",
			category: domain.CategoryAll,
			expected: domain.SearchFilters{MaxPrice: int64Ptr(400000), MinPrice: int64Ptr(200000), Status: "online"},
		},
		{
			name:     "second larger price is dropped",
			query:    "200000 400000",
			category: domain.CategoryAll,
			expected: domain.SearchFilters{MaxPrice: int64Ptr(200000), Status: "online"},
		},
		{
			name:     "empty query on vacation",
			query:    "",
			category: domain.CategoryVacation,
			status:   "approved",
			expected: domain.SearchFilters{Type: domain.TypeFilter{"vacances"}, Status: "approved"},
		},
		{
			name:     "zero is ignored",
			query:    "0",
			category: domain.CategoryRent,
			expected: domain.SearchFilters{Availability: "rent"},
		},
		{
			name:     "last rooms token wins",
			query:    "2 4",
			category: domain.CategoryRent,
			expected: domain.SearchFilters{Rooms: int64Ptr(4), Availability: "rent"},
		},
		{
			name:     "threshold itself is rooms",
			query:    "10000",
			category: domain.CategoryRent,
			expected: domain.SearchFilters{Rooms: int64Ptr(10000), Availability: "rent"},
		},
		{
			name:     "mixed case word is normalized",
			query:    "LYON",
			category: domain.CategoryRent,
			expected: domain.SearchFilters{City: "Lyon", Availability: "rent"},
		},
		{
			name:     "accented word keeps accent",
			query:    "évry",
			category: domain.CategoryRent,
			expected: domain.SearchFilters{City: "Évry", Availability: "rent"},
		},
		{
			name:     "negative number is a word",
			query:    "-5",
			category: domain.CategoryRent,
			expected: domain.SearchFilters{City: "-5", Availability: "rent"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := uc.Execute(tc.query, tc.category, tc.status)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestInterpretSearchQuery_Overflow(t *testing.T) {
	uc := NewInterpretSearchQueryUseCase()

	got := uc.Execute("99999999999999999999999", domain.CategoryRent, "")
	require.NotNil(t, got.MaxPrice)
	assert.Equal(t, int64(math.MaxInt64), *got.MaxPrice)
}

func TestInterpretSearchQuery_Deterministic(t *testing.T) {
	uc := NewInterpretSearchQueryUseCase()
	query := "nice  3 100000-250000 centre"

	first := uc.Execute(query, domain.CategoryBuy, "approved")
	second := uc.Execute(query, domain.CategoryBuy, "approved")
	assert.Equal(t, first, second)

	// буквальные списки типов не должны разделять память между вызовами
	first.Type[0] = "changed"
	third := uc.Execute(query, domain.CategoryBuy, "approved")
	assert.Equal(t, "maison", third.Type[0])
}

func TestInterpretSearchQuery_CategoryOverridesAvailability(t *testing.T) {
	uc := NewInterpretSearchQueryUseCase()

	got := uc.Execute("rent", domain.CategoryBuy, "approved")
	assert.Empty(t, got.Availability)
	assert.Equal(t, "Rent", got.City)
}

func TestParseSearchCategory(t *testing.T) {
	assert.Equal(t, domain.CategoryBuy, domain.ParseSearchCategory("acheter"))
	assert.Equal(t, domain.CategoryRent, domain.ParseSearchCategory("louer"))
	assert.Equal(t, domain.CategoryVacation, domain.ParseSearchCategory("vacances"))
	assert.Equal(t, domain.CategoryAll, domain.ParseSearchCategory("unknown"))
	assert.Equal(t, domain.CategoryAll, domain.ParseSearchCategory(""))
}
