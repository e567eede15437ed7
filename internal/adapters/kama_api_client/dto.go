package kama_api_client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"kama-bff/internal/core/domain"
)

// DTO ответа GET /api/properties
type propertiesResponse struct {
	Properties []domain.Property  `json:"properties"`
	Pagination *domain.Pagination `json:"pagination"`
}

type alertCriteriaRequest struct {
	Title    string   `json:"title"`
	Type     string   `json:"type,omitempty"`
	City     string   `json:"city,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	Rooms    *int     `json:"rooms,omitempty"`
}

func toAlertCriteriaRequest(c domain.AlertCriteria) alertCriteriaRequest {
	return alertCriteriaRequest(c)
}

// Бэкенд отдаёт списки либо голым массивом, либо обёрнутыми в объект
// ({"alerts": [...]}, {"data": [...]}). decodeList принимает оба варианта.
func decodeList(raw []byte, wrapperKeys ...string) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("[]"), nil
	}
	if trimmed[0] == '[' {
		return trimmed, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, fmt.Errorf("unexpected list payload: %w", err)
	}
	for _, key := range append(wrapperKeys, "data") {
		if inner, ok := wrapper[key]; ok {
			return decodeList(inner)
		}
	}
	return nil, fmt.Errorf("unexpected list payload: none of %v found", append(wrapperKeys, "data"))
}

// favoriteIDs принимает массив id или массив карточек объявлений.
func favoriteIDs(list json.RawMessage) ([]string, error) {
	var ids []string
	if err := json.Unmarshal(list, &ids); err == nil {
		return ids, nil
	}

	var cards []struct {
		ID       string `json:"_id"`
		Property *struct {
			ID string `json:"_id"`
		} `json:"property"`
	}
	if err := json.Unmarshal(list, &cards); err != nil {
		return nil, fmt.Errorf("unexpected favorites payload: %w", err)
	}

	ids = make([]string, 0, len(cards))
	for _, c := range cards {
		switch {
		case c.Property != nil && c.Property.ID != "":
			ids = append(ids, c.Property.ID)
		case c.ID != "":
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}
