package kama_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const maxErrorBody = 512

// KamaAPIClient - клиент REST-бэкенда Kama. Токен вызывающего пользователя
// берётся из контекста и пробрасывается как Bearer.
type KamaAPIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewKamaAPIClient(baseURL string, timeout time.Duration) *KamaAPIClient {
	return &KamaAPIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// doRequest - внутренний хелпер: trace id, авторизация, проверка статуса.
// Ответ с кодом вне 2xx превращается в ошибку, обёрнутую в ErrUpstreamUnavailable.
func (c *KamaAPIClient) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	if principal, ok := contextkeys.PrincipalFromContext(ctx); ok && principal.Token != "" {
		req.Header.Set("Authorization", "Bearer "+principal.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrUpstreamUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: upstream returned %d", domain.ErrUnauthorized, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := respBody
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, fmt.Errorf("%w: %s %s returned %d: %s", domain.ErrUpstreamUnavailable, method, path, resp.StatusCode, string(snippet))
	}
	return respBody, nil
}

func (c *KamaAPIClient) logger(ctx context.Context, method string, fields port.Fields) port.LoggerPort {
	base := port.Fields{"component": "KamaAPIClient", "method": method}
	for k, v := range fields {
		base[k] = v
	}
	return contextkeys.LoggerFromContext(ctx).WithFields(base)
}

func (c *KamaAPIClient) FindProperties(ctx context.Context, filters domain.SearchFilters, page, limit int, sort, surface string) (*domain.PropertyPage, error) {
	clientLogger := c.logger(ctx, "FindProperties", port.Fields{"page": page, "limit": limit})

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	for _, t := range filters.Type {
		query.Add("type", t)
	}
	setIfNotEmpty(query, "status", filters.Status)
	setIfNotEmpty(query, "availability", filters.Availability)
	setIfNotEmpty(query, "city", filters.City)
	setIfNotEmpty(query, "sort", sort)
	setIfNotEmpty(query, "surface", surface)
	setInt64(query, "minPrice", filters.MinPrice)
	setInt64(query, "maxPrice", filters.MaxPrice)
	setInt64(query, "rooms", filters.Rooms)

	raw, err := c.doRequest(ctx, http.MethodGet, "/api/properties", query, nil)
	if err != nil {
		clientLogger.Error("Properties request failed", err, nil)
		return nil, err
	}

	var resp propertiesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		clientLogger.Error("Failed to decode properties response", err, nil)
		return nil, fmt.Errorf("%w: failed to decode properties response: %v", domain.ErrUpstreamUnavailable, err)
	}

	result := &domain.PropertyPage{Properties: resp.Properties}
	if result.Properties == nil {
		result.Properties = []domain.Property{}
	}
	if resp.Pagination != nil {
		result.Pagination = *resp.Pagination
	} else {
		result.Pagination = domain.Pagination{Current: page, Pages: 1, Total: len(result.Properties)}
	}

	clientLogger.Debug("Properties received", port.Fields{"total": result.Pagination.Total})
	return result, nil
}

func (c *KamaAPIClient) ListAlerts(ctx context.Context, userID string) ([]domain.Alert, error) {
	if userID == "" {
		return nil, domain.ErrInvalidUserID
	}
	clientLogger := c.logger(ctx, "ListAlerts", port.Fields{"user_id": userID})

	raw, err := c.doRequest(ctx, http.MethodGet, "/api/users/alerts", nil, nil)
	if err != nil {
		clientLogger.Error("Alerts request failed", err, nil)
		return nil, err
	}

	list, err := decodeList(raw, "alerts")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	var alerts []domain.Alert
	if err := json.Unmarshal(list, &alerts); err != nil {
		clientLogger.Error("Failed to decode alerts", err, nil)
		return nil, fmt.Errorf("%w: failed to decode alerts: %v", domain.ErrUpstreamUnavailable, err)
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	return alerts, nil
}

// CreateAlert возвращает (nil, nil), если сервер принял запрос, но тело ответа пустое
// или не разбирается: вызывающая сторона строит алерт из критериев сама.
func (c *KamaAPIClient) CreateAlert(ctx context.Context, userID string, criteria domain.AlertCriteria) (*domain.Alert, error) {
	if userID == "" {
		return nil, domain.ErrInvalidUserID
	}
	clientLogger := c.logger(ctx, "CreateAlert", port.Fields{"user_id": userID})

	raw, err := c.doRequest(ctx, http.MethodPost, "/api/users/alerts", nil, toAlertCriteriaRequest(criteria))
	if err != nil {
		clientLogger.Error("Create alert request failed", err, nil)
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var envelope struct {
		Alert *domain.Alert `json:"alert"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Alert != nil {
		return envelope.Alert, nil
	}

	var alert domain.Alert
	if err := json.Unmarshal(raw, &alert); err != nil {
		clientLogger.Warn("Create alert response is not an alert object", port.Fields{"error": err.Error()})
		return nil, nil
	}
	if alert.ID == "" && alert.Title == "" {
		return nil, nil
	}
	return &alert, nil
}

func (c *KamaAPIClient) DeleteAlert(ctx context.Context, userID, alertID string) error {
	if userID == "" {
		return domain.ErrInvalidUserID
	}
	if alertID == "" {
		return domain.ErrInvalidAlertID
	}

	_, err := c.doRequest(ctx, http.MethodDelete, "/api/users/alerts/"+url.PathEscape(alertID), nil, nil)
	if err != nil {
		c.logger(ctx, "DeleteAlert", port.Fields{"user_id": userID, "alert_id": alertID}).
			Error("Delete alert request failed", err, nil)
		return err
	}
	return nil
}

func (c *KamaAPIClient) ListMatchingProperties(ctx context.Context, userID string) ([]domain.Property, error) {
	if userID == "" {
		return nil, domain.ErrInvalidUserID
	}
	clientLogger := c.logger(ctx, "ListMatchingProperties", port.Fields{"user_id": userID})

	raw, err := c.doRequest(ctx, http.MethodGet, "/api/users/alerts/matching", nil, nil)
	if err != nil {
		clientLogger.Error("Matching properties request failed", err, nil)
		return nil, err
	}

	list, err := decodeList(raw, "properties")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	var properties []domain.Property
	if err := json.Unmarshal(list, &properties); err != nil {
		return nil, fmt.Errorf("%w: failed to decode matching properties: %v", domain.ErrUpstreamUnavailable, err)
	}
	if properties == nil {
		properties = []domain.Property{}
	}
	return properties, nil
}

func (c *KamaAPIClient) ListFavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, domain.ErrInvalidUserID
	}

	raw, err := c.doRequest(ctx, http.MethodGet, "/api/users/favorites", nil, nil)
	if err != nil {
		c.logger(ctx, "ListFavoriteIDs", port.Fields{"user_id": userID}).Error("Favorites request failed", err, nil)
		return nil, err
	}

	list, err := decodeList(raw, "favorites")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	ids, err := favoriteIDs(list)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return ids, nil
}

func (c *KamaAPIClient) AddFavorite(ctx context.Context, userID, propertyID string) error {
	return c.changeFavorite(ctx, http.MethodPost, userID, propertyID)
}

func (c *KamaAPIClient) RemoveFavorite(ctx context.Context, userID, propertyID string) error {
	return c.changeFavorite(ctx, http.MethodDelete, userID, propertyID)
}

func (c *KamaAPIClient) changeFavorite(ctx context.Context, method, userID, propertyID string) error {
	if userID == "" {
		return domain.ErrInvalidUserID
	}
	if propertyID == "" {
		return domain.ErrInvalidPropertyID
	}

	_, err := c.doRequest(ctx, method, "/api/users/favorites/"+url.PathEscape(propertyID), nil, nil)
	if err != nil {
		c.logger(ctx, "changeFavorite", port.Fields{"user_id": userID, "property_id": propertyID, "http_method": method}).
			Error("Favorite update failed", err, nil)
		return err
	}
	return nil
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setInt64(q url.Values, key string, value *int64) {
	if value != nil {
		q.Set(key, strconv.FormatInt(*value, 10))
	}
}
