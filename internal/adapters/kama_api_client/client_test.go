package kama_api_client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedContext() context.Context {
	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-42")
	return contextkeys.ContextWithPrincipal(ctx, contextkeys.Principal{UserID: "u1", Token: "tok"})
}

func TestFindProperties_BuildsQueryAndForwardsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/properties", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "trace-42", r.Header.Get("X-Trace-ID"))

		q := r.URL.Query()
		assert.Equal(t, []string{"maison", "appartement"}, q["type"])
		assert.Equal(t, "Paris", q.Get("city"))
		assert.Equal(t, "3", q.Get("rooms"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Empty(t, q.Get("availability"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"properties":[{"_id":"p1","title":"T2","price":1200}],"pagination":{"current":2,"pages":5,"total":50}}`)
	}))
	defer server.Close()

	client := NewKamaAPIClient(server.URL, time.Second)
	rooms := int64(3)
	page, err := client.FindProperties(authedContext(), domain.SearchFilters{
		Type:  domain.TypeFilter{"maison", "appartement"},
		City:  "Paris",
		Rooms: &rooms,
	}, 2, 12, "", "")

	require.NoError(t, err)
	require.Len(t, page.Properties, 1)
	assert.Equal(t, "p1", page.Properties[0].ID)
	assert.Equal(t, 50, page.Pagination.Total)
}

func TestListAlerts_AcceptsWrappedAndBareLists(t *testing.T) {
	bodies := []string{
		`[{"_id":"a1","title":"Paris","active":true}]`,
		`{"alerts":[{"_id":"a1","title":"Paris","active":true}]}`,
		`{"data":[{"_id":"a1","title":"Paris","active":true}]}`,
	}
	for _, body := range bodies {
		body := body
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		}))

		alerts, err := NewKamaAPIClient(server.URL, time.Second).ListAlerts(authedContext(), "u1")
		server.Close()

		require.NoError(t, err, body)
		require.Len(t, alerts, 1)
		assert.Equal(t, "a1", alerts[0].ID)
		assert.True(t, alerts[0].Active)
	}
}

func TestClient_RejectsEmptyUserWithoutRequest(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	client := NewKamaAPIClient(server.URL, time.Second)
	ctx := context.Background()

	_, err := client.ListAlerts(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidUserID)
	_, err = client.CreateAlert(ctx, "", domain.AlertCriteria{})
	assert.ErrorIs(t, err, domain.ErrInvalidUserID)
	assert.ErrorIs(t, client.DeleteAlert(ctx, "", "a1"), domain.ErrInvalidUserID)
	assert.ErrorIs(t, client.DeleteAlert(ctx, "u1", ""), domain.ErrInvalidAlertID)
	_, err = client.ListFavoriteIDs(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidUserID)
	assert.ErrorIs(t, client.AddFavorite(ctx, "u1", ""), domain.ErrInvalidPropertyID)

	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestClient_UpstreamErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/users/favorites" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewKamaAPIClient(server.URL, time.Second)

	_, err := client.ListAlerts(authedContext(), "u1")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	_, err = client.ListFavoriteIDs(authedContext(), "u1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreateAlert_EmptyOrMalformedBodyYieldsNil(t *testing.T) {
	for _, body := range []string{"", "OK", `{"message":"created"}`} {
		body := body
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, body)
		}))

		alert, err := NewKamaAPIClient(server.URL, time.Second).CreateAlert(authedContext(), "u1", domain.AlertCriteria{Title: "x"})
		server.Close()

		require.NoError(t, err, body)
		assert.Nil(t, alert, body)
	}
}

func TestCreateAlert_ParsesCreatedAlert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"title":"Lyon","city":"Lyon"}`, string(raw))
		_, _ = io.WriteString(w, `{"_id":"a9","title":"Lyon","city":"Lyon","active":true}`)
	}))
	defer server.Close()

	alert, err := NewKamaAPIClient(server.URL, time.Second).CreateAlert(authedContext(), "u1", domain.AlertCriteria{Title: "Lyon", City: "Lyon"})
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, "a9", alert.ID)
}

func TestListFavoriteIDs_AcceptsCards(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"favorites":[{"_id":"p1"},{"property":{"_id":"p2"}}]}`)
	}))
	defer server.Close()

	ids, err := NewKamaAPIClient(server.URL, time.Second).ListFavoriteIDs(authedContext(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)
}

func TestFavoriteToggleEndpoints(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewKamaAPIClient(server.URL, time.Second)
	require.NoError(t, client.RemoveFavorite(authedContext(), "u1", "p7"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/users/favorites/p7", gotPath)
}
