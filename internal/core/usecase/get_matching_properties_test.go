package usecase

import (
	"context"
	"testing"
	"time"

	"kama-bff/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMatchingProperties_CachedUntilRefresh(t *testing.T) {
	ctx := context.Background()
	api := &fakeAlertsAPI{matching: []domain.Property{{ID: "p1"}}}
	uc := NewGetMatchingPropertiesUseCase(api, newMapCache(), time.Minute, nil)

	got, err := uc.Execute(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = uc.Execute(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, api.matchCalls)

	uc.OnRefresh(ctx, domain.RefreshMatchingPropertiesEvent{UserID: "other", Reason: domain.RefreshAlertCreated})
	_, err = uc.Execute(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, api.matchCalls)

	uc.OnRefresh(ctx, domain.RefreshMatchingPropertiesEvent{UserID: testUser, Reason: domain.RefreshAlertToggled})
	_, err = uc.Execute(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, api.matchCalls)
}

func TestGetMatchingProperties_Error(t *testing.T) {
	uc := NewGetMatchingPropertiesUseCase(&fakeAlertsAPI{matchErr: errBackendDown}, newMapCache(), time.Minute, nil)
	_, err := uc.Execute(context.Background(), testUser)
	assert.ErrorIs(t, err, errBackendDown)
}
