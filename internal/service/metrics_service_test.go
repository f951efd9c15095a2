package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insight-server/internal/model"
	"insight-server/internal/repository"
)

func TestMetricsService_DashboardMetrics(t *testing.T) {
	store := repository.NewMemoryUserStore()
	svc := NewMetricsService(store)

	seedUser(t, store, "a@example.com", "x", model.RoleUser)
	seedUser(t, store, "b@example.com", "x", model.RoleUser)
	seedUser(t, store, "root@example.com", "x", model.RoleAdmin)

	metrics, err := svc.DashboardMetrics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, metrics["totalUsers"])
	assert.Equal(t, 2, metrics["activeUsers"])
	assert.Equal(t, 1, metrics["adminUsers"])
	assert.Equal(t, "operational", metrics["systemStatus"])
}

func TestMetricsService_QuickMetrics(t *testing.T) {
	store := repository.NewMemoryUserStore()
	svc := NewMetricsService(store)

	seedUser(t, store, "a@example.com", "x", model.RoleUser)

	metrics, err := svc.QuickMetrics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, metrics["totalUsers"])
	assert.Equal(t, 1, metrics["activeUsers"])
	assert.Contains(t, metrics, "totalRevenue")
	assert.Contains(t, metrics, "conversionRate")
}
