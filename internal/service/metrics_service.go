package service

import (
	"context"

	"insight-server/internal/model"
)

// MetricsService aggregates the dashboard headline figures. User counts come
// from the store; the revenue and connection numbers are static placeholders
// carried over until a billing feed exists.
type MetricsService struct {
	users UserStore
}

func NewMetricsService(users UserStore) *MetricsService {
	return &MetricsService{users: users}
}

func (s *MetricsService) DashboardMetrics(ctx context.Context) (map[string]any, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.users.CountByRole(ctx, model.RoleUser)
	if err != nil {
		return nil, err
	}

	admins, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"totalUsers":        total,
		"activeUsers":       active,
		"adminUsers":        admins,
		"totalRevenue":      125000.0,
		"conversionRate":    3.2,
		"systemStatus":      "operational",
		"activeConnections": 45,
	}, nil
}

func (s *MetricsService) QuickMetrics(ctx context.Context) (map[string]any, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.users.CountByRole(ctx, model.RoleUser)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"totalRevenue":   125000.0,
		"totalUsers":     total,
		"conversionRate": 3.2,
		"activeUsers":    active,
	}, nil
}
