package handler

import (
	"net/http"

	"insight-server/internal/service"
)

type MetricsHandler struct {
	metrics *service.MetricsService
}

func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

func (h *MetricsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.metrics.DashboardMetrics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, metrics)
}

func (h *MetricsHandler) Quick(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.metrics.QuickMetrics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, metrics)
}
