package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"insight-server/internal/model"
	"insight-server/internal/service"
	"insight-server/pkg/apierror"
)

type VisualizationHandler struct {
	visualizations *service.VisualizationService
}

func NewVisualizationHandler(visualizations *service.VisualizationService) *VisualizationHandler {
	return &VisualizationHandler{visualizations: visualizations}
}

func (h *VisualizationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.VisualizationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if strings.TrimSpace(payload.NaturalLanguageQuery) == "" {
		writeError(w, apierror.New("BAD_REQUEST", "naturalLanguageQuery is required", "naturalLanguageQuery", http.StatusBadRequest))
		return
	}

	result, err := h.visualizations.Generate(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}
