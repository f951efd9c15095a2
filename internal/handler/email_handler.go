package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"insight-server/internal/model"
	"insight-server/internal/service"
	"insight-server/pkg/apierror"
)

type EmailHandler struct {
	email *service.EmailService
}

func NewEmailHandler(email *service.EmailService) *EmailHandler {
	return &EmailHandler{email: email}
}

func (h *EmailHandler) ShareDashboard(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ShareDashboardRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if strings.TrimSpace(payload.Recipients) == "" {
		writeError(w, apierror.New("BAD_REQUEST", "recipients is required", "recipients", http.StatusBadRequest))
		return
	}

	sent := h.email.ShareDashboard(payload.Recipients, payload.Subject, payload.Message, payload.DashboardLink)
	writeSuccess(w, http.StatusOK, map[string]any{"status": "success", "sent": sent})
}

func (h *EmailHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if strings.TrimSpace(payload.Email) == "" {
		writeError(w, apierror.New("BAD_REQUEST", "email is required", "email", http.StatusBadRequest))
		return
	}

	h.email.SendPasswordReset(payload.Email)
	writeSuccess(w, http.StatusOK, map[string]any{"status": "success"})
}
