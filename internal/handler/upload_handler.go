package handler

import (
	"errors"
	"net/http"

	"insight-server/internal/model"
	"insight-server/internal/service"
	"insight-server/pkg/apierror"
)

type UploadHandler struct {
	uploads       *service.UploadService
	maxUploadSize int64
}

func NewUploadHandler(uploads *service.UploadService, maxUploadSize int64) *UploadHandler {
	return &UploadHandler{uploads: uploads, maxUploadSize: maxUploadSize}
}

func (h *UploadHandler) UploadProfilePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, apierror.New("PAYLOAD_TOO_LARGE", "file exceeds the upload size limit", "", http.StatusRequestEntityTooLarge))
			return
		}
		writeError(w, apierror.New("BAD_REQUEST", "multipart form must carry a 'file' part", "", http.StatusBadRequest))
		return
	}
	defer file.Close()

	path, err := h.uploads.SaveProfilePhoto(r.Context(), id, file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, apierror.New("PAYLOAD_TOO_LARGE", "file exceeds the upload size limit", "", http.StatusRequestEntityTooLarge))
			return
		}
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.UploadResponse{PhotoPath: path})
}

func (h *UploadHandler) DeleteProfilePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.uploads.RemoveProfilePhoto(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true})
}
