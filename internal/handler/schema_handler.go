package handler

import (
	"context"
	"encoding/json"
	"net/http"
)

type schemaStore interface {
	Tables(ctx context.Context, schema string) (json.RawMessage, error)
}

// SchemaHandler exposes the catalog introspection used by the visualization
// frontend to describe the database to the workflow engine.
type SchemaHandler struct {
	store  schemaStore
	schema string
}

func NewSchemaHandler(store schemaStore, schema string) *SchemaHandler {
	return &SchemaHandler{store: store, schema: schema}
}

func (h *SchemaHandler) Tables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.Tables(r.Context(), h.schema)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tables)
}
