package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/opensource-health/heron/internal/domain"
)

// ListItems handles GET /items with optional type, category and
// search filters. Category and search filters apply within one
// admission type; without filters the full catalog is returned.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	typeParam := r.URL.Query().Get("type")
	category := r.URL.Query().Get("category")
	search := r.URL.Query().Get("search")

	if typeParam == "" && (category != "" || search != "") {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "type is required when filtering by category or search",
		})
		return
	}

	var items []*domain.MedicalItem
	var err error

	switch {
	case search != "":
		admissionType, perr := domain.ParseAdmissionType(typeParam)
		if perr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": perr.Error()})
			return
		}
		items, err = h.repo.SearchItems(ctx, search, admissionType == domain.AdmissionOutpatient)

	case category != "":
		admissionType, perr := domain.ParseAdmissionType(typeParam)
		if perr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": perr.Error()})
			return
		}
		items, err = h.repo.ListItemsByCategory(ctx, category, admissionType == domain.AdmissionOutpatient)

	case typeParam != "":
		admissionType, perr := domain.ParseAdmissionType(typeParam)
		if perr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": perr.Error()})
			return
		}
		items, err = h.repo.ListItemsByType(ctx, admissionType == domain.AdmissionOutpatient)

	default:
		items, err = h.repo.ListItems(ctx)
	}

	if err != nil {
		slog.Error("failed to list items", "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// CreateItem handles POST /items.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var item domain.MedicalItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	created, err := h.repo.CreateItem(ctx, &item)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("catalog item created", "id", created.ID, "name", created.Name)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateItem handles PUT /items/{id}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "item id must be an integer",
		})
		return
	}

	var item domain.MedicalItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	updated, err := h.repo.UpdateItem(ctx, id, &item)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteItem handles DELETE /items/{id}.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "item id must be an integer",
		})
		return
	}

	if err := h.repo.DeleteItem(ctx, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "item deleted",
	})
}
