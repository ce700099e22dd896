package handlers

import (
	"net/http"

	"campusdesk/internal/repository"
	"campusdesk/internal/utils"
)

type StatusHTTP struct {
	repo repository.StatusRepository
}

func NewStatusHTTP(r repository.StatusRepository) *StatusHTTP { return &StatusHTTP{repo: r} }

// GET /api/statuses returns the deployed status catalog (value/label/badge color).
func (h *StatusHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.repo.List(r.Context())
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items})
	}
}
