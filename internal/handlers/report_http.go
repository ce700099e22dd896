package handlers

import (
	"net/http"
	"time"

	"campusdesk/internal/models"
	"campusdesk/internal/repository"
	"campusdesk/internal/utils"
)

type ReportsHTTP struct {
	repo repository.TicketRepository
}

func NewReportsHTTP(r repository.TicketRepository) *ReportsHTTP { return &ReportsHTTP{repo: r} }

// GET /api/reports/summary
// Returns: { open, resolved7d, byCategory }
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		open, err := h.repo.CountByStatuses(r.Context(), []string{models.StatusResolved, models.StatusClosed}, false)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		resolved7d, err := h.repo.CountResolvedSince(r.Context(), time.Now().Add(-7*24*time.Hour))
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		byCategory, err := h.repo.CountByCategory(r.Context())
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}

		utils.JSON(w, http.StatusOK, map[string]any{
			"open":       open,
			"resolved7d": resolved7d,
			"byCategory": byCategory,
		})
	}
}
