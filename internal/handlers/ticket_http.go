package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"campusdesk/internal/apperr"
	"campusdesk/internal/middleware"
	"campusdesk/internal/repository"
	"campusdesk/internal/service"
	"campusdesk/internal/utils"
)

// TicketHTTP wires ticket endpoints to the ticket service.
type TicketHTTP struct {
	svc *service.TicketService
}

func NewTicketHTTP(svc *service.TicketService) *TicketHTTP {
	return &TicketHTTP{svc: svc}
}

func ticketID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeErr(w http.ResponseWriter, err error) {
	utils.Error(w, apperr.Status(err), apperr.Message(err))
}

// -----------------------------------------------------------------------------
// GET /api/tickets
// -----------------------------------------------------------------------------
func (h *TicketHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		f := repository.TicketFilter{
			Q:        strings.TrimSpace(qv.Get("q")),
			Status:   strings.TrimSpace(qv.Get("status")),
			Category: strings.TrimSpace(qv.Get("category")),
			Limit:    utils.QueryInt(qv, "limit", 20),
			Offset:   utils.QueryInt(qv, "offset", 0),
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		items, total, err := h.svc.List(r.Context(), uid, f)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
	}
}

// -----------------------------------------------------------------------------
// GET /api/tickets/{id}
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ticketID(r)
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid ticket id")
			return
		}
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		t, err := h.svc.Get(r.Context(), uid, id)
		if err != nil {
			writeErr(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// -----------------------------------------------------------------------------
// POST /api/tickets
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Create() http.HandlerFunc {
	type inDTO struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Subcategory string `json:"subcategory"`
		Location    string `json:"location"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		t, err := h.svc.Create(r.Context(), uid, service.CreateInput{
			Title:       in.Title,
			Description: in.Description,
			Category:    in.Category,
			Subcategory: in.Subcategory,
			Location:    in.Location,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		utils.JSON(w, http.StatusCreated, t)
	}
}

// -----------------------------------------------------------------------------
// PATCH /api/tickets/{id}
// Body: {status?, comment?, commentType?}
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Update() http.HandlerFunc {
	type inDTO struct {
		Status      string `json:"status"`
		Comment     string `json:"comment"`
		CommentType string `json:"commentType"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ticketID(r)
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid ticket id")
			return
		}
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		t, err := h.svc.SetStatus(r.Context(), uid, id, in.Status, in.Comment, in.CommentType)
		if err != nil {
			writeErr(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// -----------------------------------------------------------------------------
// POST /api/tickets/{id}/comments
// -----------------------------------------------------------------------------
func (h *TicketHTTP) AddComment() http.HandlerFunc {
	type inDTO struct {
		Text string `json:"text"`
		Type string `json:"type"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ticketID(r)
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid ticket id")
			return
		}
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(in.Text) == "" {
			utils.Error(w, http.StatusBadRequest, "text is required")
			return
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		t, err := h.svc.SetStatus(r.Context(), uid, id, "", in.Text, in.Type)
		if err != nil {
			writeErr(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// -----------------------------------------------------------------------------
// POST /api/tickets/{id}/forward
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Forward() http.HandlerFunc {
	type inDTO struct {
		CommitteeID int    `json:"committee_id"`
		Reason      string `json:"reason"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ticketID(r)
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid ticket id")
			return
		}
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if in.CommitteeID <= 0 {
			utils.Error(w, http.StatusBadRequest, "committee_id is required")
			return
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		t, c, err := h.svc.Forward(r.Context(), uid, id, in.CommitteeID, in.Reason)
		if err != nil {
			writeErr(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "ticket forwarded to " + c.Name,
			"ticket":  t,
			"forwardedTo": map[string]any{
				"id":    c.HeadID,
				"name":  c.HeadName,
				"email": c.HeadEmail,
			},
		})
	}
}

// -----------------------------------------------------------------------------
// DELETE /api/tickets/{id}
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ticketID(r)
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid ticket id")
			return
		}
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		if err := h.svc.Delete(r.Context(), uid, id); err != nil {
			writeErr(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// -----------------------------------------------------------------------------
// GET/POST/DELETE /api/tickets/{id}/committee-tags
// -----------------------------------------------------------------------------
func (h *TicketHTTP) ListTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ticketID(r)
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid ticket id")
			return
		}
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		tags, err := h.svc.Tags(r.Context(), uid, id)
		if err != nil {
			writeErr(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": tags})
	}
}

func (h *TicketHTTP) AddTag() http.HandlerFunc {
	type inDTO struct {
		CommitteeID int    `json:"committee_id"`
		Reason      string `json:"reason"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ticketID(r)
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid ticket id")
			return
		}
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if in.CommitteeID <= 0 {
			utils.Error(w, http.StatusBadRequest, "committee_id is required")
			return
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		tag, err := h.svc.AddTag(r.Context(), uid, id, in.CommitteeID, in.Reason)
		if err != nil {
			writeErr(w, err)
			return
		}
		utils.JSON(w, http.StatusCreated, tag)
	}
}

func (h *TicketHTTP) DeleteTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ticketID(r)
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid ticket id")
			return
		}
		qv := r.URL.Query()
		tagID := utils.QueryInt(qv, "tagId", 0)
		committeeID := utils.QueryInt(qv, "committeeId", 0)

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		if err := h.svc.DeleteTag(r.Context(), uid, id, tagID, committeeID); err != nil {
			writeErr(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
