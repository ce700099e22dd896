package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"campusdesk/internal/models"
	"campusdesk/internal/repository"
	"campusdesk/internal/utils"
)

type CommitteeHTTP struct {
	repo  repository.CommitteeRepository
	users repository.UserRepository
}

func NewCommitteeHTTP(repo repository.CommitteeRepository, users repository.UserRepository) *CommitteeHTTP {
	return &CommitteeHTTP{repo: repo, users: users}
}

// GET /api/committees
func (h *CommitteeHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.repo.List(r.Context())
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// POST /api/committees (super_admin)
func (h *CommitteeHTTP) Create() http.HandlerFunc {
	type inDTO struct {
		Name   string `json:"name"`
		Email  string `json:"email"`
		HeadID string `json:"head_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" || in.HeadID == "" {
			utils.Error(w, http.StatusBadRequest, "name and head_id are required")
			return
		}

		head, err := h.users.GetByID(r.Context(), in.HeadID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if head == nil {
			utils.Error(w, http.StatusNotFound, "head user not found")
			return
		}

		c := &models.Committee{Name: in.Name, Email: strings.TrimSpace(in.Email), HeadID: in.HeadID}
		if err := h.repo.Create(r.Context(), c); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusCreated, c)
	}
}

// GET /api/committees/{id}/members
func (h *CommitteeHTTP) Members() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil || id <= 0 {
			utils.Error(w, http.StatusBadRequest, "invalid committee id")
			return
		}
		c, err := h.repo.Get(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if c == nil {
			utils.Error(w, http.StatusNotFound, "committee not found")
			return
		}
		members, err := h.repo.Members(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"committee": c, "members": members})
	}
}

// POST /api/committees/{id}/members (super_admin)
func (h *CommitteeHTTP) AddMember() http.HandlerFunc {
	type inDTO struct {
		UserID string `json:"user_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil || id <= 0 {
			utils.Error(w, http.StatusBadRequest, "invalid committee id")
			return
		}
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.UserID == "" {
			utils.Error(w, http.StatusBadRequest, "user_id is required")
			return
		}

		c, err := h.repo.Get(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if c == nil {
			utils.Error(w, http.StatusNotFound, "committee not found")
			return
		}
		u, err := h.users.GetByID(r.Context(), in.UserID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if u == nil {
			utils.Error(w, http.StatusNotFound, "user not found")
			return
		}

		if err := h.repo.AddMember(r.Context(), id, in.UserID); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusCreated, map[string]any{"success": true})
	}
}
