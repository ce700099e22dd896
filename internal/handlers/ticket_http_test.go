package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"campusdesk/internal/middleware"
	"campusdesk/internal/models"
	"campusdesk/internal/repository"
	"campusdesk/internal/service"
)

// Stubs embed the repository interfaces so only the methods a test path
// touches need real bodies.

type stubTickets struct {
	repository.TicketRepository
	m      map[int]*models.Ticket
	outbox []repository.OutboxEvent
}

func (s *stubTickets) Get(ctx context.Context, id int) (*models.Ticket, error) {
	t, ok := s.m[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *stubTickets) Update(ctx context.Context, t *models.Ticket) error {
	cp := *t
	s.m[t.ID] = &cp
	return nil
}

func (s *stubTickets) Delete(ctx context.Context, id int) (bool, error) {
	if _, ok := s.m[id]; !ok {
		return false, nil
	}
	delete(s.m, id)
	return true, nil
}

func (s *stubTickets) Forward(ctx context.Context, t *models.Ticket, ev repository.OutboxEvent) error {
	cp := *t
	s.m[t.ID] = &cp
	s.outbox = append(s.outbox, ev)
	return nil
}

type stubUsers struct {
	repository.UserRepository
	m map[string]*models.User
}

func (s *stubUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.m[id], nil
}

type stubCommittees struct {
	repository.CommitteeRepository
	m      map[int]*models.Committee
	tagged map[string]bool // "ticketID/userID"
}

func (s *stubCommittees) Get(ctx context.Context, id int) (*models.Committee, error) {
	return s.m[id], nil
}

func (s *stubCommittees) MemberOfTagged(ctx context.Context, ticketID int, userID string) (bool, error) {
	return s.tagged[key(ticketID, userID)], nil
}

func key(ticketID int, userID string) string {
	return strconv.Itoa(ticketID) + "/" + userID
}

type stubStatuses struct {
	repository.StatusRepository
}

func (s *stubStatuses) Exists(ctx context.Context, value string) (bool, error) {
	switch value {
	case models.StatusOpen, models.StatusReopened, models.StatusInProgress,
		models.StatusAwaitingStudent, models.StatusForwarded,
		models.StatusResolved, models.StatusClosed:
		return true, nil
	}
	return false, nil
}

// asUser fakes the auth middleware: the X-Test-User header becomes the
// request identity.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid := r.Header.Get("X-Test-User"); uid != "" {
			ctx := context.WithValue(r.Context(), middleware.CtxUserID, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func newTestRouter(tickets *stubTickets, users *stubUsers, committees *stubCommittees) http.Handler {
	svc := service.NewTicketService(zerolog.Nop(), tickets, users, committees, &stubStatuses{}, nil)
	th := NewTicketHTTP(svc)

	r := chi.NewRouter()
	r.Use(asUser)
	r.Route("/api/tickets/{id}", func(r chi.Router) {
		r.Get("/", th.Get())
		r.Patch("/", th.Update())
		r.Delete("/", th.Delete())
		r.Post("/forward", th.Forward())
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("{}")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func fixtureRouter() (*stubTickets, http.Handler) {
	tickets := &stubTickets{m: map[int]*models.Ticket{
		1: {ID: 1, Title: "leaky tap", Status: models.StatusResolved, CreatedBy: "s1", AssignedTo: "a1", Metadata: models.Metadata{ReopenCount: 0}},
		2: {ID: 2, Title: "event budget", Status: models.StatusOpen, CreatedBy: "s1", AssignedTo: "a1"},
	}}
	users := &stubUsers{m: map[string]*models.User{
		"s1":   {ID: "s1", Name: "Student", Role: models.RoleStudent, Active: true},
		"c1":   {ID: "c1", Name: "Committee", Role: models.RoleCommittee, Active: true},
		"a1":   {ID: "a1", Name: "Admin", Role: models.RoleAdmin, Active: true},
		"root": {ID: "root", Name: "Root", Role: models.RoleSuperAdmin, Active: true},
	}}
	committees := &stubCommittees{
		m:      map[int]*models.Committee{3: {ID: 3, Name: "Mess", HeadID: "u42", HeadName: "Head", HeadEmail: "head@campus.test"}},
		tagged: map[string]bool{key(2, "c1"): true},
	}
	return tickets, newTestRouter(tickets, users, committees)
}

func TestPatchReopenOwnTicket(t *testing.T) {
	_, h := fixtureRouter()

	rec := do(t, h, http.MethodPatch, "/api/tickets/1", "s1", `{"status":"reopened"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, models.StatusReopened, got.Status)
	require.Equal(t, 1, got.Metadata.ReopenCount)
}

func TestPatchCommitteeDenied(t *testing.T) {
	_, h := fixtureRouter()

	rec := do(t, h, http.MethodPatch, "/api/tickets/2", "c1", `{"status":"in_progress"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Committee members can only close or resolve tickets", got["error"])
}

func TestForwardResponseShape(t *testing.T) {
	tickets, h := fixtureRouter()

	rec := do(t, h, http.MethodPost, "/api/tickets/2/forward", "a1", `{"committee_id":3,"reason":"mess issue"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Success     bool `json:"success"`
		ForwardedTo struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"forwardedTo"`
		Ticket models.Ticket `json:"ticket"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.Success)
	require.Equal(t, "u42", got.ForwardedTo.ID)
	require.Equal(t, models.StatusForwarded, got.Ticket.Status)
	require.Equal(t, "u42", got.Ticket.AssignedTo)
	require.Len(t, tickets.outbox, 1)
}

func TestForwardRequiresCommitteeID(t *testing.T) {
	_, h := fixtureRouter()
	rec := do(t, h, http.MethodPost, "/api/tickets/2/forward", "a1", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteThenNotFound(t *testing.T) {
	_, h := fixtureRouter()

	rec := do(t, h, http.MethodDelete, "/api/tickets/2", "root", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/tickets/2", "root", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteForbiddenForPlainAdmin(t *testing.T) {
	_, h := fixtureRouter()
	rec := do(t, h, http.MethodDelete, "/api/tickets/2", "a1", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnauthenticatedRejected(t *testing.T) {
	_, h := fixtureRouter()
	rec := do(t, h, http.MethodGet, "/api/tickets/1", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInvalidTicketID(t *testing.T) {
	_, h := fixtureRouter()
	rec := do(t, h, http.MethodGet, "/api/tickets/abc", "s1", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
