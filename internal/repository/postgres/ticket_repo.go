package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"campusdesk/internal/models"
	"campusdesk/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepo struct{ db *pgxpool.Pool }

func NewTicketRepo(db *pgxpool.Pool) *TicketRepo { return &TicketRepo{db: db} }

const ticketCols = `
	t.id, t.title, t.description, t.category, t.subcategory, t.location,
	s.value, s.label, s.badge_color,
	t.created_by::text, COALESCE(t.assigned_to::text, ''), t.group_id,
	t.escalation_level, t.due_at, t.metadata, t.created_at, t.updated_at,
	COALESCE(cu.name, ''), COALESCE(cu.email, ''),
	COALESCE(au.name, ''), COALESCE(au.email, '')`

const ticketFrom = `
	FROM tickets t
	JOIN statuses s ON s.id = t.status_id
	JOIN users cu ON cu.id = t.created_by
	LEFT JOIN users au ON au.id = t.assigned_to`

func scanTicket(row pgx.Row) (*models.Ticket, error) {
	var t models.Ticket
	var meta []byte
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Category, &t.Subcategory, &t.Location,
		&t.Status, &t.StatusLabel, &t.BadgeColor,
		&t.CreatedBy, &t.AssignedTo, &t.GroupID,
		&t.EscalationLevel, &t.DueAt, &meta, &t.CreatedAt, &t.UpdatedAt,
		&t.CreatorName, &t.CreatorEmail, &t.AssigneeName, &t.AssigneeEmail,
	); err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &t.Metadata); err != nil {
			return nil, fmt.Errorf("decode ticket %d metadata: %w", t.ID, err)
		}
	}
	return &t, nil
}

// -----------------------------------------------------------------------------
// Listing with role-based visibility + filters
// -----------------------------------------------------------------------------

func buildTicketWhere(f repository.TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if q := strings.TrimSpace(f.Q); q != "" {
		p := "%" + q + "%"
		args = append(args, p, p)
		clauses = append(clauses, "(t.title ILIKE $"+itoa(len(args)-1)+" OR t.description ILIKE $"+itoa(len(args))+")")
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		args = append(args, s)
		clauses = append(clauses, "s.value = $"+itoa(len(args)))
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		args = append(args, c)
		clauses = append(clauses, "t.category = $"+itoa(len(args)))
	}

	switch f.ViewerRole {
	case models.RoleStudent:
		args = append(args, f.ViewerID)
		clauses = append(clauses, "t.created_by = $"+itoa(len(args))+"::uuid")
	case models.RoleCommittee:
		args = append(args, f.ViewerID)
		n := itoa(len(args))
		clauses = append(clauses, `(
			(t.created_by = $`+n+`::uuid AND t.category = 'Committee')
			OR EXISTS (
				SELECT 1 FROM committee_tags ct
				WHERE ct.ticket_id = t.id AND ct.committee_id IN (
					SELECT committee_id FROM committee_members WHERE user_id = $`+n+`::uuid
					UNION
					SELECT id FROM committees WHERE head_id = $`+n+`::uuid
				)
			)
		)`)
	case models.RoleAdmin:
		args = append(args, f.ViewerID)
		sub := []string{"t.assigned_to = $" + itoa(len(args)) + "::uuid"}
		if f.ViewerScopeCategory != "" {
			args = append(args, f.ViewerScopeCategory)
			sub = append(sub, "t.category = $"+itoa(len(args)))
		}
		if f.ViewerScopeLocation != "" {
			args = append(args, f.ViewerScopeLocation)
			sub = append(sub, "t.location = $"+itoa(len(args)))
		}
		clauses = append(clauses, "("+strings.Join(sub, " OR ")+")")
	}
	// super_admin: no visibility clause

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (r *TicketRepo) List(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, int, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	whereSQL, args := buildTicketWhere(f)

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM tickets t JOIN statuses s ON s.id = t.status_id "+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := "SELECT " + ticketCols + ticketFrom + " " + whereSQL +
		" ORDER BY t.updated_at DESC LIMIT $" + itoa(len(args)+1) + " OFFSET $" + itoa(len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *t)
	}
	return out, total, rows.Err()
}

// -----------------------------------------------------------------------------
// Single ticket + create/update/delete
// -----------------------------------------------------------------------------

func (r *TicketRepo) Get(ctx context.Context, id int) (*models.Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, "SELECT "+ticketCols+ticketFrom+" WHERE t.id = $1", id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *TicketRepo) Create(ctx context.Context, t *models.Ticket) error {
	now := time.Now()
	meta, err := json.Marshal(t.Metadata)
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO tickets (title, description, category, subcategory, location,
			status_id, created_by, assigned_to, group_id, escalation_level, due_at,
			metadata, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,
			(SELECT id FROM statuses WHERE value = $6),
			$7::uuid, NULLIF($8,'')::uuid, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`,
		t.Title, t.Description, t.Category, t.Subcategory, t.Location,
		t.Status, t.CreatedBy, t.AssignedTo, t.GroupID, t.EscalationLevel, t.DueAt,
		meta, now, now,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TicketRepo) Update(ctx context.Context, t *models.Ticket) error {
	t.UpdatedAt = time.Now()
	meta, err := json.Marshal(t.Metadata)
	if err != nil {
		return err
	}
	ct, err := r.db.Exec(ctx, `
		UPDATE tickets SET
			status_id = (SELECT id FROM statuses WHERE value = $1),
			assigned_to = NULLIF($2,'')::uuid,
			escalation_level = $3, due_at = $4, metadata = $5, updated_at = $6
		WHERE id = $7
	`, t.Status, t.AssignedTo, t.EscalationLevel, t.DueAt, meta, t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *TicketRepo) Delete(ctx context.Context, id int) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// -----------------------------------------------------------------------------
// Forward: ticket update + outbox record in one transaction
// -----------------------------------------------------------------------------

func (r *TicketRepo) Forward(ctx context.Context, t *models.Ticket, ev repository.OutboxEvent) error {
	meta, err := json.Marshal(t.Metadata)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	t.UpdatedAt = time.Now()
	ct, err := tx.Exec(ctx, `
		UPDATE tickets SET
			status_id = (SELECT id FROM statuses WHERE value = $1),
			assigned_to = NULLIF($2,'')::uuid, metadata = $3, updated_at = $4
		WHERE id = $5
	`, t.Status, t.AssignedTo, meta, t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO outbox (ticket_id, event_type, payload) VALUES ($1, $2, $3)
	`, ev.TicketID, ev.EventType, payload); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// -----------------------------------------------------------------------------
// Groups
// -----------------------------------------------------------------------------

func (r *TicketRepo) GroupStatuses(ctx context.Context, groupID int) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.value FROM tickets t
		JOIN statuses s ON s.id = t.status_id
		WHERE t.group_id = $1
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *TicketRepo) ArchiveGroup(ctx context.Context, groupID int) error {
	_, err := r.db.Exec(ctx, `UPDATE ticket_groups SET archived = TRUE WHERE id = $1`, groupID)
	return err
}

// -----------------------------------------------------------------------------
// Reporting counters
// -----------------------------------------------------------------------------

// CountByStatuses counts tickets IN or NOT IN the given status values.
func (r *TicketRepo) CountByStatuses(ctx context.Context, statuses []string, inclusive bool) (int, error) {
	op := "NOT IN"
	if inclusive {
		op = "IN"
	}
	sql := `SELECT COUNT(*) FROM tickets t JOIN statuses s ON s.id = t.status_id
		WHERE s.value ` + op + ` (SELECT UNNEST($1::text[]))`
	var n int
	if err := r.db.QueryRow(ctx, sql, statuses).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *TicketRepo) CountResolvedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM tickets t JOIN statuses s ON s.id = t.status_id
		WHERE s.value IN ('resolved','closed') AND t.updated_at >= $1
	`, since).Scan(&n)
	return n, err
}

func (r *TicketRepo) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT category, COUNT(*) FROM tickets GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var c string
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return nil, err
		}
		out[c] = n
	}
	return out, rows.Err()
}

// small helper to avoid fmt for query building.
func itoa(i int) string { return strconv.Itoa(i) }
