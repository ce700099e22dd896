package postgres

import (
	"context"

	"campusdesk/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommitteeRepo struct{ db *pgxpool.Pool }

func NewCommitteeRepo(db *pgxpool.Pool) *CommitteeRepo { return &CommitteeRepo{db: db} }

const committeeCols = `c.id, c.name, c.email, c.head_id::text,
	COALESCE(h.name, ''), COALESCE(h.email, ''), c.created_at`

func scanCommittee(row pgx.Row) (*models.Committee, error) {
	var c models.Committee
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.HeadID, &c.HeadName, &c.HeadEmail, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommitteeRepo) List(ctx context.Context) ([]models.Committee, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+committeeCols+` FROM committees c
		LEFT JOIN users h ON h.id = c.head_id
		ORDER BY c.name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Committee
	for rows.Next() {
		c, err := scanCommittee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CommitteeRepo) Get(ctx context.Context, id int) (*models.Committee, error) {
	c, err := scanCommittee(r.db.QueryRow(ctx, `
		SELECT `+committeeCols+` FROM committees c
		LEFT JOIN users h ON h.id = c.head_id
		WHERE c.id = $1
	`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *CommitteeRepo) Create(ctx context.Context, c *models.Committee) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO committees (name, email, head_id)
		VALUES ($1, $2, $3::uuid)
		RETURNING id, created_at
	`, c.Name, c.Email, c.HeadID).Scan(&c.ID, &c.CreatedAt)
}

func (r *CommitteeRepo) Members(ctx context.Context, committeeID int) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userCols+` FROM users
		WHERE id IN (SELECT user_id FROM committee_members WHERE committee_id = $1)
		ORDER BY name ASC
	`, committeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *CommitteeRepo) AddMember(ctx context.Context, committeeID int, userID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO committee_members (committee_id, user_id)
		VALUES ($1, $2::uuid)
		ON CONFLICT DO NOTHING
	`, committeeID, userID)
	return err
}

// -----------------------------------------------------------------------------
// Tags
// -----------------------------------------------------------------------------

func (r *CommitteeRepo) TagsForTicket(ctx context.Context, ticketID int) ([]models.CommitteeTag, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ct.id, ct.ticket_id, ct.committee_id, ct.tagged_by::text,
			COALESCE(ct.reason, ''), ct.created_at,
			`+committeeCols+`
		FROM committee_tags ct
		JOIN committees c ON c.id = ct.committee_id
		LEFT JOIN users h ON h.id = c.head_id
		WHERE ct.ticket_id = $1
		ORDER BY ct.created_at ASC
	`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CommitteeTag
	for rows.Next() {
		var t models.CommitteeTag
		var c models.Committee
		if err := rows.Scan(
			&t.ID, &t.TicketID, &t.CommitteeID, &t.TaggedBy, &t.Reason, &t.CreatedAt,
			&c.ID, &c.Name, &c.Email, &c.HeadID, &c.HeadName, &c.HeadEmail, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		t.Committee = &c
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *CommitteeRepo) TagExists(ctx context.Context, ticketID, committeeID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM committee_tags WHERE ticket_id = $1 AND committee_id = $2)
	`, ticketID, committeeID).Scan(&exists)
	return exists, err
}

func (r *CommitteeRepo) AddTag(ctx context.Context, tag *models.CommitteeTag) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO committee_tags (ticket_id, committee_id, tagged_by, reason)
		VALUES ($1, $2, $3::uuid, NULLIF($4, ''))
		RETURNING id, created_at
	`, tag.TicketID, tag.CommitteeID, tag.TaggedBy, tag.Reason).Scan(&tag.ID, &tag.CreatedAt)
}

func (r *CommitteeRepo) DeleteTagByID(ctx context.Context, ticketID, tagID int) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM committee_tags WHERE id = $1 AND ticket_id = $2`, tagID, ticketID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *CommitteeRepo) DeleteTagByCommittee(ctx context.Context, ticketID, committeeID int) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM committee_tags WHERE ticket_id = $1 AND committee_id = $2`, ticketID, committeeID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// MemberOfTagged checks membership (or headship) of any committee tagged on
// the ticket.
func (r *CommitteeRepo) MemberOfTagged(ctx context.Context, ticketID int, userID string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM committee_tags ct
			WHERE ct.ticket_id = $1 AND ct.committee_id IN (
				SELECT committee_id FROM committee_members WHERE user_id = $2::uuid
				UNION
				SELECT id FROM committees WHERE head_id = $2::uuid
			)
		)
	`, ticketID, userID).Scan(&ok)
	return ok, err
}
