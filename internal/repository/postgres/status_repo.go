package postgres

import (
	"context"

	"campusdesk/internal/catalog"
	"campusdesk/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StatusRepo struct{ db *pgxpool.Pool }

func NewStatusRepo(db *pgxpool.Pool) *StatusRepo { return &StatusRepo{db: db} }

// Sync upserts the catalog entries into the statuses lookup table. Existing
// rows keep their ids so ticket FKs stay valid across relabels.
func (r *StatusRepo) Sync(ctx context.Context, entries []catalog.Entry) error {
	for _, e := range entries {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO statuses (value, label, badge_color)
			VALUES ($1, $2, $3)
			ON CONFLICT (value) DO UPDATE SET label = EXCLUDED.label, badge_color = EXCLUDED.badge_color
		`, e.Value, e.Label, e.BadgeColor); err != nil {
			return err
		}
	}
	return nil
}

func (r *StatusRepo) Exists(ctx context.Context, value string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM statuses WHERE value = $1)`, value).Scan(&ok)
	return ok, err
}

func (r *StatusRepo) List(ctx context.Context) ([]models.Status, error) {
	rows, err := r.db.Query(ctx, `SELECT id, value, label, badge_color FROM statuses ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Status
	for rows.Next() {
		var s models.Status
		if err := rows.Scan(&s.ID, &s.Value, &s.Label, &s.BadgeColor); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
