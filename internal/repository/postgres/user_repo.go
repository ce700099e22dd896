package postgres

import (
	"context"
	"strings"

	"campusdesk/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct{ db *pgxpool.Pool }

func NewUserRepo(db *pgxpool.Pool) *UserRepo { return &UserRepo{db: db} }

const userCols = `id::text, email, name, role, active,
	COALESCE(scope_category, ''), COALESCE(scope_location, ''), created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.Active,
		&u.ScopeCategory, &u.ScopeLocation, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, email, name, role, passwordHash string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		INSERT INTO users (email, name, role, active, password_hash)
		VALUES ($1, $2, $3, TRUE, $4)
		RETURNING `+userCols,
		strings.ToLower(strings.TrimSpace(email)), name, role, passwordHash,
	))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, string, error) {
	var u models.User
	var hash string
	err := r.db.QueryRow(ctx, `
		SELECT `+userCols+`, password_hash FROM users WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.Active,
		&u.ScopeCategory, &u.ScopeLocation, &u.CreatedAt, &u.UpdatedAt, &hash,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", nil
		}
		return nil, "", err
	}
	return &u, hash, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1::uuid`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) List(ctx context.Context, q, role string, active *bool, limit, offset int) ([]models.User, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	clauses := []string{"1=1"}
	args := []any{}
	if q = strings.TrimSpace(q); q != "" {
		p := "%" + q + "%"
		args = append(args, p, p)
		clauses = append(clauses, "(name ILIKE $"+itoa(len(args)-1)+" OR email ILIKE $"+itoa(len(args))+")")
	}
	if role != "" {
		args = append(args, role)
		clauses = append(clauses, "role = $"+itoa(len(args)))
	}
	if active != nil {
		args = append(args, *active)
		clauses = append(clauses, "active = $"+itoa(len(args)))
	}
	where := "WHERE " + strings.Join(clauses, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM users "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := "SELECT " + userCols + " FROM users " + where +
		" ORDER BY created_at DESC LIMIT $" + itoa(len(args)+1) + " OFFSET $" + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *u)
	}
	return out, total, rows.Err()
}

func (r *UserRepo) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2::uuid
		RETURNING `+userCols, role, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET active = $1, updated_at = NOW() WHERE id = $2::uuid
		RETURNING `+userCols, active, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) FirstActiveAdminID(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, `
		SELECT id::text FROM users
		WHERE role IN ('admin','super_admin') AND active
		ORDER BY created_at ASC LIMIT 1
	`).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

func (r *UserRepo) ScopedAdminID(ctx context.Context, category, location string) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, `
		SELECT id::text FROM users
		WHERE role = 'admin' AND active
		  AND (($1 <> '' AND scope_category = $1) OR ($2 <> '' AND scope_location = $2))
		ORDER BY created_at ASC LIMIT 1
	`, category, location).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return id, nil
}
