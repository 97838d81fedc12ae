// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/leadcap/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateRole(ctx context.Context, id int64, role string) error
	List(
		ctx context.Context,
		params ListUsersParams,
	) ([]WithEnrichment, int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	UpsertEnrichment(
		ctx context.Context,
		userID int64,
		data core.JSONDocument,
		at time.Time,
	) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `id, name, email, role, status, created_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := r.db.Rebind(`
		INSERT INTO users (id, name, email, role, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Role,
		user.Status,
		user.CreatedAt,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	id int64,
	status string,
) error {
	query := r.db.Rebind(`UPDATE users SET status = ? WHERE id = ?`)
	return r.execOne(ctx, "update user status", query, status, id)
}

func (r *repository) UpdateRole(
	ctx context.Context,
	id int64,
	role string,
) error {
	query := r.db.Rebind(`UPDATE users SET role = ? WHERE id = ?`)
	return r.execOne(ctx, "update user role", query, role, id)
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]WithEnrichment, int, error) {
	params.Normalize()

	conditions := []string{"1 = 1"}
	var args []any

	if params.Search != "" {
		pattern := "%" + core.EscapeLike(strings.ToLower(params.Search)) + "%"
		conditions = append(conditions,
			`(lower(u.email) LIKE ? ESCAPE '\' OR lower(u.name) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	if params.Role != "" {
		conditions = append(conditions, "u.role = ?")
		args = append(args, params.Role)
	}

	if params.Status != "" {
		conditions = append(conditions, "u.status = ?")
		args = append(args, params.Status)
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := r.db.Rebind(
		"SELECT COUNT(*) FROM users u WHERE " + whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := r.db.Rebind(fmt.Sprintf(`
		SELECT u.id, u.name, u.email, u.role, u.status, u.created_at,
		       e.clay_data AS enrichment
		FROM users u
		LEFT JOIN user_enrichments e ON e.user_id = u.id
		WHERE %s
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT ? OFFSET ?`, whereClause))

	args = append(args, params.PageSize, params.Offset())

	users := []WithEnrichment{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}

	query := `SELECT status, COUNT(*) AS count FROM users GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count users by status: %w", err)
	}

	counts := map[string]int{
		StatusActive:  0,
		StatusFlagged: 0,
		StatusBlocked: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

// UpsertEnrichment replaces the user's account enrichment document.
func (r *repository) UpsertEnrichment(
	ctx context.Context,
	userID int64,
	data core.JSONDocument,
	at time.Time,
) error {
	query := r.db.Rebind(`
		INSERT INTO user_enrichments (user_id, clay_data, enriched_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET clay_data = excluded.clay_data, enriched_at = excluded.enriched_at`)

	if _, err := r.db.ExecContext(ctx, query, userID, data, at); err != nil {
		return fmt.Errorf("upsert user enrichment: %w", err)
	}

	return nil
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
