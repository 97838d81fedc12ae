// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/leadcap/internal/core"
)

type Repository interface {
	Issue(ctx context.Context, token *OTPToken) error
	FindActiveForUser(
		ctx context.Context,
		userID int64,
		now time.Time,
	) (*OTPToken, error)
	Consume(ctx context.Context, id int64, now time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Issue retires every unconsumed code of the user and stores the new one
// in a single transaction.
func (r *repository) Issue(ctx context.Context, token *OTPToken) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		invalidate := tx.Rebind(`
			UPDATE otp_tokens
			SET used_at = ?
			WHERE user_id = ? AND used_at IS NULL`)

		if _, err := tx.ExecContext(ctx, invalidate, token.CreatedAt, token.UserID); err != nil {
			return fmt.Errorf("invalidate otp tokens: %w", err)
		}

		insert := tx.Rebind(`
			INSERT INTO otp_tokens (id, user_id, code_hash, expires_at, created_at)
			VALUES (?, ?, ?, ?, ?)`)

		_, err := tx.ExecContext(ctx, insert,
			token.ID,
			token.UserID,
			token.CodeHash,
			token.ExpiresAt,
			token.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("create otp token: %w", err)
		}

		return nil
	})
}

func (r *repository) FindActiveForUser(
	ctx context.Context,
	userID int64,
	now time.Time,
) (*OTPToken, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, code_hash, expires_at, used_at, created_at
		FROM otp_tokens
		WHERE user_id = ? AND used_at IS NULL AND expires_at > ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`)

	var token OTPToken
	err := r.db.GetContext(ctx, &token, query, userID, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find otp token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find otp token: %w", err)
	}

	return &token, nil
}

// Consume marks the token used. It fails with core.ErrNotFound when the
// token was already consumed, so a code can be redeemed at most once.
func (r *repository) Consume(ctx context.Context, id int64, now time.Time) error {
	query := r.db.Rebind(`
		UPDATE otp_tokens
		SET used_at = ?
		WHERE id = ? AND used_at IS NULL`)

	result, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return fmt.Errorf("consume otp token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("consume otp token: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("consume otp token: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteExpired(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	query := r.db.Rebind(`DELETE FROM otp_tokens WHERE expires_at < ?`)

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired otp tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired otp tokens: %w", err)
	}

	return rows, nil
}
