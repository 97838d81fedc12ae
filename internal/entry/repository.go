// AngelaMos | 2026
// repository.go

package entry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/leadcap/internal/core"
)

// ErrStatusChanged means a conditional status update found the entry no
// longer in the expected state.
var ErrStatusChanged = errors.New("enrichment status changed")

type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetForUser(ctx context.Context, id, userID int64) (*Entry, error)
	ListForUser(ctx context.Context, userID int64) ([]Entry, error)
	ListPendingForUser(ctx context.Context, userID int64) ([]Entry, error)
	Update(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, id, userID int64) error
	MarkQueued(ctx context.Context, id int64) error
	FindNewestQueuedByEmail(ctx context.Context, email string) (*Entry, error)
	MarkEnriched(
		ctx context.Context,
		id int64,
		data core.JSONDocument,
		at time.Time,
	) error
	ClearEnrichment(ctx context.Context, id, userID int64) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const entryColumns = `
	id, user_id, name, email, phone_number, job_title, company_size, budget,
	enrichment_status, enriched_at, enrichment_data, created_at`

func (r *repository) Create(ctx context.Context, entry *Entry) error {
	query := r.db.Rebind(`
		INSERT INTO user_entries (
			id, user_id, name, email, phone_number, job_title,
			company_size, budget, enrichment_status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Name,
		entry.Email,
		entry.PhoneNumber,
		entry.JobTitle,
		entry.CompanySize,
		entry.Budget,
		entry.EnrichmentStatus,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}

	return nil
}

func (r *repository) GetForUser(
	ctx context.Context,
	id, userID int64,
) (*Entry, error) {
	query := r.db.Rebind(`SELECT ` + entryColumns + `
		FROM user_entries
		WHERE id = ? AND user_id = ?`)

	var entry Entry
	err := r.db.GetContext(ctx, &entry, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get entry: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	return &entry, nil
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID int64,
) ([]Entry, error) {
	query := r.db.Rebind(`SELECT ` + entryColumns + `
		FROM user_entries
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`)

	entries := []Entry{}
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	return entries, nil
}

func (r *repository) ListPendingForUser(
	ctx context.Context,
	userID int64,
) ([]Entry, error) {
	query := r.db.Rebind(`SELECT ` + entryColumns + `
		FROM user_entries
		WHERE user_id = ? AND enrichment_status = ?
		ORDER BY created_at ASC, id ASC`)

	entries := []Entry{}
	if err := r.db.SelectContext(ctx, &entries, query, userID, StatusPending); err != nil {
		return nil, fmt.Errorf("list pending entries: %w", err)
	}

	return entries, nil
}

func (r *repository) Update(ctx context.Context, entry *Entry) error {
	query := r.db.Rebind(`
		UPDATE user_entries
		SET name = ?, email = ?, phone_number = ?, job_title = ?,
		    company_size = ?, budget = ?
		WHERE id = ? AND user_id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		entry.Name,
		entry.Email,
		entry.PhoneNumber,
		entry.JobTitle,
		entry.CompanySize,
		entry.Budget,
		entry.ID,
		entry.UserID,
	)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}

	return requireOneRow(result, "update entry", core.ErrNotFound)
}

func (r *repository) Delete(ctx context.Context, id, userID int64) error {
	query := r.db.Rebind(`DELETE FROM user_entries WHERE id = ? AND user_id = ?`)

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	return requireOneRow(result, "delete entry", core.ErrNotFound)
}

// MarkQueued moves a pending entry to queued. It fails with
// ErrStatusChanged if the entry is no longer pending.
func (r *repository) MarkQueued(ctx context.Context, id int64) error {
	query := r.db.Rebind(`
		UPDATE user_entries
		SET enrichment_status = ?
		WHERE id = ? AND enrichment_status = ?`)

	result, err := r.db.ExecContext(ctx, query, StatusQueued, id, StatusPending)
	if err != nil {
		return fmt.Errorf("mark entry queued: %w", err)
	}

	return requireOneRow(result, "mark entry queued", ErrStatusChanged)
}

// FindNewestQueuedByEmail returns the most recently created queued entry
// with the given lowercase email, across all users.
func (r *repository) FindNewestQueuedByEmail(
	ctx context.Context,
	email string,
) (*Entry, error) {
	query := r.db.Rebind(`SELECT ` + entryColumns + `
		FROM user_entries
		WHERE email = ? AND enrichment_status = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`)

	var entry Entry
	err := r.db.GetContext(ctx, &entry, query, email, StatusQueued)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find queued entry: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find queued entry: %w", err)
	}

	return &entry, nil
}

// MarkEnriched stores the enrichment document on a queued entry. It fails
// with ErrStatusChanged if the entry is no longer queued.
func (r *repository) MarkEnriched(
	ctx context.Context,
	id int64,
	data core.JSONDocument,
	at time.Time,
) error {
	query := r.db.Rebind(`
		UPDATE user_entries
		SET enrichment_status = ?, enriched_at = ?, enrichment_data = ?
		WHERE id = ? AND enrichment_status = ?`)

	result, err := r.db.ExecContext(ctx, query,
		StatusEnriched,
		at,
		data,
		id,
		StatusQueued,
	)
	if err != nil {
		return fmt.Errorf("mark entry enriched: %w", err)
	}

	return requireOneRow(result, "mark entry enriched", ErrStatusChanged)
}

// ClearEnrichment resets a queued or enriched entry to pending and drops
// its enrichment data. A pending entry is left untouched.
func (r *repository) ClearEnrichment(ctx context.Context, id, userID int64) error {
	query := r.db.Rebind(`
		UPDATE user_entries
		SET enrichment_status = ?, enriched_at = NULL, enrichment_data = NULL
		WHERE id = ? AND user_id = ? AND enrichment_status IN (?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		StatusPending,
		id,
		userID,
		StatusQueued,
		StatusEnriched,
	)
	if err != nil {
		return fmt.Errorf("clear entry enrichment: %w", err)
	}

	return nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string `db:"enrichment_status"`
		Count  int    `db:"count"`
	}

	query := `
		SELECT enrichment_status, COUNT(*) AS count
		FROM user_entries
		GROUP BY enrichment_status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count entries by status: %w", err)
	}

	counts := map[string]int{
		StatusPending:  0,
		StatusQueued:   0,
		StatusEnriched: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

func requireOneRow(result sql.Result, op string, none error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, none)
	}

	return nil
}
