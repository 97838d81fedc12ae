// AngelaMos | 2026
// entity.go

package entry

import (
	"time"

	"github.com/carterperez-dev/leadcap/internal/core"
	"github.com/carterperez-dev/leadcap/internal/enrichment"
)

// Entry is a lead owned by exactly one user.
type Entry struct {
	ID               int64             `db:"id"`
	UserID           int64             `db:"user_id"`
	Name             string            `db:"name"`
	Email            string            `db:"email"`
	PhoneNumber      *string           `db:"phone_number"`
	JobTitle         *string           `db:"job_title"`
	CompanySize      *string           `db:"company_size"`
	Budget           *string           `db:"budget"`
	EnrichmentStatus string            `db:"enrichment_status"`
	EnrichedAt       *time.Time        `db:"enriched_at"`
	EnrichmentData   core.JSONDocument `db:"enrichment_data"`
	CreatedAt        time.Time         `db:"created_at"`
}

const (
	StatusPending  = "pending"
	StatusQueued   = "queued"
	StatusEnriched = "enriched"
)

// CanTransition reports whether an entry may move from one enrichment
// status to another. pending -> queued -> enriched is the forward path;
// clear takes queued or enriched back to pending.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusQueued
	case StatusQueued:
		return to == StatusEnriched || to == StatusPending
	case StatusEnriched:
		return to == StatusPending
	}
	return false
}

func (e *Entry) Contact() enrichment.Contact {
	return enrichment.Contact{
		Email:       e.Email,
		Name:        e.Name,
		PhoneNumber: deref(e.PhoneNumber),
		JobTitle:    deref(e.JobTitle),
		CompanySize: deref(e.CompanySize),
		Budget:      deref(e.Budget),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
