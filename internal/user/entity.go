// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/leadcap/internal/core"
)

type User struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsBlocked() bool {
	return u.Status == StatusBlocked
}

// WithEnrichment is a user row joined with its account enrichment, if any.
type WithEnrichment struct {
	User
	Enrichment core.JSONDocument `db:"enrichment"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	StatusActive  = "active"
	StatusFlagged = "flagged"
	StatusBlocked = "blocked"
)

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusFlagged, StatusBlocked:
		return true
	}
	return false
}
