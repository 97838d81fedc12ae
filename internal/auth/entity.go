// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// OTPToken is a one-time login code. Only the argon2id hash of the code
// is stored.
type OTPToken struct {
	ID        int64      `db:"id"`
	UserID    int64      `db:"user_id"`
	CodeHash  string     `db:"code_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

func (t *OTPToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *OTPToken) IsUsed() bool {
	return t.UsedAt != nil
}

func (t *OTPToken) IsValid(now time.Time) bool {
	return !t.IsExpired(now) && !t.IsUsed()
}
