// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/leadcap/internal/auth"
	"github.com/carterperez-dev/leadcap/internal/core"
)

var ErrSelfStatusChange = errors.New("cannot change own status")

type Service struct {
	repo Repository
	ids  *core.IDGenerator
	now  func() time.Time
}

func NewService(repo Repository, ids *core.IDGenerator) *Service {
	return &Service{
		repo: repo,
		ids:  ids,
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (s *Service) GetByID(
	ctx context.Context,
	id int64,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	name, email string,
) (*auth.UserInfo, error) {
	user, err := s.CreateUser(ctx, name, email, RoleUser)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// CreateUser inserts an active user with the given role.
func (s *Service) CreateUser(
	ctx context.Context,
	name, email, role string,
) (*User, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf(
			"create user: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	user := &User{
		ID:        s.ids.Next(),
		Name:      strings.TrimSpace(name),
		Email:     normalizeEmail(email),
		Role:      role,
		Status:    StatusActive,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]WithEnrichment, int, error) {
	return s.repo.List(ctx, params)
}

// UpdateUserStatus moderates another account. An admin may not change
// their own status.
func (s *Service) UpdateUserStatus(
	ctx context.Context,
	actorID, targetID int64,
	status string,
) (*User, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf(
			"update status: invalid status %q: %w",
			status,
			core.ErrInvalidInput,
		)
	}

	if actorID != 0 && actorID == targetID {
		return nil, ErrSelfStatusChange
	}

	return s.SetStatus(ctx, targetID, status)
}

// SetStatus changes a user's status without an acting user.
func (s *Service) SetStatus(
	ctx context.Context,
	id int64,
	status string,
) (*User, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf(
			"set status: invalid status %q: %w",
			status,
			core.ErrInvalidInput,
		)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateUserRole(
	ctx context.Context,
	id int64,
	role string,
) (*User, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}

// StoreAccountEnrichment writes an enrichment document for the account
// with the given email. It reports false when no account matches.
func (s *Service) StoreAccountEnrichment(
	ctx context.Context,
	email string,
	data core.JSONDocument,
) (bool, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.repo.UpsertEnrichment(ctx, user.ID, data, s.now()); err != nil {
		return false, err
	}

	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Status: u.Status,
	}
}

var _ auth.UserProvider = (*Service)(nil)
