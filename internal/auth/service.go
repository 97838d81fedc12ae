// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/carterperez-dev/leadcap/internal/core"
	"github.com/carterperez-dev/leadcap/internal/enrichment"
	"github.com/carterperez-dev/leadcap/internal/middleware"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrAccountBlocked = errors.New("account blocked")
	ErrInvalidCode    = errors.New("invalid or expired code")
	ErrEmailExists    = errors.New("email already exists")
)

const statusBlocked = "blocked"

type UserInfo struct {
	ID     int64
	Name   string
	Email  string
	Role   string
	Status string
}

func (u *UserInfo) IsBlocked() bool {
	return u.Status == statusBlocked
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id int64) (*UserInfo, error)
	Create(ctx context.Context, name, email string) (*UserInfo, error)
}

// Notifier delivers a one-time code to its owner.
type Notifier interface {
	SendOTP(ctx context.Context, email, code string, ttl time.Duration) error
}

type Service struct {
	repo         Repository
	sessions     *SessionManager
	revoker      Revoker
	userProvider UserProvider
	notifier     Notifier
	relay        enrichment.Relay
	ids          *core.IDGenerator
	otpTTL       time.Duration
	logger       *slog.Logger
	now          func() time.Time
	wg           sync.WaitGroup
}

type ServiceConfig struct {
	Repo         Repository
	Sessions     *SessionManager
	Revoker      Revoker
	UserProvider UserProvider
	Notifier     Notifier
	Relay        enrichment.Relay
	IDs          *core.IDGenerator
	OTPTTL       time.Duration
	Logger       *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	revoker := cfg.Revoker
	if revoker == nil {
		revoker = NoopRevoker{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:         cfg.Repo,
		sessions:     cfg.Sessions,
		revoker:      revoker,
		userProvider: cfg.UserProvider,
		notifier:     cfg.Notifier,
		relay:        cfg.Relay,
		ids:          cfg.IDs,
		otpTTL:       cfg.OTPTTL,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Signup creates an account and hands the new contact to the enrichment
// relay in the background.
func (s *Service) Signup(
	ctx context.Context,
	name, email string,
) (*UserInfo, error) {
	user, err := s.userProvider.Create(ctx, strings.TrimSpace(name), normalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.relay != nil {
		contact := enrichment.Contact{Email: user.Email, Name: user.Name}
		bgCtx := context.WithoutCancel(ctx)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if s.relay.Send(bgCtx, contact) {
				s.logger.InfoContext(bgCtx, "account queued for enrichment",
					"user_id", user.ID,
				)
			}
		}()
	}

	return user, nil
}

// Wait blocks until background enrichment calls started by Signup finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

// RequestOTP retires the user's outstanding codes, issues a new one and
// sends it.
func (s *Service) RequestOTP(ctx context.Context, email string) error {
	user, err := s.userProvider.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	if user.IsBlocked() {
		return ErrAccountBlocked
	}

	code, err := core.GenerateOTPCode()
	if err != nil {
		return err
	}

	codeHash, err := core.HashSecret(code)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}

	now := s.now()
	token := &OTPToken{
		ID:        s.ids.Next(),
		UserID:    user.ID,
		CodeHash:  codeHash,
		ExpiresAt: now.Add(s.otpTTL),
		CreatedAt: now,
	}

	if err := s.repo.Issue(ctx, token); err != nil {
		return fmt.Errorf("issue otp: %w", err)
	}

	if err := s.notifier.SendOTP(ctx, user.Email, code, s.otpTTL); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}

	return nil
}

type LoginResult struct {
	User    *UserInfo
	Session *Session
}

// VerifyOTP redeems a code and opens a session. Unknown accounts, wrong
// codes and spent or expired codes all yield ErrInvalidCode.
func (s *Service) VerifyOTP(
	ctx context.Context,
	email, code string,
) (*LoginResult, error) {
	code = strings.TrimSpace(code)

	user, err := s.userProvider.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention
			_, _ = core.VerifySecretTimingSafe(code, nil)
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user.IsBlocked() {
		return nil, ErrAccountBlocked
	}

	now := s.now()

	token, err := s.repo.FindActiveForUser(ctx, user.ID, now)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention
			_, _ = core.VerifySecretTimingSafe(code, nil)
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("find otp: %w", err)
	}

	valid, err := core.VerifySecretTimingSafe(code, &token.CodeHash)
	if err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCode
	}

	if err := s.repo.Consume(ctx, token.ID, now); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("consume otp: %w", err)
	}

	session, err := s.sessions.CreateSession(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &LoginResult{User: user, Session: session}, nil
}

// Logout revokes the session behind token until its natural expiry. An
// empty or unusable token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	session, err := s.sessions.VerifySession(token)
	if err != nil {
		return nil //nolint:nilerr // nothing to revoke
	}

	if err := s.revoker.Revoke(ctx, session.ID, session.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

// ResolveSession maps a session token to the acting user. It does not
// judge the user's status.
func (s *Service) ResolveSession(
	ctx context.Context,
	token string,
) (*middleware.Principal, error) {
	session, err := s.sessions.VerifySession(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoker.IsRevoked(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("resolve session: %w", core.ErrTokenRevoked)
	}

	user, err := s.userProvider.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("resolve session: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	return &middleware.Principal{
		UserID:           user.ID,
		Email:            user.Email,
		Name:             user.Name,
		Role:             user.Role,
		Status:           user.Status,
		SessionID:        session.ID,
		SessionExpiresAt: session.ExpiresAt,
	}, nil
}

// PruneExpiredCodes deletes codes that expired before the cutoff.
func (s *Service) PruneExpiredCodes(
	ctx context.Context,
	olderThan time.Duration,
) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now().Add(-olderThan))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ middleware.SessionResolver = (*Service)(nil)
