// AngelaMos | 2026
// service.go

package entry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/leadcap/internal/core"
	"github.com/carterperez-dev/leadcap/internal/enrichment"
)

var (
	ErrAlreadyQueued   = errors.New("entry already queued for enrichment")
	ErrAlreadyEnriched = errors.New("entry already enriched")
	ErrRelayFailed     = errors.New("enrichment relay failed")
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrEmptyEmail      = errors.New("email cannot be empty")
	ErrNoFieldsToSet   = errors.New("no fields to update")
)

// callbackAttempts bounds how often a callback re-reads the newest queued
// entry after losing a race on the conditional update.
const callbackAttempts = 3

type Service struct {
	repo      Repository
	relay     enrichment.Relay
	ids       *core.IDGenerator
	validator *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	repo Repository,
	relay enrichment.Relay,
	ids *core.IDGenerator,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		relay:     relay,
		ids:       ids,
		validator: validator.New(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

type CreateInput struct {
	Name        string
	Email       string
	PhoneNumber string
	JobTitle    string
	CompanySize string
	Budget      string
}

// UpdateInput holds a partial update. A nil field is left alone; an empty
// optional field is cleared. Field rules are checked only after the entry
// is known to belong to the caller.
type UpdateInput struct {
	Name        *string `validate:"omitempty,max=200"`
	Email       *string `validate:"omitempty,email,max=255"`
	PhoneNumber *string `validate:"omitempty,max=50"`
	JobTitle    *string `validate:"omitempty,max=200"`
	CompanySize *string `validate:"omitempty,max=100"`
	Budget      *string `validate:"omitempty,max=100"`
}

func (in UpdateInput) empty() bool {
	return in.Name == nil && in.Email == nil && in.PhoneNumber == nil &&
		in.JobTitle == nil && in.CompanySize == nil && in.Budget == nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]Entry, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) Create(
	ctx context.Context,
	userID int64,
	in CreateInput,
) (*Entry, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, ErrEmptyEmail
	}

	entry := &Entry{
		ID:               s.ids.Next(),
		UserID:           userID,
		Name:             name,
		Email:            email,
		PhoneNumber:      optional(in.PhoneNumber),
		JobTitle:         optional(in.JobTitle),
		CompanySize:      optional(in.CompanySize),
		Budget:           optional(in.Budget),
		EnrichmentStatus: StatusPending,
		CreatedAt:        s.now(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *Service) Update(
	ctx context.Context,
	userID, id int64,
	in UpdateInput,
) (*Entry, error) {
	entry, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if in.empty() {
		return nil, ErrNoFieldsToSet
	}

	if err := s.validator.Struct(in); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		entry.Name = name
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return nil, ErrEmptyEmail
		}
		entry.Email = email
	}

	if in.PhoneNumber != nil {
		entry.PhoneNumber = optional(*in.PhoneNumber)
	}
	if in.JobTitle != nil {
		entry.JobTitle = optional(*in.JobTitle)
	}
	if in.CompanySize != nil {
		entry.CompanySize = optional(*in.CompanySize)
	}
	if in.Budget != nil {
		entry.Budget = optional(*in.Budget)
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, id, userID)
}

// Enrich hands one pending entry to the relay and marks it queued. A relay
// failure leaves the entry pending.
func (s *Service) Enrich(ctx context.Context, userID, id int64) error {
	entry, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := checkQueueable(entry.EnrichmentStatus); err != nil {
		return err
	}

	if !s.relay.Send(ctx, entry.Contact()) {
		return ErrRelayFailed
	}

	if err := s.repo.MarkQueued(ctx, entry.ID); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return ErrAlreadyQueued
		}
		return err
	}

	return nil
}

func checkQueueable(status string) error {
	switch status {
	case StatusQueued:
		return ErrAlreadyQueued
	case StatusEnriched:
		return ErrAlreadyEnriched
	}
	if !CanTransition(status, StatusQueued) {
		return fmt.Errorf("enrich entry: unexpected status %q: %w", status, core.ErrInvalidInput)
	}
	return nil
}

// ClearEnrichment resets an entry to pending. Clearing a pending entry is
// a no-op.
func (s *Service) ClearEnrichment(ctx context.Context, userID, id int64) error {
	entry, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return err
	}

	if !CanTransition(entry.EnrichmentStatus, StatusPending) {
		return nil
	}

	return s.repo.ClearEnrichment(ctx, id, userID)
}

type BulkResult struct {
	Pending int
	Queued  int
	Errors  []string
}

type Account struct {
	Name  string
	Email string
}

// BulkEnrich queues every pending entry of the user, then queues the
// account itself. Nothing is sent when no entry is pending.
func (s *Service) BulkEnrich(
	ctx context.Context,
	userID int64,
	account Account,
) (*BulkResult, error) {
	entries, err := s.repo.ListPendingForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Pending: len(entries)}
	if len(entries) == 0 {
		return result, nil
	}

	for i := range entries {
		entry := &entries[i]

		if !s.relay.Send(ctx, entry.Contact()) {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Failed to queue entry %d (%s) for enrichment", entry.ID, entry.Email))
			continue
		}

		if err := s.repo.MarkQueued(ctx, entry.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Error enriching entry %d (%s): %v", entry.ID, entry.Email, err))
			continue
		}

		result.Queued++
	}

	if !s.relay.Send(ctx, enrichment.Contact{Email: account.Email, Name: account.Name}) {
		s.logger.WarnContext(ctx, "account enrichment not queued",
			"user_id", userID,
		)
	}

	return result, nil
}

// ApplyCallback stores an enrichment result on the newest queued entry
// with the given email and returns that entry's id. It fails with
// core.ErrNotFound when no queued entry matches.
func (s *Service) ApplyCallback(
	ctx context.Context,
	email string,
	data core.JSONDocument,
) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	for range callbackAttempts {
		entry, err := s.repo.FindNewestQueuedByEmail(ctx, email)
		if err != nil {
			return 0, err
		}

		err = s.repo.MarkEnriched(ctx, entry.ID, data, s.now())
		if err == nil {
			return entry.ID, nil
		}
		if !errors.Is(err, ErrStatusChanged) {
			return 0, err
		}
	}

	return 0, fmt.Errorf("apply callback: %w", core.ErrNotFound)
}

func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
