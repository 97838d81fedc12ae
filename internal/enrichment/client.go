// AngelaMos | 2026
// client.go

package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"github.com/carterperez-dev/leadcap/internal/config"
	"github.com/carterperez-dev/leadcap/internal/core"
)

const (
	authHeader       = "x-clay-webhook-auth"
	maxResponseBytes = 64 << 10
)

var errMissingFields = errors.New("email and name are required")

// Contact is what gets handed to the enrichment provider.
type Contact struct {
	Email       string
	Name        string
	PhoneNumber string
	JobTitle    string
	CompanySize string
	Budget      string
}

// Relay queues a contact with the external enrichment provider. Results
// come back later through the callback endpoint.
type Relay interface {
	Send(ctx context.Context, contact Contact) bool
}

type Client struct {
	httpClient *http.Client
	url        string
	auth       string
	logger     *slog.Logger
}

func NewClient(cfg config.EnrichmentConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		url:        cfg.WebhookURL,
		auth:       cfg.WebhookAuth,
		logger:     logger,
	}
}

type payload struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
	CompanySize string `json:"company_size,omitempty"`
	Budget      string `json:"budget,omitempty"`
}

func newPayload(c Contact) (payload, error) {
	p := payload{
		Email:       strings.TrimSpace(c.Email),
		Name:        strings.TrimSpace(c.Name),
		PhoneNumber: strings.TrimSpace(c.PhoneNumber),
		JobTitle:    strings.TrimSpace(c.JobTitle),
		CompanySize: strings.TrimSpace(c.CompanySize),
		Budget:      strings.TrimSpace(c.Budget),
	}
	if p.Email == "" || p.Name == "" {
		return payload{}, errMissingFields
	}
	return p, nil
}

// Send posts the contact to the webhook and reports whether it was
// accepted. Every failure is logged and collapsed to false.
func (c *Client) Send(ctx context.Context, contact Contact) bool {
	ctx, span := core.StartSpan(ctx, "enrichment.send",
		attribute.String("enrichment.email", contact.Email),
	)
	defer span.End()

	if err := c.send(ctx, contact); err != nil {
		core.SetSpanError(span, err)
		c.logger.ErrorContext(ctx, "enrichment webhook failed",
			"email", contact.Email,
			"error", err,
		)
		return false
	}

	c.logger.InfoContext(ctx, "contact queued for enrichment",
		"email", contact.Email,
	)
	return true
}

func (c *Client) send(ctx context.Context, contact Contact) error {
	if c.url == "" {
		return errors.New("webhook url is not configured")
	}

	p, err := newPayload(contact)
	if err != nil {
		return err
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.auth != "" {
		req.Header.Set(authHeader, c.auth)
	}
	core.InjectTraceHeaders(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // body is drained below

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.WarnContext(ctx, "could not read enrichment response",
			"error", err,
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	return nil
}
