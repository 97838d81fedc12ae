// AngelaMos | 2026
// dto.go

package entry

import (
	"time"

	"github.com/carterperez-dev/leadcap/internal/core"
)

type CreateEntryRequest struct {
	Name        string `json:"name"         validate:"required,max=200"`
	Email       string `json:"email"        validate:"required,email,max=255"`
	PhoneNumber string `json:"phone_number" validate:"max=50"`
	JobTitle    string `json:"job_title"    validate:"max=200"`
	CompanySize string `json:"company_size" validate:"max=100"`
	Budget      string `json:"budget"       validate:"max=100"`
}

type UpdateEntryRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	JobTitle    *string `json:"job_title"`
	CompanySize *string `json:"company_size"`
	Budget      *string `json:"budget"`
}

type EntryResponse struct {
	ID               int64             `json:"id,string"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	PhoneNumber      *string           `json:"phone_number"`
	JobTitle         *string           `json:"job_title"`
	CompanySize      *string           `json:"company_size"`
	Budget           *string           `json:"budget"`
	EnrichmentStatus string            `json:"enrichment_status"`
	EnrichedAt       *time.Time        `json:"enriched_at"`
	EnrichmentData   core.JSONDocument `json:"enrichment_data"`
	CreatedAt        time.Time         `json:"created_at"`
}

type EntryEnvelope struct {
	Entry EntryResponse `json:"entry"`
}

type EntryListResponse struct {
	Entries []EntryResponse `json:"entries"`
}

type BulkEnrichResponse struct {
	Message     string   `json:"message"`
	QueuedCount int      `json:"queued_count"`
	Errors      []string `json:"errors,omitempty"`
}

type BulkEnrichFailure struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

func ToEntryResponse(e *Entry) EntryResponse {
	return EntryResponse{
		ID:               e.ID,
		Name:             e.Name,
		Email:            e.Email,
		PhoneNumber:      e.PhoneNumber,
		JobTitle:         e.JobTitle,
		CompanySize:      e.CompanySize,
		Budget:           e.Budget,
		EnrichmentStatus: e.EnrichmentStatus,
		EnrichedAt:       e.EnrichedAt,
		EnrichmentData:   e.EnrichmentData,
		CreatedAt:        e.CreatedAt,
	}
}

func ToEntryResponseList(entries []Entry) []EntryResponse {
	responses := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, ToEntryResponse(&entries[i]))
	}
	return responses
}
