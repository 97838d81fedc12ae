// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/leadcap/internal/core"
)

type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active flagged blocked"`
}

type UserResponse struct {
	ID        int64     `json:"id,string"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type AdminUserResponse struct {
	UserResponse
	Enrichment core.JSONDocument `json:"enrichment"`
}

type UserListResponse struct {
	Users      []AdminUserResponse `json:"users"`
	Pagination core.Pagination     `json:"pagination"`
}

type UserEnvelope struct {
	User UserResponse `json:"user"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 50
	}
	if p.PageSize > 200 {
		p.PageSize = 200
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

func ToAdminUserResponseList(users []WithEnrichment) []AdminUserResponse {
	responses := make([]AdminUserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, AdminUserResponse{
			UserResponse: ToUserResponse(&users[i].User),
			Enrichment:   users[i].Enrichment,
		})
	}
	return responses
}
