// AngelaMos | 2026
// dto.go

package auth

type SignupRequest struct {
	Name    string `json:"name"    validate:"required,max=100"`
	Email   string `json:"email"   validate:"required,email,max=255"`
	Website string `json:"website"`
}

type LoginRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,max=255"`
	Code  string `json:"code"  validate:"required,max=16"`
}

type SignupUser struct {
	ID    int64  `json:"id,string"`
	Email string `json:"email"`
}

type SignupResponse struct {
	Message string     `json:"message"`
	User    SignupUser `json:"user"`
}

type UserResponse struct {
	ID    int64  `json:"id,string"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type VerifyResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}
