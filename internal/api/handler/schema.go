package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role"     validate:"required,oneof=client freelancer"`
	// UserType is accepted as an alias of Role.
	UserType    string   `json:"userType,omitempty" swaggerignore:"true"`
	Title       string   `json:"title,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	HourlyRate  *float64 `json:"hourly_rate,omitempty" validate:"omitempty,gte=0,money"`
	Description string   `json:"description,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// updateProfileRequest has no id, email, role or password field; anything
// of the sort in the payload is dropped by the binder.
type updateProfileRequest struct {
	Name        *string   `json:"name,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Skills      *[]string `json:"skills,omitempty"`
	HourlyRate  *float64  `json:"hourly_rate,omitempty" validate:"omitempty,gte=0,money"`
	Description *string   `json:"description,omitempty"`
}

type createJobRequest struct {
	Title       string   `json:"title"       validate:"required"`
	Description string   `json:"description" validate:"required"`
	Budget      float64  `json:"budget"      validate:"required,gt=0,money"`
	Skills      []string `json:"skills,omitempty"`
}

type submitProposalRequest struct {
	CoverLetter       string  `json:"cover_letter"       validate:"required"`
	Bid               float64 `json:"bid"                validate:"required,gt=0,money"`
	EstimatedDuration int     `json:"estimated_duration" validate:"required,gt=0,lte=3650"`
}

type decideProposalRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

// --- Response types ---
// These are owned by the transport layer so the JSON contract is not coupled
// to domain structs. None of them carries a password hash.

type profileView struct {
	Name        string   `json:"name"`
	Title       string   `json:"title,omitempty"`
	Skills      []string `json:"skills"`
	HourlyRate  *float64 `json:"hourly_rate,omitempty"`
	Description string   `json:"description,omitempty"`
}

type userView struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      string      `json:"role"`
	Profile   profileView `json:"profile"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type authResponse struct {
	User      userView  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type clientView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type jobView struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"client_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Budget      float64    `json:"budget"`
	Skills      []string   `json:"skills"`
	Status      string     `json:"status"`
	Client      clientView `json:"client"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type proposalView struct {
	ID                string    `json:"id"`
	JobID             string    `json:"job_id"`
	FreelancerID      string    `json:"freelancer_id"`
	CoverLetter       string    `json:"cover_letter"`
	Bid               float64   `json:"bid"`
	EstimatedDuration int       `json:"estimated_duration"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type profileResponse struct {
	User      userView       `json:"user"`
	Jobs      []jobView      `json:"jobs"`
	Proposals []proposalView `json:"proposals"`
}
