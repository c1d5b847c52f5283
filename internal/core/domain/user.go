package domain

import "time"

// Role is the closed set of account types. It is fixed at registration.
type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleFreelancer
}

// Profile holds the attributes an identity may edit about itself.
type Profile struct {
	Name        string   `json:"name"`
	Title       string   `json:"title,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	HourlyRate  *float64 `json:"hourly_rate,omitempty"`
	Description string   `json:"description,omitempty"`
}

// User is a registered identity (client or freelancer).
//
// PasswordHash never leaves the process; the transport layer renders users
// through its own view type.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	Name        *string
	Title       *string
	Skills      *[]string
	HourlyRate  *float64
	Description *string
}

// Apply copies the non-nil fields of u onto p.
func (u ProfileUpdate) Apply(p *Profile) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Skills != nil {
		p.Skills = append([]string(nil), (*u.Skills)...)
	}
	if u.HourlyRate != nil {
		rate := *u.HourlyRate
		p.HourlyRate = &rate
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
}

// Empty reports whether the update carries no field at all.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.Title == nil && u.Skills == nil && u.HourlyRate == nil && u.Description == nil
}

// Principal is the caller identity resolved from a verified access token.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}
