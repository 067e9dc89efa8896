package domain

import "time"

// Role distinguishes the two kinds of account that can log in.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleInstructor
}

// Geometry is a GeoJSON point resolved from a free-text location.
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Principal represents a student or instructor account.
type Principal struct {
	ID             int64
	Email          string
	PasswordHash   string
	FullName       string
	Bio            string
	Role           Role
	BirthDate      time.Time
	PhoneNumber    string
	ProfilePicture string
	Location       string
	Geometry       Geometry
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PrincipalSummary is the slice of a principal embedded in other projections.
type PrincipalSummary struct {
	FullName       string
	ProfilePicture string
	Location       string
}
