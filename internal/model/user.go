package model

import "time"

// Role is the access level carried in tokens and checked by the gate.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleDistributor Role = "distributor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleDistributor
}

// User represents an account stored in the users collection. The
// password and refresh token hashes never leave the server: both are
// excluded from JSON.
//
// Fields:
//
//	ID               – store identifier (ObjectID hex, snowflake or ksuid depending on backend).
//	Phone            – unique national mobile number.
//	Email            – optional, unique when present.
//	PasswordHash     – bcrypt hash.
//	RefreshTokenHash – SHA-256 hex of the single active refresh token, empty when logged out.
type User struct {
	ID               string    `json:"_id"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email,omitempty"`
	PasswordHash     string    `json:"-"`
	Role             Role      `json:"role"`
	Address          string    `json:"address"`
	City             string    `json:"city"`
	BusinessName     string    `json:"businessName"`
	RefreshTokenHash string    `json:"-"`
	JoiningDate      time.Time `json:"joiningDate"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Identity is the token payload view of a user returned by login.
type Identity struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Role    Role   `json:"role"`
	Address string `json:"address,omitempty"`
}

// Identity returns the access-token payload for u.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Phone: u.Phone, Role: u.Role, Address: u.Address}
}
