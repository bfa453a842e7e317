package domain

import "time"

// Role distinguishes shoppers from privileged operators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Address is used both for a user's saved address and order shipping snapshots.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// User is a registered shopper or operator.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	Address      Address   `json:"address"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// ActorOf returns the Actor for an authenticated user.
func ActorOf(u *User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}
