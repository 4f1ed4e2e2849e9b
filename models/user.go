package models

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID int
	Role   string
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
