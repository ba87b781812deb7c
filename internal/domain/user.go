package domain

import "time"

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

type User struct {
	ID           int32     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Role         UserRole  `json:"role"`
	Active       bool      `json:"active"`
	JoinDate     time.Time `json:"join_date"`
}

// Operator is the authenticated staff member acting on a request. It is resolved
// once per request and passed explicitly to every workflow.
type Operator struct {
	ID       int32    `json:"id"`
	Username string   `json:"username"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

func (u *User) Operator() Operator {
	return Operator{ID: u.ID, Username: u.Username, FullName: u.FullName, Role: u.Role}
}

type SignupInput struct {
	Username string
	Password string
	FullName string
	Email    string
	Role     UserRole
}
