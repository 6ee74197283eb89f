package domain

import "fmt"

// Role is the access level of a signed-in user. Anonymous callers are guests.
type Role string

const (
	RoleGuest    Role = "guest"
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleGuest, RoleCustomer, RoleManager, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	return string(r)
}

type User struct {
	ID           int64  `json:"id"`
	FullName     string `json:"full_name"`
	Login        string `json:"login"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}
