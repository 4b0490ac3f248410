package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of user classes.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// ParseRole accepts "admin" or "customer" in any case.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleCustomer:
		return RoleCustomer, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleCustomer }

func (r Role) String() string { return string(r) }

// User is a login account. Customers log in with their mobile number as the
// username.
type User struct {
	Username string `bson:"username" json:"username"`
	Password string `bson:"password" json:"-"` // bcrypt hash; legacy rows may hold plaintext
	Role     Role   `bson:"role"     json:"role"`
}

// UserRequiredKeys lists the document keys a stored user must carry.
var UserRequiredKeys = []string{"username", "password", "role"}
