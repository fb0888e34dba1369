package response

import "strings"

const (
	RoleAdmin = "ROLE_ADMIN"
	RoleUser  = "ROLE_USER"
)

type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u User) IsAdmin() bool {
	role := strings.ToUpper(strings.TrimSpace(u.Role))
	return role == RoleAdmin || role == "ADMIN"
}

// Auth is the body of a successful login.
type Auth struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (a Auth) User() User {
	return User{Name: a.Name, Email: a.Email, Role: a.Role}
}
