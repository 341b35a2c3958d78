package models

// Roles a session can be authenticated as.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"` // "admin" or "student"
}

// Book is a catalog entry. The ID is chosen by the admin, not generated.
type Book struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	Available bool   `json:"available"`
}

// ValidRole reports whether role is one a user can log in as.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStudent
}
