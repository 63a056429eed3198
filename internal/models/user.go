package models

const (
	// RoleViewer may read the inventory but not change it.
	RoleViewer = "viewer"
	// RoleAdmin may create, edit, delete and import records.
	RoleAdmin = "admin"
)

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// CanWrite reports whether the user may mutate inventory records.
func (u User) CanWrite() bool {
	return u.Role == RoleAdmin
}
