package model

import "time"

const AdminUserID = "admin"

// Admin is the built-in administrator from the configuration. It is not part
// of the roster, so no staff sync can remove it.
type Admin struct {
	Username     string `json:"username"`
	PasswordHash []byte `json:"-"`
}

func (a Admin) User(at time.Time) User {
	return User{
		ID:         AdminUserID,
		Username:   a.Username,
		FullName:   "Administrator",
		Role:       RoleAdmin,
		LoggedInAt: at,
	}
}
