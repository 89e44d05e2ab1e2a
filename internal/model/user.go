package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleStaff   Role = "STAFF"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole maps remote role spellings onto a Role, defaulting to STAFF.
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADMIN", "ADMINISTRATOR":
		return RoleAdmin
	case "MANAGER", "LEADER", "LEAD":
		return RoleManager
	default:
		return RoleStaff
	}
}

// StaffMember is one entry of the roster. Department holds either a department
// id or a department name; see Department resolution in the service layer.
type StaffMember struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	Username   string `json:"username"`
	Password   string `json:"password,omitempty"`
	Role       Role   `json:"role"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Active     bool   `json:"active"`
	Department string `json:"department,omitempty"`
	JoinDate   string `json:"joinDate,omitempty"`
}

// DisplayName falls back to the username when no full name is known.
func (m StaffMember) DisplayName() string {
	if strings.TrimSpace(m.FullName) != "" {
		return m.FullName
	}
	return m.Username
}

// User is the logged-in identity. It is copied out of the roster at login so a
// later staff resync cannot change who is logged in.
type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"fullName"`
	Role       Role      `json:"role"`
	Department string    `json:"department,omitempty"`
	LoggedInAt time.Time `json:"loggedInAt"`
}

func (u User) DisplayName() string {
	if strings.TrimSpace(u.FullName) != "" {
		return u.FullName
	}
	return u.Username
}

// NewUserFromStaff builds a session identity from a roster entry.
func NewUserFromStaff(m StaffMember, at time.Time) User {
	return User{
		ID:         m.ID,
		Username:   m.Username,
		FullName:   m.FullName,
		Role:       m.Role,
		Department: m.Department,
		LoggedInAt: at,
	}
}

// RecentAccount is an entry of the quick-switch list shown on the login screen.
type RecentAccount struct {
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
	Role     Role      `json:"role"`
	LastUsed time.Time `json:"lastUsed"`
}
