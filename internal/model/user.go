package model

import (
    "strings"
    "time"
)

// Role is the access level of a user.
type Role string

const (
    RoleAdmin  Role = "ADMIN"
    RoleMember Role = "MEMBER"
)

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
    switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
    case RoleAdmin, RoleMember:
        return r, true
    }
    return "", false
}

// User represents an application user as stored in the `users` table.
// PasswordHash holds a bcrypt digest and is never serialized.
type User struct {
    ID           string    `json:"id"`        // users.id
    Name         string    `json:"name"`      // users.name
    Email        string    `json:"email"`     // users.email (unique, lower-cased)
    Phone        *string   `json:"phone"`     // users.phone (nullable)
    Role         Role      `json:"role"`      // users.role
    PasswordHash string    `json:"-"`         // users.password
    CreatedAt    time.Time `json:"createdAt"` // users.created_at
}
