package common

import (
	"context"
	"strings"
)

type contextKey string

const authUserContextKey contextKey = "authUser"

// Role is derived from the numeric user id embedded in the token subject.
type Role string

const (
	RoleStudent  Role = "student"
	RoleEmployee Role = "employee"
	RoleUnknown  Role = "unknown"
)

// AuthenticatedUser represents the JWT-derived principal.
type AuthenticatedUser struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// RoleForUserID maps the numeric id onto a role: student ids start with 0
// or 1, employee payroll numbers start with 9.
func RoleForUserID(userID string) Role {
	switch {
	case strings.HasPrefix(userID, "0"), strings.HasPrefix(userID, "1"):
		return RoleStudent
	case strings.HasPrefix(userID, "9"):
		return RoleEmployee
	default:
		return RoleUnknown
	}
}

// UserIDFromSubject extracts the numeric user id from a token subject of
// the form `1130745@ummobile`.
func UserIDFromSubject(subject string) string {
	id, _, _ := strings.Cut(subject, "@")
	return id
}

// ContextWithUser stores the authenticated user into context.
func ContextWithUser(ctx context.Context, user AuthenticatedUser) context.Context {
	return context.WithValue(ctx, authUserContextKey, user)
}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	user, ok := ctx.Value(authUserContextKey).(AuthenticatedUser)
	return user, ok
}
