package auth

import (
	"context"

	"bookhive/models"
)

// Identity is who the current request is authenticated as. The zero value is anonymous.
type Identity struct {
	UserID   int
	Username string
	Role     string
}

func (i Identity) Authenticated() bool { return i.UserID != 0 }

func (i Identity) IsAdmin() bool { return i.Authenticated() && i.Role == models.RoleAdmin }

func (i Identity) IsStudent() bool { return i.Authenticated() && i.Role == models.RoleStudent }

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom returns the anonymous identity when none was stored.
func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(contextKey{}).(Identity)
	return id
}
