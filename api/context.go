package api

import (
	"context"

	"github.com/rpupo63/blog-backend/auth"
)

type keyType string

const (
	identityKey keyType = "identity"
)

// ctxWithIdentity adds the authenticated caller to the context
func ctxWithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// ctxGetIdentity returns the authenticated caller, or the zero Identity on
// routes that skipped authentication.
func ctxGetIdentity(ctx context.Context) auth.Identity {
	id, _ := ctx.Value(identityKey).(auth.Identity)
	return id
}
