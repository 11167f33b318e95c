// Package identity defines the identity-provider contract the session
// controller depends on, plus the hosted implementation backed by the
// user repository.
package identity

import "context"

// Identity is the provider's view of an authenticated account: just enough
// to key a role resolution. Everything else lives on the identity record.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
}

// Provider issues and tracks login state. OnAuthStateChange delivers the
// current identity (or nil) immediately on subscribe and again on every
// change; the returned function unsubscribes.
type Provider interface {
	SignInWithPassword(ctx context.Context, email string, password string) (Identity, error)
	SignOut(ctx context.Context) error
	SendPasswordResetEmail(ctx context.Context, email string) error
	OnAuthStateChange(fn func(*Identity)) (unsubscribe func())
}
