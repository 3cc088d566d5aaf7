// Package principal carries the authenticated caller through request contexts.
package principal

import (
	"context"

	"authgate/internal/permission"
)

// Seller is the principal attached by the seller guard.
type Seller struct {
	ID               string
	Name             string
	Role             string
	SubscriptionPlan string
	AllowedServices  []string
	Permissions      permission.Set
	TokenFormat      string
}

// Allows reports whether the seller holds code. Seller codes match literally;
// the wildcard only has meaning for admin roles.
func (s *Seller) Allows(code string) bool {
	return s != nil && s.Permissions.Contains(code)
}

// Admin source values.
const (
	SourceSession      = "session"
	SourceStaticBearer = "static_bearer"
	SourceSystem       = "system"
)

// Admin is an internal operator. Sessions come from the upstream pipeline; static-bearer
// callers are service credentials with no user id and are treated as superusers.
type Admin struct {
	UserID        string
	Email         string
	Authenticated bool
	Source        string
}

// IsSuperuser reports whether fine-grained permission checks are skipped for this caller.
func (a Admin) IsSuperuser() bool {
	return a.Source == SourceStaticBearer || a.Source == SourceSystem
}

// IsSelf reports whether userID refers to this operator.
func (a Admin) IsSelf(userID string) bool {
	return a.UserID != "" && a.UserID == userID
}

// AuditID is the actor id written to the audit log.
func (a Admin) AuditID() string {
	if a.UserID != "" {
		return a.UserID
	}
	if a.Source != "" {
		return a.Source
	}
	return "anonymous"
}

// System is the actor used by seed scripts and background jobs.
var System = Admin{UserID: "", Authenticated: true, Source: SourceSystem}

type sellerKey struct{}
type adminKey struct{}

func WithSeller(ctx context.Context, s *Seller) context.Context {
	return context.WithValue(ctx, sellerKey{}, s)
}

func SellerFrom(ctx context.Context) (*Seller, bool) {
	s, ok := ctx.Value(sellerKey{}).(*Seller)
	return s, ok && s != nil
}

func WithAdmin(ctx context.Context, a Admin) context.Context {
	return context.WithValue(ctx, adminKey{}, a)
}

func AdminFrom(ctx context.Context) (Admin, bool) {
	a, ok := ctx.Value(adminKey{}).(Admin)
	return a, ok
}
