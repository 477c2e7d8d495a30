package service

import (
	"context"
	"crypto/subtle"

	id "impactledger/pkg/domain"
	dErrors "impactledger/pkg/domain-errors"
)

// Authorizer decides whether caller may issue credentials.
type Authorizer interface {
	CanIssue(ctx context.Context, caller id.AccountID) error
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, caller id.AccountID) error

func (f AuthorizerFunc) CanIssue(ctx context.Context, caller id.AccountID) error {
	return f(ctx, caller)
}

// AdminAuthorizer allows exactly one account: the registry administrator.
type AdminAuthorizer struct {
	admin id.AccountID
}

func NewAdminAuthorizer(admin id.AccountID) *AdminAuthorizer {
	return &AdminAuthorizer{admin: admin}
}

func (a *AdminAuthorizer) CanIssue(_ context.Context, caller id.AccountID) error {
	if caller.IsZero() || a.admin.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "only the registry administrator may issue credentials")
	}
	if subtle.ConstantTimeCompare([]byte(caller), []byte(a.admin)) != 1 {
		return dErrors.New(dErrors.CodeUnauthorized, "only the registry administrator may issue credentials")
	}
	return nil
}

// Administrator returns the configured administrator account.
func (a *AdminAuthorizer) Administrator() id.AccountID {
	return a.admin
}
