// Package store persists delegates and credentials behind one transactional
// boundary. Every mutation of either collection happens inside RunInTx, so the
// ID counters and running totals commit or roll back together.
package store

import (
	"context"

	"impactledger/internal/registry/models"
	id "impactledger/pkg/domain"
	"impactledger/pkg/platform/sentinel"
)

// ErrNotFound is returned when a delegate or credential does not exist.
var ErrNotFound = sentinel.ErrNotFound

// Tx is the mutation surface available inside RunInTx. Counter advances are
// part of the transaction: a rolled-back transaction consumes no IDs.
type Tx interface {
	NextDelegateID(ctx context.Context) (id.DelegateID, error)
	NextCredentialID(ctx context.Context) (id.CredentialID, error)
	InsertDelegate(ctx context.Context, delegate *models.Delegate) error
	InsertCredential(ctx context.Context, credential *models.Credential) error
	// FindDelegate returns the delegate as seen by this transaction, locked
	// against concurrent total updates until commit.
	FindDelegate(ctx context.Context, delegateID id.DelegateID) (*models.Delegate, error)
	UpdateTotalImpact(ctx context.Context, delegateID id.DelegateID, total uint64) error
}

// Store is implemented by InMemory and PostgresStore.
type Store interface {
	RunInTx(ctx context.Context, fn func(tx Tx) error) error

	FindDelegate(ctx context.Context, delegateID id.DelegateID) (*models.Delegate, error)
	ListDelegates(ctx context.Context) ([]*models.Delegate, error)
	FindCredential(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error)
	ListCredentialsByDelegate(ctx context.Context, delegateID id.DelegateID) ([]*models.Credential, error)
	TotalImpacts(ctx context.Context, delegateIDs []id.DelegateID) (map[id.DelegateID]uint64, error)
}

var (
	_ Store = (*InMemory)(nil)
	_ Store = (*PostgresStore)(nil)
)
