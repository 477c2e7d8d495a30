package cache

import (
	"context"
	"errors"
	"log/slog"

	"impactledger/internal/registry/models"
	id "impactledger/pkg/domain"
	"impactledger/pkg/platform/circuit"
	"impactledger/pkg/platform/sentinel"
)

// Backend is the cache being guarded, normally *RedisCache.
type Backend interface {
	FindCredential(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error)
	SaveCredential(ctx context.Context, credential *models.Credential) error
}

// Guarded stops calling an unhealthy cache. While the breaker is open every
// call returns sentinel.ErrUnavailable and readers fall back to the store.
type Guarded struct {
	backend Backend
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuarded(backend Backend, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	return &Guarded{backend: backend, breaker: breaker, logger: logger}
}

func (g *Guarded) FindCredential(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	if !g.breaker.Allow() {
		return nil, sentinel.ErrUnavailable
	}
	credential, err := g.backend.FindCredential(ctx, credentialID)
	g.record(ctx, err)
	return credential, err
}

func (g *Guarded) SaveCredential(ctx context.Context, credential *models.Credential) error {
	if !g.breaker.Allow() {
		return sentinel.ErrUnavailable
	}
	err := g.backend.SaveCredential(ctx, credential)
	g.record(ctx, err)
	return err
}

// record treats a miss as a healthy round trip.
func (g *Guarded) record(ctx context.Context, err error) {
	if err == nil || errors.Is(err, ErrNotFound) {
		if _, change := g.breaker.RecordSuccess(); change.Closed {
			g.logger.InfoContext(ctx, "credential cache recovered", "breaker", g.breaker.Name())
		}
		return
	}
	if _, change := g.breaker.RecordFailure(); change.Opened {
		g.logger.WarnContext(ctx, "credential cache disabled after repeated failures",
			"breaker", g.breaker.Name(),
			"error", err,
		)
	}
}
