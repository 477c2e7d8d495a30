//go:build integration

package store_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"impactledger/internal/registry/models"
	"impactledger/internal/registry/store"
	id "impactledger/pkg/domain"
	"impactledger/pkg/platform/sentinel"
	"impactledger/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(store.Migrate(context.Background(), s.postgres.DB))
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	// Truncate in dependency order
	s.Require().NoError(s.postgres.TruncateTables(ctx, "credentials", "delegates"))
	_, err := s.postgres.DB.ExecContext(ctx, `UPDATE ledger_counters SET value = 0`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) register(ctx context.Context, name string) (id.DelegateID, error) {
	var delegateID id.DelegateID
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		next, err := tx.NextDelegateID(ctx)
		if err != nil {
			return err
		}
		delegateID = next
		return tx.InsertDelegate(ctx, &models.Delegate{
			ID: next, Name: name, Specialization: "Climate", RegisteredBy: "wallet_1", RegisteredAt: time.Now().UTC(),
		})
	})
	return delegateID, err
}

func (s *PostgresStoreSuite) issue(ctx context.Context, delegateID id.DelegateID, score uint64) (id.CredentialID, error) {
	var credentialID id.CredentialID
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		d, err := tx.FindDelegate(ctx, delegateID)
		if err != nil {
			return err
		}
		next, err := tx.NextCredentialID(ctx)
		if err != nil {
			return err
		}
		credentialID = next
		if err := tx.InsertCredential(ctx, &models.Credential{
			ID: next, DelegateID: delegateID, Title: "t", Description: "d", ImpactScore: score,
			IssuedBy: "deployer", IssuedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return tx.UpdateTotalImpact(ctx, delegateID, d.TotalImpact+score)
	})
	return credentialID, err
}

func (s *PostgresStoreSuite) TestRollbackConsumesNoIDs() {
	ctx := context.Background()
	first, err := s.register(ctx, "a")
	s.Require().NoError(err)
	s.Equal(id.DelegateID(1), first)

	boom := errors.New("boom")
	err = s.store.RunInTx(ctx, func(tx store.Tx) error {
		_, err := tx.NextDelegateID(ctx)
		s.Require().NoError(err)
		return boom
	})
	s.Require().ErrorIs(err, boom)

	second, err := s.register(ctx, "b")
	s.Require().NoError(err)
	s.Equal(id.DelegateID(2), second)
}

func (s *PostgresStoreSuite) TestTotalsRoundTripFullRange() {
	ctx := context.Background()
	delegateID, err := s.register(ctx, "big")
	s.Require().NoError(err)

	_, err = s.issue(ctx, delegateID, math.MaxUint64)
	s.Require().NoError(err)

	d, err := s.store.FindDelegate(ctx, delegateID)
	s.Require().NoError(err)
	s.Equal(uint64(math.MaxUint64), d.TotalImpact)

	totals, err := s.store.TotalImpacts(ctx, []id.DelegateID{delegateID, 9999})
	s.Require().NoError(err)
	s.Equal(map[id.DelegateID]uint64{delegateID: math.MaxUint64}, totals)
}

func (s *PostgresStoreSuite) TestUnknownDelegate() {
	ctx := context.Background()
	_, err := s.issue(ctx, 9999, 10)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.ListCredentialsByDelegate(ctx, 9999)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	delegateID, err := s.register(ctx, "after-miss")
	s.Require().NoError(err)
	credentialID, err := s.issue(ctx, delegateID, 1)
	s.Require().NoError(err)
	s.Equal(id.CredentialID(1), credentialID, "failed issuance must not consume a credential ID")
}

// TestConcurrentIssuance verifies totals and IDs stay consistent under contention.
func (s *PostgresStoreSuite) TestConcurrentIssuance() {
	ctx := context.Background()
	delegateID, err := s.register(ctx, "hot")
	s.Require().NoError(err)

	const goroutines = 25
	var wg sync.WaitGroup
	errs := make(chan error, goroutines)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.issue(ctx, delegateID, 4); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	d, err := s.store.FindDelegate(ctx, delegateID)
	s.Require().NoError(err)
	s.Equal(uint64(goroutines*4), d.TotalImpact)

	creds, err := s.store.ListCredentialsByDelegate(ctx, delegateID)
	s.Require().NoError(err)
	s.Require().Len(creds, goroutines)
	for i, c := range creds {
		s.Equal(id.CredentialID(i+1), c.ID)
	}
}
