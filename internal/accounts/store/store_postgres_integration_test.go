//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"eanft/internal/accounts/models"
	"eanft/internal/accounts/store"
	"eanft/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresStore
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
}

func (s *PostgresStoreSuite) TestUpsertCreatesThenUpdates() {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	created, isNew, err := s.store.Upsert(s.ctx, &models.AccountRecord{AccountID: "alice.testnet", PublicKey: "pk1", AllKeys: "k1"}, t0)
	s.Require().NoError(err)
	s.True(isNew)
	s.Equal("k1", created.AllKeys)

	updated, isNew, err := s.store.Upsert(s.ctx, &models.AccountRecord{AccountID: "alice.testnet", PublicKey: "pk2", AllKeys: "k2"}, t1)
	s.Require().NoError(err)
	s.False(isNew)
	s.Equal("pk2", updated.PublicKey)
	s.True(updated.CreatedAt.Equal(t0))
	s.True(updated.UpdatedAt.Equal(t1))
}

func (s *PostgresStoreSuite) TestFindMissing() {
	_, err := s.store.FindByAccountID(s.ctx, "nobody.testnet")
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *PostgresStoreSuite) TestConcurrentUpsertsLeaveOneRow() {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.store.Upsert(s.ctx, &models.AccountRecord{AccountID: "race.testnet", AllKeys: "k"}, time.Now())
			s.NoError(err)
		}()
	}
	wg.Wait()

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}
