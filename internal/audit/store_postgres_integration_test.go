//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"eanft/internal/audit"
	"eanft/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *audit.PostgresStore
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = audit.NewPostgresStore(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
}

func (s *PostgresStoreSuite) TestAppendAndListByAccount() {
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Append(s.ctx, audit.Event{
		Category:  audit.CategorySecurity,
		Timestamp: t0,
		AccountID: "admin.testnet",
		Action:    audit.EventAdminAccessDenied,
		Decision:  "denied",
		Reason:    "key_mismatch",
		RequestID: "req-1",
	}))
	s.Require().NoError(s.store.Append(s.ctx, audit.Event{
		Category:  audit.CategoryOperations,
		Timestamp: t0.Add(time.Minute),
		AccountID: "admin.testnet",
		Action:    audit.EventMintSubmitted,
		Detail:    "txHash",
	}))
	s.Require().NoError(s.store.Append(s.ctx, audit.Event{Timestamp: t0, AccountID: "bob.testnet", Action: audit.EventAccountRegistered}))

	events, err := s.store.ListByAccount(s.ctx, "admin.testnet")
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.EventAdminAccessDenied, events[0].Action)
	s.Equal(audit.CategorySecurity, events[0].Category)
	s.Equal("key_mismatch", events[0].Reason)
	s.Equal("req-1", events[0].RequestID)
	s.True(t0.Equal(events[0].Timestamp))
	s.Equal("txHash", events[1].Detail)
}

func (s *PostgresStoreSuite) TestUnknownAccountIsEmpty() {
	events, err := s.store.ListByAccount(s.ctx, "nobody.testnet")
	s.Require().NoError(err)
	s.Empty(events)
}
