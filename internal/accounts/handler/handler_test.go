package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"eanft/internal/accounts/authz"
	"eanft/internal/accounts/models"
	"eanft/internal/accounts/service"
	"eanft/internal/accounts/store"
	"eanft/pkg/testutil"
)

const adminID = "somebodyelse.testnet"

type HandlerSuite struct {
	suite.Suite
	router chi.Router
	store  *store.InMemory
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.NewInMemory()
	svc := service.New(s.store, service.WithLogger(logger))
	gate := authz.New(adminID, s.store, authz.WithLogger(logger))

	s.router = chi.NewRouter()
	New(svc, gate, logger).Register(s.router)

	_, _, err := s.store.Upsert(context.Background(), &models.AccountRecord{AccountID: adminID, AllKeys: "ed25519:admin"}, time.Now())
	s.Require().NoError(err)
}

func (s *HandlerSuite) TestRegisterJSON() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users", map[string]string{
		"account_id": "alice.testnet",
		"public_key": "ed25519:pk",
		"all_keys":   "ed25519:a",
	})
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	rr := testutil.DoRequest(s.router, testutil.WithRequestTime(req, now))
	testutil.AssertStatusOK(s.T(), rr)

	resp := testutil.UnmarshalResponse[models.AccountResponse](s.T(), rr)
	s.Equal("alice.testnet", resp.AccountID)
	s.Equal("/users/alice-testnet", resp.Profile)
	s.True(now.Equal(resp.UpdatedAt))
}

func (s *HandlerSuite) TestRegisterForm() {
	form := url.Values{"user[account_id]": {"bob.testnet"}, "user[public_key]": {"ed25519:pk"}, "user[all_keys]": {"k"}}
	rr := testutil.DoRequest(s.router, testutil.NewFormRequest(s.T(), http.MethodPost, "/users", form))
	testutil.AssertStatusOK(s.T(), rr)

	record, err := s.store.FindByAccountID(context.Background(), "bob.testnet")
	s.Require().NoError(err)
	s.Equal("k", record.AllKeys)
}

func (s *HandlerSuite) TestRegisterValidation() {
	s.Run("missing account id", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users", map[string]string{"public_key": "pk"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("malformed json", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/users", "{not json")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestGetByDisplayID() {
	_, _, err := s.store.Upsert(context.Background(), &models.AccountRecord{AccountID: "alice.near", PublicKey: "pk"}, time.Now())
	s.Require().NoError(err)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/users/alice-near"))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "account_id", "alice.near")

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/users/nobody-near"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *HandlerSuite) TestAdminListing() {
	s.Run("administrator sees all users", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet,
			"/users?account_id="+adminID+"&all_keys="+url.QueryEscape("ed25519:admin")))
		testutil.AssertStatusOK(s.T(), rr)

		var body models.AccountsListResponse
		s.Require().NoError(json.NewDecoder(rr.Body).Decode(&body))
		s.Equal(1, body.Total)
		s.Equal(adminID, body.Users[0].AccountID)
	})

	s.Run("anyone else gets forbidden with fallback", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet,
			"/users?account_id=alice.testnet&all_keys=ed25519:admin"))
		testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Equal("forbidden", body["error"])
		s.Equal("/", body["fallback"])
		s.True(strings.Contains(body["error_description"], "not authorized"))
	})
}
