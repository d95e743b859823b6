package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"eanft/internal/ledger"
	"eanft/internal/minting"
	"eanft/internal/minting/mocks"
	"eanft/pkg/testutil"
)

const contract = "ea_nft.wabinab.testnet"

type HandlerSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockLedger *mocks.MockLedger
	router     chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockLedger = mocks.NewMockLedger(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(minting.New(s.mockLedger, contract, minting.WithLogger(logger)), logger).Register(s.router)
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) TestMintAccepted() {
	testutil.Given(s.T(), "a contract with two categories", func(t *testing.T) {
		s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "get_id_by_category", nil).
			Return(json.RawMessage(`{"bees":0,"water":1}`), nil)
		s.mockLedger.EXPECT().ChangeCall(gomock.Any(), contract, "minting_interface", gomock.Any(), 300*ledger.TGas, "3.3").
			Return(&ledger.Outcome{TransactionHash: "abc"}, nil)

		testutil.When(t, "a donor pledges to both", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/mint", map[string]any{
				"suffix_token_id": "donor-1",
				"pledges":         map[string]string{"bees": "1.0", "water": "2.0"},
			})
			rr := testutil.DoRequest(s.router, req)

			testutil.Then(t, "the mint is accepted with the priced deposit", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusAccepted)
				receipt := testutil.UnmarshalResponse[minting.Receipt](t, rr)
				s.Equal("3.3", receipt.Deposit)
				s.Equal("abc", receipt.TransactionHash)
			})
		})
	})
}

func (s *HandlerSuite) TestMintErrors() {
	s.Run("missing suffix", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/mint", map[string]any{"pledges": map[string]string{}})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("contract rejection is 502", func() {
		s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "get_id_by_category", nil).Return(nil, nil)
		s.mockLedger.EXPECT().ChangeCall(gomock.Any(), contract, "minting_interface", gomock.Any(), gomock.Any(), "0.1").
			Return(nil, &ledger.Error{Category: ledger.ErrorExecution, Method: "minting_interface", Message: "Not enough deposit"})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/mint", map[string]any{"suffix_token_id": "donor-2"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadGateway, "upstream_error")
	})

	s.Run("deadline is 504", func() {
		s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "get_id_by_category", nil).
			Return(nil, &ledger.Error{Category: ledger.ErrorTimeout, Method: "get_id_by_category", Underlying: context.DeadlineExceeded})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/mint", map[string]any{"suffix_token_id": "donor-3"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusGatewayTimeout, "timeout")
	})
}
