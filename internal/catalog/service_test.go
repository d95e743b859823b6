package catalog

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Ledger,AuditPublisher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"eanft/internal/audit"
	"eanft/internal/catalog/mocks"
	"eanft/internal/ledger"
	dErrors "eanft/pkg/domain-errors"
)

const contract = "ea_nft.wabinab.testnet"

// memoryCache is a map-backed Cache for unit tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, false, errors.New("redis down")
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]byte(nil), value...)
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockLedger *mocks.MockLedger
	mockAudit  *mocks.MockAuditPublisher
	cache      *memoryCache
	metrics    *Metrics
	service    *Service
	ctx        context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockLedger = mocks.NewMockLedger(s.ctrl)
	s.mockAudit = mocks.NewMockAuditPublisher(s.ctrl)
	s.cache = newMemoryCache()
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.service = New(s.mockLedger, contract,
		WithCache(s.cache, time.Minute),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.mockAudit),
		WithMetrics(s.metrics),
	)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) TestTemplates() {
	s.Run("list payload is keyed by title", func() {
		s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "view_metadatas", nil).
			Return(json.RawMessage(`[{"title":"Save the Bees","description":"bees","media":"https://img/bee.png"},{"title":"Clean Water"}]`), nil)

		templates, err := s.service.Templates(s.ctx)
		s.Require().NoError(err)
		s.Len(templates, 2)
		s.Equal("bees", templates["Save the Bees"].Metadata.Description)
		s.Equal("Clean Water", templates["Clean Water"].TemplateID)
	})

	s.Run("second read is served from cache", func() {
		templates, err := s.service.Templates(s.ctx)
		s.Require().NoError(err)
		s.Len(templates, 2)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("view_metadatas", "hit")))
	})
}

func (s *ServiceSuite) TestTemplatesObjectPayload() {
	s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "view_metadatas", nil).
		Return(json.RawMessage(`{"bees":{"title":"Save the Bees","issued_at":1650000000}}`), nil)

	templates, err := s.service.Templates(s.ctx)
	s.Require().NoError(err)
	s.Equal("bees", templates["bees"].TemplateID)
	s.Equal(json.Number("1650000000"), templates["bees"].Metadata.IssuedAt)
}

func (s *ServiceSuite) TestAbsentPayloadsAreEmpty() {
	s.Run("templates", func() {
		s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "view_metadatas", nil).Return(nil, nil)
		templates, err := s.service.Templates(s.ctx)
		s.Require().NoError(err)
		s.NotNil(templates)
		s.Empty(templates)
	})

	s.Run("donation candidates", func() {
		s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "get_list_to_donate", nil).Return(nil, nil)
		candidates, err := s.service.DonationCandidates(s.ctx)
		s.Require().NoError(err)
		s.NotNil(candidates)
		s.Empty(candidates)
	})

	s.Run("categories", func() {
		s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "get_id_by_category", nil).Return(json.RawMessage("null"), nil)
		categories, err := s.service.Categories(s.ctx)
		s.Require().NoError(err)
		s.NotNil(categories)
		s.Empty(categories)
	})
}

func (s *ServiceSuite) TestMalformedPayloadIsDecodeError() {
	s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "get_list_to_donate", nil).
		Return(json.RawMessage(`{"bees": 12`), nil)

	_, err := s.service.DonationCandidates(s.ctx)
	s.Equal(ledger.ErrorDecode, ledger.GetCategory(err))
}

func (s *ServiceSuite) TestLedgerErrorIsReturnedUnmodified() {
	ledgerErr := &ledger.Error{Category: ledger.ErrorTransport, Method: "get_id_by_category", Message: "connection refused"}
	s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "get_id_by_category", nil).Return(nil, ledgerErr)

	_, err := s.service.Categories(s.ctx)
	s.Same(ledgerErr, err)
}

func (s *ServiceSuite) TestCacheFailureFallsThroughToLedger() {
	s.cache.failGet = true
	s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "get_id_by_category", nil).
		Return(json.RawMessage(`{"bees":0,"water":1}`), nil)

	categories, err := s.service.Categories(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]uint16{"bees": 0, "water": 1}, categories)
}

func (s *ServiceSuite) TestOwnerDonations() {
	s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "get_owner_donation", map[string]string{"account_id": "alice.testnet"}).
		Return(json.RawMessage(`{"Save the Bees":"1.5"}`), nil)

	donations, err := s.service.OwnerDonations(s.ctx, "alice.testnet")
	s.Require().NoError(err)
	s.Equal("1.5", donations["Save the Bees"])

	_, ok := s.cache.entries["catalog:get_owner_donation:alice.testnet"]
	s.True(ok)
	s.service.InvalidateOwnerDonations(s.ctx, "alice.testnet")
	_, ok = s.cache.entries["catalog:get_owner_donation:alice.testnet"]
	s.False(ok)

	_, err = s.service.OwnerDonations(s.ctx, "")
	s.True(dErrors.Is(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestCatalogFetchesBothViews() {
	s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "view_metadatas", nil).
		Return(json.RawMessage(`[{"title":"Save the Bees"}]`), nil)
	s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "get_list_to_donate", nil).
		Return(json.RawMessage(`{"bees":"Save the Bees"}`), nil)

	view, err := s.service.Catalog(s.ctx)
	s.Require().NoError(err)
	s.Len(view.Templates, 1)
	s.Equal("Save the Bees", view.DonationCandidates["bees"])
}

func (s *ServiceSuite) TestCatalogFailsWhenEitherViewFails() {
	s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "view_metadatas", nil).
		Return(nil, &ledger.Error{Category: ledger.ErrorRPC, Method: "view_metadatas"}).AnyTimes()
	s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "get_list_to_donate", nil).
		Return(json.RawMessage(`{}`), nil).AnyTimes()

	_, err := s.service.Catalog(s.ctx)
	s.Equal(ledger.ErrorRPC, ledger.GetCategory(err))
}

func (s *ServiceSuite) TestCreateTemplate() {
	s.Run("submits generate_template with storage deposit and invalidates views", func() {
		s.cache.entries["catalog:view_metadatas"] = []byte(`[]`)
		s.cache.entries["catalog:get_id_by_category"] = []byte(`{}`)

		s.mockLedger.EXPECT().
			ChangeCall(gomock.Any(), contract, "generate_template", gomock.Any(), 30*ledger.TGas, "0.1").
			DoAndReturn(func(_ context.Context, _, _ string, args any, _ uint64, _ string) (*ledger.Outcome, error) {
				encoded, err := json.Marshal(args)
				s.Require().NoError(err)
				s.JSONEq(`{"template_id":"bees","metadata":{"title":"Save the Bees","description":"pollinators","media":"https://img.example/bee.png"}}`, string(encoded))
				return &ledger.Outcome{TransactionHash: "9xHash"}, nil
			})
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(audit.EventTemplateCreated, e.Action)
			s.Equal("9xHash", e.Detail)
			return nil
		})

		outcome, err := s.service.CreateTemplate(s.ctx, &CreateTemplateRequest{
			TemplateID:  "bees",
			Title:       "Save the Bees",
			Description: "pollinators",
			Media:       "https://img.example/bee.png",
		})
		s.Require().NoError(err)
		s.Equal("9xHash", outcome.TransactionHash)
		s.Empty(s.cache.entries)
	})

	s.Run("missing title is a validation error", func() {
		_, err := s.service.CreateTemplate(s.ctx, &CreateTemplateRequest{TemplateID: "bees"})
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("contract failure keeps cache", func() {
		s.cache.entries["catalog:view_metadatas"] = []byte(`[]`)
		s.mockLedger.EXPECT().ChangeCall(gomock.Any(), contract, "generate_template", gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, &ledger.Error{Category: ledger.ErrorExecution, Method: "generate_template"})

		_, err := s.service.CreateTemplate(s.ctx, &CreateTemplateRequest{TemplateID: "bees", Title: "Save the Bees"})
		s.Equal(ledger.ErrorExecution, ledger.GetCategory(err))
		s.Contains(s.cache.entries, "catalog:view_metadatas")
	})
}

func (s *ServiceSuite) TestWithoutCache() {
	svc := New(s.mockLedger, contract, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.mockLedger.EXPECT().ViewCall(gomock.Any(), contract, "get_categories", nil).
		Return(json.RawMessage(`["bees","water"]`), nil).Times(2)

	for i := 0; i < 2; i++ {
		names, err := svc.CategoryNames(s.ctx)
		s.Require().NoError(err)
		s.Equal([]string{"bees", "water"}, names)
	}
}
