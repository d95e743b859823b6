// Package catalog reads donation templates and categories from the contract
// and creates new templates.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"eanft/internal/audit"
	"eanft/internal/ledger"
	dErrors "eanft/pkg/domain-errors"
	"eanft/pkg/requestcontext"
)

const (
	methodViewMetadatas    = "view_metadatas"
	methodListToDonate     = "get_list_to_donate"
	methodIDByCategory     = "get_id_by_category"
	methodCategories       = "get_categories"
	methodOwnerDonation    = "get_owner_donation"
	methodGenerateTemplate = "generate_template"

	generateTemplateGas     = 30 * ledger.TGas
	generateTemplateDeposit = "0.1"
)

// Ledger is the subset of the ledger client the catalog needs.
type Ledger interface {
	ViewCall(ctx context.Context, contractID, method string, args any) (json.RawMessage, error)
	ChangeCall(ctx context.Context, contractID, method string, args any, gas uint64, deposit string) (*ledger.Outcome, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service is the template catalog. Views are read through the cache when one
// is configured.
type Service struct {
	ledger         Ledger
	contractID     string
	cache          Cache
	ttl            time.Duration
	validate       *validator.Validate
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *Metrics
}

type Option func(*Service)

func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.ttl = ttl
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(l Ledger, contractID string, opts ...Option) *Service {
	s := &Service{ledger: l, contractID: contractID, validate: validator.New(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Templates returns every template keyed by template id. The contract returns
// a bare list of metadata, in which case the title is used as the key.
func (s *Service) Templates(ctx context.Context) (map[string]Template, error) {
	raw, err := s.view(ctx, methodViewMetadatas, nil, cacheKey(methodViewMetadatas))
	if err != nil {
		return nil, err
	}
	return decodeTemplates(raw)
}

// DonationCandidates maps template id to title.
func (s *Service) DonationCandidates(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	if err := s.viewInto(ctx, methodListToDonate, nil, cacheKey(methodListToDonate), &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Categories maps category name to its numeric id.
func (s *Service) Categories(ctx context.Context) (map[string]uint16, error) {
	out := map[string]uint16{}
	if err := s.viewInto(ctx, methodIDByCategory, nil, cacheKey(methodIDByCategory), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]uint16{}
	}
	return out, nil
}

// CategoryNames lists categories in creation order.
func (s *Service) CategoryNames(ctx context.Context) ([]string, error) {
	var out []string
	if err := s.viewInto(ctx, methodCategories, nil, cacheKey(methodCategories), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// OwnerDonations maps template title to the amount accountID donated.
func (s *Service) OwnerDonations(ctx context.Context, accountID string) (map[string]string, error) {
	if accountID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "account_id is required")
	}
	out := map[string]string{}
	args := map[string]string{"account_id": accountID}
	if err := s.viewInto(ctx, methodOwnerDonation, args, cacheKey(methodOwnerDonation, accountID), &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Catalog fetches templates and donation candidates concurrently.
func (s *Service) Catalog(ctx context.Context) (*View, error) {
	view := &View{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		templates, err := s.Templates(gctx)
		view.Templates = templates
		return err
	})
	g.Go(func() error {
		candidates, err := s.DonationCandidates(gctx)
		view.DonationCandidates = candidates
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// CreateTemplate registers a new donation category on the contract, attaching
// 0.1 NEAR for storage.
func (s *Service) CreateTemplate(ctx context.Context, req *CreateTemplateRequest) (*ledger.Outcome, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid template")
	}

	args := generateTemplateArgs{
		TemplateID: req.TemplateID,
		Metadata: Metadata{
			Title:       req.Title,
			Description: req.Description,
			Media:       req.Media,
		},
	}
	outcome, err := s.ledger.ChangeCall(ctx, s.contractID, methodGenerateTemplate, args, generateTemplateGas, generateTemplateDeposit)
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx,
		cacheKey(methodViewMetadatas),
		cacheKey(methodListToDonate),
		cacheKey(methodIDByCategory),
		cacheKey(methodCategories),
	)
	if s.auditPublisher != nil {
		if err := s.auditPublisher.Emit(ctx, audit.Event{
			Action: audit.EventTemplateCreated,
			Reason: req.TemplateID,
			Detail: outcome.TransactionHash,
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to emit audit event", "action", audit.EventTemplateCreated, "error", err)
		}
	}
	s.logger.InfoContext(ctx, "template created",
		"template_id", req.TemplateID,
		"transaction_hash", outcome.TransactionHash,
		"request_id", requestcontext.RequestID(ctx),
	)
	return outcome, nil
}

// InvalidateOwnerDonations drops the cached donations of accountID.
func (s *Service) InvalidateOwnerDonations(ctx context.Context, accountID string) {
	s.Invalidate(ctx, cacheKey(methodOwnerDonation, accountID))
}

// Invalidate removes keys from the cache. Failures are logged; the TTL bounds
// how long a stale entry can survive.
func (s *Service) Invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate catalog cache", "keys", keys, "error", err)
	}
}

func (s *Service) viewInto(ctx context.Context, method string, args any, key string, out any) error {
	raw, err := s.view(ctx, method, args, key)
	if err != nil {
		return err
	}
	if err := ledger.DecodeView(raw, out); err != nil {
		return err
	}
	return nil
}

func (s *Service) view(ctx context.Context, method string, args any, key string) (json.RawMessage, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.metrics.observeLookup(method, "error")
			s.logger.WarnContext(ctx, "catalog cache read failed", "key", key, "error", err)
		case ok:
			s.metrics.observeLookup(method, "hit")
			return cached, nil
		default:
			s.metrics.observeLookup(method, "miss")
		}
	}

	raw, err := s.ledger.ViewCall(ctx, s.contractID, method, args)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		value := raw
		if value == nil {
			value = json.RawMessage("null")
		}
		if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "catalog cache write failed", "key", key, "error", err)
		}
	}
	return raw, nil
}

func decodeTemplates(raw json.RawMessage) (map[string]Template, error) {
	out := map[string]Template{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return out, nil
	}

	if trimmed[0] == '{' {
		var byID map[string]Metadata
		if err := ledger.DecodeView(raw, &byID); err != nil {
			return nil, err
		}
		for id, md := range byID {
			out[id] = Template{TemplateID: id, Metadata: md}
		}
		return out, nil
	}

	var list []Metadata
	if err := ledger.DecodeView(raw, &list); err != nil {
		return nil, err
	}
	for i, md := range list {
		key := md.Title
		if key == "" {
			key = strconv.Itoa(i)
		}
		out[key] = Template{TemplateID: key, Metadata: md}
	}
	return out, nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
