package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"eanft/internal/accounts/metrics"
	"eanft/internal/accounts/models"
	"eanft/internal/accounts/store"
	"eanft/internal/audit"
	dErrors "eanft/pkg/domain-errors"
	"eanft/pkg/requestcontext"
)

// AccountStore persists account records. Upsert must be a single atomic step
// keyed on AccountID.
type AccountStore interface {
	Upsert(ctx context.Context, record *models.AccountRecord, now time.Time) (*models.AccountRecord, bool, error)
	FindByAccountID(ctx context.Context, accountID string) (*models.AccountRecord, error)
	List(ctx context.Context) ([]*models.AccountRecord, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service is the account registry: it links NEAR accounts to wallet keys.
type Service struct {
	store          AccountStore
	validate       *validator.Validate
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(accounts AccountStore, opts ...Option) *Service {
	s := &Service{store: accounts, validate: validator.New(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the record for req.AccountID or overwrites its keys.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.AccountRecord, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid registration request")
	}

	record, created, err := s.store.Upsert(ctx, &models.AccountRecord{
		AccountID: req.AccountID,
		PublicKey: req.PublicKey,
		AllKeys:   req.AllKeys,
	}, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "account not found after upsert")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register account")
	}
	if record == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "account not found after upsert")
	}

	action := audit.EventAccountUpdated
	if created {
		action = audit.EventAccountRegistered
	}
	s.emitAudit(ctx, audit.Event{AccountID: record.AccountID, Action: action})
	s.metrics.IncrementRegistration(created)
	s.logger.InfoContext(ctx, "account registered",
		"account_id", record.AccountID,
		"created", created,
		"request_id", requestcontext.RequestID(ctx),
	)
	return record, nil
}

// Find accepts either the display form from a URL path or the canonical ID.
func (s *Service) Find(ctx context.Context, accountID string) (*models.AccountRecord, error) {
	canonical := models.NormalizeAccountID(accountID)
	if canonical == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "account_id is required")
	}
	record, err := s.store.FindByAccountID(ctx, canonical)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return record, nil
}

func (s *Service) List(ctx context.Context) ([]*models.AccountRecord, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}
	return records, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
