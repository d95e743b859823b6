// Package minting composes donation mints: it turns per-category pledges into
// a single minting_interface call carrying the right deposit.
package minting

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"eanft/internal/audit"
	"eanft/internal/ledger"
	dErrors "eanft/pkg/domain-errors"
	"eanft/pkg/requestcontext"
)

const (
	methodIDByCategory = "get_id_by_category"
	methodMint         = "minting_interface"

	mintGas = 300 * ledger.TGas
)

// Ledger is the subset of the ledger client minting needs.
type Ledger interface {
	ViewCall(ctx context.Context, contractID, method string, args any) (json.RawMessage, error)
	ChangeCall(ctx context.Context, contractID, method string, args any, gas uint64, deposit string) (*ledger.Outcome, error)
}

// DonationCache drops cached donation views after a successful mint.
type DonationCache interface {
	InvalidateOwnerDonations(ctx context.Context, accountID string)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

type Orchestrator struct {
	ledger         Ledger
	contractID     string
	ownerAccountID string
	donations      DonationCache
	validate       *validator.Validate
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *Metrics
}

type Option func(*Orchestrator)

// WithDonationCache invalidates ownerAccountID's donations after each mint.
// ownerAccountID is the account that signs and therefore owns minted tokens.
func WithDonationCache(cache DonationCache, ownerAccountID string) Option {
	return func(o *Orchestrator) {
		o.donations = cache
		o.ownerAccountID = ownerAccountID
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(o *Orchestrator) {
		o.auditPublisher = publisher
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func New(l Ledger, contractID string, opts ...Option) *Orchestrator {
	o := &Orchestrator{ledger: l, contractID: contractID, validate: validator.New(), logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ComposeAndSubmit resolves category ids, prices the pledges and submits one
// minting_interface call. Ledger failures are returned unmodified.
func (o *Orchestrator) ComposeAndSubmit(ctx context.Context, suffixTokenID string, pledges map[string]string) (*Receipt, error) {
	req := &Request{SuffixTokenID: suffixTokenID, Pledges: pledges}
	if err := o.validate.Struct(req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "suffix_token_id is required")
	}

	raw, err := o.ledger.ViewCall(ctx, o.contractID, methodIDByCategory, nil)
	if err != nil {
		return nil, err
	}
	categories := map[string]uint16{}
	if err := ledger.DecodeView(raw, &categories); err != nil {
		return nil, err
	}

	amounts, total := composeAmounts(categories, pledges)
	deposit := formatDeposit(total)
	requestID := requestcontext.RequestID(ctx)
	if len(amounts) == 0 {
		o.logger.WarnContext(ctx, "minting without any valid pledge",
			"suffix_token_id", suffixTokenID,
			"pledges", len(pledges),
			"request_id", requestID,
		)
	}

	args := mintArgs{
		SuffixTokenID: suffixTokenID,
		HashOfAmounts: amounts,
		IssuedAt:      uint64(requestcontext.Now(ctx).Unix()),
	}
	outcome, err := o.ledger.ChangeCall(ctx, o.contractID, methodMint, args, mintGas, deposit)
	if err != nil {
		o.metrics.observe(false, total)
		o.emitAudit(ctx, audit.Event{
			AccountID: o.ownerAccountID,
			Action:    audit.EventMintFailed,
			Reason:    string(ledger.GetCategory(err)),
			Detail:    suffixTokenID,
		})
		o.logger.ErrorContext(ctx, "mint submission failed",
			"suffix_token_id", suffixTokenID,
			"deposit", deposit,
			"error", err.Error(),
			"request_id", requestID,
		)
		return nil, err
	}

	o.metrics.observe(true, total)
	if o.donations != nil && o.ownerAccountID != "" {
		o.donations.InvalidateOwnerDonations(ctx, o.ownerAccountID)
	}
	o.emitAudit(ctx, audit.Event{
		AccountID: o.ownerAccountID,
		Action:    audit.EventMintSubmitted,
		Reason:    suffixTokenID,
		Detail:    outcome.TransactionHash,
	})
	o.logger.InfoContext(ctx, "mint submitted",
		"suffix_token_id", suffixTokenID,
		"deposit", deposit,
		"categories", len(amounts),
		"transaction_hash", outcome.TransactionHash,
		"request_id", requestID,
	)

	return &Receipt{
		SuffixTokenID:   suffixTokenID,
		HashOfAmounts:   amounts,
		IssuedAt:        args.IssuedAt,
		Deposit:         deposit,
		TransactionHash: outcome.TransactionHash,
		SuccessValue:    outcome.SuccessValue,
	}, nil
}

func (o *Orchestrator) emitAudit(ctx context.Context, event audit.Event) {
	if o.auditPublisher == nil {
		return
	}
	if err := o.auditPublisher.Emit(ctx, event); err != nil {
		o.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
