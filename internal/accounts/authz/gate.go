// Package authz decides whether a caller may see administrative views.
package authz

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"eanft/internal/accounts/metrics"
	"eanft/internal/accounts/models"
	"eanft/internal/audit"
	"eanft/pkg/requestcontext"
)

// AccountLookup loads the stored record for the administrator.
type AccountLookup interface {
	FindByAccountID(ctx context.Context, accountID string) (*models.AccountRecord, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Gate grants access only to the configured administrator presenting the
// exact key material stored at registration. It fails closed.
type Gate struct {
	adminAccountID string
	accounts       AccountLookup
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(g *Gate) {
		g.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func New(adminAccountID string, accounts AccountLookup, opts ...Option) *Gate {
	g := &Gate{adminAccountID: adminAccountID, accounts: accounts, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize reports whether accountID is the administrator and allKeys
// matches the administrator's stored key list.
func (g *Gate) Authorize(ctx context.Context, accountID, allKeys string) bool {
	allowed, reason := g.decide(ctx, accountID, allKeys)
	g.metrics.IncrementAdminDecision(allowed)

	event := audit.Event{
		Category:  audit.CategorySecurity,
		AccountID: accountID,
		Action:    audit.EventAdminAccessGranted,
		Decision:  "allowed",
		Reason:    reason,
	}
	if !allowed {
		event.Action = audit.EventAdminAccessDenied
		event.Decision = "denied"
		g.logger.WarnContext(ctx, "administrative access denied",
			"account_id", accountID,
			"reason", reason,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if g.auditPublisher != nil {
		if err := g.auditPublisher.Emit(ctx, event); err != nil {
			g.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
		}
	}
	return allowed
}

func (g *Gate) decide(ctx context.Context, accountID, allKeys string) (bool, string) {
	if g.accounts == nil || g.adminAccountID == "" {
		return false, "gate_not_configured"
	}
	if accountID == "" || allKeys == "" {
		return false, "missing_credentials"
	}
	if accountID != g.adminAccountID {
		return false, "not_administrator"
	}
	record, err := g.accounts.FindByAccountID(ctx, g.adminAccountID)
	if err != nil || record == nil {
		return false, "administrator_record_unavailable"
	}
	if record.AllKeys == "" || subtle.ConstantTimeCompare([]byte(record.AllKeys), []byte(allKeys)) != 1 {
		return false, "key_mismatch"
	}
	return true, "keys_match"
}
