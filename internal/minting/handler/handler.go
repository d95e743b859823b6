package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eanft/internal/ledger"
	"eanft/internal/minting"
	dErrors "eanft/pkg/domain-errors"
	"eanft/pkg/platform/httputil"
	"eanft/pkg/requestcontext"
)

type Orchestrator interface {
	ComposeAndSubmit(ctx context.Context, suffixTokenID string, pledges map[string]string) (*minting.Receipt, error)
}

type Handler struct {
	minting Orchestrator
	logger  *slog.Logger
}

func New(orchestrator Orchestrator, logger *slog.Logger) *Handler {
	return &Handler{minting: orchestrator, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/mint", h.handleMint)
}

// handleMint answers 202: the transaction is committed on the ledger but
// dependent views may lag behind.
func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req minting.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid mint request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	receipt, err := h.minting.ComposeAndSubmit(ctx, req.SuffixTokenID, req.Pledges)
	if err != nil {
		h.logger.ErrorContext(ctx, "mint failed",
			"request_id", requestID,
			"ledger_category", string(ledger.GetCategory(err)),
			"error", err.Error(),
		)
		httputil.WriteError(w, ledger.ToDomainError(err))
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, receipt)
}
