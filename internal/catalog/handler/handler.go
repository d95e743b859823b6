package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eanft/internal/accounts/models"
	"eanft/internal/catalog"
	"eanft/internal/ledger"
	dErrors "eanft/pkg/domain-errors"
	"eanft/pkg/platform/httputil"
	"eanft/pkg/requestcontext"
)

// Service is the template catalog as seen by HTTP.
type Service interface {
	Templates(ctx context.Context) (map[string]catalog.Template, error)
	Categories(ctx context.Context) (map[string]uint16, error)
	OwnerDonations(ctx context.Context, accountID string) (map[string]string, error)
	Catalog(ctx context.Context) (*catalog.View, error)
	CreateTemplate(ctx context.Context, req *catalog.CreateTemplateRequest) (*ledger.Outcome, error)
}

type Handler struct {
	catalog Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{catalog: svc, logger: logger}
}

// Register mounts the catalog routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/templates", h.handleTemplates)
	r.Post("/templates", h.handleCreateTemplate)
	r.Get("/donate", h.handleDonate)
	r.Get("/categories", h.handleCategories)
	r.Get("/donations/{account_id}", h.handleOwnerDonations)
}

type templatesResponse struct {
	Templates map[string]catalog.Template `json:"templates"`
}

type categoriesResponse struct {
	Categories map[string]uint16 `json:"categories"`
}

type donationsResponse struct {
	AccountID string            `json:"account_id"`
	Donations map[string]string `json:"donations"`
}

type createTemplateResponse struct {
	TemplateID      string          `json:"template_id"`
	TransactionHash string          `json:"transaction_hash"`
	SuccessValue    json.RawMessage `json:"success_value,omitempty"`
}

func (h *Handler) handleTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.catalog.Templates(r.Context())
	if err != nil {
		h.writeError(w, r, "failed to load templates", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, templatesResponse{Templates: templates})
}

func (h *Handler) handleDonate(w http.ResponseWriter, r *http.Request) {
	view, err := h.catalog.Catalog(r.Context())
	if err != nil {
		h.writeError(w, r, "failed to load catalog", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		h.writeError(w, r, "failed to load categories", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, categoriesResponse{Categories: categories})
}

func (h *Handler) handleOwnerDonations(w http.ResponseWriter, r *http.Request) {
	accountID := models.NormalizeAccountID(chi.URLParam(r, "account_id"))
	donations, err := h.catalog.OwnerDonations(r.Context(), accountID)
	if err != nil {
		h.writeError(w, r, "failed to load donations", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, donationsResponse{AccountID: accountID, Donations: donations})
}

func (h *Handler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req catalog.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create template request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	outcome, err := h.catalog.CreateTemplate(ctx, &req)
	if err != nil {
		h.writeError(w, r, "failed to create template", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createTemplateResponse{
		TemplateID:      req.TemplateID,
		TransactionHash: outcome.TransactionHash,
		SuccessValue:    outcome.SuccessValue,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"ledger_category", string(ledger.GetCategory(err)),
		"error", err.Error(),
	)
	httputil.WriteError(w, ledger.ToDomainError(err))
}
