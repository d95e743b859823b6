package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"eanft/internal/accounts/models"
	dErrors "eanft/pkg/domain-errors"
	"eanft/pkg/platform/httputil"
	"eanft/pkg/platform/middleware/admin"
	"eanft/pkg/requestcontext"
)

// Service is the account registry as seen by HTTP.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AccountRecord, error)
	Find(ctx context.Context, accountID string) (*models.AccountRecord, error)
	List(ctx context.Context) ([]*models.AccountRecord, error)
}

// Handler serves the account routes.
type Handler struct {
	accounts   Service
	authorizer admin.Authorizer
	logger     *slog.Logger
}

func New(accounts Service, authorizer admin.Authorizer, logger *slog.Logger) *Handler {
	return &Handler{accounts: accounts, authorizer: authorizer, logger: logger}
}

// Register mounts the account routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/users", h.handleRegister)
	r.Get("/users/{account_id}", h.handleGet)
	r.With(admin.RequireAdministrator(h.authorizer, h.logger)).Get("/users", h.handleList)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := decodeRegisterRequest(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid register request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	record, err := h.accounts.Register(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to register account",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(record))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	record, err := h.accounts.Find(ctx, chi.URLParam(r, "account_id"))
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to load account",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(record))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := h.accounts.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list accounts",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	resp := &models.AccountsListResponse{Users: make([]*models.AccountResponse, 0, len(records)), Total: len(records)}
	for _, record := range records {
		resp.Users = append(resp.Users, models.ToResponse(record))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// decodeRegisterRequest accepts JSON or a form post. Form fields may be bare
// (account_id) or nested (user[account_id]).
func decodeRegisterRequest(r *http.Request) (*models.RegisterRequest, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	field := func(name string) string {
		if v := r.PostForm.Get(name); v != "" {
			return v
		}
		return r.PostForm.Get("user[" + name + "]")
	}
	return &models.RegisterRequest{
		AccountID: field("account_id"),
		PublicKey: field("public_key"),
		AllKeys:   field("all_keys"),
	}, nil
}
