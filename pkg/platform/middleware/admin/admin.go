package admin

import (
	"context"
	"log/slog"
	"net/http"

	"eanft/pkg/platform/httputil"
	"eanft/pkg/requestcontext"
)

// Authorizer decides whether the presented wallet identity is the administrator.
type Authorizer interface {
	Authorize(ctx context.Context, accountID, allKeys string) bool
}

// ForbiddenResponse is returned on every denial. Fallback tells the front end
// where to send the user.
type ForbiddenResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Fallback         string `json:"fallback"`
}

var forbidden = ForbiddenResponse{
	Error:            "forbidden",
	ErrorDescription: "You are not authorized to view this page.",
	Fallback:         "/",
}

// Credentials reads the wallet identity from the X-Account-ID and X-All-Keys
// headers, falling back to the account_id and all_keys query parameters.
func Credentials(r *http.Request) (accountID, allKeys string) {
	accountID = r.Header.Get("X-Account-ID")
	allKeys = r.Header.Get("X-All-Keys")
	q := r.URL.Query()
	if accountID == "" {
		accountID = q.Get("account_id")
	}
	if allKeys == "" {
		allKeys = q.Get("all_keys")
	}
	return accountID, allKeys
}

// RequireAdministrator rejects the request with 403 unless authorizer accepts
// the caller's credentials. A nil authorizer rejects everything.
func RequireAdministrator(authorizer Authorizer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			accountID, allKeys := Credentials(r)
			if authorizer == nil || !authorizer.Authorize(ctx, accountID, allKeys) {
				logger.WarnContext(ctx, "administrator check failed",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteJSON(w, http.StatusForbidden, forbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
