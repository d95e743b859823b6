package testutil

import (
	"net/http"
	"time"

	"eanft/pkg/requestcontext"
)

// WithRequestTime pins the request clock, as the RequestTime middleware would.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
