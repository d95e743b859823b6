package ledger

import (
	"context"
	"errors"
	"fmt"

	dErrors "eanft/pkg/domain-errors"
)

// ErrorCategory defines the normalized failure taxonomy for ledger calls.
type ErrorCategory string

const (
	// ErrorTransport indicates the node could not be reached or answered non-200.
	ErrorTransport ErrorCategory = "transport"

	// ErrorTimeout indicates the call exceeded its deadline.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorRPC indicates the node answered with a JSON-RPC error envelope.
	ErrorRPC ErrorCategory = "rpc"

	// ErrorExecution indicates the contract rejected the call.
	ErrorExecution ErrorCategory = "execution"

	// ErrorDecode indicates the node returned a payload we could not parse.
	ErrorDecode ErrorCategory = "decode"

	// ErrorConfiguration indicates the client cannot perform the call as configured.
	ErrorConfiguration ErrorCategory = "configuration"
)

// Error is returned by every Client method. Callers receive it unmodified.
type Error struct {
	Category   ErrorCategory
	Method     string
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("ledger %s [%s]: %s: %v", e.Method, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("ledger %s [%s]: %s", e.Method, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

func newError(category ErrorCategory, method, message string, underlying error) *Error {
	if underlying != nil && (errors.Is(underlying, context.DeadlineExceeded) || errors.Is(underlying, context.Canceled)) {
		category = ErrorTimeout
	}
	return &Error{Category: category, Method: method, Message: message, Underlying: underlying}
}

// GetCategory extracts the category from err, or "" if err is not a ledger error.
func GetCategory(err error) ErrorCategory {
	var le *Error
	if errors.As(err, &le) {
		return le.Category
	}
	return ""
}

// ErrNoSigner is returned by ChangeCall when no signer key is configured.
var ErrNoSigner = errors.New("no signer configured")

// ToDomainError translates a ledger failure for transports: timeouts become
// CodeTimeout, misconfiguration CodeInternal, everything else CodeUpstream.
// Non-ledger errors are returned as is.
func ToDomainError(err error) error {
	var le *Error
	if !errors.As(err, &le) {
		return err
	}
	switch le.Category {
	case ErrorTimeout:
		return dErrors.Wrap(err, dErrors.CodeTimeout, "ledger call timed out")
	case ErrorConfiguration:
		return dErrors.Wrap(err, dErrors.CodeInternal, "ledger client misconfigured")
	case ErrorExecution:
		return dErrors.Wrap(err, dErrors.CodeUpstream, "contract rejected the call: "+le.Message)
	default:
		return dErrors.Wrap(err, dErrors.CodeUpstream, "ledger unavailable")
	}
}
