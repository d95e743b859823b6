// Package ledger talks to a NEAR RPC node: read-only view calls and signed
// change calls against a contract. Every exchange is single-shot; failures
// surface as *Error and are never retried here.
package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"eanft/internal/platform/config"
)

var callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "eanft_ledger_call_duration_seconds",
	Help:    "Latency of ledger RPC calls by kind, contract method and outcome",
	Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
}, []string{"kind", "method", "outcome"})

const tracerName = "eanft/internal/ledger"

// Outcome is the final execution result of a change call.
type Outcome struct {
	TransactionHash string          `json:"transaction_hash"`
	SuccessValue    json.RawMessage `json:"success_value,omitempty"`
}

// Client is a NEAR JSON-RPC client bound to one node.
type Client struct {
	cfg    config.LedgerConfig
	http   *http.Client
	signer *KeyPair
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport, e.g. for tests against httptest servers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSigner sets the key used for change calls, overriding cfg.SignerKey.
func WithSigner(key *KeyPair) Option {
	return func(c *Client) {
		c.signer = key
	}
}

// WithTracerProvider overrides the global tracer provider for ledger spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// New builds a client from cfg. A malformed signer key is a construction error.
func New(cfg config.LedgerConfig, opts ...Option) (*Client, error) {
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{},
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	if cfg.SignerKey != "" {
		key, err := ParseKeyPair(cfg.SignerKey)
		if err != nil {
			return nil, fmt.Errorf("ledger signer key: %w", err)
		}
		c.signer = key
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ContractID returns the configured default contract.
func (c *Client) ContractID() string {
	return c.cfg.ContractID
}

type viewResult struct {
	Result []int  `json:"result"`
	Error  string `json:"error"`
}

// ViewCall runs a read-only contract method. The contract's return bytes are
// returned as raw JSON; a method that returned nothing yields nil, not an error.
func (c *Client) ViewCall(ctx context.Context, contractID, method string, args any) (json.RawMessage, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	ctx, span := c.tracer.Start(ctx, "ledger.view", trace.WithAttributes(
		attribute.String("ledger.contract", contractID),
		attribute.String("ledger.method", method),
	))
	defer span.End()
	start := time.Now()

	raw, err := c.viewCall(ctx, contractID, method, args)
	c.observe(span, "view", method, start, err)
	return raw, err
}

func (c *Client) viewCall(ctx context.Context, contractID, method string, args any) (json.RawMessage, error) {
	encoded, err := encodeArgs(args)
	if err != nil {
		return nil, newError(ErrorConfiguration, method, "encode args", err)
	}
	result, err := c.call(ctx, method, "query", map[string]any{
		"request_type": "call_function",
		"finality":     "final",
		"account_id":   contractID,
		"method_name":  method,
		"args_base64":  base64.StdEncoding.EncodeToString(encoded),
	})
	if err != nil {
		return nil, err
	}

	var vr viewResult
	if len(result) > 0 && string(result) != "null" {
		if err := json.Unmarshal(result, &vr); err != nil {
			return nil, newError(ErrorDecode, method, "decode view result", err)
		}
	}
	if vr.Error != "" {
		return nil, newError(ErrorExecution, method, vr.Error, nil)
	}
	return packBytes(method, vr.Result)
}

// packBytes turns the node's byte array into a buffer. Empty means no data.
func packBytes(method string, values []int) (json.RawMessage, error) {
	if len(values) == 0 {
		return nil, nil
	}
	buf := make([]byte, len(values))
	for i, v := range values {
		// Some clients hand back signed bytes; both ranges describe one octet.
		if v < -128 || v > 255 {
			return nil, newError(ErrorDecode, method, fmt.Sprintf("byte %d out of range: %d", i, v), nil)
		}
		buf[i] = byte(v)
	}
	if !json.Valid(buf) {
		return nil, newError(ErrorDecode, method, "view result is not JSON", nil)
	}
	return json.RawMessage(buf), nil
}

// DecodeView unmarshals a ViewCall payload into out. A nil payload leaves out
// untouched so callers can pre-initialize empty maps.
func DecodeView(raw json.RawMessage, out any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return newError(ErrorDecode, "", "decode view payload", err)
	}
	return nil
}

type accessKeyView struct {
	Nonce     uint64 `json:"nonce"`
	BlockHash string `json:"block_hash"`
}

type executionOutcome struct {
	Status struct {
		SuccessValue     *string         `json:"SuccessValue"`
		SuccessReceiptID *string         `json:"SuccessReceiptId"`
		Failure          json.RawMessage `json:"Failure"`
	} `json:"status"`
	Transaction struct {
		Hash string `json:"hash"`
	} `json:"transaction"`
}

// ChangeCall signs and submits a state-mutating call with an explicit gas
// budget and a deposit given in NEAR ("0.1"). It blocks until the node reports
// the final outcome; callers refresh dependent reads afterwards.
func (c *Client) ChangeCall(ctx context.Context, contractID, method string, args any, gas uint64, deposit string) (*Outcome, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	ctx, span := c.tracer.Start(ctx, "ledger.change", trace.WithAttributes(
		attribute.String("ledger.contract", contractID),
		attribute.String("ledger.method", method),
		attribute.Int64("ledger.gas", int64(gas)),
		attribute.String("ledger.deposit", deposit),
	))
	defer span.End()
	start := time.Now()

	outcome, err := c.changeCall(ctx, contractID, method, args, gas, deposit)
	c.observe(span, "change", method, start, err)
	return outcome, err
}

func (c *Client) changeCall(ctx context.Context, contractID, method string, args any, gas uint64, deposit string) (*Outcome, error) {
	if c.signer == nil || c.cfg.SignerAccountID == "" {
		return nil, newError(ErrorConfiguration, method, "change calls need a signer account and key", ErrNoSigner)
	}
	yocto, err := ParseNEARAmount(deposit)
	if err != nil {
		return nil, newError(ErrorConfiguration, method, "parse deposit", err)
	}
	encoded, err := encodeArgs(args)
	if err != nil {
		return nil, newError(ErrorConfiguration, method, "encode args", err)
	}

	pub := c.signer.PublicKey()
	result, err := c.call(ctx, method, "query", map[string]any{
		"request_type": "view_access_key",
		"finality":     "final",
		"account_id":   c.cfg.SignerAccountID,
		"public_key":   pub.String(),
	})
	if err != nil {
		return nil, err
	}
	var key accessKeyView
	if err := json.Unmarshal(result, &key); err != nil {
		return nil, newError(ErrorDecode, method, "decode access key", err)
	}
	blockHash, err := decodeBlockHash(key.BlockHash)
	if err != nil {
		return nil, newError(ErrorDecode, method, "access key block hash", err)
	}

	action, err := NewFunctionCallAction(method, encoded, gas, yocto)
	if err != nil {
		return nil, newError(ErrorConfiguration, method, "build action", err)
	}
	signed, hash, err := SignTransaction(Transaction{
		SignerID:   c.cfg.SignerAccountID,
		PublicKey:  pub,
		Nonce:      key.Nonce + 1,
		ReceiverID: contractID,
		BlockHash:  blockHash,
		Actions:    []Action{action},
	}, c.signer)
	if err != nil {
		return nil, newError(ErrorConfiguration, method, "sign transaction", err)
	}

	c.logger.DebugContext(ctx, "submitting change call",
		"contract", contractID,
		"method", method,
		"gas", gas,
		"deposit", deposit,
		"tx_hash", hash,
	)

	result, err = c.call(ctx, method, "broadcast_tx_commit", []string{base64.StdEncoding.EncodeToString(signed)})
	if err != nil {
		return nil, err
	}
	return parseOutcome(method, hash, result)
}

func parseOutcome(method, hash string, result json.RawMessage) (*Outcome, error) {
	var eo executionOutcome
	if err := json.Unmarshal(result, &eo); err != nil {
		return nil, newError(ErrorDecode, method, "decode execution outcome", err)
	}
	if len(eo.Status.Failure) > 0 && string(eo.Status.Failure) != "null" {
		return nil, newError(ErrorExecution, method, string(eo.Status.Failure), nil)
	}
	outcome := &Outcome{TransactionHash: eo.Transaction.Hash}
	if outcome.TransactionHash == "" {
		outcome.TransactionHash = hash
	}
	if eo.Status.SuccessValue != nil && *eo.Status.SuccessValue != "" {
		value, err := base64.StdEncoding.DecodeString(*eo.Status.SuccessValue)
		if err != nil {
			return nil, newError(ErrorDecode, method, "decode success value", err)
		}
		if json.Valid(value) {
			outcome.SuccessValue = value
		}
	}
	return outcome, nil
}

// withTimeout bounds every call; an earlier caller deadline still wins.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

func (c *Client) observe(span trace.Span, kind, method string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(GetCategory(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	callDuration.WithLabelValues(kind, method, outcome).Observe(time.Since(start).Seconds())
}

func encodeArgs(args any) ([]byte, error) {
	if args == nil {
		return []byte("{}"), nil
	}
	if raw, ok := args.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(args)
}
