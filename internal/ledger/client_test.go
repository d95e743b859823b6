package ledger

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/near/borsh-go"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"eanft/internal/platform/config"
)

const testContract = "ea_nft.wabinab.testnet"

// fakeNode answers NEAR JSON-RPC requests from per-test handlers.
type fakeNode struct {
	view      func(params map[string]any) any
	accessKey func(params map[string]any) any
	broadcast func(signed []byte) any
	requests  []rpcRequest
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		rpcRequest
		Params json.RawMessage `json:"params"`
	}
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &req)
	n.requests = append(n.requests, req.rpcRequest)

	var resp any
	switch req.Method {
	case "query":
		var params map[string]any
		_ = json.Unmarshal(req.Params, &params)
		if params["request_type"] == "view_access_key" {
			resp = n.accessKey(params)
		} else {
			resp = n.view(params)
		}
	case "broadcast_tx_commit":
		var params []string
		_ = json.Unmarshal(req.Params, &params)
		signed, _ := base64.StdEncoding.DecodeString(params[0])
		resp = n.broadcast(signed)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func result(v any) map[string]any {
	return map[string]any{"jsonrpc": "2.0", "id": rpcRequestID, "result": v}
}

func byteArray(s string) []int {
	out := make([]int, len(s))
	for i := range s {
		out[i] = int(s[i])
	}
	return out
}

type ClientSuite struct {
	suite.Suite
	node   *fakeNode
	server *httptest.Server
	key    *KeyPair
	client *Client
	ctx    context.Context
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.node = &fakeNode{}
	s.server = httptest.NewServer(s.node)
	s.key = NewKeyPairFromSeed(bytes.Repeat([]byte{42}, ed25519.SeedSize))
	s.ctx = context.Background()

	client, err := New(config.LedgerConfig{
		NodeURL:         s.server.URL,
		ContractID:      testContract,
		SignerAccountID: "minter.testnet",
		Timeout:         2 * time.Second,
	}, WithSigner(s.key), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	s.client = client
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) TestViewCall() {
	s.Run("decodes byte array payload", func() {
		var gotParams map[string]any
		s.node.view = func(params map[string]any) any {
			gotParams = params
			return result(map[string]any{
				"result":       byteArray(`{"animals":"Animal Welfare"}`),
				"logs":         []string{},
				"block_height": 1,
			})
		}

		raw, err := s.client.ViewCall(s.ctx, testContract, "get_list_to_donate", nil)
		s.Require().NoError(err)

		var out map[string]string
		s.Require().NoError(DecodeView(raw, &out))
		s.Equal("Animal Welfare", out["animals"])

		s.Equal("call_function", gotParams["request_type"])
		s.Equal(testContract, gotParams["account_id"])
		s.Equal("get_list_to_donate", gotParams["method_name"])
		args, err := base64.StdEncoding.DecodeString(gotParams["args_base64"].(string))
		s.Require().NoError(err)
		s.Equal("{}", string(args))
	})

	s.Run("absent result yields nil without error", func() {
		s.node.view = func(map[string]any) any {
			return result(map[string]any{"result": nil, "logs": []string{}})
		}
		raw, err := s.client.ViewCall(s.ctx, testContract, "view_metadatas", nil)
		s.Require().NoError(err)
		s.Nil(raw)

		out := map[string]string{}
		s.Require().NoError(DecodeView(raw, &out))
		s.Empty(out)
	})

	s.Run("malformed payload is a decode error", func() {
		s.node.view = func(map[string]any) any {
			return result(map[string]any{"result": byteArray(`{not json`)})
		}
		_, err := s.client.ViewCall(s.ctx, testContract, "view_metadatas", nil)
		s.Require().Error(err)
		s.Equal(ErrorDecode, GetCategory(err))
	})

	s.Run("contract error is an execution error", func() {
		s.node.view = func(map[string]any) any {
			return result(map[string]any{"error": "wasm execution failed: MethodNotFound"})
		}
		_, err := s.client.ViewCall(s.ctx, testContract, "missing", nil)
		s.Require().Error(err)
		s.Equal(ErrorExecution, GetCategory(err))
	})

	s.Run("rpc error envelope", func() {
		s.node.view = func(map[string]any) any {
			return map[string]any{
				"jsonrpc": "2.0",
				"id":      rpcRequestID,
				"error": map[string]any{
					"name":    "HANDLER_ERROR",
					"cause":   map[string]any{"name": "UNKNOWN_ACCOUNT"},
					"code":    -32000,
					"message": "Server error",
				},
			}
		}
		_, err := s.client.ViewCall(s.ctx, "nobody.testnet", "view_metadatas", nil)
		s.Require().Error(err)
		s.Equal(ErrorRPC, GetCategory(err))
		s.Contains(err.Error(), "UNKNOWN_ACCOUNT")
		s.Contains(err.Error(), "view_metadatas")
	})
}

func (s *ClientSuite) TestTransportFailures() {
	s.Run("non-JSON 502", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}))
		defer srv.Close()

		client, err := New(config.LedgerConfig{NodeURL: srv.URL, Timeout: time.Second})
		s.Require().NoError(err)
		_, err = client.ViewCall(s.ctx, testContract, "view_metadatas", nil)
		s.Equal(ErrorTransport, GetCategory(err))
	})

	s.Run("deadline exceeded", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		client, err := New(config.LedgerConfig{NodeURL: srv.URL, Timeout: 50 * time.Millisecond})
		s.Require().NoError(err)
		_, err = client.ViewCall(s.ctx, testContract, "view_metadatas", nil)
		s.Equal(ErrorTimeout, GetCategory(err))
	})
}

func (s *ClientSuite) TestChangeCall() {
	blockHash := bytes.Repeat([]byte{9}, 32)
	s.node.accessKey = func(params map[string]any) any {
		s.Equal("minter.testnet", params["account_id"])
		s.Equal(s.key.PublicKey().String(), params["public_key"])
		return result(map[string]any{
			"nonce":      7,
			"block_hash": base58.Encode(blockHash),
			"permission": "FullAccess",
		})
	}

	s.Run("signs and submits function call", func() {
		var submitted SignedTransaction
		var rawTx []byte
		s.node.broadcast = func(signed []byte) any {
			rawTx = signed
			s.Require().NoError(borsh.Deserialize(&submitted, signed))
			return result(map[string]any{
				"status":      map[string]any{"SuccessValue": base64.StdEncoding.EncodeToString([]byte(`"ok"`))},
				"transaction": map[string]any{"hash": "tx-hash-from-node"},
			})
		}

		args := map[string]any{"template_id": "animals"}
		outcome, err := s.client.ChangeCall(s.ctx, testContract, "generate_template", args, 30*TGas, "0.1")
		s.Require().NoError(err)
		s.Equal("tx-hash-from-node", outcome.TransactionHash)
		s.JSONEq(`"ok"`, string(outcome.SuccessValue))
		s.NotEmpty(rawTx)

		tx := submitted.Transaction
		s.Equal("minter.testnet", tx.SignerID)
		s.Equal(testContract, tx.ReceiverID)
		s.Equal(uint64(8), tx.Nonce)
		s.Equal(blockHash, tx.BlockHash[:])
		s.Require().Len(tx.Actions, 1)

		call := tx.Actions[0].FunctionCall
		s.Equal(actionFunctionCall, tx.Actions[0].Enum)
		s.Equal("generate_template", call.MethodName)
		s.JSONEq(`{"template_id":"animals"}`, string(call.Args))
		s.Equal(30*TGas, call.Gas)
		want, err := ParseNEARAmount("0.1")
		s.Require().NoError(err)
		wantBytes, err := u128(want)
		s.Require().NoError(err)
		s.Equal(wantBytes, call.Deposit)

		body, err := borsh.Serialize(tx)
		s.Require().NoError(err)
		digest := sha256.Sum256(body)
		pub := s.key.PublicKey()
		s.True(ed25519.Verify(ed25519.PublicKey(pub.Data[:]), digest[:], submitted.Signature.Data[:]))
	})

	s.Run("failure status is an execution error", func() {
		s.node.broadcast = func([]byte) any {
			return result(map[string]any{
				"status": map[string]any{"Failure": map[string]any{
					"ActionError": map[string]any{"kind": map[string]any{"FunctionCallError": "Smart contract panicked"}},
				}},
				"transaction": map[string]any{"hash": "h"},
			})
		}
		_, err := s.client.ChangeCall(s.ctx, testContract, "minting_interface", nil, 300*TGas, "0.1")
		s.Require().Error(err)
		s.Equal(ErrorExecution, GetCategory(err))
		s.Contains(err.Error(), "Smart contract panicked")
	})

	s.Run("rejects unparseable deposit before touching the node", func() {
		before := len(s.node.requests)
		_, err := s.client.ChangeCall(s.ctx, testContract, "minting_interface", nil, 300*TGas, "1.2e+2")
		s.Equal(ErrorConfiguration, GetCategory(err))
		s.Len(s.node.requests, before)
	})
}

func (s *ClientSuite) TestChangeCallWithoutSigner() {
	client, err := New(config.LedgerConfig{NodeURL: s.server.URL, Timeout: time.Second})
	s.Require().NoError(err)

	_, err = client.ChangeCall(s.ctx, testContract, "generate_template", nil, 30*TGas, "0.1")
	s.Require().ErrorIs(err, ErrNoSigner)
	s.Equal(ErrorConfiguration, GetCategory(err))
}

func (s *ClientSuite) TestNewRejectsMalformedKey() {
	_, err := New(config.LedgerConfig{NodeURL: s.server.URL, SignerAccountID: "a", SignerKey: "ed25519:0OIl"})
	s.Error(err)
}

func (s *ClientSuite) TestCallsAreTraced() {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	client, err := New(config.LedgerConfig{
		NodeURL:    s.server.URL,
		ContractID: testContract,
		Timeout:    2 * time.Second,
	}, WithTracerProvider(tp), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)

	s.node.view = func(map[string]any) any {
		return result(map[string]any{"result": byteArray(`["Animals"]`), "logs": []string{}, "block_height": 1})
	}
	_, err = client.ViewCall(s.ctx, testContract, "get_categories", nil)
	s.Require().NoError(err)

	_, err = client.ChangeCall(s.ctx, testContract, "minting_interface", nil, 300*TGas, "0.1")
	s.Require().Error(err)

	spans := recorder.Ended()
	s.Require().Len(spans, 2)
	s.Equal("ledger.view", spans[0].Name())
	s.Contains(spans[0].Attributes(), attribute.String("ledger.method", "get_categories"))
	s.Equal(codes.Unset, spans[0].Status().Code)
	s.Equal("ledger.change", spans[1].Name())
	s.Equal(codes.Error, spans[1].Status().Code)
}
