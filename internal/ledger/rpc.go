package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const rpcRequestID = "eanft"

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// rpcError is the NEAR JSON-RPC error envelope.
type rpcError struct {
	Name  string `json:"name"`
	Cause *struct {
		Name string          `json:"name"`
		Info json.RawMessage `json:"info"`
	} `json:"cause"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *rpcError) describe() string {
	if e.Cause != nil && e.Cause.Name != "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Cause.Name)
	}
	if len(e.Data) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, string(e.Data))
	}
	return e.Message
}

// call performs one JSON-RPC exchange. method names the contract method the
// exchange serves and labels errors; rpcMethod is the node API invoked.
func (c *Client) call(ctx context.Context, method, rpcMethod string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: rpcRequestID, Method: rpcMethod, Params: params})
	if err != nil {
		return nil, newError(ErrorConfiguration, method, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.NodeURL, bytes.NewReader(body))
	if err != nil {
		return nil, newError(ErrorConfiguration, method, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newError(ErrorTransport, method, "node unreachable", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, newError(ErrorTransport, method, "read response", err)
	}
	// NEAR answers handler errors with a JSON envelope and a non-200 status on
	// some versions; try the envelope first.
	var out rpcResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, newError(ErrorTransport, method, fmt.Sprintf("node returned HTTP %d", resp.StatusCode), nil)
		}
		return nil, newError(ErrorDecode, method, "decode response envelope", err)
	}
	if out.Error != nil {
		return nil, newError(ErrorRPC, method, out.Error.describe(), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newError(ErrorTransport, method, fmt.Sprintf("node returned HTTP %d", resp.StatusCode), nil)
	}
	return out.Result, nil
}

const maxResponseBytes = 8 << 20
