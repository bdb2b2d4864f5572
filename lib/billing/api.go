// Package billing implements the JSON-RPC client of the IPTV billing
// engine. Transpiled JSONSQL documents are sent as the params of
// select/insert/update/delete calls.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/telebill-community/sql-to-jsonsql/lib/jsonsql"
	"github.com/telebill-community/sql-to-jsonsql/lib/store/schemastore"
)

type EndpointConfig struct {
	Endpoint string
	APIKey   string
}

type API struct {
	ec     EndpointConfig
	client *http.Client
}

func NewBillingAPI(ec EndpointConfig) *API {
	return &API{
		ec: ec,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (a *API) SetHTTPClient(client *http.Client) {
	a.client = client
}

// Execute sends a transpiled statement to the engine. When no endpoint is
// configured anywhere the call is a no-op so the tool can run in
// transpile-only mode. The endpoint may come from the config or from the
// request, never both.
func (a *API) Execute(ctx context.Context, si jsonsql.StatementInfo, customEC EndpointConfig) ([]byte, error) {
	if a.ec.Endpoint != "" && customEC.Endpoint != "" {
		return nil, &APIError{
			Code:    http.StatusBadRequest,
			Message: "endpoint can be set either in config or in request, not both",
		}
	}
	recEC := customEC
	if recEC.Endpoint == "" {
		recEC = a.ec
	}
	if recEC.Endpoint == "" {
		return nil, nil
	}

	switch si.Type {
	case jsonsql.StatementSelect, jsonsql.StatementInsert, jsonsql.StatementUpdate, jsonsql.StatementDelete:
		return a.Call(ctx, string(si.Type), si.Doc, recEC)
	default:
		return nil, &APIError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("billing: unsupported statement type %q", si.Type),
		}
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// Call performs one JSON-RPC 2.0 call and returns the raw result payload.
func (a *API) Call(ctx context.Context, method string, params any, recEC EndpointConfig) ([]byte, error) {
	if recEC.Endpoint == "" {
		return nil, &APIError{
			Code:    http.StatusBadRequest,
			Message: "endpoint is required for this statement",
		}
	}
	reqURL, err := url.Parse(recEC.Endpoint)
	if err != nil {
		return nil, &APIError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("invalid endpoint URL: %v", recEC.Endpoint),
			Err:     err,
		}
	}

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      ksuid.New().String(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, &APIError{
			Code:    http.StatusBadRequest,
			Message: "failed to encode request",
			Err:     err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, &APIError{
			Code:    http.StatusBadGateway,
			Message: "failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Content-Type", "application/json")
	if recEC.APIKey != "" {
		req.Header.Set("X-API-Key", recEC.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &APIError{
			Code:    http.StatusBadGateway,
			Message: "failed to execute request",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{
			Code:    http.StatusBadGateway,
			Message: "failed to read response body",
			Err:     err,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return nil, &APIError{
			Code:    http.StatusBadGateway,
			Message: fmt.Sprintf("status %d: %s", resp.StatusCode, msg),
		}
	}

	var envelope rpcResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &APIError{
			Code:    http.StatusBadGateway,
			Message: "failed to parse response body",
			Err:     err,
		}
	}
	if envelope.Error != nil {
		return nil, envelope.Error
	}
	return envelope.Result, nil
}

type schemaResult struct {
	Tables []schemastore.Table `json:"tables"`
}

// FetchSchema calls get_schema and returns the engine's table definitions.
func (a *API) FetchSchema(ctx context.Context, customEC EndpointConfig) ([]schemastore.Table, error) {
	recEC := customEC
	if recEC.Endpoint == "" {
		recEC = a.ec
	}
	result, err := a.Call(ctx, "get_schema", nil, recEC)
	if err != nil {
		return nil, err
	}

	var wrapped schemaResult
	if err := json.Unmarshal(result, &wrapped); err == nil && len(wrapped.Tables) > 0 {
		return wrapped.Tables, nil
	}
	// Some engine versions return the table list unwrapped.
	var tables []schemastore.Table
	if err := json.Unmarshal(result, &tables); err != nil {
		return nil, &APIError{
			Code:    http.StatusBadGateway,
			Message: "failed to parse schema response",
			Err:     err,
		}
	}
	return tables, nil
}
