package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/telebill-community/sql-to-jsonsql/lib/jsonsql"
)

func TestExecuteSendsJSONRPC(t *testing.T) {
	var got rpcRequest
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		apiKey = r.Header.Get("X-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":"` + got.ID + `","result":[{"id":1}]}`))
	}))
	defer srv.Close()

	api := NewBillingAPI(EndpointConfig{Endpoint: srv.URL, APIKey: "secret"})

	si := jsonsql.StatementInfo{
		Type: jsonsql.StatementSelect,
		Doc:  map[string]any{"data": []any{"id"}, "from": "terminal"},
	}
	result, err := api.Execute(context.Background(), si, EndpointConfig{})
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":1}]`, string(result))

	require.Equal(t, "2.0", got.JSONRPC)
	require.Equal(t, "select", got.Method)
	require.NotEmpty(t, got.ID)
	require.Equal(t, "secret", apiKey)

	params, ok := got.Params.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "terminal", params["from"])
}

func TestExecuteEndpointRules(t *testing.T) {
	si := jsonsql.StatementInfo{Type: jsonsql.StatementSelect, Doc: map[string]any{"from": "t"}}

	// No endpoint anywhere: transpile-only, not an error.
	api := NewBillingAPI(EndpointConfig{})
	result, err := api.Execute(context.Background(), si, EndpointConfig{})
	require.NoError(t, err)
	require.Nil(t, result)

	// Endpoint in both config and request is rejected.
	api = NewBillingAPI(EndpointConfig{Endpoint: "http://config"})
	_, err = api.Execute(context.Background(), si, EndpointConfig{Endpoint: "http://request"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Code)
}

func TestCallSurfacesRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":"x","error":{"code":-32000,"message":"unknown table"}}`))
	}))
	defer srv.Close()

	api := NewBillingAPI(EndpointConfig{Endpoint: srv.URL})
	_, err := api.Call(context.Background(), "select", map[string]any{"from": "nope"}, api.ec)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, -32000, rpcErr.Code)
	require.Equal(t, "unknown table", rpcErr.Message)
}

func TestCallSurfacesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	api := NewBillingAPI(EndpointConfig{Endpoint: srv.URL})
	_, err := api.Call(context.Background(), "select", nil, api.ec)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.Code)
	require.Contains(t, apiErr.Message, "500")
}

func TestFetchSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "get_schema", req.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":"x","result":{"tables":[{"name":"terminal","columns":["id","name"]}]}}`))
	}))
	defer srv.Close()

	api := NewBillingAPI(EndpointConfig{Endpoint: srv.URL})
	tables, err := api.FetchSchema(context.Background(), EndpointConfig{})
	require.NoError(t, err)
	require.Len(t, tables, 1)
	require.Equal(t, "terminal", tables[0].Name)
	require.Equal(t, []string{"id", "name"}, tables[0].Columns)
}

func TestFetchSchemaUnwrappedList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":"x","result":[{"name":"package","columns":["id"]}]}`))
	}))
	defer srv.Close()

	api := NewBillingAPI(EndpointConfig{Endpoint: srv.URL})
	tables, err := api.FetchSchema(context.Background(), EndpointConfig{})
	require.NoError(t, err)
	require.Len(t, tables, 1)
	require.Equal(t, "package", tables[0].Name)
}
