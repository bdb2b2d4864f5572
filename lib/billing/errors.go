package billing

import "fmt"

// APIError reports transport and HTTP level failures talking to the billing
// engine.
type APIError struct {
	Code    int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// RPCError is an error object returned by the engine inside a JSON-RPC
// response envelope.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("billing: rpc error %d: %s", e.Code, e.Message)
}
