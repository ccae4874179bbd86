package rpc

import (
	"encoding/json"
	"fmt"
)

// Version is the JSON-RPC protocol version spoken by the server.
const Version = "2.0"

// CallKwPath is the route prefix of model method calls.
const CallKwPath = "/web/dataset/call_kw"

// Error codes returned in the error envelope.
const (
	CodeServerError  = 200
	CodeSessionError = 100
	CodeParseError   = -32700
	CodeInvalid      = -32600
)

// Request is a JSON-RPC envelope carrying a call_kw invocation.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  Params `json:"params"`
	ID      any    `json:"id"`
}

// Params names the model method to run and its arguments.
type Params struct {
	Model  string         `json:"model"`
	Method string         `json:"method"`
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

// Response is the JSON-RPC reply; exactly one of Result or Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the server error envelope.
type Error struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Data    ErrorData `json:"data"`
}

// ErrorData details a server error.
type ErrorData struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Data.Message != "" {
		return fmt.Sprintf("rpc: %s (%d): %s", e.Message, e.Code, e.Data.Message)
	}
	return fmt.Sprintf("rpc: %s (%d)", e.Message, e.Code)
}

// NewCallRequest builds the envelope of a call_kw invocation.
func NewCallRequest(id any, model, method string, args []any) Request {
	if args == nil {
		args = []any{}
	}
	return Request{
		JSONRPC: Version,
		Method:  "call",
		Params:  Params{Model: model, Method: method, Args: args, Kwargs: map[string]any{}},
		ID:      id,
	}
}

// CallPath returns the route a client posts model.method to.
func CallPath(model, method string) string {
	return CallKwPath + "/" + model + "/" + method
}
