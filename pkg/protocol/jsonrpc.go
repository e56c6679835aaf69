package protocol

import (
	"encoding/json"
	"fmt"
)

/**
https://modelcontextprotocol.info/specification/draft/basic/lifecycle/
Flow:
	The client starts the server (stdio) and sends 'initialize':
		{"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"client","version":"0.1.0"}},"jsonrpc":"2.0","id":0}
	We respond with our capabilities, only 'tools' for pronosticos.
	The client acknowledges with the 'notifications/initialized' notification (no response)
	and asks 'tools/list'. Each prediction, backtest or league operation is then a 'tools/call'.
*/

// MethodType defines the possible JSON-RPC method types
type MethodType string

const (
	MethodInitialize  MethodType = "initialize"
	MethodInitialized MethodType = "initialized"
	MethodPing        MethodType = "ping"
	MethodToolsList   MethodType = "tools/list"
	MethodToolsCall   MethodType = "tools/call"
	MethodShutdown    MethodType = "shutdown"

	// legacy clients invoke tools directly
	MethodInvokeTool MethodType = "invoke_tool"
)

// Version is the JSON-RPC protocol version
const JsonRpcVersion = "2.0"

// Request represents a JSON-RPC 2.0 request object
type JsonRpcRequest struct {
	// MUST be exactly "2.0".
	JsonRPC string `json:"jsonrpc"`

	Method string `json:"method"`

	// This member MAY be omitted.
	Params json.RawMessage `json:"params,omitempty"`

	// String, Number or NULL. A request without an ID is a notification.
	ID any `json:"id,omitempty"`
}

// Response represents a JSON-RPC 2.0 response object
type JsonRpcResponse struct {
	JsonRPC string `json:"jsonrpc"`

	// REQUIRED on success, absent on error.
	Result json.RawMessage `json:"result,omitempty"`

	// REQUIRED on error, absent on success.
	Error *JsonRpcError `json:"error,omitempty"`

	// Same as the request id, or null when the request id could not be read.
	ID any `json:"id"`
}

// Error represents a JSON-RPC 2.0 error object
type JsonRpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type ToolProperty struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

type InputSchema struct {
	Type                 string                  `json:"type"`
	Properties           map[string]ToolProperty `json:"properties,omitempty"`
	Required             []string                `json:"required"`
	AdditionalProperties bool                    `json:"additionalProperties"`
}

// Tool describes a callable tool in tools/list
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// ToolsResponse is the result of tools/list
type ToolsResponse struct {
	Tools []Tool `json:"tools"`
}

// Standard error codes defined by the JSON-RPC 2.0 specification
const (
	ErrParse          = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternal       = -32603

	// -32000 to -32099 are reserved for implementation-defined server errors
	ErrToolExecutionFailed = -32000
	ErrNotFound            = -32001
	ErrUnprocessable       = -32002
)

// Error returns a string representation of the error
func (e *JsonRpcError) Error() string {
	return fmt.Sprintf("jsonrpc error: code=%d message=%s", e.Code, e.Message)
}

// NewJsonRpcRequest creates a new JSON-RPC 2.0 request
func NewJsonRpcRequest(method string, params any, id any) (*JsonRpcRequest, error) {
	var paramsJSON json.RawMessage
	if params != nil {
		var err error
		paramsJSON, err = json.Marshal(params)
		if err != nil {
			return nil, err
		}
	}

	return &JsonRpcRequest{
		JsonRPC: JsonRpcVersion,
		Method:  method,
		Params:  paramsJSON,
		ID:      id,
	}, nil
}

// NewJsonRpcNotification creates a request without an ID
func NewJsonRpcNotification(method string, params any) (*JsonRpcRequest, error) {
	return NewJsonRpcRequest(method, params, nil)
}

// NewJsonRpcResponse creates a new JSON-RPC 2.0 success response
func NewJsonRpcResponse(result any, id any) (*JsonRpcResponse, error) {
	var resultJSON json.RawMessage
	if result != nil {
		var err error
		resultJSON, err = json.Marshal(result)
		if err != nil {
			return nil, err
		}
	}

	return &JsonRpcResponse{
		JsonRPC: JsonRpcVersion,
		Result:  resultJSON,
		ID:      id,
	}, nil
}

// NewJsonRpcErrorResponse creates a new JSON-RPC 2.0 error response
func NewJsonRpcErrorResponse(code int, message string, data any, id any) *JsonRpcResponse {
	return &JsonRpcResponse{
		JsonRPC: JsonRpcVersion,
		Error: &JsonRpcError{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	}
}

// ParseJsonRpcRequest parses a JSON-RPC 2.0 request from raw JSON
func ParseJsonRpcRequest(data []byte) (*JsonRpcRequest, error) {
	var req JsonRpcRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	if req.JsonRPC != JsonRpcVersion {
		return nil, fmt.Errorf("invalid JSON-RPC version: %s", req.JsonRPC)
	}
	return &req, nil
}

// ParseJsonRpcResponse parses a JSON-RPC 2.0 response from raw JSON
func ParseJsonRpcResponse(data []byte) (*JsonRpcResponse, error) {
	var resp JsonRpcResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if resp.JsonRPC != JsonRpcVersion {
		return nil, fmt.Errorf("invalid JSON-RPC version: %s", resp.JsonRPC)
	}
	return &resp, nil
}

// IsNotification reports whether the request expects no response
func (r *JsonRpcRequest) IsNotification() bool {
	return r.ID == nil
}

// String returns a JSON string representation of the request
func (r *JsonRpcRequest) String() string {
	bytes, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error marshaling request: %v", err)
	}
	return string(bytes)
}

// String returns a JSON string representation of the response
func (r *JsonRpcResponse) String() string {
	bytes, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error marshaling response: %v", err)
	}
	return string(bytes)
}
