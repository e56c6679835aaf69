package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/richard-senior/pronosticos/internal/app"
	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/protocol"
	"github.com/richard-senior/pronosticos/pkg/store"
	"github.com/richard-senior/pronosticos/pkg/tools"
	"github.com/richard-senior/pronosticos/pkg/transport"
	"github.com/richard-senior/pronosticos/pkg/util/podds"
)

const (
	serverName    = "pronosticos"
	serverVersion = "1.0.0"

	// some clients prefix tool names with the server alias
	toolPrefix = "mcp___"

	defaultProtocolVersion = "2024-11-05"
)

// Server is an MCP server exposing the pronosticos tools
type Server struct {
	mu        sync.Mutex
	transport transport.Transport
	app       *app.App
	ctx       context.Context
	handlers  map[string]HandlerFunc
	tools     []protocol.Tool
}

// HandlerFunc is a function that handles an MCP request
type HandlerFunc func(ctx context.Context, params any) (any, error)

// ToolError carries a JSON-RPC error code out of a tool handler
type ToolError struct {
	Code int
	Err  error
}

func (e *ToolError) Error() string { return e.Err.Error() }
func (e *ToolError) Unwrap() error { return e.Err }

// NewServer creates a server over t with every pronosticos tool registered
func NewServer(t transport.Transport, a *app.App) *Server {
	s := &Server{
		transport: t,
		app:       a,
		ctx:       context.Background(),
		handlers:  make(map[string]HandlerFunc),
		tools:     []protocol.Tool{},
	}
	s.RegisterDefaultTools()
	return s
}

// RegisterTool registers a tool with the server
func (s *Server) RegisterTool(tool protocol.Tool, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
	logger.Debug("Registered tool:", tool.Name)
}

// GetTools returns the list of registered tools
func (s *Server) GetTools() []protocol.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Tool(nil), s.tools...)
}

// RegisterDefaultTools registers the pronosticos tools and the protocol methods
func (s *Server) RegisterDefaultTools() {
	logger.Info("Registering default tools...")
	for _, reg := range tools.All() {
		s.RegisterTool(reg.Tool, s.bind(reg.Handler))
	}

	s.handlers[string(protocol.MethodInitialize)] = s.handleInitialize
	s.handlers[string(protocol.MethodInitialized)] = s.handleInitialized
	s.handlers[string(protocol.MethodPing)] = s.handlePing
	s.handlers[string(protocol.MethodToolsList)] = s.handleToolsList
	s.handlers[string(protocol.MethodToolsCall)] = s.handleToolsCall
}

// bind adapts a tool handler to the server's handler signature
func (s *Server) bind(h tools.Handler) HandlerFunc {
	return func(ctx context.Context, params any) (any, error) {
		paramsMap, err := tools.ParamsMap(params)
		if err != nil {
			return nil, &ToolError{Code: protocol.ErrInvalidParams, Err: err}
		}
		return h(ctx, s.app, paramsMap)
	}
}

// Start processes requests until the client disconnects or a signal arrives
func (s *Server) Start() error {
	logger.Info("Starting MCP server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.ctx = ctx

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ProcessRequests()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	case sig := <-sigChan:
		logger.Info("Received signal:", sig)
		return nil
	}
}

// ProcessRequests continuously processes incoming requests
func (s *Server) ProcessRequests() error {
	for {
		req, err := s.transport.ReadRequest()
		if err != nil {
			return err
		}

		// nil means no response is required
		resp := s.HandleRequest(req)
		if resp == nil {
			continue
		}

		if err := s.transport.WriteResponse(resp); err != nil {
			return err
		}
	}
}

// HandleRequest processes a request and returns its response, or nil for notifications
func (s *Server) HandleRequest(req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	logger.Info(">> ", req.Method)

	if strings.HasPrefix(req.Method, "notifications/") {
		logger.Info("Received notification:", req.Method)
		return nil
	}

	resp := &protocol.JsonRpcResponse{
		JsonRPC: protocol.JsonRpcVersion,
		ID:      req.ID,
	}

	var handler HandlerFunc
	var params any

	if req.Method == string(protocol.MethodInvokeTool) {
		var invokeParams map[string]any
		if err := json.Unmarshal(req.Params, &invokeParams); err != nil {
			resp.Error = &protocol.JsonRpcError{
				Code:    protocol.ErrInvalidParams,
				Message: "Invalid parameters for invoke_tool: " + err.Error(),
			}
			return resp
		}
		toolName, ok := invokeParams["name"].(string)
		if !ok {
			resp.Error = &protocol.JsonRpcError{
				Code:    protocol.ErrInvalidParams,
				Message: "Missing tool name in invoke_tool parameters",
			}
			return resp
		}
		handler = s.lookup(toolName)
		params = invokeParams["parameters"]
	} else {
		handler = s.handlers[req.Method]
		params = req.Params
	}

	if handler == nil {
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
		return resp
	}

	result, err := handler(s.ctx, params)
	if err == nil && result == nil {
		if req.IsNotification() {
			return nil
		}
		result = struct{}{}
	}
	if err != nil {
		logger.Warn("Request failed", req.Method, err)
		resp.Error = &protocol.JsonRpcError{
			Code:    errorCode(err),
			Message: err.Error(),
		}
		return resp
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrInternal,
			Message: "Failed to marshal result: " + err.Error(),
		}
		return resp
	}
	resp.Result = resultBytes
	return resp
}

// lookup finds a tool handler, accepting names with the client prefix
func (s *Server) lookup(toolName string) HandlerFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	if handler := s.handlers[toolName]; handler != nil {
		return handler
	}
	if strings.HasPrefix(toolName, toolPrefix) {
		return s.handlers[strings.TrimPrefix(toolName, toolPrefix)]
	}
	return nil
}

// errorCode maps domain errors to JSON-RPC error codes
func errorCode(err error) int {
	var toolErr *ToolError
	switch {
	case errors.As(err, &toolErr):
		return toolErr.Code
	case errors.Is(err, store.ErrLeagueNotFound), errors.Is(err, podds.ErrUnknownTeam):
		return protocol.ErrNotFound
	case errors.Is(err, podds.ErrInsufficientHistory), errors.Is(err, podds.ErrNoReport),
		errors.Is(err, podds.ErrEmptyDataset), errors.Is(err, store.ErrDuplicateLeague):
		return protocol.ErrUnprocessable
	}
	return protocol.ErrToolExecutionFailed
}

// handleToolsList handles the tools/list method
func (s *Server) handleToolsList(ctx context.Context, params any) (any, error) {
	return protocol.ToolsResponse{Tools: s.GetTools()}, nil
}

// handleInitialize handles the initialize method
func (s *Server) handleInitialize(ctx context.Context, params any) (any, error) {
	logger.Info("Handling initialize request with", len(s.tools), "tools registered")

	requestedProtocolVersion := defaultProtocolVersion
	var paramsMap map[string]any
	if raw, ok := params.(json.RawMessage); ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &paramsMap); err != nil {
			logger.Warn("Failed to parse initialize params:", err)
		}
	}
	if version, ok := paramsMap["protocolVersion"].(string); ok && version != "" {
		requestedProtocolVersion = version
	}

	type serverInfo struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	return struct {
		ProtocolVersion string         `json:"protocolVersion"`
		Capabilities    map[string]any `json:"capabilities"`
		ServerInfo      serverInfo     `json:"serverInfo"`
	}{
		ProtocolVersion: requestedProtocolVersion,
		Capabilities: map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		ServerInfo: serverInfo{Name: serverName, Version: serverVersion},
	}, nil
}

// handleInitialized handles the initialized notification
func (s *Server) handleInitialized(ctx context.Context, params any) (any, error) {
	logger.Info("Handling initialized notification")
	return nil, nil
}

func (s *Server) handlePing(ctx context.Context, params any) (any, error) {
	return struct{}{}, nil
}

// handleToolsCall handles the tools/call method
func (s *Server) handleToolsCall(ctx context.Context, params any) (any, error) {
	var call struct {
		Arguments map[string]any `json:"arguments"`
		Name      string         `json:"name"`
	}

	raw, ok := params.(json.RawMessage)
	if !ok {
		var err error
		if raw, err = json.Marshal(params); err != nil {
			return nil, &ToolError{Code: protocol.ErrInvalidParams, Err: fmt.Errorf("failed to marshal params: %v", err)}
		}
	}
	if err := json.Unmarshal(raw, &call); err != nil {
		return nil, &ToolError{Code: protocol.ErrInvalidParams, Err: fmt.Errorf("invalid tools/call parameters: %v", err)}
	}

	logger.Info("Tool call requested for:", call.Name)
	handler := s.lookup(call.Name)
	if handler == nil {
		return nil, &ToolError{Code: protocol.ErrMethodNotFound, Err: fmt.Errorf("tool not found: %s", call.Name)}
	}

	result, err := handler(ctx, call.Arguments)
	if err != nil {
		return nil, err
	}
	return toolResult(result)
}

// toolResult wraps a tool's output in the MCP content envelope
func toolResult(result any) (any, error) {
	text, err := json.MarshalIndent(result, "", " ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": string(text)},
		},
	}, nil
}
