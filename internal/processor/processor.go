package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/richard-senior/pronosticos/internal/app"
	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/store"
	"github.com/richard-senior/pronosticos/pkg/tools"
	"github.com/richard-senior/pronosticos/pkg/util/podds"
)

// Request is a one-shot tool invocation. Query is the shorthand form
// "tool key=value key=value"; Tool and Arguments take precedence over it.
type Request struct {
	Query     string         `json:"query,omitempty"`
	Tool      string         `json:"tool,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
	RequestID string         `json:"requestId"`
}

// Response is the result of a one-shot tool invocation
type Response struct {
	RequestID string         `json:"requestId,omitempty"`
	Tool      string         `json:"tool"`
	Result    any            `json:"result"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ToolInfo describes an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	RequestID string `json:"requestId,omitempty"`
	Error     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ErrRequestFailed is returned alongside an error response body
var ErrRequestFailed = errors.New("request failed")

func createErrorResponse(code, message, requestID string) ([]byte, error) {
	var response ErrorResponse
	response.RequestID = requestID
	response.Error.Code = code
	response.Error.Message = message

	body, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return nil, err
	}
	return body, fmt.Errorf("%w: %s", ErrRequestFailed, message)
}

// ProcessRequest runs the tool named by the JSON request in input.
// A request without a tool lists the available tools.
func ProcessRequest(ctx context.Context, a *app.App, input []byte) ([]byte, error) {
	var request Request
	if err := json.Unmarshal(input, &request); err != nil {
		logger.Error("Failed to parse input JSON", err)
		return createErrorResponse("invalid_request", fmt.Sprintf("Invalid JSON: %v", err), "")
	}

	if request.Tool == "" && request.Query != "" {
		name, args, err := ParseQuery(request.Query)
		if err != nil {
			return createErrorResponse("invalid_request", err.Error(), request.RequestID)
		}
		request.Tool = name
		if request.Arguments == nil {
			request.Arguments = args
		}
	}
	logger.Info("Processing request", request.Tool)

	if request.Tool == "" || request.Tool == "list_tools" {
		infos := make([]ToolInfo, 0)
		for _, reg := range tools.All() {
			infos = append(infos, ToolInfo{
				Name:        reg.Tool.Name,
				Description: strings.Join(strings.Fields(reg.Tool.Description), " "),
			})
		}
		return marshal(Response{RequestID: request.RequestID, Tool: "list_tools", Result: infos})
	}

	var handler tools.Handler
	for _, reg := range tools.All() {
		if reg.Tool.Name == request.Tool {
			handler = reg.Handler
			break
		}
	}
	if handler == nil {
		return createErrorResponse("unknown_tool", "no such tool: "+request.Tool, request.RequestID)
	}

	if request.Arguments == nil {
		request.Arguments = map[string]any{}
	}
	result, err := handler(ctx, a, request.Arguments)
	if err != nil {
		logger.Error("Tool failed", request.Tool, err)
		return createErrorResponse(errorCode(err), err.Error(), request.RequestID)
	}

	return marshal(Response{
		RequestID: request.RequestID,
		Tool:      request.Tool,
		Result:    result,
		Metadata:  map[string]any{"version": "1.0.0"},
	})
}

// ParseQuery splits "tool key=value key2='two words'" into the tool name and
// its arguments. Values may be single or double quoted.
func ParseQuery(query string) (string, map[string]any, error) {
	fields, err := splitFields(query)
	if err != nil {
		return "", nil, err
	}
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("empty query")
	}

	args := make(map[string]any)
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return "", nil, fmt.Errorf("argument must look like key=value, got: %s", field)
		}
		args[key] = value
	}
	return fields[0], args, nil
}

func splitFields(s string) ([]string, error) {
	var fields []string
	var current strings.Builder
	var quote rune
	inField := false

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inField = true
		case r == ' ' || r == '\t' || r == '\n':
			if inField {
				fields = append(fields, current.String())
				current.Reset()
				inField = false
			}
		default:
			current.WriteRune(r)
			inField = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in query")
	}
	if inField {
		fields = append(fields, current.String())
	}
	return fields, nil
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, store.ErrLeagueNotFound):
		return "league_not_found"
	case errors.Is(err, podds.ErrUnknownTeam):
		return "unknown_team"
	case errors.Is(err, podds.ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, podds.ErrNoReport):
		return "no_report"
	case errors.Is(err, podds.ErrEmptyDataset):
		return "empty_dataset"
	case errors.Is(err, store.ErrDuplicateLeague):
		return "duplicate_league"
	}
	return "tool_error"
}

func marshal(response Response) ([]byte, error) {
	body, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		logger.Error("Failed to marshal response to JSON", err)
		return createErrorResponse("internal_error", "Failed to create response", response.RequestID)
	}
	return body, nil
}
