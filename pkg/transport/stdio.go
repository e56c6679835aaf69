package transport

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/protocol"
)

// StdioTransport implements communication over standard input/output.
// Messages are JSON objects; they need not be newline delimited.
type StdioTransport struct {
	reader *bufio.Reader
	writer *bufio.Writer
}

// NewStdioTransport creates a new transport that uses stdin/stdout
func NewStdioTransport() *StdioTransport {
	return NewStreamTransport(os.Stdin, os.Stdout)
}

// NewStreamTransport creates a transport over arbitrary streams
func NewStreamTransport(r io.Reader, w io.Writer) *StdioTransport {
	return &StdioTransport{
		reader: bufio.NewReader(r),
		writer: bufio.NewWriter(w),
	}
}

// ReadRequest reads the next JSON-RPC request
func (t *StdioTransport) ReadRequest() (*protocol.JsonRpcRequest, error) {
	logger.Debug("Waiting for request on stdin...")

	data, err := t.readMessage()
	if err != nil {
		if err == io.EOF {
			logger.Info("Received EOF on stdin, client disconnected")
		} else {
			logger.Error("Error reading from stdin:", err)
		}
		return nil, err
	}
	logger.Debug("Received raw request:", string(data))

	request, err := protocol.ParseJsonRpcRequest(data)
	if err != nil {
		logger.Error("Failed to parse JSON-RPC request:", err)
		return nil, err
	}
	return request, nil
}

// readMessage returns the bytes of one balanced JSON value, skipping any
// whitespace before it. Brackets inside string literals are not counted.
func (t *StdioTransport) readMessage() ([]byte, error) {
	var data []byte
	var depth int
	var inString, escaped bool

	for {
		b, err := t.reader.ReadByte()
		if err != nil {
			if err == io.EOF && len(data) > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if len(data) == 0 && (b == ' ' || b == '\n' || b == '\r' || b == '\t') {
			continue
		}
		data = append(data, b)

		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return data, nil
			}
		}
	}
}

// WriteResponse writes a JSON-RPC response followed by a newline
func (t *StdioTransport) WriteResponse(response *protocol.JsonRpcResponse) error {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		logger.Error("Failed to marshal response:", err)
		return err
	}
	responseBytes = append(responseBytes, '\n')

	logger.Debug("Sending response:", string(responseBytes))

	if _, err := t.writer.Write(responseBytes); err != nil {
		logger.Error("Failed to write response:", err)
		return err
	}
	if err := t.writer.Flush(); err != nil {
		logger.Error("Failed to flush response:", err)
		return err
	}
	return nil
}
