package ipc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/1broseidon/halo/internal/render"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandShow      CommandType = "SHOW"
	CommandHide      CommandType = "HIDE"
	CommandToggle    CommandType = "TOGGLE"
	CommandReload    CommandType = "RELOAD"
	CommandGetStatus CommandType = "GET_STATUS"
	CommandGetLayout CommandType = "GET_LAYOUT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Visible       bool     `json:"visible"`
	Phase         string   `json:"phase"`
	Hovered       *int     `json:"hovered,omitempty"`
	Backend       string   `json:"backend"`
	ConfigPath    string   `json:"config_path"`
	Slots         []string `json:"slots"` // one entry per direction, "" when empty
	SubslotCount  int      `json:"subslot_count"`
	ScaleFactor   float64  `json:"scale_factor"`
	UptimeSeconds int64    `json:"uptime_seconds"`
}

// LayoutData represents the data returned by GET_LAYOUT: the scene of the
// last layout pass.
type LayoutData struct {
	Visible bool         `json:"visible"`
	Scene   render.Scene `json:"scene"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request line. Besides JSON, a bare command word
// such as "show" is accepted so the socket can be driven from a shell.
func ParseRequest(data []byte) (*Request, error) {
	line := strings.TrimSpace(string(data))
	if line == "" {
		return nil, fmt.Errorf("failed to parse request: empty request")
	}
	if !strings.HasPrefix(line, "{") {
		return &Request{Command: CommandType(strings.ToUpper(line))}, nil
	}

	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	req.Command = CommandType(strings.ToUpper(string(req.Command)))
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
