// Package main provides a TCP statement server for SchemaSpec.
package main

import (
	"encoding/json"
)

// Request represents a statement from the client.
type Request struct {
	Query string `json:"query"`
}

// Response represents the server's response to a statement.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"` // "query", "commit" or "auth"
	Result  json.RawMessage `json:"result,omitempty"`
}

// QueryResponse contains tabular results.
type QueryResponse struct {
	Columns     []string   `json:"columns"`
	Data        [][]string `json:"data"`
	RecordsRead int        `json:"records_read"`
	TimeMs      float64    `json:"time_ms"`
}

// CommitResponse contains the result of a BUILD.
type CommitResponse struct {
	Transaction      string  `json:"transaction"`
	Unchanged        bool    `json:"unchanged,omitempty"`
	DatabasesWritten int     `json:"databases_written,omitempty"`
	TablesWritten    int     `json:"tables_written,omitempty"`
	ColumnsWritten   int     `json:"columns_written,omitempty"`
	TimeMs           float64 `json:"time_ms"`
}

// AuthResponse is returned for a successful AUTH command.
type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Identity      string `json:"identity"`
	ExpiresIn     int    `json:"expires_in,omitempty"`
}

// EncodeResponse serializes a Response to JSON with a newline.
func EncodeResponse(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeRequest parses a JSON request from a byte slice.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	err := json.Unmarshal(data, &req)
	return req, err
}

// parseLine accepts either a raw statement or a JSON Request.
func parseLine(line string) string {
	if len(line) > 0 && line[0] == '{' {
		if req, err := DecodeRequest([]byte(line)); err == nil {
			return req.Query
		}
	}
	return line
}

func errorResponse(responseType string, err error) Response {
	return Response{
		Success: false,
		Type:    responseType,
		Error:   err.Error(),
	}
}
