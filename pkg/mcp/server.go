package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ariahq/aria/pkg/logging"
	"github.com/ariahq/aria/pkg/tools"
)

// maxMessageSize bounds a single protocol line. Screenshot-bearing results
// can be large.
const maxMessageSize = 10 * 1024 * 1024

// Server runs the MCP loop: one request in, one response out, until the
// input stream closes. Tool calls are processed one at a time.
type Server struct {
	name     string
	version  string
	registry *tools.Registry
	log      *logging.Logger
	in       io.Reader
	out      io.Writer
}

// NewServer creates an MCP server over stdin/stdout.
func NewServer(name, version string, registry *tools.Registry) *Server {
	log, _ := logging.NewLogger("mcp")
	return &Server{
		name:     name,
		version:  version,
		registry: registry,
		log:      log,
		in:       os.Stdin,
		out:      os.Stdout,
	}
}

// SetStreams overrides the transport streams. Used by tests.
func (s *Server) SetStreams(in io.Reader, out io.Writer) {
	s.in = in
	s.out = out
}

// Serve reads requests line by line until EOF or context cancellation.
// A malformed line produces a parse-error response and the loop continues.
func (s *Server) Serve(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.write(Response{
				JSONRPC: "2.0",
				Error:   &RPCError{Code: codeParseError, Message: "Parse error: " + err.Error()},
			})
			continue
		}

		resp, ok := s.HandleRequest(ctx, req)
		if ok {
			s.write(resp)
		}
	}
	return scanner.Err()
}

// HandleRequest processes one request. The second return value is false for
// notifications, which get no response.
func (s *Server) HandleRequest(ctx context.Context, req Request) (Response, bool) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req), true
	case "initialized", "notifications/initialized":
		if req.IsNotification() {
			return Response{}, false
		}
		return Response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`{}`)}, true
	case "tools/list":
		return s.handleToolsList(req), true
	case "tools/call":
		return s.handleToolsCall(ctx, req), true
	default:
		if req.IsNotification() {
			return Response{}, false
		}
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: codeMethodNotFound, Message: "Method not found: " + req.Method},
		}, true
	}
}

func (s *Server) handleInitialize(req Request) Response {
	result := InitializeResult{
		ProtocolVersion: protocolVersion,
		ServerInfo:      ServerInfo{Name: s.name, Version: s.version},
	}
	return Response{JSONRPC: "2.0", ID: req.ID, Result: mustMarshal(result)}
}

func (s *Server) handleToolsList(req Request) Response {
	list := s.registry.List()
	descriptors := make([]ToolDescriptor, 0, len(list))
	for _, tool := range list {
		descriptors = append(descriptors, ToolDescriptor{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.Schema(),
		})
	}
	return Response{JSONRPC: "2.0", ID: req.ID, Result: mustMarshal(ToolsListResult{Tools: descriptors})}
}

func (s *Server) handleToolsCall(ctx context.Context, req Request) Response {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: codeInvalidParams, Message: "Invalid params: " + err.Error()},
		}
	}

	s.log.Debugf("tool call: %s", params.Name)
	output, err := s.registry.Execute(ctx, params.Name, params.Arguments)
	if err != nil {
		// Handler and dispatch failures are tool-level results, never a
		// crash of the protocol loop.
		s.log.Warnf("tool %s failed: %v", params.Name, err)
		return Response{JSONRPC: "2.0", ID: req.ID, Result: mustMarshal(ErrorResult(err.Error()))}
	}

	return Response{JSONRPC: "2.0", ID: req.ID, Result: mustMarshal(RenderOutput(output))}
}

func (s *Server) write(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Errorf("marshal response: %v", err)
		return
	}
	fmt.Fprintln(s.out, string(data))
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		// Simple structs only; treated as unreachable.
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(data)
}
