package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrUnknownTool is returned when no tool is registered under the requested name.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArguments is returned when arguments do not satisfy the tool's input schema.
	ErrInvalidArguments = errors.New("invalid arguments")
)

func init() {
	gojsonschema.FormatCheckers.Add("email", bareEmailChecker{})
}

// bareEmailChecker accepts only a plain addr-spec. Display-name forms such as
// "Ada <ada@example.com>" parse under net/mail but are not an email address.
type bareEmailChecker struct{}

func (bareEmailChecker) IsFormat(input any) bool {
	s, ok := input.(string)
	if !ok {
		return true
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Name == "" && addr.Address == s
}

// outcome labels a finished tool call in logs and metrics.
type outcome string

const (
	outcomeOK             outcome = "ok"
	outcomeBackendError   outcome = "backend_error"
	outcomeTransportError outcome = "transport_error"
	outcomeInvalid        outcome = "invalid_arguments"
)

// reply is what a tool handler produces: the text relayed to the caller and how the call went.
type reply struct {
	text    string
	outcome outcome
}

// toolFunc runs a tool against arguments that already passed schema validation.
// It never fails: backend and transport errors are carried in the reply text.
type toolFunc func(ctx context.Context, args map[string]any) reply

type registeredTool struct {
	tool   mcp.Tool
	schema *gojsonschema.Schema
	fn     toolFunc
}

// Registry holds tool declarations, validates calls against their schemas and dispatches them.
type Registry struct {
	tools   map[string]*registeredTool
	order   []string
	log     *logrus.Entry
	metrics *metrics
}

// NewRegistry returns an empty Registry. metrics may be nil.
func NewRegistry(log *logrus.Entry, m *metrics) *Registry {
	return &Registry{tools: make(map[string]*registeredTool), log: log, metrics: m}
}

// Register declares a tool. The tool's input schema is compiled for argument validation.
func (r *Registry) Register(tool mcp.Tool, fn toolFunc) error {
	if _, dup := r.tools[tool.Name]; dup {
		return fmt.Errorf("tool %q already registered", tool.Name)
	}
	raw, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return fmt.Errorf("encode schema for %s: %w", tool.Name, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("compile schema for %s: %w", tool.Name, err)
	}
	r.tools[tool.Name] = &registeredTool{tool: tool, schema: schema, fn: fn}
	r.order = append(r.order, tool.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(tool mcp.Tool, fn toolFunc) {
	if err := r.Register(tool, fn); err != nil {
		panic(err)
	}
}

// Tools returns the declared tools in registration order.
func (r *Registry) Tools() []mcp.Tool {
	out := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].tool)
	}
	return out
}

// Mount adds every registered tool to an MCP server.
func (r *Registry) Mount(s *mcpserver.MCPServer) {
	for _, name := range r.order {
		s.AddTool(r.tools[name].tool, r.handler(name))
	}
}

func (r *Registry) handler(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := r.Call(ctx, name, req.GetArguments())
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(text), nil
	}
}

// Call validates args against the named tool's schema and runs it.
// The returned error is non-nil only for ErrUnknownTool and ErrInvalidArguments.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	entry := r.log.WithFields(logrus.Fields{"call_id": uuid.NewString(), "tool": name})
	start := time.Now()

	if err := validateArgs(t.schema, args); err != nil {
		entry.WithError(err).Warn("tool call rejected")
		r.record(name, outcomeInvalid)
		return "", fmt.Errorf("%s: %w", name, err)
	}

	res := t.fn(ctx, args)
	entry.WithFields(logrus.Fields{
		"outcome":     res.outcome,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("tool call")
	r.record(name, res.outcome)
	return res.text, nil
}

func (r *Registry) record(name string, o outcome) {
	if r.metrics != nil {
		r.metrics.toolCalls.WithLabelValues(name, string(o)).Inc()
	}
}

func validateArgs(schema *gojsonschema.Schema, args map[string]any) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidArguments, strings.Join(msgs, "; "))
}
