// Package mcp wires the core library (registry, mutation, recovery,
// project, transport) into MCP tools an agent calls over stdio — the same
// registration shape as the teacher's pkg/ecosystem/mcp/server.go, with
// per-connection registry/client caches added since a BRP tool call needs a
// live socket to a specific running game, not a one-shot file read.
package mcp

import (
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/brp-mcp/pkg/knowledge"
	"github.com/ormasoftchile/brp-mcp/pkg/obslog"
	"github.com/ormasoftchile/brp-mcp/pkg/registry"
	"github.com/ormasoftchile/brp-mcp/pkg/transport"
)

// DefaultAddr is the Bevy Remote Protocol's conventional TCP endpoint.
const DefaultAddr = "127.0.0.1:15702"

// Server holds the state shared across tool calls: the knowledge base is
// immutable and process-wide, while registry snapshots and live transport
// connections are cached per BRP endpoint address so repeated calls against
// the same running game don't redial or re-fetch the schema every time.
type Server struct {
	kb  *knowledge.Base
	log *obslog.Logger

	mu         sync.Mutex
	registries map[string]*registry.Registry
	clients    map[string]*transport.Client
}

// NewServer creates a new MCP server with the BRP tool set registered.
func NewServer(version string) *server.MCPServer {
	s := &Server{
		kb:         knowledge.Default(),
		log:        obslog.New("brp-mcp"),
		registries: make(map[string]*registry.Registry),
		clients:    make(map[string]*transport.Client),
	}

	mcps := server.NewMCPServer(
		"brp-mcp",
		version,
		server.WithToolCapabilities(true),
	)

	mcps.AddTool(
		mcp.NewTool("brp/describe_type",
			mcp.WithDescription("Report registry presence, reflect traits, and BRP compatibility for a type"),
			mcp.WithString("type_name", mcp.Required(), mcp.Description("Fully-qualified reflective type name, e.g. my_game::Health")),
			mcp.WithString("addr", mcp.Description("BRP TCP endpoint, default 127.0.0.1:15702")),
		),
		s.handleDescribeType,
	)

	mcps.AddTool(
		mcp.NewTool("brp/mutation_paths",
			mcp.WithDescription("Enumerate every legal mutation path into a type, with example values and mutability"),
			mcp.WithString("type_name", mcp.Required(), mcp.Description("Fully-qualified reflective type name")),
			mcp.WithString("addr", mcp.Description("BRP TCP endpoint, default 127.0.0.1:15702")),
		),
		s.handleMutationPaths,
	)

	mcps.AddTool(
		mcp.NewTool("brp/call",
			mcp.WithDescription("Issue a BRP JSON-RPC call, recovering automatically from format-mismatch errors on typed methods"),
			mcp.WithString("method", mcp.Required(), mcp.Description("BRP method, e.g. bevy/mutate_component")),
			mcp.WithString("params", mcp.Required(), mcp.Description("JSON-encoded parameters object")),
			mcp.WithString("addr", mcp.Description("BRP TCP endpoint, default 127.0.0.1:15702")),
		),
		s.handleCall,
	)

	mcps.AddTool(
		mcp.NewTool("brp/scan_targets",
			mcp.WithDescription("Scan Cargo project roots for launchable app/example targets"),
			mcp.WithString("roots", mcp.Required(), mcp.Description("Comma-separated search root directories")),
			mcp.WithString("name", mcp.Description("Resolve one target by name instead of listing every target")),
			mcp.WithString("kind", mcp.Description("Target kind to resolve when name is given: app or example (default: app); ignored when listing")),
			mcp.WithString("path", mcp.Description("Path filter to disambiguate a name matched by more than one project")),
		),
		s.handleScanTargets,
	)

	mcps.AddTool(
		mcp.NewTool("brp/schema",
			mcp.WithDescription("Export the brp.yaml project manifest JSON Schema"),
		),
		s.handleSchema,
	)

	return mcps
}
