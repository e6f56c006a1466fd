package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/brp-mcp/pkg/mutation"
	"github.com/ormasoftchile/brp-mcp/pkg/project"
	"github.com/ormasoftchile/brp-mcp/pkg/recovery"
	"github.com/ormasoftchile/brp-mcp/pkg/registry"
	"github.com/ormasoftchile/brp-mcp/pkg/transport"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

// argString pulls a string argument, applying def when absent or empty.
func argString(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// registryFor returns the cached registry snapshot for addr, fetching it
// over BRP via bevy/registry/schema on a cache miss.
func (s *Server) registryFor(ctx context.Context, addr string) (*registry.Registry, error) {
	s.mu.Lock()
	if reg, ok := s.registries[addr]; ok {
		s.mu.Unlock()
		return reg, nil
	}
	s.mu.Unlock()

	client, err := s.clientFor(ctx, addr)
	if err != nil {
		return nil, err
	}

	raw, callErr := client.Call(ctx, "bevy/registry/schema", value.Object())
	if callErr != nil {
		return nil, callErr
	}
	data, err := raw.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal registry/schema result: %w", err)
	}
	reg, err := registry.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse registry schema: %w", err)
	}

	s.mu.Lock()
	s.registries[addr] = reg
	s.mu.Unlock()
	return reg, nil
}

// clientFor returns a cached, live client for addr, dialing on first use.
func (s *Server) clientFor(ctx context.Context, addr string) (*transport.Client, error) {
	s.mu.Lock()
	if c, ok := s.clients[addr]; ok {
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	c, err := transport.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.clients[addr] = c
	s.mu.Unlock()
	return c, nil
}

// handleDescribeType implements brp/describe_type.
func (s *Server) handleDescribeType(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	typeName, _ := args["type_name"].(string)
	if typeName == "" {
		return errorResult("type_name argument is required"), nil
	}
	addr := argString(args, "addr", DefaultAddr)

	reg, err := s.registryFor(ctx, addr)
	if err != nil {
		return errorResult(fmt.Sprintf("fetch registry: %s", err)), nil
	}

	name := registry.TypeName(typeName)
	status := reg.Status(name)
	result := map[string]any{
		"type_name":      name.TypeString(),
		"display_name":   name.DisplayName(),
		"in_registry":    status.InRegistry,
		"has_reflect":    status.HasReflect,
		"brp_compatible": reg.BRPCompatible(name),
	}
	if status.InRegistry {
		result["kind"] = reg.KindOf(name).String()
		traits := reg.ReflectTraits(name)
		result["traits"] = map[string]any{
			"has_serialize":   traits.Has(registry.TraitSerialize),
			"has_deserialize": traits.Has(registry.TraitDeserialize),
		}
	}
	return jsonResult(result)
}

// handleMutationPaths implements brp/mutation_paths.
func (s *Server) handleMutationPaths(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	typeName, _ := args["type_name"].(string)
	if typeName == "" {
		return errorResult("type_name argument is required"), nil
	}
	addr := argString(args, "addr", DefaultAddr)

	reg, err := s.registryFor(ctx, addr)
	if err != nil {
		return errorResult(fmt.Sprintf("fetch registry: %s", err)), nil
	}

	rows, err := mutation.BuildMutationPaths(reg, s.kb, registry.TypeName(typeName))
	if err != nil {
		return errorResult(fmt.Sprintf("build mutation paths: %s", err)), nil
	}

	env := mutation.BuildEnvelope(rows)
	data, err := mutation.MarshalEnvelope(env)
	if err != nil {
		return errorResult(fmt.Sprintf("marshal envelope: %s", err)), nil
	}
	return textResult(string(data)), nil
}

// bareMethod strips a BRP method's "bevy/"/"extras/" namespace prefix —
// recovery.Recover classifies by the bare verb (spawn, insert, ...), while
// the wire call itself always uses the fully-qualified method name.
func bareMethod(method string) string {
	if i := strings.IndexByte(method, '/'); i >= 0 {
		return method[i+1:]
	}
	return method
}

// handleCall implements brp/call: issue a BRP JSON-RPC request, and on a
// format-mismatch error from a typed method, run it back through the
// recovery engine before giving up.
func (s *Server) handleCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	method, _ := args["method"].(string)
	if method == "" {
		return errorResult("method argument is required"), nil
	}
	paramsRaw, _ := args["params"].(string)
	addr := argString(args, "addr", DefaultAddr)

	params := value.Object()
	if paramsRaw != "" {
		parsed, err := value.FromJSON([]byte(paramsRaw))
		if err != nil {
			return errorResult(fmt.Sprintf("invalid params JSON: %s", err)), nil
		}
		params = parsed
	}

	client, err := s.clientFor(ctx, addr)
	if err != nil {
		return errorResult(fmt.Sprintf("dial %s: %s", addr, err)), nil
	}

	result, callErr := client.Call(ctx, method, params)
	if callErr == nil {
		return textResult(valueToJSON(result)), nil
	}

	reg, regErr := s.registryFor(ctx, addr)
	if regErr != nil {
		s.log.Warnf("recovery: could not fetch registry for %s: %s", addr, regErr)
		return errorResult(callErr.Error()), nil
	}

	outcome := recovery.Recover(ctx, client, reg, s.kb, bareMethod(method), params, callErr)
	originals := recovery.OriginalValues(bareMethod(method), params)
	env := recovery.BuildEnvelope(outcome, originals)

	response := map[string]any{
		"recovery": env,
	}
	if outcome.Kind == recovery.OutcomeRecovered {
		response["result"] = outcome.CorrectedResult
	}
	out, err := jsonResult(response)
	if err != nil {
		return nil, err
	}
	out.IsError = outcome.Kind != recovery.OutcomeRecovered
	return out, nil
}

// handleScanTargets implements brp/scan_targets.
func (s *Server) handleScanTargets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	rootsRaw, _ := args["roots"].(string)
	if rootsRaw == "" {
		return errorResult("roots argument is required"), nil
	}
	var roots []string
	for _, r := range strings.Split(rootsRaw, ",") {
		r = strings.TrimSpace(r)
		if r != "" {
			roots = append(roots, r)
		}
	}

	projects, err := project.Scan(roots)
	if err != nil {
		return errorResult(fmt.Sprintf("scan: %s", err)), nil
	}

	name := argString(args, "name", "")
	kindStr := argString(args, "kind", string(project.TargetApp))
	kind := project.TargetKind(kindStr)

	if name != "" {
		pathFilter := argString(args, "path", "")
		target, err := project.FindTarget(projects, kind, name, pathFilter)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(target)
	}

	return jsonResult(projects)
}

// handleSchema implements brp/schema.
func (s *Server) handleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := project.GenerateManifestJSONSchema()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}
