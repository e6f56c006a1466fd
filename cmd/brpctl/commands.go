package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/brp-mcp/pkg/display"
	"github.com/ormasoftchile/brp-mcp/pkg/knowledge"
	"github.com/ormasoftchile/brp-mcp/pkg/mutation"
	"github.com/ormasoftchile/brp-mcp/pkg/project"
	"github.com/ormasoftchile/brp-mcp/pkg/recovery"
	"github.com/ormasoftchile/brp-mcp/pkg/registry"
	"github.com/ormasoftchile/brp-mcp/pkg/transport"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

// defaultAddr is the Bevy Remote Protocol's conventional TCP endpoint.
const defaultAddr = "127.0.0.1:15702"

func fetchRegistry(ctx context.Context, addr string) (*registry.Registry, *transport.Client, error) {
	client, err := transport.Dial(ctx, addr)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	raw, callErr := client.Call(ctx, "bevy/registry/schema", value.Object())
	if callErr != nil {
		client.Close()
		return nil, nil, callErr
	}
	data, err := raw.MarshalJSON()
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("marshal registry/schema result: %w", err)
	}
	reg, err := registry.Parse(data)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("parse registry schema: %w", err)
	}
	return reg, client, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// --- describe ---

var describeAddr string

var describeCmd = &cobra.Command{
	Use:   "describe [type-name]",
	Short: "Report registry presence, reflect traits, and BRP compatibility for a type",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reg, client, err := fetchRegistry(ctx, describeAddr)
	if err != nil {
		return err
	}
	defer client.Close()

	name := registry.TypeName(args[0])
	status := reg.Status(name)
	out := map[string]any{
		"type_name":      name.TypeString(),
		"display_name":   name.DisplayName(),
		"in_registry":    status.InRegistry,
		"has_reflect":    status.HasReflect,
		"brp_compatible": reg.BRPCompatible(name),
	}
	kind := "unknown"
	if status.InRegistry {
		kind = reg.KindOf(name).String()
		out["kind"] = kind
	}
	fmt.Println(display.TypeLine(name.DisplayName(), kind))
	return printJSON(out)
}

// --- paths ---

var pathsAddr string

var pathsCmd = &cobra.Command{
	Use:   "paths [type-name]",
	Short: "Enumerate every legal mutation path into a type",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaths,
}

func runPaths(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reg, client, err := fetchRegistry(ctx, pathsAddr)
	if err != nil {
		return err
	}
	defer client.Close()

	rows, err := mutation.BuildMutationPaths(reg, knowledge.Default(), registry.TypeName(args[0]))
	if err != nil {
		return fmt.Errorf("build mutation paths: %w", err)
	}
	env := mutation.BuildEnvelope(rows)
	fmt.Println(display.MutabilityBadge(env.Mutability))
	data, err := mutation.MarshalEnvelope(env)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// --- call ---

var (
	callAddr   string
	callParams string
)

var callCmd = &cobra.Command{
	Use:   "call [method]",
	Short: "Issue a BRP JSON-RPC call, recovering from format-mismatch errors on typed methods",
	Args:  cobra.ExactArgs(1),
	RunE:  runCall,
}

func runCall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	method := args[0]

	params, err := value.FromJSON([]byte(callParams))
	if err != nil {
		return fmt.Errorf("invalid --params JSON: %w", err)
	}

	client, err := transport.Dial(ctx, callAddr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", callAddr, err)
	}
	defer client.Close()

	result, callErr := client.Call(ctx, method, params)
	if callErr == nil {
		return printJSON(result)
	}

	reg, _, regErr := fetchRegistry(ctx, callAddr)
	if regErr != nil {
		return callErr
	}

	bare := bareMethod(method)
	outcome := recovery.Recover(ctx, client, reg, knowledge.Default(), bare, params, callErr)
	env := recovery.BuildEnvelope(outcome, recovery.OriginalValues(bare, params))

	if err := printJSON(env); err != nil {
		return err
	}
	if outcome.Kind != recovery.OutcomeRecovered {
		return fmt.Errorf("brp call %s failed: %s", method, callErr.Message)
	}
	return nil
}

// bareMethod strips a BRP method's "bevy/"/"extras/" namespace prefix.
func bareMethod(method string) string {
	if i := strings.IndexByte(method, '/'); i >= 0 {
		return method[i+1:]
	}
	return method
}

// --- scan ---

var (
	scanName string
	scanKind string
	scanPath string
)

var scanCmd = &cobra.Command{
	Use:   "scan [roots...]",
	Short: "Scan Cargo project roots for launchable app/example targets",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	projects, err := project.Scan(args)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if scanName == "" {
		return printJSON(projects)
	}
	target, err := project.FindTarget(projects, project.TargetKind(scanKind), scanName, scanPath)
	if err != nil {
		return err
	}
	return printJSON(target)
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Export the brp.yaml project manifest JSON Schema",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	data, err := project.GenerateManifestJSONSchema()
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the brpctl version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}
