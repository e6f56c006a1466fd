// Package main provides brpctl — a command-line front end for the same
// type discovery and mutation engine brp-mcp exposes over MCP, useful for
// scripting and manual inspection of a running Bevy game.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "brpctl",
	Short: "Bevy Remote Protocol type discovery and mutation CLI",
	Long:  "brpctl — inspect a running Bevy game's reflected types, list legal mutation paths, call BRP methods, and scan Cargo projects for launchable targets.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)

	describeCmd.Flags().StringVar(&describeAddr, "addr", defaultAddr, "BRP TCP endpoint")
	pathsCmd.Flags().StringVar(&pathsAddr, "addr", defaultAddr, "BRP TCP endpoint")
	callCmd.Flags().StringVar(&callAddr, "addr", defaultAddr, "BRP TCP endpoint")
	callCmd.Flags().StringVar(&callParams, "params", "{}", "JSON-encoded method parameters")

	scanCmd.Flags().StringVar(&scanName, "name", "", "Resolve one target by name instead of listing every target")
	scanCmd.Flags().StringVar(&scanKind, "kind", "app", "Target kind to resolve: app or example")
	scanCmd.Flags().StringVar(&scanPath, "path", "", "Path filter to disambiguate a name matched by more than one project")
}
