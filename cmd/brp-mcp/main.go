// Package main provides the brp-mcp binary — an MCP server exposing Bevy
// Remote Protocol type discovery and mutation tools to AI agents over
// stdio.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	bmcp "github.com/ormasoftchile/brp-mcp/pkg/ecosystem/mcp"
)

var version = "dev"

func main() {
	s := bmcp.NewServer(version)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
