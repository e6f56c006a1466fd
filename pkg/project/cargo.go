package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// cargoManifest is the subset of Cargo.toml this package reads: enough to
// tell a workspace root from a standalone crate and to enumerate its
// [[bin]]/[[example]] targets, without shelling out to `cargo metadata`.
type cargoManifest struct {
	Package *struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
	Bin []cargoTargetEntry `toml:"bin"`
	// Example entries are rare in Cargo.toml itself — most examples are
	// picked up by convention from the examples/ directory — but are
	// honored here when present (e.g. a renamed or relocated example).
	Example []cargoTargetEntry `toml:"example"`
}

type cargoTargetEntry struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

func readCargoManifest(cargoTomlPath string) (*cargoManifest, error) {
	var m cargoManifest
	if _, err := toml.DecodeFile(cargoTomlPath, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", cargoTomlPath, err)
	}
	return &m, nil
}

// crateTargets resolves the app/example targets declared (or conventional)
// for a single crate directory (one with its own [package] table).
func crateTargets(crateDir string, m *cargoManifest) []Target {
	var targets []Target
	if m.Package == nil {
		return targets
	}

	if len(m.Bin) == 0 {
		if defaultMain := filepath.Join(crateDir, "src", "main.rs"); fileExists(defaultMain) {
			targets = append(targets, Target{
				Name:       m.Package.Name,
				Kind:       TargetApp,
				CrateDir:   crateDir,
				SourcePath: filepath.Join("src", "main.rs"),
			})
		}
	}
	for _, b := range m.Bin {
		path := b.Path
		if path == "" {
			path = filepath.Join("src", "bin", b.Name+".rs")
		}
		targets = append(targets, Target{
			Name:       b.Name,
			Kind:       TargetApp,
			CrateDir:   crateDir,
			SourcePath: path,
		})
	}

	for _, e := range m.Example {
		path := e.Path
		if path == "" {
			path = filepath.Join("examples", e.Name+".rs")
		}
		targets = append(targets, Target{
			Name:       e.Name,
			Kind:       TargetExample,
			CrateDir:   crateDir,
			SourcePath: path,
		})
	}
	// Conventional examples/*.rs not declared in Cargo.toml — each file is
	// its own implicit target named after itself, Cargo's default rule.
	declared := make(map[string]bool, len(m.Example))
	for _, e := range m.Example {
		declared[e.Name] = true
	}
	examplesDir := filepath.Join(crateDir, "examples")
	entries, err := os.ReadDir(examplesDir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".rs") {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ".rs")
			if declared[name] {
				continue
			}
			targets = append(targets, Target{
				Name:       name,
				Kind:       TargetExample,
				CrateDir:   crateDir,
				SourcePath: filepath.Join("examples", entry.Name()),
			})
		}
	}

	return targets
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// resolveWorkspaceMembers expands a workspace's `members` glob patterns
// (the common `"crates/*"` shape plus bare directory names) into crate
// directories that actually contain a Cargo.toml.
func resolveWorkspaceMembers(workspaceRoot string, patterns []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(workspaceRoot, pattern))
		if err != nil || len(matches) == 0 {
			// Not a glob, or it matched nothing — try it as a literal path.
			matches = []string{filepath.Join(workspaceRoot, pattern)}
		}
		for _, dir := range matches {
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				continue
			}
			if !fileExists(filepath.Join(dir, "Cargo.toml")) {
				continue
			}
			if seen[dir] {
				continue
			}
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
