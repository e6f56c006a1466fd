// Package project discovers Cargo projects under a set of search roots and
// resolves "app"/"example" target names to the crate that builds them — the
// app-side counterpart to the registry/mutation packages: before an agent
// can connect to anything over BRP it has to know which binary to launch
// and where its source lives.
package project

import "path/filepath"

// TargetKind distinguishes a Cargo [[bin]] target from a [[example]] target.
type TargetKind string

const (
	TargetApp     TargetKind = "app"
	TargetExample TargetKind = "example"
)

// Target is one launchable binary discovered inside a scanned project.
type Target struct {
	Name string     `json:"name"`
	Kind TargetKind `json:"kind"`

	// CrateDir is the absolute directory containing the Cargo.toml that
	// declares this target (the workspace member's own directory for a
	// workspace project, or the project root for a standalone crate).
	CrateDir string `json:"crateDir"`

	// SourcePath is the target's entry-point source file, relative to
	// CrateDir (e.g. "src/main.rs", "examples/orbit_camera.rs").
	SourcePath string `json:"sourcePath"`

	// RelativePath identifies the owning project relative to the search
	// roots it was discovered under — the string callers pass back as a
	// path filter to FindTarget when a target name is ambiguous.
	RelativePath string `json:"relativePath"`
}

// Project is a single discovered Cargo project: either a standalone crate
// or a workspace root, with every app/example target it builds.
type Project struct {
	// Root is the absolute directory containing the project's top-level
	// Cargo.toml (the workspace root for a workspace, the crate directory
	// for a standalone crate).
	Root string `json:"root"`

	// Name is the workspace/crate name, used only for display.
	Name string `json:"name"`

	// RelativePath mirrors Target.RelativePath for the project itself —
	// the identifier callers use to disambiguate.
	RelativePath string `json:"relativePath"`

	// Manifest is the optional brp.yaml override found at Root, nil if
	// none was present.
	Manifest *Manifest `json:"manifest,omitempty"`

	targets []Target
}

// Targets returns every app/example target discovered in this project.
func (p *Project) Targets() []Target {
	return p.targets
}

// TargetDir returns the effective build output directory convention for
// this project: Manifest.TargetDir if set, else Cargo's "target".
func (p *Project) TargetDir() string {
	if p.Manifest != nil && p.Manifest.TargetDir != "" {
		return filepath.Join(p.Root, p.Manifest.TargetDir)
	}
	return filepath.Join(p.Root, "target")
}
