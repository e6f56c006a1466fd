package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanStandaloneCrateFindsMainAndExamples(t *testing.T) {
	root := t.TempDir()
	crate := filepath.Join(root, "game")
	writeFile(t, filepath.Join(crate, "Cargo.toml"), `
[package]
name = "game"
version = "0.1.0"
`)
	writeFile(t, filepath.Join(crate, "src", "main.rs"), "fn main() {}")
	writeFile(t, filepath.Join(crate, "examples", "orbit_camera.rs"), "fn main() {}")

	projects, err := Scan([]string{root})
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 {
		t.Fatalf("got %d projects, want 1", len(projects))
	}
	targets := projects[0].Targets()
	if len(targets) != 2 {
		t.Fatalf("got %d targets, want 2 (app + example): %#v", len(targets), targets)
	}
	var foundApp, foundExample bool
	for _, tg := range targets {
		if tg.Kind == TargetApp && tg.Name == "game" {
			foundApp = true
		}
		if tg.Kind == TargetExample && tg.Name == "orbit_camera" {
			foundExample = true
		}
	}
	if !foundApp || !foundExample {
		t.Fatalf("missing expected targets: %#v", targets)
	}
}

func TestScanSkipsHiddenAndTargetDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", "Cargo.toml"), `
[package]
name = "app"
`)
	writeFile(t, filepath.Join(root, "app", "src", "main.rs"), "fn main() {}")
	writeFile(t, filepath.Join(root, ".hidden", "Cargo.toml"), `
[package]
name = "sneaky"
`)
	writeFile(t, filepath.Join(root, "target", "Cargo.toml"), `
[package]
name = "should-not-be-found"
`)

	projects, err := Scan([]string{root})
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 {
		t.Fatalf("got %d projects, want 1 (hidden/target dirs must be skipped): %#v", len(projects), projects)
	}
}

func TestScanWorkspaceCollapsesMembersIntoOneProject(t *testing.T) {
	root := t.TempDir()
	ws := filepath.Join(root, "workspace")
	writeFile(t, filepath.Join(ws, "Cargo.toml"), `
[workspace]
members = ["member-a", "member-b"]
`)
	writeFile(t, filepath.Join(ws, "member-a", "Cargo.toml"), `
[package]
name = "member-a"
`)
	writeFile(t, filepath.Join(ws, "member-a", "src", "main.rs"), "fn main() {}")
	writeFile(t, filepath.Join(ws, "member-b", "Cargo.toml"), `
[package]
name = "member-b"
`)
	writeFile(t, filepath.Join(ws, "member-b", "src", "main.rs"), "fn main() {}")

	projects, err := Scan([]string{root})
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 {
		t.Fatalf("got %d projects, want 1 workspace root: %#v", len(projects), projects)
	}
	if len(projects[0].Targets()) != 2 {
		t.Fatalf("got %d targets, want 2 (member-a + member-b): %#v", len(projects[0].Targets()), projects[0].Targets())
	}
}

// TestScanWorkspaceRootAsSearchRootDoesNotDuplicateMembers covers the other
// half of spec.md §4.7's "workspace-member discovery wins over standalone"
// dedup rule: passing the workspace directory itself as the search root
// means its members sit at depth 1 (immediate subdirectories) of the very
// same shallowScan call that already folded them into the workspace
// Project — they must not also surface as their own standalone Projects.
func TestScanWorkspaceRootAsSearchRootDoesNotDuplicateMembers(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, "Cargo.toml"), `
[workspace]
members = ["member-a", "member-b"]
`)
	writeFile(t, filepath.Join(ws, "member-a", "Cargo.toml"), `
[package]
name = "member-a"
`)
	writeFile(t, filepath.Join(ws, "member-a", "src", "main.rs"), "fn main() {}")
	writeFile(t, filepath.Join(ws, "member-b", "Cargo.toml"), `
[package]
name = "member-b"
`)
	writeFile(t, filepath.Join(ws, "member-b", "src", "main.rs"), "fn main() {}")

	projects, err := Scan([]string{ws})
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 {
		t.Fatalf("got %d projects, want 1 workspace root (members must not also appear standalone): %#v", len(projects), projects)
	}
	if len(projects[0].Targets()) != 2 {
		t.Fatalf("got %d targets, want 2 (member-a + member-b): %#v", len(projects[0].Targets()), projects[0].Targets())
	}
}

func TestComputeRelativePathUsesDirNameAtSearchRoot(t *testing.T) {
	root := t.TempDir()
	crate := filepath.Join(root, "test-app")
	rel := computeRelativePath(crate, []string{crate})
	if rel != "test-app" {
		t.Fatalf("relative path = %q, want test-app", rel)
	}
}
