package project

import (
	"os"
	"path/filepath"
	"strings"
)

// Scan discovers every Cargo project reachable from roots: the root
// directory itself plus its immediate subdirectories (no deeper recursion —
// a project nested three levels down is not found, matching the shallow
// scan a large monorepo search needs to stay fast). Hidden directories
// (dotfiles) and "target" build directories are skipped. A workspace's
// members collapse into a single Project rooted at the workspace; a crate
// with no [workspace] table is its own standalone Project.
func Scan(roots []string) ([]Project, error) {
	visited := make(map[string]bool)
	var projects []Project

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		found, err := shallowScan(abs, visited)
		if err != nil {
			return nil, err
		}
		projects = append(projects, found...)
	}

	for i := range projects {
		projects[i].RelativePath = computeRelativePath(projects[i].Root, roots)
		for j := range projects[i].targets {
			projects[i].targets[j].RelativePath = projects[i].RelativePath
		}
	}
	return projects, nil
}

func shouldSkipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "target"
}

func shallowScan(dir string, visited map[string]bool) ([]Project, error) {
	var projects []Project

	canonical := canonicalize(dir)
	if visited[canonical] {
		return nil, nil
	}
	visited[canonical] = true

	if fileExists(filepath.Join(dir, "Cargo.toml")) {
		if p, memberDirs, err := loadProject(dir); err == nil && p != nil {
			projects = append(projects, *p)
			markVisited(visited, memberDirs)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable search root is not fatal to the overall scan — the
		// caller may have listed several roots, only one of them bad.
		return projects, nil
	}
	for _, entry := range entries {
		if !entry.IsDir() || shouldSkipDir(entry.Name()) {
			continue
		}
		sub := filepath.Join(dir, entry.Name())
		subCanonical := canonicalize(sub)
		if visited[subCanonical] {
			continue
		}
		if !fileExists(filepath.Join(sub, "Cargo.toml")) {
			visited[subCanonical] = true
			continue
		}
		visited[subCanonical] = true
		if p, memberDirs, err := loadProject(sub); err == nil && p != nil {
			projects = append(projects, *p)
			markVisited(visited, memberDirs)
		}
	}
	return projects, nil
}

// markVisited records each workspace member directory loadProject folded
// into a Project as already-visited, so a later iteration of this same
// shallowScan loop — or a subsequent Scan call sharing this visited set —
// never re-emits that member directory as its own standalone Project.
// Workspace-member discovery wins over standalone per spec.md §4.7's
// dedup rule, and this is the other half of that rule: without it, a
// member directory reached directly as an immediate subdirectory of the
// very workspace root that already folded it in would be scanned again.
func markVisited(visited map[string]bool, dirs []string) {
	for _, d := range dirs {
		visited[canonicalize(d)] = true
	}
}

// loadProject turns a directory known to contain a Cargo.toml into a
// Project: a workspace root with every member's targets folded in, or a
// standalone crate with its own targets. It also returns the absolute
// directories of any workspace members it resolved, so the caller can mark
// them visited and keep them from being discovered a second time as
// standalone projects.
func loadProject(dir string) (*Project, []string, error) {
	manifest, err := readCargoManifest(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		return nil, nil, err
	}

	override, err := loadManifest(dir)
	if err != nil {
		return nil, nil, err
	}

	isWorkspace := manifest.Workspace != nil || (override != nil && override.CargoWorkspace)
	name := dir
	if manifest.Package != nil {
		name = manifest.Package.Name
	} else if manifest.Workspace != nil {
		name = filepath.Base(dir)
	}

	p := &Project{Root: dir, Name: name, Manifest: override}

	// A crate can be both a workspace root and a package (the common
	// single-binary-plus-workspace shape) — collect its own targets too.
	p.targets = append(p.targets, crateTargets(dir, manifest)...)

	var memberDirs []string
	if isWorkspace && manifest.Workspace != nil {
		memberDirs = resolveWorkspaceMembers(dir, manifest.Workspace.Members)
		for _, memberDir := range memberDirs {
			memberManifest, err := readCargoManifest(filepath.Join(memberDir, "Cargo.toml"))
			if err != nil {
				continue
			}
			p.targets = append(p.targets, crateTargets(memberDir, memberManifest)...)
		}
	}

	return p, memberDirs, nil
}

// canonicalize resolves symlinks for cycle-safe visited-set tracking,
// falling back to the plain absolute path when the directory can't be
// resolved (e.g. permission denied, or it no longer exists).
func canonicalize(dir string) string {
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		return real
	}
	return dir
}

// computeRelativePath returns path's location relative to whichever search
// root contains it — the stable identifier callers pass back to FindTarget
// as a path filter. When path sits exactly at a search root, the root's own
// directory name is used so round-tripping through FindTarget still works.
func computeRelativePath(path string, roots []string) string {
	pathCanonical := canonicalize(path)
	for _, root := range roots {
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		rootCanonical := canonicalize(rootAbs)
		rel, err := filepath.Rel(rootCanonical, pathCanonical)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if rel == "." {
			return filepath.Base(pathCanonical)
		}
		return rel
	}
	return path
}
