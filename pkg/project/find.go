package project

import (
	"strings"

	"github.com/ormasoftchile/brp-mcp/pkg/brperr"
)

// FindTarget locates the single app/example target named targetName across
// projects. If more than one project builds a target with that name,
// pathFilter narrows the search: an exact RelativePath match wins outright,
// otherwise a suffix/substring match against each candidate's path is
// tried. An empty pathFilter is only safe when the name is unambiguous.
func FindTarget(projects []Project, kind TargetKind, targetName, pathFilter string) (*Target, error) {
	var all []Target
	for _, p := range projects {
		for _, t := range p.Targets() {
			if t.Name == targetName && t.Kind == kind {
				all = append(all, t)
			}
		}
	}

	if pathFilter != "" && len(all) > 1 {
		filtered := filterTargetsByPath(all, pathFilter)
		if len(filtered) == 0 {
			partial := partialMatches(all, pathFilter)
			if len(partial) > 1 {
				return nil, &brperr.PathDisambiguationError{
					TargetName:     targetName,
					TargetType:     string(kind),
					AvailablePaths: targetPaths(partial),
				}
			}
			return nil, &brperr.PathDisambiguationError{
				TargetName:     targetName,
				TargetType:     string(kind),
				AvailablePaths: targetPaths(all),
			}
		}
		return singleOrDisambiguate(filtered, targetName, kind)
	}

	return singleOrDisambiguate(filterTargetsByPath(all, pathFilter), targetName, kind)
}

func singleOrDisambiguate(targets []Target, targetName string, kind TargetKind) (*Target, error) {
	switch len(targets) {
	case 0:
		return nil, &brperr.NoTargetsFoundError{TargetName: targetName, TargetType: string(kind)}
	case 1:
		return &targets[0], nil
	default:
		paths := targetPaths(targets)
		var nonEmpty []string
		for _, p := range paths {
			if p != "" {
				nonEmpty = append(nonEmpty, p)
			}
		}
		return nil, &brperr.PathDisambiguationError{
			TargetName:     targetName,
			TargetType:     string(kind),
			AvailablePaths: nonEmpty,
		}
	}
}

// filterTargetsByPath prioritizes exact RelativePath matches over suffix
// matches; an empty pathFilter passes every target through unchanged.
func filterTargetsByPath(targets []Target, pathFilter string) []Target {
	if pathFilter == "" {
		return targets
	}
	var exact []Target
	for _, t := range targets {
		if t.RelativePath == pathFilter {
			exact = append(exact, t)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return partialMatches(targets, pathFilter)
}

func partialMatches(targets []Target, pathFilter string) []Target {
	var out []Target
	for _, t := range targets {
		if partialPathMatch(t.RelativePath, pathFilter) {
			out = append(out, t)
		}
	}
	return out
}

// partialPathMatch mirrors the Rust scanner's suffix-or-component-contains
// rule: "app1" matches ".../workspace1/app1" (suffix) and "duplicate"
// matches ".../test-duplicate-a" (substring within a path component).
func partialPathMatch(relativePath, pathFilter string) bool {
	if strings.HasSuffix(relativePath, pathFilter) {
		return true
	}
	for _, component := range strings.Split(relativePath, "/") {
		if strings.Contains(component, pathFilter) {
			return true
		}
	}
	return false
}

func targetPaths(targets []Target) []string {
	paths := make([]string, len(targets))
	for i, t := range targets {
		paths[i] = t.RelativePath
	}
	return paths
}
