// Package workspace implements the workspace registry (C9): named
// aliases for one or more directory prefixes, discovered from
// WORKSPACE_<NAME> environment variables.
package workspace

import (
	"os"
	"strings"

	"github.com/directory-indexer/directory-indexer/internal/errs"
	"github.com/directory-indexer/directory-indexer/internal/pathutil"
)

// Workspace is a named alias for one or more directory prefixes.
type Workspace struct {
	Name    string
	Paths   []string
	IsValid bool
}

// Registry holds every workspace discovered from the environment.
type Registry struct {
	workspaces map[string]Workspace
}

// Discover reads environ (typically os.Environ()) for every variable
// named WORKSPACE_<NAME>, lower-cases <NAME>, splits the value on
// commas, and normalizes each path.
func Discover(environ []string) *Registry {
	reg := &Registry{workspaces: make(map[string]Workspace)}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if !strings.HasPrefix(k, "WORKSPACE_") {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(k, "WORKSPACE_"))
		if name == "" {
			continue
		}
		var paths []string
		valid := v != ""
		for _, raw := range strings.Split(v, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			norm, err := pathutil.Normalize(raw)
			if err != nil {
				valid = false
				paths = append(paths, raw)
				continue
			}
			info, statErr := os.Stat(norm)
			if statErr != nil || !info.IsDir() {
				valid = false
			}
			paths = append(paths, norm)
		}
		reg.workspaces[name] = Workspace{Name: name, Paths: paths, IsValid: valid}
	}
	return reg
}

// Discover using the real process environment.
func DiscoverEnv() *Registry {
	return Discover(os.Environ())
}

// All returns every discovered workspace, sorted by nothing in
// particular (callers that need stable order should sort by Name).
func (r *Registry) All() []Workspace {
	out := make([]Workspace, 0, len(r.workspaces))
	for _, w := range r.workspaces {
		out = append(out, w)
	}
	return out
}

// Resolve returns the normalized path prefixes for name. Unknown names
// return a NotFound error, as required by RPC/CLI callers.
func (r *Registry) Resolve(name string) ([]string, error) {
	w, ok := r.workspaces[strings.ToLower(name)]
	if !ok {
		return nil, errs.NotFound("unknown workspace").WithIdentifier(name)
	}
	return w.Paths, nil
}
