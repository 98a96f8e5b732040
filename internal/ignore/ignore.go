// Package ignore implements the two-layer path filter the scanner
// applies to every candidate entry: a hard-coded, non-negatable
// essential-patterns layer, and a gitignore layer compiled from the
// .gitignore files found strictly within the tree being scanned.
package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	gitignore "github.com/sabhiram/go-gitignore"
)

// defaultEssential is the hard-coded set of path segments that are
// always ignored, regardless of any gitignore negation.
var defaultEssential = []string{".git", "node_modules", "target", ".DS_Store"}

// Engine evaluates the essential + gitignore layers for a scan rooted
// at one or more directories.
type Engine struct {
	essential map[string]struct{}
	cache     *lru.Cache[string, *gitignore.GitIgnore]
	mu        sync.Mutex
	dirLocks  map[string]*sync.Mutex
}

// New builds an Engine. extraEssential is appended to the hard-coded
// essential set (.git, node_modules, target, .DS_Store).
func New(extraEssential []string) *Engine {
	set := make(map[string]struct{}, len(defaultEssential)+len(extraEssential))
	for _, p := range defaultEssential {
		set[p] = struct{}{}
	}
	for _, p := range extraEssential {
		set[p] = struct{}{}
	}
	cache, _ := lru.New[string, *gitignore.GitIgnore](1024)
	return &Engine{
		essential: set,
		cache:     cache,
		dirLocks:  make(map[string]*sync.Mutex),
	}
}

// IsEssentiallyIgnored reports whether path contains any essential
// pattern as a path segment. This check cannot be overridden by any
// gitignore negation.
func (e *Engine) IsEssentiallyIgnored(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if _, ok := e.essential[seg]; ok {
			return true
		}
	}
	return false
}

// Ignored reports whether path (an absolute, normalized path under
// root) is ignored by either layer. dir is the absolute directory
// containing path, used to locate and cache the owning .gitignore.
func (e *Engine) Ignored(root, dir, path string, isDir bool) bool {
	if e.IsEssentiallyIgnored(path) {
		return true
	}
	matcher := e.matcherFor(root, dir)
	if matcher == nil {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	return matcher.MatchesPath(rel)
}

// matcherFor returns the compiled matcher for a directory's own
// .gitignore, composed with every ancestor matcher up to root, caching
// the result per absolute directory path. Population is guarded by a
// per-directory mutex so concurrent scanners don't compile the same
// directory twice.
func (e *Engine) matcherFor(root, dir string) *gitignore.GitIgnore {
	if m, ok := e.cache.Get(dir); ok {
		return m
	}
	lock := e.lockFor(dir)
	lock.Lock()
	defer lock.Unlock()
	if m, ok := e.cache.Get(dir); ok {
		return m
	}

	var lines []string
	for _, ancestor := range ancestryWithin(root, dir) {
		lines = append(lines, readGitignoreLines(ancestor)...)
	}
	var matcher *gitignore.GitIgnore
	if len(lines) > 0 {
		matcher = gitignore.CompileIgnoreLines(lines...)
	}
	e.cache.Add(dir, matcher)
	return matcher
}

func (e *Engine) lockFor(dir string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.dirLocks[dir]
	if !ok {
		l = &sync.Mutex{}
		e.dirLocks[dir] = l
	}
	return l
}

// ancestryWithin returns dir and every ancestor of dir up to and
// including root, ordered from root to dir (so closer .gitignore
// patterns are appended last and take precedence in gitignore's own
// later-wins semantics).
func ancestryWithin(root, dir string) []string {
	root = filepath.Clean(root)
	dir = filepath.Clean(dir)
	var chain []string
	cur := dir
	for {
		chain = append(chain, cur)
		if cur == root {
			break
		}
		parent := filepath.Dir(cur)
		if parent == cur || !strings.HasPrefix(parent+string(filepath.Separator), root+string(filepath.Separator)) && parent != root {
			break
		}
		cur = parent
	}
	// reverse: root-first
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func readGitignoreLines(dir string) []string {
	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return nil
	}
	return strings.Split(string(data), "\n")
}
