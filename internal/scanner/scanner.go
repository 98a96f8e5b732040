// Package scanner implements the directory walker (C6): it applies
// the ignore engine while walking a root and streams file candidates
// on a channel, grounded on the engine's channel-based streaming-walk
// idiom for large trees.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/directory-indexer/directory-indexer/internal/ignore"
	"github.com/directory-indexer/directory-indexer/internal/pathutil"
)

// Candidate is one file discovered under a scanned root.
type Candidate struct {
	Path         string // normalized absolute path
	Size         int64
	ModifiedTime int64 // epoch seconds
	TooLarge     bool
}

// Scanner walks roots applying the ignore engine.
type Scanner struct {
	ignoreEngine *ignore.Engine
	maxFileSize  int64
}

// New builds a Scanner. maxFileSize of 0 means unbounded.
func New(ignoreEngine *ignore.Engine, maxFileSize int64) *Scanner {
	return &Scanner{ignoreEngine: ignoreEngine, maxFileSize: maxFileSize}
}

// Scan walks root depth-first and streams candidates on the returned
// channel, closing it when the walk completes or ctx is canceled.
// Symlinks that escape root are rejected.
func (s *Scanner) Scan(ctx context.Context, root string) (<-chan Candidate, <-chan error) {
	out := make(chan Candidate, 64)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}

			norm, nerr := pathutil.Normalize(path)
			if nerr != nil {
				return nil
			}

			if info.Mode()&os.ModeSymlink != 0 {
				resolved, rerr := filepath.EvalSymlinks(path)
				if rerr != nil {
					return nil
				}
				if !withinRoot(root, resolved) {
					if info.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
			}

			isDir := info.IsDir()
			if norm != filepath.Clean(root) && s.ignoreEngine.Ignored(root, filepath.Dir(norm), norm, isDir) {
				if isDir {
					return filepath.SkipDir
				}
				return nil
			}

			if isDir {
				return nil
			}

			cand := Candidate{
				Path:         norm,
				Size:         info.Size(),
				ModifiedTime: info.ModTime().Unix(),
			}
			if s.maxFileSize > 0 && cand.Size > s.maxFileSize {
				cand.TooLarge = true
			}
			select {
			case out <- cand:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil && err != context.Canceled {
			errc <- err
		}
	}()

	return out, errc
}

func withinRoot(root, path string) bool {
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
