package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// walker enumerates candidate files breadth-first: all entries at one depth
// are filtered and emitted before anything at the next depth is visited.
// Roots are processed in argument order, each as its own level-0 starting
// point. Within a directory, entries are visited in lexicographic order.
type walker struct {
	res     *ignoreResolver
	stats   *statistics
	log     *zap.SugaredLogger
	visited map[string]struct{} // canonical paths, dedupes overlapping roots and symlink aliases
}

func newWalker(res *ignoreResolver, stats *statistics, log *zap.SugaredLogger) *walker {
	return &walker{
		res:     res,
		stats:   stats,
		log:     log,
		visited: make(map[string]struct{}),
	}
}

// dirItem is one queued directory. chain holds the rule sets inherited from
// ancestor directories; the directory's own .gitignore is layered on top
// when the item is dequeued.
type dirItem struct {
	path  string
	depth int
	chain []*ruleSet
}

// walkAll walks every root in order, emitting candidates on out, and returns
// one error per failed root. The caller treats the run as failed only when
// every root failed.
func (w *walker) walkAll(roots []string, out chan<- candidate) []error {
	defer close(out)
	var errs []error
	for _, root := range roots {
		if err := w.walkRoot(root, out); err != nil {
			w.log.Warnw("cannot process path", "path", root, "error", err)
			errs = append(errs, err)
		}
	}
	return errs
}

func (w *walker) walkRoot(root string, out chan<- candidate) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", root, err)
	}

	// An explicitly named file still passes through the hidden and exclude
	// rules, like any other entry.
	if !info.IsDir() {
		name := filepath.Base(root)
		if skip, reason := w.res.shouldSkip(name, root, name, false, nil); skip {
			w.stats.recordSkippedFile(reason)
			return nil
		}
		if !w.markVisited(root) {
			return nil
		}
		out <- candidate{path: root, size: info.Size()}
		return nil
	}

	if !w.res.includeAll && isHiddenName(filepath.Base(root)) {
		w.stats.recordSkippedDir(skipHidden)
		return nil
	}
	if !w.markVisited(root) {
		return nil
	}

	queue := []dirItem{{path: root}}
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]

		w.stats.recordDirectory()

		chain := d.chain
		if rs := loadRuleSet(d.path, w.log); rs != nil {
			// Full slice expression so sibling directories never share
			// a backing array with this extended chain.
			chain = append(chain[:len(chain):len(chain)], rs)
			w.stats.recordGitignore(filepath.Join(d.path, ".gitignore"))
		}

		entries, err := os.ReadDir(d.path)
		if err != nil {
			w.log.Warnw("cannot read directory", "path", d.path, "error", err)
			continue
		}
		// os.ReadDir returns entries sorted by name, which fixes the
		// traversal order within this level.

		var subdirs []dirItem
		for _, entry := range entries {
			name := entry.Name()
			abs := filepath.Join(d.path, name)

			rootRel, relErr := filepath.Rel(root, abs)
			if relErr != nil {
				continue
			}
			rootRel = filepath.ToSlash(rootRel)

			isDir := entry.IsDir()
			size := int64(0)

			if entry.Type()&fs.ModeSymlink != 0 {
				// A symlink to a regular file is read as that file; a
				// symlink to a directory is never followed.
				target, statErr := os.Stat(abs)
				if statErr != nil {
					w.log.Debugw("skipping broken symlink", "path", abs)
					continue
				}
				if target.IsDir() {
					w.log.Debugw("not following directory symlink", "path", abs)
					continue
				}
				isDir = false
				size = target.Size()
			} else if !isDir {
				fi, infoErr := entry.Info()
				if infoErr != nil {
					w.log.Warnw("cannot stat entry", "path", abs, "error", infoErr)
					continue
				}
				size = fi.Size()
			}

			if skip, reason := w.res.shouldSkip(name, abs, rootRel, isDir, chain); skip {
				if isDir {
					w.stats.recordSkippedDir(reason)
				} else {
					w.stats.recordSkippedFile(reason)
				}
				continue
			}

			if !w.markVisited(abs) {
				continue
			}

			if isDir {
				subdirs = append(subdirs, dirItem{path: abs, depth: d.depth + 1, chain: chain})
			} else {
				out <- candidate{path: abs, size: size, depth: d.depth + 1}
			}
		}

		// Files at this level are already emitted; subdirectories go to
		// the back of the queue for the next breadth level.
		queue = append(queue, subdirs...)
	}

	return nil
}

// markVisited records the canonical form of path and reports whether it was
// new. Symlink aliases and overlapping roots resolve to the same key.
func (w *walker) markVisited(path string) bool {
	canon := path
	if abs, err := filepath.Abs(path); err == nil {
		canon = abs
	}
	if resolved, err := filepath.EvalSymlinks(canon); err == nil {
		canon = resolved
	}
	if _, seen := w.visited[canon]; seen {
		return false
	}
	w.visited[canon] = struct{}{}
	return true
}
