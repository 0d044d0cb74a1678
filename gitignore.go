package main

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ruleSet holds the compiled patterns of one .gitignore file. The walker
// carries an ancestor-first chain of rule sets per directory, so rules from
// deeper directories are evaluated after, and can override, shallower ones.
type ruleSet struct {
	base     string // directory containing the .gitignore
	patterns []pattern
}

// loadRuleSet compiles dir/.gitignore if present. An unreadable file is
// treated as absent; a rule file must never abort traversal.
func loadRuleSet(dir string, log *zap.SugaredLogger) *ruleSet {
	gitignorePath := filepath.Join(dir, ".gitignore")
	data, err := os.ReadFile(gitignorePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debugw("could not read gitignore", "path", gitignorePath, "error", err)
		}
		return nil
	}

	rs := &ruleSet{base: dir}
	for _, line := range strings.Split(string(data), "\n") {
		if p, ok := compilePattern(line); ok {
			rs.patterns = append(rs.patterns, p)
		}
	}
	log.Debugw("loaded gitignore", "path", gitignorePath, "rules", len(rs.patterns))
	return rs
}

// ignoreResolver decides whether an entry is skipped, combining the always-on
// hidden-name rule, hierarchical gitignore rules, and user-supplied exclude
// patterns. --all bypasses the first two; user excludes always apply and
// cannot be negated by gitignore content.
type ignoreResolver struct {
	excludes   []pattern
	includeAll bool
}

func newIgnoreResolver(excludes []string, includeAll bool) *ignoreResolver {
	r := &ignoreResolver{includeAll: includeAll}
	for _, e := range excludes {
		if p, ok := compilePattern(e); ok {
			p.negate = false // an exclude match always excludes
			r.excludes = append(r.excludes, p)
		}
	}
	return r
}

// shouldSkip evaluates one entry. rootRel is the slash-separated path
// relative to the root being walked; chain is the ancestor-first list of
// rule sets in scope for the entry's directory.
func (r *ignoreResolver) shouldSkip(name, absPath, rootRel string, isDir bool, chain []*ruleSet) (bool, skipReason) {
	if !r.includeAll {
		if isHiddenName(name) {
			return true, skipHidden
		}

		ignored := false
		for _, rs := range chain {
			rel, err := filepath.Rel(rs.base, absPath)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			for _, p := range rs.patterns {
				if p.match(rel, isDir) {
					ignored = !p.negate
				}
			}
		}
		if ignored {
			return true, skipIgnored
		}
	}

	for _, p := range r.excludes {
		if p.match(rootRel, isDir) {
			return true, skipExcluded
		}
	}
	return false, 0
}

// isHiddenName reports whether a base name is hidden. "." and ".." are path
// syntax, not hidden entries.
func isHiddenName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}
