package main

import "strings"

// pattern is one compiled gitignore-style rule.
type pattern struct {
	raw      string
	segments []string
	negate   bool // leading '!': re-include a previously ignored path
	anchored bool // leading '/': match from the rule's base directory
	dirOnly  bool // trailing '/': match directories only
}

// compilePattern compiles a single rule line. ok is false for blank lines and
// comments. Compilation never fails: syntax the matcher does not understand
// (e.g. character classes) is matched literally, so a malformed pattern can
// never abort a run.
func compilePattern(line string) (p pattern, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return pattern{}, false
	}

	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = line[1:]
	}
	if line == "" {
		return pattern{}, false
	}

	p.raw = line
	p.segments = strings.Split(line, "/")
	return p, true
}

// match reports whether the pattern matches a slash-separated path relative
// to the rule's base directory.
func (p pattern) match(relPath string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	if p.raw == "*" {
		return true
	}

	parts := splitPath(relPath)

	// A pattern containing a separator matches against the whole relative
	// path; a bare pattern matches any single component.
	if p.anchored || strings.Contains(p.raw, "/") {
		return matchSegments(parts, p.segments)
	}
	for _, part := range parts {
		if globMatch(part, p.raw) {
			return true
		}
	}
	return false
}

// matchSegments matches path components against pattern components, where a
// "**" component spans zero or more directories. A fully consumed pattern
// matches even if path components remain, so "a/b" covers everything under
// a/b the way gitignore does.
func matchSegments(parts, pats []string) bool {
	if len(pats) == 0 {
		return true
	}

	pi, gi := 0, 0
	for gi < len(pats) && pi < len(parts) {
		if pats[gi] == "**" {
			if gi == len(pats)-1 {
				return true
			}
			next := pats[gi+1]
			for ; pi < len(parts); pi++ {
				if globMatch(parts[pi], next) && matchSegments(parts[pi:], pats[gi+1:]) {
					return true
				}
			}
			return false
		}
		if !globMatch(parts[pi], pats[gi]) {
			return false
		}
		pi++
		gi++
	}
	return gi == len(pats)
}

// globMatch matches a single path component against a pattern supporting
// '*' and '?'. Any other byte, including '[' and ']', matches literally.
func globMatch(text, pat string) bool {
	if pat == "*" {
		return true
	}
	if !strings.ContainsAny(pat, "*?") {
		return text == pat
	}

	ti, pi := 0, 0
	star, starTi := -1, 0
	for ti < len(text) {
		switch {
		case pi < len(pat) && pat[pi] == '*':
			star, starTi = pi, ti
			pi++
		case pi < len(pat) && (pat[pi] == '?' || pat[pi] == text[ti]):
			ti++
			pi++
		case star >= 0:
			// Backtrack: let the last '*' swallow one more byte.
			pi = star + 1
			starTi++
			ti = starTi
		default:
			return false
		}
	}
	for pi < len(pat) && pat[pi] == '*' {
		pi++
	}
	return pi == len(pat)
}

func splitPath(p string) []string {
	var parts []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}
