package auth

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

const pathSeparator = '/'

// PathMatcher decides whether a request path skips authentication.
// Patterns use Ant-style semantics: a "**" segment spans zero or more
// segments, while "*" and "?" never cross a "/".
type PathMatcher struct {
	patterns []pathPattern
}

type pathPattern struct {
	raw      string
	absolute bool
	segments []segmentMatcher
}

type segmentMatcher struct {
	anyDepth bool
	glob     glob.Glob
}

// NewPathMatcher compiles patterns once; the result is safe for concurrent use.
func NewPathMatcher(patterns []string) (*PathMatcher, error) {
	m := &PathMatcher{patterns: make([]pathPattern, 0, len(patterns))}
	for _, raw := range patterns {
		p, err := compilePattern(raw)
		if err != nil {
			return nil, err
		}
		m.patterns = append(m.patterns, p)
	}
	return m, nil
}

// Match reports whether path matches any configured pattern.
func (m *PathMatcher) Match(path string) bool {
	if m == nil {
		return false
	}
	absolute := strings.HasPrefix(path, "/")
	segments := splitPath(path)
	for _, p := range m.patterns {
		if p.absolute != absolute {
			continue
		}
		if matchSegments(p.segments, segments) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns in configuration order.
func (m *PathMatcher) Patterns() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.patterns))
	for _, p := range m.patterns {
		out = append(out, p.raw)
	}
	return out
}

func compilePattern(raw string) (pathPattern, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return pathPattern{}, fmt.Errorf("empty exempt path pattern")
	}

	p := pathPattern{raw: trimmed, absolute: strings.HasPrefix(trimmed, "/")}
	for _, seg := range splitPath(trimmed) {
		if seg == "**" {
			// consecutive "**" segments behave like one
			if n := len(p.segments); n > 0 && p.segments[n-1].anyDepth {
				continue
			}
			p.segments = append(p.segments, segmentMatcher{anyDepth: true})
			continue
		}
		g, err := glob.Compile(segmentGlob(seg), pathSeparator)
		if err != nil {
			return pathPattern{}, fmt.Errorf("compile exempt path pattern %q: %w", raw, err)
		}
		p.segments = append(p.segments, segmentMatcher{glob: g})
	}
	return p, nil
}

// segmentGlob keeps "*" and "?" as wildcards and quotes every other glob
// metacharacter so "{", "[" and "\" in paths match literally.
func segmentGlob(seg string) string {
	var b strings.Builder
	for _, r := range seg {
		switch r {
		case '*', '?':
			b.WriteRune(r)
		default:
			b.WriteString(glob.QuoteMeta(string(r)))
		}
	}
	return b.String()
}

func splitPath(path string) []string {
	parts := strings.Split(path, string(pathSeparator))
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func matchSegments(pattern []segmentMatcher, path []string) bool {
	for len(pattern) > 0 {
		head := pattern[0]
		if head.anyDepth {
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(path); i++ {
				if matchSegments(rest, path[i:]) {
					return true
				}
			}
			return false
		}
		if len(path) == 0 || !head.glob.Match(path[0]) {
			return false
		}
		pattern, path = pattern[1:], path[1:]
	}
	return len(path) == 0
}
