package policy

import (
	"fmt"
	"path"
	"strings"
)

// segmentKind identifies how one pattern segment matches a path segment.
type segmentKind int

const (
	// segLiteral matches only an identical path segment.
	segLiteral segmentKind = iota

	// segGlob matches exactly one path segment using shell-style glob rules
	// (*, ?, character classes). It never crosses a "/".
	segGlob

	// segRecursive is a whole-segment "**" and matches zero or more path
	// segments at any depth.
	segRecursive
)

// segment is one compiled element of a Pattern.
type segment struct {
	kind segmentKind
	text string
}

func (s segment) matches(part string) bool {
	switch s.kind {
	case segLiteral:
		return s.text == part
	case segGlob:
		// The glob was validated at compile time, so path.Match cannot fail.
		ok, _ := path.Match(s.text, part)
		return ok
	default:
		return false
	}
}

// Pattern is one compiled allow or deny pattern: an ordered sequence of
// segment matchers split on "/". Matching is case-sensitive and segment-wise:
// a single-segment glob such as "*.py" matches exactly one segment, while a
// whole-segment "**" matches any number of segments including zero. So
// "src/**" matches "src" itself and anything below it at any depth, while
// "docs/*.md" matches only direct children of docs/.
//
// A Pattern is immutable once compiled and safe for concurrent use.
type Pattern struct {
	raw      string
	segments []segment
}

// Compile parses a single pattern string into a Pattern.
// The pattern must be a relative, forward-slash-separated path pattern:
// absolute patterns, empty patterns, and empty segments ("a//b", trailing
// slashes) are rejected, as are segments with malformed glob syntax such as
// an unclosed character class.
func Compile(raw string) (*Pattern, error) {
	if raw == "" {
		return nil, &ParseError{Pattern: raw, Message: "pattern is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		return nil, &ParseError{Pattern: raw, Message: "pattern must be relative (no leading slash)"}
	}

	parts := strings.Split(raw, "/")
	segments := make([]segment, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			return nil, &ParseError{Pattern: raw, Message: "pattern contains an empty segment"}
		}

		if part == "**" {
			// Consecutive "**" segments collapse into a single recursive match.
			if n := len(segments); n > 0 && segments[n-1].kind == segRecursive {
				continue
			}
			segments = append(segments, segment{kind: segRecursive})
			continue
		}

		if strings.ContainsAny(part, "*?[") {
			// Validate the glob syntax once here so matching never errors.
			if _, err := path.Match(part, ""); err != nil {
				return nil, &ParseError{
					Pattern: raw,
					Message: fmt.Sprintf("malformed glob segment %q", part),
					Cause:   err,
				}
			}
			segments = append(segments, segment{kind: segGlob, text: part})
			continue
		}

		segments = append(segments, segment{kind: segLiteral, text: part})
	}

	return &Pattern{raw: raw, segments: segments}, nil
}

// MustCompile compiles a pattern and panics on error.
// It is intended for the built-in hard-deny patterns, which are constants.
func MustCompile(raw string) *Pattern {
	p, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the original pattern text.
func (p *Pattern) String() string {
	return p.raw
}

// Matches reports whether the pattern matches the given relative path.
// The path must already be normalized: forward-slash-separated, no leading
// "/", no "." or ".." segments (the gate normalizes before matching).
func (p *Pattern) Matches(relPath string) bool {
	if relPath == "" || relPath == "." {
		return false
	}
	return matchSegments(p.segments, strings.Split(relPath, "/"))
}

// matchSegments matches pattern segments against path segments.
// Recursive segments backtrack over every possible split point; since
// consecutive "**" collapse at compile time the recursion depth is bounded
// by the number of recursive segments in the pattern.
func matchSegments(segs []segment, parts []string) bool {
	for len(segs) > 0 {
		s := segs[0]

		if s.kind == segRecursive {
			// A trailing "**" matches everything that remains, including
			// nothing at all.
			if len(segs) == 1 {
				return true
			}
			for i := 0; i <= len(parts); i++ {
				if matchSegments(segs[1:], parts[i:]) {
					return true
				}
			}
			return false
		}

		if len(parts) == 0 || !s.matches(parts[0]) {
			return false
		}
		segs = segs[1:]
		parts = parts[1:]
	}

	return len(parts) == 0
}
