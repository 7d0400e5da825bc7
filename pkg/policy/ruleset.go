package policy

// hardDenySources are the built-in deny patterns. They block common secret
// material even when an allow pattern is written too broadly, are identical
// across all RuleSet instances, and cannot be removed or shadowed by any
// user-supplied pattern.
var hardDenySources = []string{
	".env", "**/.env",
	"*.pem", "**/*.pem",
	"*id_rsa*", "**/*id_rsa*",
	".git/**", "**/.git/**",
	".venv/**", "**/.venv/**",
}

// hardDenyPatterns is compiled once at startup and shared by every RuleSet.
var hardDenyPatterns = compileHardDeny()

func compileHardDeny() []*Pattern {
	patterns := make([]*Pattern, 0, len(hardDenySources))
	for _, src := range hardDenySources {
		patterns = append(patterns, MustCompile(src))
	}
	return patterns
}

// HardDenySources returns the built-in deny pattern strings, for
// documentation and diagnostic output.
func HardDenySources() []string {
	out := make([]string, len(hardDenySources))
	copy(out, hardDenySources)
	return out
}

// RuleSet is one immutable, fully-compiled snapshot of the access policy:
// the ordered allow patterns from the allow file plus the process-constant
// hard-deny patterns. A reload produces a wholly new RuleSet; a published
// RuleSet is never mutated, so concurrent readers always see a consistent
// rule list.
type RuleSet struct {
	allow []*Pattern
}

// NewRuleSet creates a RuleSet from compiled allow patterns.
// The slice is owned by the RuleSet afterwards and must not be modified.
func NewRuleSet(allow []*Pattern) *RuleSet {
	return &RuleSet{allow: allow}
}

// EmptyRuleSet returns a RuleSet with no allow patterns: every path that is
// not hard-denied evaluates to "not listed". This is the default-deny state
// used before the first load and when the allow file does not exist.
func EmptyRuleSet() *RuleSet {
	return &RuleSet{}
}

// HardDenied reports whether the normalized relative path matches any
// built-in deny pattern. Hard-deny always takes precedence over allow.
func (rs *RuleSet) HardDenied(relPath string) bool {
	for _, p := range hardDenyPatterns {
		if p.Matches(relPath) {
			return true
		}
	}
	return false
}

// Allowed reports whether the normalized relative path matches any allow
// pattern. Order does not affect the result; the allow list is a union.
func (rs *RuleSet) Allowed(relPath string) bool {
	for _, p := range rs.allow {
		if p.Matches(relPath) {
			return true
		}
	}
	return false
}

// Len returns the number of allow patterns.
func (rs *RuleSet) Len() int {
	return len(rs.allow)
}

// AllowSources returns the allow pattern strings in file order, for
// diagnostic listing.
func (rs *RuleSet) AllowSources() []string {
	out := make([]string, 0, len(rs.allow))
	for _, p := range rs.allow {
		out = append(out, p.String())
	}
	return out
}
