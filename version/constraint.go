package version

import "strings"

// constraintOps lists recognized operator prefixes, longest first so that
// e.g. ">=" is matched before ">".
var constraintOps = []string{">=", "<=", "^", "~", ">", "<", "="}

// splitConstraint separates the leading operator from the version literal.
// An operator-less string is treated as "=", per spec grammar; any other
// characters before the first digit are returned as an unrecognized
// operator, which CheckVersion evaluates as equality.
func splitConstraint(s string) (op, rest string) {
	s = strings.TrimSpace(s)
	for _, o := range constraintOps {
		if strings.HasPrefix(s, o) {
			return o, strings.TrimSpace(s[len(o):])
		}
	}
	if idx := strings.IndexAny(s, "0123456789"); idx > 0 {
		return strings.TrimSpace(s[:idx]), s[idx:]
	}
	return "=", s
}

// CheckVersion evaluates a constraint string against actual, applying
// strategy to both sides before comparison. An empty constraint matches
// anything. An unrecognized operator falls back to equality, per spec.
func CheckVersion(actual Version, constraint string, strategy CompareStrategy) bool {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" {
		return true
	}
	op, rest := splitConstraint(constraint)
	target, err := Parse(rest)
	if err != nil {
		return false
	}

	switch op {
	case "^":
		// Same major, and actual >= target.
		return actual.Major == target.Major && actual.CompareWith(target, strategy) >= 0
	case "~":
		// Same major and minor, and actual >= target.
		return actual.Major == target.Major && actual.Minor == target.Minor &&
			actual.CompareWith(target, strategy) >= 0
	case ">":
		return actual.CompareWith(target, strategy) > 0
	case "<":
		return actual.CompareWith(target, strategy) < 0
	case ">=":
		return actual.CompareWith(target, strategy) >= 0
	case "<=":
		return actual.CompareWith(target, strategy) <= 0
	case "=":
		return actual.CompareWith(target, strategy) == 0
	default:
		return actual.CompareWith(target, strategy) == 0
	}
}
