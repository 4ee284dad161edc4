// Package keyspace implements the flat cns/... key schema's positional
// parsing and glob-style filtering over a map of keys (§4.2).
package keyspace

import (
	"regexp"
	"strings"
	"sync"
)

// Root is the namespace root every in-scope key starts with.
const Root = "cns"

// Split breaks a key into its '/'-delimited segments. Positions are fixed
// by the schema in §3 — callers index parts[i] directly.
func Split(key string) []string {
	return strings.Split(key, "/")
}

// InScope reports whether key belongs to the cns namespace and names a
// network (root present, network segment present).
func InScope(key string) bool {
	parts := Split(key)
	return len(parts) >= 2 && parts[0] == Root && parts[1] != ""
}

var (
	patternCache   = map[string]*regexp.Regexp{}
	patternCacheMu sync.Mutex
)

// compile turns one glob segment into an anchored, case-insensitive regexp.
// '*' expands to '.*'; every other regex metacharacter is escaped first so
// a literal segment like "version1" matches only itself.
func compile(segment string) *regexp.Regexp {
	patternCacheMu.Lock()
	defer patternCacheMu.Unlock()

	if re, ok := patternCache[segment]; ok {
		return re
	}

	var b strings.Builder
	b.WriteString("(?i)^")
	for _, r := range segment {
		if r == '*' {
			b.WriteString(".*")
		} else {
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	re := regexp.MustCompile(b.String())
	patternCache[segment] = re
	return re
}

// Matches reports whether key matches pattern: same segment count, each
// segment matching under glob semantics. '*' matches within a single
// segment only — there is no recursive wildcard.
func Matches(key, pattern string) bool {
	keyParts := Split(key)
	patternParts := Split(pattern)
	if len(keyParts) != len(patternParts) {
		return false
	}
	for i, p := range patternParts {
		if !compile(p).MatchString(keyParts[i]) {
			return false
		}
	}
	return true
}

// Filter returns the subset of m whose keys match pattern (§4.2).
func Filter(m map[string]string, pattern string) map[string]string {
	out := make(map[string]string)
	for k, v := range m {
		if Matches(k, pattern) {
			out[k] = v
		}
	}
	return out
}
