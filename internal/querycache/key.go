package querycache

import (
	"sort"
	"strings"
)

// Key identifies a cache entry. Keys are hierarchical: a books list key looks
// like ["books", "list", "genre=fiction&page=2"], a notes key like
// ["notes", "42"]. Two keys with the same canonical form address the same
// entry. Prefix matching over the segments drives invalidation: invalidating
// ["notes", "42"] hits every entry under that book regardless of extra
// segments.
type Key []string

// NewKey builds a key from path segments.
func NewKey(parts ...string) Key {
	return Key(parts)
}

// WithParams appends a canonical parameter segment. Parameters are sorted by
// name and empty values are dropped, so equivalent parameter sets always
// produce the same key.
func (k Key) WithParams(params map[string]string) Key {
	names := make([]string, 0, len(params))
	for name, value := range params {
		if value != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}

	out := make(Key, len(k), len(k)+1)
	copy(out, k)
	return append(out, strings.Join(pairs, "&"))
}

// String returns the canonical form of the key.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether prefix matches the leading segments of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, part := range prefix {
		if k[i] != part {
			return false
		}
	}
	return true
}
