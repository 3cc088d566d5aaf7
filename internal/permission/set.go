// Package permission resolves the effective permission set of admin operators and sellers.
// Everything here is pure: no I/O, no shared state.
package permission

import (
	"sort"

	"authgate/internal/model"
)

// Set is a de-duplicated, order-independent collection of permission codes.
type Set map[string]struct{}

// NewSet builds a Set from codes, skipping empty strings.
func NewSet(codes ...string) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

func (s Set) Add(code string) {
	if code == "" {
		return
	}
	s[code] = struct{}{}
}

// Contains reports whether code is literally present.
func (s Set) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

// IsAll reports whether the set carries the wildcard.
func (s Set) IsAll() bool {
	return s.Contains(model.PermissionWildcard)
}

// Allows reports whether code is granted, honoring the wildcard.
func (s Set) Allows(code string) bool {
	return s.IsAll() || s.Contains(code)
}

func (s Set) Len() int { return len(s) }

// Equal compares two sets as sets.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for c := range s {
		if !other.Contains(c) {
			return false
		}
	}
	return true
}

// Slice returns the codes sorted, so serialized output is stable.
func (s Set) Slice() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
