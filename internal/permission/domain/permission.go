// Package domain defines permission models and evaluation logic for action
// authorization.
//
// Permissions are flat strings (e.g., "user.read") held by credentials and
// required by actions. The "*" wildcard grants every permission. There is no
// hierarchy or inheritance: authorization is a plain superset test.
package domain

// Wildcard is the permission that grants access to every action.
const Wildcard = "*"

// Set is an unordered collection of permission strings.
type Set map[string]struct{}

// NewSet builds a Set from a slice of permission strings, dropping duplicates.
func NewSet(permissions []string) Set {
	s := make(Set, len(permissions))
	for _, p := range permissions {
		s[p] = struct{}{}
	}
	return s
}

// Contains reports whether the set holds the given permission.
func (s Set) Contains(permission string) bool {
	_, ok := s[permission]
	return ok
}

// HasWildcard reports whether the set holds the "*" grant.
func (s Set) HasWildcard() bool {
	return s.Contains(Wildcard)
}

// IsSupersetOf reports whether every permission in required is held by s.
func (s Set) IsSupersetOf(required Set) bool {
	for p := range required {
		if !s.Contains(p) {
			return false
		}
	}
	return true
}

// Slice returns the set's permissions as a slice. Order is unspecified.
func (s Set) Slice() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	return out
}

// Allows evaluates a caller's held permissions against a required set.
// An empty required set always allows; a held "*" allows everything;
// otherwise held must be a superset of required.
func Allows(held []string, required []string) bool {
	if len(required) == 0 {
		return true
	}

	heldSet := NewSet(held)
	if heldSet.HasWildcard() {
		return true
	}

	return heldSet.IsSupersetOf(NewSet(required))
}
