package domain

import (
	"sort"
)

// Scope is immutable reference data. Tokens store only scope names.
type Scope struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ScopeNames returns the sorted names of the scope map.
func ScopeNames(scopes map[string]Scope) []string {
	names := make([]string, 0, len(scopes))
	for name := range scopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
