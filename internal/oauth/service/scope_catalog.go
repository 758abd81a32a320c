package service

import (
	"fmt"
	"sort"
	"strings"

	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
)

type scopeCatalog struct {
	scopes   map[string]oauthDomain.Scope
	defaults []oauthDomain.Scope
}

func (c *scopeCatalog) Get(name string) (oauthDomain.Scope, bool) {
	scope, ok := c.scopes[name]
	return scope, ok
}

func (c *scopeCatalog) Defaults() []oauthDomain.Scope {
	defaults := make([]oauthDomain.Scope, len(c.defaults))
	copy(defaults, c.defaults)
	return defaults
}

func (c *scopeCatalog) All() []oauthDomain.Scope {
	all := make([]oauthDomain.Scope, 0, len(c.scopes))
	for _, scope := range c.scopes {
		all = append(all, scope)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// ParseScopes parses "name=description" pairs separated by ";".
// A pair without "=" defines a scope with an empty description.
func ParseScopes(definition string) ([]oauthDomain.Scope, error) {
	var scopes []oauthDomain.Scope
	seen := make(map[string]struct{})

	for _, pair := range strings.Split(definition, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		name, description, _ := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("scope definition %q has an empty name", pair)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("scope %q is defined more than once", name)
		}
		seen[name] = struct{}{}

		scopes = append(scopes, oauthDomain.Scope{
			Name:        name,
			Description: strings.TrimSpace(description),
		})
	}

	return scopes, nil
}

// NewScopeCatalog creates a catalog. Every default scope must be defined.
func NewScopeCatalog(scopes []oauthDomain.Scope, defaultNames []string) (ScopeCatalog, error) {
	catalog := &scopeCatalog{
		scopes: make(map[string]oauthDomain.Scope, len(scopes)),
	}
	for _, scope := range scopes {
		catalog.scopes[scope.Name] = scope
	}

	for _, name := range defaultNames {
		scope, ok := catalog.scopes[name]
		if !ok {
			return nil, fmt.Errorf("default scope %q is not defined", name)
		}
		catalog.defaults = append(catalog.defaults, scope)
	}

	return catalog, nil
}
