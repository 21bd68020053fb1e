package authz

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// MaxInheritanceDepth bounds role inheritance chains.
const MaxInheritanceDepth = 10

const (
	wildcard  = "*"
	delimiter = "."
)

// RoleDefinition grants permissions to a role, directly or through the roles
// it inherits from. Permissions are dot-separated and may end with a
// wildcard ("change_notice.*").
type RoleDefinition struct {
	Permissions []string `yaml:"permissions"`
	Inherits    []string `yaml:"inherits"`
}

// RoleSource loads role definitions, e.g. from configuration or a database.
type RoleSource interface {
	Load(ctx context.Context) (map[string]RoleDefinition, error)
}

// StaticRoles is a RoleSource backed by a fixed map.
type StaticRoles map[string]RoleDefinition

func (s StaticRoles) Load(context.Context) (map[string]RoleDefinition, error) {
	return s, nil
}

// Policy resolves role names to their effective permission sets. It is
// immutable after construction and safe for concurrent use.
type Policy struct {
	permissions map[string][]string
}

// NewPolicy loads roles from source and precomputes inherited permissions.
func NewPolicy(ctx context.Context, source RoleSource) (*Policy, error) {
	roles, err := source.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrLoadRoles, err)
	}

	for name := range roles {
		if err := checkInheritance(name, roles, []string{name}); err != nil {
			return nil, err
		}
	}

	perms := make(map[string][]string, len(roles))
	for name := range roles {
		collected := collectPermissions(name, roles, make(map[string]bool), 0)
		slices.Sort(collected)
		perms[name] = slices.Compact(collected)
	}

	return &Policy{permissions: perms}, nil
}

// Can reports whether any of roles grants permission.
func (p *Policy) Can(permission string, roles ...string) bool {
	for _, r := range roles {
		if HasPermission(p.permissions[r], permission) {
			return true
		}
	}
	return false
}

// Permissions returns the effective permissions of role.
func (p *Policy) Permissions(role string) []string {
	return slices.Clone(p.permissions[role])
}

// Actor returns a caller whose permissions are derived from its roles.
func (p *Policy) Actor(id, name string, roles ...string) *Actor {
	return &Actor{id: id, name: name, roles: slices.Clone(roles), policy: p}
}

// Actor is a caller backed by a Policy. It implements PermissionProber,
// RoleLister and Identity. A nil *Actor has no identity and no grants.
type Actor struct {
	id     string
	name   string
	roles  []string
	policy *Policy
}

func (a *Actor) ActorID() string {
	if a == nil {
		return ""
	}
	return a.id
}

func (a *Actor) ActorName() string {
	if a == nil {
		return ""
	}
	return a.name
}

func (a *Actor) RoleNames() []string {
	if a == nil {
		return nil
	}
	return slices.Clone(a.roles)
}

func (a *Actor) HasPermission(permission string) bool {
	if a == nil || a.policy == nil {
		return false
	}
	return a.policy.Can(permission, a.roles...)
}

// HasPermission reports whether granted contains permission, honouring
// namespace wildcards ("change_notice.*") and the global wildcard ("*").
func HasPermission(granted []string, permission string) bool {
	if permission == "" {
		return false
	}
	for _, g := range granted {
		if matches(permission, g) {
			return true
		}
	}
	return false
}

func matches(permission, pattern string) bool {
	if permission == pattern || pattern == wildcard {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, delimiter+wildcard); ok {
		return strings.HasPrefix(permission, prefix+delimiter)
	}
	return false
}

func collectPermissions(name string, roles map[string]RoleDefinition, visited map[string]bool, depth int) []string {
	if depth > MaxInheritanceDepth || visited[name] {
		return nil
	}
	visited[name] = true

	role, ok := roles[name]
	if !ok {
		return nil
	}

	out := slices.Clone(role.Permissions)
	for _, parent := range role.Inherits {
		out = append(out, collectPermissions(parent, roles, visited, depth+1)...)
	}
	return out
}

func checkInheritance(name string, roles map[string]RoleDefinition, path []string) error {
	if len(path) > MaxInheritanceDepth+1 {
		return fmt.Errorf("%w: depth exceeds %d at %q", ErrCircularInheritance, MaxInheritanceDepth, name)
	}
	for _, parent := range roles[name].Inherits {
		if slices.Contains(path, parent) {
			return fmt.Errorf("%w: %s -> %s", ErrCircularInheritance, name, parent)
		}
		if err := checkInheritance(parent, roles, append(slices.Clone(path), parent)); err != nil {
			return err
		}
	}
	return nil
}
