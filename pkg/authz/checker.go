package authz

import (
	"fmt"
	"reflect"
	"slices"
)

// Denial reasons returned by Check.
const (
	ReasonNoActor          = "no actor provided"
	ReasonUnsupportedShape = "capability shape not supported"
)

// Checker evaluates permission and role requirements. It is stateless and
// recomputes every answer, since an actor's capabilities may change between
// calls.
type Checker struct{}

// Check implements the state machine's Authorizer interface.
func (Checker) Check(actor any, permission, role string) (bool, string) {
	return Check(actor, permission, role)
}

// Check reports whether actor satisfies the required permission and role.
// Empty requirements always pass; when both are set both must pass.
func Check(actor any, permission, role string) (bool, string) {
	if permission == "" && role == "" {
		return true, ""
	}
	if isNil(actor) {
		return false, ReasonNoActor
	}

	if permission != "" {
		if ok, reason := checkPermission(actor, permission); !ok {
			return false, reason
		}
	}

	if role != "" {
		if ok, reason := checkRole(actor, role); !ok {
			return false, reason
		}
	}

	return true, ""
}

func checkPermission(actor any, permission string) (bool, string) {
	switch a := actor.(type) {
	case PermissionProber:
		ok, err := probe(func() bool { return a.HasPermission(permission) })
		if err != nil {
			return false, fmt.Sprintf("permission check failed: %v", err)
		}
		if !ok {
			return false, fmt.Sprintf("missing permission %q", permission)
		}
		return true, ""
	case PermissionLister:
		granted, err := probe(a.Permissions)
		if err != nil {
			return false, fmt.Sprintf("permission check failed: %v", err)
		}
		if !HasPermission(granted, permission) {
			return false, fmt.Sprintf("missing permission %q", permission)
		}
		return true, ""
	default:
		return false, ReasonUnsupportedShape
	}
}

func checkRole(actor any, role string) (bool, string) {
	switch a := actor.(type) {
	case RoleProber:
		ok, err := probe(func() bool { return a.HasRole(role) })
		if err != nil {
			return false, fmt.Sprintf("role check failed: %v", err)
		}
		if !ok {
			return false, fmt.Sprintf("missing role %q", role)
		}
		return true, ""
	case RoleLister:
		names, err := probe(a.RoleNames)
		if err != nil {
			return false, fmt.Sprintf("role check failed: %v", err)
		}
		if !slices.Contains(names, role) {
			return false, fmt.Sprintf("missing role %q", role)
		}
		return true, ""
	case RoleObjectLister:
		roles, err := probe(a.Roles)
		if err != nil {
			return false, fmt.Sprintf("role check failed: %v", err)
		}
		if !slices.ContainsFunc(roles, func(r Role) bool { return r.Name == role }) {
			return false, fmt.Sprintf("missing role %q", role)
		}
		return true, ""
	default:
		return false, ReasonUnsupportedShape
	}
}

// probe runs a capability callback, converting a panic into an error.
func probe[T any](fn func() T) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(), nil
}

// isNil reports whether actor is nil or a nil value boxed in an interface.
func isNil(actor any) bool {
	if actor == nil {
		return true
	}
	v := reflect.ValueOf(actor)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
