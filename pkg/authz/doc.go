// Package authz decides whether a caller may run a state transition.
//
// Callers come in different shapes, so Check probes for capabilities instead
// of requiring one concrete user type:
//
//   - permissions: PermissionProber (HasPermission) or PermissionLister
//     (Permissions);
//   - roles: RoleProber (HasRole), RoleLister (RoleNames) or
//     RoleObjectLister (Roles returning records with a Name).
//
// Domain user types implement whichever interface is natural for them, or are
// wrapped with Policy.Actor, which derives permissions from role definitions
// with inheritance and dot-separated wildcards:
//
//	policy, err := authz.NewPolicy(ctx, authz.StaticRoles{
//	    "engineer": {Permissions: []string{"change_notice.submit"}},
//	    "manager":  {Permissions: []string{"change_notice.*"}, Inherits: []string{"engineer"}},
//	})
//	actor := policy.Actor("u-1", "Alice", "manager")
//	ok, reason := authz.Check(actor, "change_notice.approve", "")
//
// Results are never cached.
package authz
