package authz

// PermissionProber is an actor that answers permission questions itself.
// Its answer is authoritative; a panic counts as a denial.
type PermissionProber interface {
	HasPermission(permission string) bool
}

// PermissionLister is an actor that exposes its granted permissions.
type PermissionLister interface {
	Permissions() []string
}

// RoleProber is an actor that answers role questions itself.
type RoleProber interface {
	HasRole(role string) bool
}

// RoleLister is an actor that exposes its role names.
type RoleLister interface {
	RoleNames() []string
}

// RoleObjectLister is an actor that exposes role records; membership is
// tested against their names.
type RoleObjectLister interface {
	Roles() []Role
}

// Role is a role record carried by an actor.
type Role struct {
	ID   string
	Name string
}

// Identity is implemented by actors that can be named in audit rows and
// notification messages.
type Identity interface {
	ActorID() string
	ActorName() string
}

// Identify returns the actor's id and display name when it implements
// Identity, and empty strings otherwise. A panicking Identity yields empty
// strings.
func Identify(actor any) (id, name string) {
	if isNil(actor) {
		return "", ""
	}
	ident, ok := actor.(Identity)
	if !ok {
		return "", ""
	}
	defer func() {
		if r := recover(); r != nil {
			id, name = "", ""
		}
	}()
	return ident.ActorID(), ident.ActorName()
}
