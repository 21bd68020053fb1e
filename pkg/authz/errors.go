package authz

import "errors"

var (
	ErrLoadRoles           = errors.New("authz: failed to load roles")
	ErrCircularInheritance = errors.New("authz: circular role inheritance")
)
