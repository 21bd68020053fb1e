package authz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FileRoles is a RoleSource that reads a YAML document keyed by role name:
//
//	engineer:
//	  permissions: [change_notice.submit, change_notice.read]
//	manager:
//	  inherits: [engineer]
//	  permissions: [change_notice.*]
type FileRoles string

func (f FileRoles) Load(context.Context) (map[string]RoleDefinition, error) {
	file, err := os.Open(string(f))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return DecodeRoles(file)
}

// DecodeRoles parses role definitions from YAML. An empty document yields
// no roles.
func DecodeRoles(r io.Reader) (map[string]RoleDefinition, error) {
	roles := make(map[string]RoleDefinition)
	if err := yaml.NewDecoder(r).Decode(&roles); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode roles: %w", err)
	}
	return roles, nil
}
