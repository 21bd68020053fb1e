package authz_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/transitionkit/pkg/authz"
)

const rolesYAML = `
engineer:
  permissions: [change_notice.submit, change_notice.read]
manager:
  inherits: [engineer]
  permissions: ["change_notice.*"]
`

func TestDecodeRoles(t *testing.T) {
	t.Parallel()

	roles, err := authz.DecodeRoles(strings.NewReader(rolesYAML))
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, []string{"engineer"}, roles["manager"].Inherits)

	empty, err := authz.DecodeRoles(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = authz.DecodeRoles(strings.NewReader("engineer: [unterminated"))
	assert.Error(t, err)
}

func TestFileRoles(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rolesYAML), 0o600))

	policy, err := authz.NewPolicy(context.Background(), authz.FileRoles(path))
	require.NoError(t, err)
	assert.True(t, policy.Can("change_notice.approve", "manager"))
	assert.False(t, policy.Can("change_notice.approve", "engineer"))

	_, err = authz.NewPolicy(context.Background(), authz.FileRoles(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.ErrorIs(t, err, authz.ErrLoadRoles)
}
