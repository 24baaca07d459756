package localstate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHome_UsesSocialHome(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	t.Setenv(HomeEnv, dir)

	got, err := Home()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(homePerm), info.Mode().Perm())
}

func TestSQLitePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, home)

	p, err := SQLitePath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "social.db"), p)

	p, err = SQLitePath("/var/lib/social/custom.db")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/social/custom.db", p)
}
