package hgweb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialize(t *testing.T) {
	root := t.TempDir()

	path, err := Materialize(root, ConfigOptions{RefreshInterval: 0})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "_web", "hgweb.config"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "[extensions]\nhighlight =")
	assert.Contains(t, content, `encoding = "UTF-8"`)
	assert.Contains(t, content, "baseurl = /hg")
	assert.Contains(t, content, "allow_push = *")
	assert.Contains(t, content, "push_ssl = False")
	assert.Contains(t, content, "allow_archive = gz, zip")
	assert.Contains(t, content, "style = monoblue")
	assert.Contains(t, content, "refreshinterval = 0")
	assert.Contains(t, content, "[paths]\n/ = "+filepath.ToSlash(root)+"/_hg/*")
}

func TestMaterializeOverwrites(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "_web", "hgweb.config")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	_, err := Materialize(root, ConfigOptions{Style: "gitweb", RefreshInterval: 20})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), "style = gitweb")
	assert.Contains(t, string(data), "refreshinterval = 20")
}

func TestMaterializeUnwritableRoot(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "_web")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0644))

	_, err := Materialize(root, ConfigOptions{})
	assert.Error(t, err)
}
