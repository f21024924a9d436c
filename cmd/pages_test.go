package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePagesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadPageConfigs(t *testing.T) {
	path := writePagesFile(t, `
pages:
  - repo: https://git.example.com/blog.git
    ref: main
    prefix: /blog/
    autoList: true
    updateSecret: s3cret
    maxBytes: 1048576
  - repo: https://git.example.com/site.git
    subfolder: public/
    autoIndex: false
`)

	configs, err := loadPageConfigs(path)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	assert.Equal(t, "https://git.example.com/blog.git", configs[0].Repo)
	assert.Equal(t, "main", configs[0].Ref)
	assert.Equal(t, "/blog/", configs[0].Prefix)
	assert.True(t, configs[0].AutoIndex)
	assert.True(t, configs[0].AutoList)
	assert.Equal(t, "s3cret", configs[0].UpdateSecret)
	assert.Equal(t, int64(1048576), configs[0].MaxBytes)

	assert.Equal(t, "https://git.example.com/site.git", configs[1].Repo)
	assert.Equal(t, "/", configs[1].Prefix)
	assert.Equal(t, "public/", configs[1].Subfolder)
	assert.False(t, configs[1].AutoIndex)
	assert.False(t, configs[1].AutoList)
}

func TestLoadPageConfigsOrder(t *testing.T) {
	path := writePagesFile(t, `
pages:
  - repo: https://git.example.com/a.git
    prefix: /a/
  - repo: https://git.example.com/b.git
    prefix: /b/
  - repo: https://git.example.com/c.git
`)

	configs, err := loadPageConfigs(path)
	require.NoError(t, err)
	require.Len(t, configs, 3)
	assert.Equal(t, "/a/", configs[0].Prefix)
	assert.Equal(t, "/b/", configs[1].Prefix)
	assert.Equal(t, "/", configs[2].Prefix)
}

func TestLoadPageConfigsMissingFile(t *testing.T) {
	_, err := loadPageConfigs(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
