package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GITHUB_TOKEN", "")
	// keep a stray .env in the package dir from leaking in
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".barky"), cfg.DataDir)
	assert.Equal(t, filepath.Join(home, ".barky", "bookmarks.db"), cfg.DBPath())
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "https://api.github.com", cfg.GitHub.APIURL)
	assert.Equal(t, 30*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.True(t, cfg.Scraper.Enabled)

	info, err := os.Stat(cfg.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Setenv("BARKY_DATA_DIR", dir)
	t.Setenv("BARKY_GITHUB_TOKEN", "secret")
	t.Setenv("BARKY_GITHUB_TIMEOUT", "5s")
	t.Setenv("BARKY_LLM_PROVIDER", "openai")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "secret", cfg.GitHub.Token)
	assert.Equal(t, 5*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, "openai", cfg.LLM.Provider)
}

func TestLoad_FlagWinsOverEnv(t *testing.T) {
	isolate(t)
	t.Setenv("BARKY_DATA_DIR", t.TempDir())
	flagDir := filepath.Join(t.TempDir(), "nested")

	cfg, err := Load(flagDir)
	require.NoError(t, err)
	assert.Equal(t, flagDir, cfg.DataDir)
	assert.DirExists(t, flagDir)
}

func TestLoad_ConfigFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".barky")
	require.NoError(t, os.MkdirAll(dir, 0755))
	yaml := "db_file: other.db\ngithub:\n  per_page: 50\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "other.db", cfg.DBFile)
	assert.Equal(t, 50, cfg.GitHub.PerPage)
}

func TestLoad_GitHubTokenFallback(t *testing.T) {
	isolate(t)
	t.Setenv("GITHUB_TOKEN", "from-gh")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "from-gh", cfg.GitHub.Token)
}
