package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	AppName string `default:"gitcal"`
	Local   string `default:"file:"`
	Server  struct {
		Port string        `default:"3000"`
		Idle time.Duration `default:"30s"`
	}
	Repo struct {
		URL string `required:"true"`
	}
	Debug bool
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsAndYAML(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "config.yml", "repo:\n  url: https://github.com/a/b\nserver:\n  port: \"8080\"\n")

	var cfg testConfig
	c := New(&Settings{Environment: "test", ENVPrefix: "GITCAL_T1"})
	require.NoError(t, c.Load(&cfg, file))

	assert.Equal(t, "gitcal", cfg.AppName)
	assert.Equal(t, "file:", cfg.Local)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.Idle)
	assert.Equal(t, "https://github.com/a/b", cfg.Repo.URL)
}

func TestLoadEnvironmentFileOverrides(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "config.yml", "repo:\n  url: base\n")
	writeFile(t, dir, "config.production.yml", "repo:\n  url: prod\n")

	var cfg testConfig
	require.NoError(t, New(&Settings{Environment: "production", ENVPrefix: "GITCAL_T2"}).Load(&cfg, file))
	assert.Equal(t, "prod", cfg.Repo.URL)
}

func TestLoadExampleFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.example.yml", "repo:\n  url: example\n")

	var cfg testConfig
	require.NoError(t, New(&Settings{Environment: "test", ENVPrefix: "GITCAL_T3"}).Load(&cfg, filepath.Join(dir, "config.yml")))
	assert.Equal(t, "example", cfg.Repo.URL)
}

func TestLoadTOMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	tomlFile := writeFile(t, dir, "config.toml", "AppName = \"from toml\"\n[Repo]\nURL = \"toml\"\n")
	jsonFile := writeFile(t, dir, "config.json", `{"Repo": {"URL": "json"}}`)

	var cfg testConfig
	require.NoError(t, New(&Settings{Environment: "test", ENVPrefix: "GITCAL_T4"}).Load(&cfg, jsonFile, tomlFile))
	assert.Equal(t, "from toml", cfg.AppName)
	assert.Equal(t, "json", cfg.Repo.URL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GITCAL_T5_SERVER_PORT", "9999")
	t.Setenv("GITCAL_T5_DEBUG", "true")
	t.Setenv("GITCAL_T5_REPO_URL", "file:.")

	var cfg testConfig
	require.NoError(t, New(&Settings{Environment: "test", ENVPrefix: "GITCAL_T5"}).Load(&cfg))
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "file:.", cfg.Repo.URL)
}

func TestLoadRequired(t *testing.T) {
	var cfg testConfig
	err := New(&Settings{Environment: "test", ENVPrefix: "GITCAL_T6"}).Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL is required")
}

func TestLoadStrictTOML(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "config.toml", "Unknown = 1\n[Repo]\nURL = \"x\"\n")

	var cfg testConfig
	err := New(&Settings{Environment: "test", ENVPrefix: "GITCAL_T7", ErrorOnUnmatchedKeys: true}).Load(&cfg, file)
	var unmatched *UnmatchedTomlKeysError
	assert.ErrorAs(t, err, &unmatched)
}

func TestLoadRejectsNonPointer(t *testing.T) {
	assert.Error(t, New(nil).Load(testConfig{}))
}

func TestGetEnvironment(t *testing.T) {
	assert.Equal(t, "staging", New(&Settings{Environment: "staging"}).GetEnvironment())

	t.Setenv("CONFIG_ENV", "")
	assert.Equal(t, "test", New(nil).GetEnvironment())
}
