package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ctxport/internal/adapters/driven/config/memory"
	"github.com/custodia-labs/ctxport/internal/core/domain"
)

func TestSettingsService_Get_Defaults(t *testing.T) {
	t.Setenv(EnvGitHubToken, "")
	t.Setenv(EnvManifestDir, "")
	svc := NewSettingsService(memory.NewConfigStore())

	settings, err := svc.Get()
	require.NoError(t, err)

	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Format, settings.Format)
	assert.True(t, settings.Frontmatter)
	assert.Equal(t, defaults.BatchInterval, settings.BatchInterval)
	assert.Empty(t, settings.Sessions)
}

func TestSettingsService_Get_StoredValues(t *testing.T) {
	t.Setenv(EnvGitHubToken, "")
	t.Setenv(EnvManifestDir, "")
	store := memory.NewConfigStore()
	_ = store.Set("format", "code-only")
	_ = store.Set("frontmatter", false)
	_ = store.Set("batch_interval_ms", int64(1500))
	_ = store.Set("manifest_dir", "/etc/ctxport/manifests")
	_ = store.Set("github_token", "ghp_file")

	settings, err := NewSettingsService(store).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.FormatCodeOnly, settings.Format)
	assert.False(t, settings.Frontmatter)
	assert.Equal(t, 1500*time.Millisecond, settings.BatchInterval)
	assert.Equal(t, "/etc/ctxport/manifests", settings.ManifestDir)
	assert.Equal(t, "ghp_file", settings.GitHubToken)
}

func TestSettingsService_Get_EnvOverrides(t *testing.T) {
	t.Setenv(EnvGitHubToken, "ghp_env")
	t.Setenv(EnvManifestDir, "/env/manifests")
	store := memory.NewConfigStore()
	_ = store.Set("github_token", "ghp_file")

	settings, err := NewSettingsService(store).Get()
	require.NoError(t, err)

	assert.Equal(t, "ghp_env", settings.GitHubToken)
	assert.Equal(t, "/env/manifests", settings.ManifestDir)
}

func TestSettingsService_Get_InvalidFormat(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("format", "verbose")

	_, err := NewSettingsService(store).Get()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Get_Sessions(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("sessions.claude.cookies", "lastActiveOrg=org-1")
	_ = store.Set("sessions.github.html_file", "/pages/github.html")
	_ = store.Set("sessions.deepseek.local_storage.userToken", `{"value":"tok"}`)

	svc := NewSettingsService(store)
	svc.readFile = func(path string) ([]byte, error) {
		assert.Equal(t, "/pages/github.html", path)
		return []byte(`<meta name="user-login" content="octocat">`), nil
	}

	settings, err := svc.Get()
	require.NoError(t, err)

	require.Len(t, settings.Sessions, 3)
	assert.Equal(t, "lastActiveOrg=org-1", settings.Sessions["claude"].Cookies)
	assert.Contains(t, settings.Sessions["github"].HTML, "octocat")
	tok, ok := settings.Sessions["deepseek"].Storage("userToken")
	assert.True(t, ok)
	assert.Equal(t, `{"value":"tok"}`, tok)
}

func TestSettingsService_Get_UnreadableHTML(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("sessions.github.html_file", "/missing.html")

	svc := NewSettingsService(store)
	svc.readFile = func(string) ([]byte, error) { return nil, errors.New("no such file") }

	_, err := svc.Get()
	assert.ErrorContains(t, err, "session github")
}
