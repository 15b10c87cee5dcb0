package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ctxport/internal/connectors"
	"github.com/custodia-labs/ctxport/internal/connectors/chatgpt"
	"github.com/custodia-labs/ctxport/internal/core/domain"
)

func TestNewRegistry_Builtins(t *testing.T) {
	r, err := NewRegistry(connectors.Env{}, RegistryOptions{})
	require.NoError(t, err)

	var ids []string
	for _, a := range r.Adapters() {
		ids = append(ids, a.ID())
	}
	assert.Equal(t, []string{"chatgpt-ext", "claude-ext", "github", "gemini", "grok", "deepseek"}, ids)
	assert.Len(t, r.GetRegisteredManifests(), 2)
}

func TestRegistry_FindAdapterForURL(t *testing.T) {
	r, err := NewRegistry(connectors.Env{}, RegistryOptions{})
	require.NoError(t, err)

	tests := []struct {
		url  string
		want string
	}{
		{"https://chatgpt.com/c/6790f0e8-aaaa-bbbb-cccc-1234567890ab", "chatgpt-ext"},
		{"https://claude.ai/chat/0d7b1f3e-1111-2222-3333-444455556666", "claude-ext"},
		{"https://github.com/golang/go/issues/1", "github"},
		{"https://github.com/golang/go/pull/2", "github"},
		{"https://gemini.google.com/app/abc123", "gemini"},
		{"https://grok.com/c/abc-1", "grok"},
		{"https://chat.deepseek.com/a/chat/s/abc-1", "deepseek"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			a, ok := r.FindAdapterForURL(tt.url)
			require.True(t, ok)
			assert.Equal(t, tt.want, a.ID())
		})
	}

	a, ok := r.FindAdapterForURL("https://github.com/golang/go")
	require.True(t, ok, "host match is the fallback")
	assert.Equal(t, "github", a.ID())

	_, ok = r.FindAdapterForURL("https://example.com/")
	assert.False(t, ok)
}

func TestRegistry_FindAdapterByHostURL_RegistrationOrder(t *testing.T) {
	r := NewEmptyRegistry(connectors.Env{})
	require.NoError(t, r.Register(&fakeAdapter{id: "first", platform: "p1", host: "chat.test"}))
	require.NoError(t, r.Register(&fakeAdapter{id: "second", platform: "p2", host: "chat.test"}))

	a, ok := r.FindAdapterByHostURL("https://chat.test/anything")
	require.True(t, ok)
	assert.Equal(t, "first", a.ID())
}

func TestRegistry_DuplicateID(t *testing.T) {
	r := NewEmptyRegistry(connectors.Env{})
	require.NoError(t, r.RegisterManifest(chatgpt.Entry()))

	err := r.RegisterManifest(chatgpt.Entry())
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Len(t, r.Adapters(), 1)
	assert.Len(t, r.GetRegisteredManifests(), 1)
}

func TestRegistry_Get(t *testing.T) {
	r, err := NewRegistry(connectors.Env{}, RegistryOptions{})
	require.NoError(t, err)

	a, ok := r.Get("claude-ext")
	require.True(t, ok)
	assert.Equal(t, "claude", a.Platform())

	a, ok = r.Get("chatgpt")
	require.True(t, ok, "platform keys resolve too")
	assert.Equal(t, "chatgpt-ext", a.ID())

	_, ok = r.Get("nope")
	assert.False(t, ok)
}

func TestRegistry_GetRegisteredManifests_IsCopy(t *testing.T) {
	r, err := NewRegistry(connectors.Env{}, RegistryOptions{})
	require.NoError(t, err)

	got := r.GetRegisteredManifests()
	got[0] = nil
	assert.NotNil(t, r.GetRegisteredManifests()[0])
}

func TestRegistry_Platforms(t *testing.T) {
	r, err := NewRegistry(connectors.Env{}, RegistryOptions{})
	require.NoError(t, err)

	infos := r.Platforms()
	require.Len(t, infos, 6)
	assert.Equal(t, domain.PlatformInfo{
		ID: "chatgpt-ext", Name: "ChatGPT", Platform: "chatgpt", Version: "2.0.0",
		Declarative: true, Reliability: "high",
	}, infos[0])
	assert.False(t, infos[2].Declarative)
	assert.Equal(t, "GitHub", infos[2].Name)
}

const extraManifest = `
id: example-ext
version: 0.1.0
name: Example
provider: example
urls:
  host_permissions: ["https://chat.example.com/*"]
  host_patterns: ['^https://chat\.example\.com/']
  conversation_url_patterns: ['^https://chat\.example\.com/c/([a-z0-9]+)']
auth:
  method: none
endpoint:
  url_template: https://chat.example.com/api/{conversationId}
  method: GET
parsing:
  role:
    field: role
    mapping:
      user: user
      bot: assistant
  content:
    messages_path: messages
    text_path: text
injection:
  copy_button:
    selectors: ["header"]
    position: append
  list_item:
    link_selector: a
    id_pattern: '/c/([a-z0-9]+)'
  main_content_selector: main
  sidebar_selector: nav
theme:
  light: {primary: "#000", secondary: "#fff", primary_foreground: "#fff", secondary_foreground: "#000"}
  dark: {primary: "#fff", secondary: "#000", primary_foreground: "#000", secondary_foreground: "#fff"}
conversation_url_template: https://chat.example.com/c/{conversationId}
`

func TestNewRegistry_ManifestDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "example.yaml"), []byte(extraManifest), 0600))

	r, err := NewRegistry(connectors.Env{}, RegistryOptions{ManifestDir: dir})
	require.NoError(t, err)

	a, ok := r.FindAdapterForURL("https://chat.example.com/c/abc")
	require.True(t, ok)
	assert.Equal(t, "example-ext", a.ID())
	assert.Len(t, r.GetRegisteredManifests(), 3)
}

func TestNewRegistry_ManifestDirDuplicate(t *testing.T) {
	dir := t.TempDir()
	dup := []byte(extraManifest)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), dup, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), dup, 0600))

	_, err := NewRegistry(connectors.Env{}, RegistryOptions{ManifestDir: dir})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestNewRegistry_MissingManifestDir(t *testing.T) {
	r, err := NewRegistry(connectors.Env{}, RegistryOptions{ManifestDir: filepath.Join(t.TempDir(), "none")})
	require.NoError(t, err)
	assert.Len(t, r.Adapters(), 6)
}
