package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, testManifest("https://api.test").Validate())
	})

	tests := []struct {
		name   string
		mutate func(m *Manifest)
		want   string
	}{
		{"bad version", func(m *Manifest) { m.Version = "v1" }, "not semver"},
		{"no patterns", func(m *Manifest) { m.URLs.ConversationURLPatterns = nil }, "conversation URL pattern"},
		{"two groups", func(m *Manifest) {
			m.URLs.ConversationURLPatterns = []Pattern{MustPattern(`^(a)/(b)`)}
		}, "exactly one capture group"},
		{"auth method", func(m *Manifest) { m.Auth.Method = "magic" }, "unknown auth method"},
		{"bearer without endpoint", func(m *Manifest) { m.Auth.Method = AuthBearerFromAPI }, "session_endpoint"},
		{"http method", func(m *Manifest) { m.Endpoint.Method = "PUT" }, "GET or POST"},
		{"mapping", func(m *Manifest) { m.Parsing.Role.Mapping["tool"] = "robot" }, "unknown value"},
		{"position", func(m *Manifest) { m.Injection.CopyButton.Position = "inside" }, "injection position"},
		{"sort order", func(m *Manifest) { m.Parsing.Content.SortOrder = "random" }, "asc or desc"},
		{"url template", func(m *Manifest) { m.ConversationURLTemplate = "https://x" }, "{conversationId}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testManifest("https://api.test")
			tt.mutate(m)
			err := m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

const yamlManifest = `
id: forum-ext
version: 1.2.0
name: Forum
provider: forum
assistant_name: Bot
urls:
  host_permissions: ["https://forum.test/*"]
  host_patterns: ['^https://forum\.test/']
  conversation_url_patterns: ['^https://forum\.test/t/(\d+)']
auth:
  method: none
endpoint:
  url_template: https://forum.test/api/t/{conversationId}
  method: GET
  query_params:
    view: full
  credentials: include
  cache: no-store
parsing:
  role:
    field: author.kind
    mapping:
      member: user
      bot: assistant
      mod: skip
  content:
    messages_path: posts
    sort_field: id
    sort_order: asc
    text_path: body
    title_path: topic
injection:
  copy_button:
    selectors: ["header .actions"]
    position: append
  list_item:
    link_selector: a.topic
    id_pattern: '/t/(\d+)'
theme:
  light:
    primary: "#000"
    secondary: "#fff"
    primary_foreground: "#fff"
    secondary_foreground: "#000"
filters:
  skip_when:
    - field: hidden
      equals: true
    - field: kind
      matches_pattern: "^sys"
meta:
  reliability: medium
conversation_url_template: https://forum.test/t/{conversationId}
`

func TestParseYAML(t *testing.T) {
	m, err := Parse([]byte(yamlManifest))
	require.NoError(t, err)

	assert.Equal(t, "forum-ext", m.ID)
	assert.Equal(t, "Bot", m.assistantName())
	assert.Equal(t, MapSkip, m.Parsing.Role.Mapping["mod"])
	assert.True(t, m.URLs.ConversationURLPatterns[0].MatchString("https://forum.test/t/42"))
	assert.Equal(t, true, m.Filters.SkipWhen[0].Equals)
	assert.Equal(t, PositionAppend, m.Injection.CopyButton.Position)
	assert.Equal(t, "medium", m.Meta.Reliability)

	out, err := Marshal(m)
	require.NoError(t, err)
	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, m.URLs.ConversationURLPatterns[0].String(), again.URLs.ConversationURLPatterns[0].String())
}

func TestParseYAML_Errors(t *testing.T) {
	_, err := Parse([]byte("id: x\nunknown_field: 1\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("id: x\nurls:\n  host_patterns: ['(']\n"))
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(yamlManifest), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	ms, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "forum-ext", ms[0].ID)

	ms, err = LoadDir(filepath.Join(dir, "missing"))
	assert.NoError(t, err)
	assert.Empty(t, ms)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), []byte("id: broken\n"), 0o600))
	_, err = LoadDir(dir)
	assert.ErrorContains(t, err, "a.yml")
}
