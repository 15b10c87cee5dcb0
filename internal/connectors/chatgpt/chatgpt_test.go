package chatgpt

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ctxport/internal/connectors"
	"github.com/custodia-labs/ctxport/internal/connectors/manifest"
	"github.com/custodia-labs/ctxport/internal/core/domain"
)

const conversationFixture = `{
  "title": "Cats and images",
  "current_node": "a2",
  "mapping": {
    "root": {"id": "root", "message": null, "parent": null},
    "sys": {"id": "sys", "parent": "root", "message": {"author": {"role": "system"}, "create_time": 0.5,
      "content": {"content_type": "text", "parts": ["You are helpful"]}}},
    "u1": {"id": "u1", "parent": "sys", "message": {"author": {"role": "user"}, "create_time": 1,
      "content": {"content_type": "text", "parts": ["Hello there"]}}},
    "a1": {"id": "a1", "parent": "u1", "message": {"author": {"role": "assistant"}, "create_time": 2,
      "content": {"content_type": "text", "parts": ["Hi there【3†source】."]}}},
    "a1b": {"id": "a1b", "parent": "u1", "message": {"author": {"role": "assistant"}, "create_time": 3,
      "content": {"content_type": "text", "parts": ["Abandoned branch"]}}},
    "u2": {"id": "u2", "parent": "a1", "message": {"author": {"role": "user"}, "create_time": 4,
      "content": {"content_type": "multimodal_text", "parts": [{"content_type": "image_asset_pointer"}, "What is this?"]}}},
    "t1": {"id": "t1", "parent": "u2", "message": {"author": {"role": "assistant"}, "create_time": 5,
      "content": {"content_type": "thoughts", "thoughts": []}}},
    "h1": {"id": "h1", "parent": "t1", "message": {"author": {"role": "assistant"}, "create_time": 5.5,
      "metadata": {"is_visually_hidden_from_conversation": true},
      "content": {"content_type": "text", "parts": ["hidden"]}}},
    "a2": {"id": "a2", "parent": "h1", "message": {"author": {"role": "assistant"}, "create_time": 6,
      "content": {"content_type": "text", "parts": ["It is a cat."]}}}
  }
}`

func newServer(t *testing.T, conversation string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/session", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sid=1", r.Header.Get("Cookie"))
		fmt.Fprint(w, `{"accessToken": "tok-1", "expires": "2099-01-01T00:00:00Z"}`)
	})
	mux.HandleFunc("/backend-api/conversation/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		fmt.Fprint(w, conversation)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newAdapter(t *testing.T, base string) *manifest.Adapter {
	t.Helper()
	m := Manifest()
	m.Auth.SessionEndpoint = base + "/api/auth/session"
	m.Endpoint.URLTemplate = base + "/backend-api/conversation/{conversationId}"

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a, err := manifest.New(m, Hooks(), connectors.Env{Now: func() time.Time { return now }})
	require.NoError(t, err)
	return a
}

func TestManifestValidates(t *testing.T) {
	require.NoError(t, Manifest().Validate())
	assert.NotSame(t, Manifest(), Manifest())
}

func TestParse_FollowsCurrentBranch(t *testing.T) {
	srv := newServer(t, conversationFixture)
	a := newAdapter(t, srv.URL)

	b, err := a.Parse(context.Background(), domain.Page{
		URL:     "https://chatgpt.com/c/abc-123",
		Cookies: "sid=1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Cats and images", b.Title)
	require.Len(t, b.Nodes, 4)
	assert.Equal(t, "Hello there", b.Nodes[0].Content)
	assert.Equal(t, "Hi there.", b.Nodes[1].Content)
	assert.Equal(t, "[Image]\nWhat is this?", b.Nodes[2].Content)
	assert.Equal(t, "It is a cat.", b.Nodes[3].Content)
	assert.Equal(t, "user", b.Nodes[0].ParticipantID)
	assert.Equal(t, "assistant", b.Nodes[3].ParticipantID)
	assistant, ok := b.Participant("assistant")
	require.True(t, ok)
	assert.Equal(t, "ChatGPT", assistant.Name)
	assert.Equal(t, "chatgpt", b.Source.Platform)
	assert.Equal(t, "chatgpt-ext", b.Source.PluginID)
}

func TestParse_CycleIsMalformed(t *testing.T) {
	srv := newServer(t, `{"current_node": "a", "mapping": {
		"a": {"id": "a", "parent": "b", "message": null},
		"b": {"id": "b", "parent": "a", "message": null}}}`)
	a := newAdapter(t, srv.URL)

	_, err := a.Parse(context.Background(), domain.Page{URL: "https://chatgpt.com/c/x", Cookies: "sid=1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestParse_NoMessages(t *testing.T) {
	srv := newServer(t, `{"title": "Empty", "mapping": {}}`)
	a := newAdapter(t, srv.URL)

	_, err := a.Parse(context.Background(), domain.Page{URL: "https://chatgpt.com/c/x", Cookies: "sid=1"})
	assert.ErrorIs(t, err, domain.ErrEmptyResult)
}

func TestCanHandle(t *testing.T) {
	a := newAdapter(t, "https://example.invalid")

	assert.True(t, a.CanHandle("https://chatgpt.com/c/abc-123"))
	assert.True(t, a.CanHandle("https://chat.openai.com/c/abc"))
	assert.False(t, a.CanHandle("https://chatgpt.com/"))
	assert.True(t, a.MatchesHost("https://CHATGPT.com/gpts"))
	assert.False(t, a.MatchesHost("https://claude.ai/chat/1"))
}

func TestLinearize_FallbackSortsByCreation(t *testing.T) {
	mapping := map[string]any{
		"b": map[string]any{"id": "b", "message": map[string]any{"create_time": 2.0}},
		"a": map[string]any{"id": "a", "message": map[string]any{"create_time": 1.0}},
		"c": map[string]any{"id": "c", "message": map[string]any{"create_time": 3.0}},
		"x": map[string]any{"message": map[string]any{"create_time": 0.0}},
	}

	ids, err := Linearize(mapping, "missing")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestFlattenContent(t *testing.T) {
	tests := []struct {
		name    string
		content map[string]any
		want    string
	}{
		{
			name:    "text parts",
			content: map[string]any{"content_type": "text", "parts": []any{"one", "", "two"}},
			want:    "one\ntwo",
		},
		{
			name:    "execution output",
			content: map[string]any{"content_type": "execution_output", "text": "42\n"},
			want:    "```\n42\n```",
		},
		{
			name:    "quote",
			content: map[string]any{"content_type": "tether_quote", "title": "Doc", "text": "a\nb"},
			want:    "> **Doc**\n> a\n> b",
		},
		{
			name:    "browsing display",
			content: map[string]any{"content_type": "tether_browsing_display", "result": "x"},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlattenContent(tt.content))
		})
	}
}

func TestStripCitations(t *testing.T) {
	in := "Paris is the capital \ue200cite\ue202turn0search1\ue201.\nSee 【4†source】 too."
	assert.Equal(t, "Paris is the capital .\nSee  too.", StripCitations(in))
}
