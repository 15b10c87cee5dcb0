package deepseek

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ctxport/internal/connectors"
	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
)

const history = `{"data": {"biz_data": {
  "chat_session": {"title": "Prime numbers"},
  "chat_messages": [
    {"message_id": 3, "role": "ASSISTANT", "content": "It is prime.", "thinking_content": "Let me check divisors..."},
    {"message_id": 1, "role": "USER", "content": "Is 7 prime?"},
    {"message_id": 2, "role": "USER", "content": "Answer briefly."},
    {"message_id": 4, "role": "SYSTEM", "content": "ignored"},
    {"message_id": 5, "role": "ASSISTANT", "content": "   "}
  ]
}}}`

func newServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/chat/history_messages", r.URL.Path)
		assert.Equal(t, "sess-1", r.URL.Query().Get("chat_session_id"))
		assert.Equal(t, "Bearer tok-9", r.Header.Get("Authorization"))
		assert.Equal(t, "20241129.1", r.Header.Get("x-app-version"))
		assert.Equal(t, "web", r.Header.Get("x-client-platform"))
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParse(t *testing.T) {
	srv := newServer(t, history)
	c := New(connectors.Env{}, Options{APIBase: srv.URL + "/api/v0"})

	page := domain.Page{
		URL:          "https://chat.deepseek.com/a/chat/s/sess-1",
		LocalStorage: map[string]string{"userToken": `{"value":"tok-9","__version":"0"}`},
	}
	b, err := c.Parse(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, "Prime numbers", b.Title)
	require.Len(t, b.Nodes, 2)
	assert.Equal(t, "Is 7 prime?\nAnswer briefly.", b.Nodes[0].Content)
	assert.Equal(t, "It is prime.", b.Nodes[1].Content)
	assert.NotContains(t, b.Nodes[1].Content, "divisors")
	assert.Equal(t, "deepseek", b.Source.Platform)
}

func TestParse_MissingToken(t *testing.T) {
	c := New(connectors.Env{}, Options{})

	_, err := c.Parse(context.Background(), domain.Page{URL: "https://chat.deepseek.com/a/chat/s/sess-1"})
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestParse_NoMessages(t *testing.T) {
	srv := newServer(t, `{"data": {"biz_data": {"chat_messages": []}}}`)
	c := New(connectors.Env{}, Options{APIBase: srv.URL + "/api/v0"})

	page := domain.Page{
		URL:          "https://chat.deepseek.com/a/chat/sess-1",
		LocalStorage: map[string]string{"userToken": `"tok-9"`},
	}
	_, err := c.Parse(context.Background(), page)
	assert.ErrorIs(t, err, domain.ErrEmptyResult)
}

func TestFetchByID_UsesStoredSession(t *testing.T) {
	srv := newServer(t, history)
	sessions := driven.StaticSessions{
		"deepseek": {LocalStorage: map[string]string{"userToken": `{"value":"tok-9"}`}},
	}
	c := New(connectors.Env{Sessions: sessions}, Options{APIBase: srv.URL + "/api/v0/"})

	b, err := c.FetchByID(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "https://chat.deepseek.com/a/chat/s/sess-1", b.Source.URL)
}

func TestAuthToken(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   string
		ok     bool
	}{
		{"object", `{"value":"abc"}`, "abc", true},
		{"bare string", `"abc"`, "abc", true},
		{"object without value", `{"other":1}`, "", false},
		{"number", `42`, "", false},
		{"invalid json", `abc`, "", false},
		{"empty", ``, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AuthToken(domain.Page{LocalStorage: map[string]string{"userToken": tt.stored}})
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanHandle(t *testing.T) {
	c := New(connectors.Env{}, Options{})
	assert.True(t, c.CanHandle("https://chat.deepseek.com/a/chat/s/abc-123"))
	assert.True(t, c.CanHandle("https://chat.deepseek.com/a/chat/abc-123"))
	assert.False(t, c.CanHandle("https://chat.deepseek.com/"))
	assert.True(t, c.MatchesHost("https://CHAT.deepseek.com/"))
}
