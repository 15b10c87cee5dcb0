package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/ctxport/internal/connectors/bundle"
	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
)

var _ driven.Adapter = (*fakeAdapter)(nil)

// fakeAdapter handles https://<host>/c/<id> and fails IDs listed in fail.
type fakeAdapter struct {
	id       string
	platform string
	host     string
	fail     map[string]error

	mu       sync.Mutex
	fetched  []string
	lastPage domain.Page
}

func (f *fakeAdapter) ID() string       { return f.id }
func (f *fakeAdapter) Version() string  { return "1.0.0" }
func (f *fakeAdapter) Name() string     { return strings.ToUpper(f.platform) }
func (f *fakeAdapter) Platform() string { return f.platform }

func (f *fakeAdapter) MatchesHost(rawURL string) bool {
	return strings.HasPrefix(rawURL, "https://"+f.host+"/")
}

func (f *fakeAdapter) CanHandle(rawURL string) bool {
	return strings.HasPrefix(rawURL, "https://"+f.host+"/c/")
}

func (f *fakeAdapter) Parse(_ context.Context, page domain.Page) (*domain.ContentBundle, error) {
	f.mu.Lock()
	f.lastPage = page
	f.mu.Unlock()

	if !f.CanHandle(page.URL) {
		return nil, domain.NewInvalidInput(f.platform, "not a conversation page")
	}
	return f.bundle(strings.TrimPrefix(page.URL, "https://"+f.host+"/c/"), page.URL)
}

func (f *fakeAdapter) FetchByID(_ context.Context, id string) (*domain.ContentBundle, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, id)
	f.mu.Unlock()

	if err, ok := f.fail[id]; ok {
		return nil, err
	}
	return f.bundle(id, "https://"+f.host+"/c/"+id)
}

func (f *fakeAdapter) bundle(id, url string) (*domain.ContentBundle, error) {
	source := domain.SourceInfo{Platform: f.platform, URL: url, PluginID: f.id, PluginVersion: "1.0.0"}
	return bundle.Conversation(source, "Chat "+id, f.Name(), []bundle.Message{
		{Role: domain.RoleUser, Content: "question " + id},
		{Role: domain.RoleAssistant, Content: "answer " + id},
	})
}
