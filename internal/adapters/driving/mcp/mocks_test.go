package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
	"github.com/custodia-labs/ctxport/internal/core/ports/driving"
)

var (
	_ driving.ExportService   = (*mockExportService)(nil)
	_ driving.AdapterRegistry = (*mockRegistry)(nil)
)

type mockExportService struct {
	bundle *domain.ContentBundle
	result *driving.ExportResult
	batch  *domain.BatchResult
	err    error

	lastPage     domain.Page
	lastOpts     driving.ExportOptions
	lastPlatform string
	lastIDs      []string
}

func (m *mockExportService) Extract(_ context.Context, page domain.Page) (*domain.ContentBundle, error) {
	m.lastPage = page
	return m.bundle, m.err
}

func (m *mockExportService) Export(
	_ context.Context, page domain.Page, opts driving.ExportOptions,
) (*domain.ContentBundle, *driving.ExportResult, error) {
	m.lastPage = page
	m.lastOpts = opts
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.bundle, m.result, nil
}

func (m *mockExportService) FetchByID(_ context.Context, platform, id string) (*domain.ContentBundle, error) {
	m.lastPlatform = platform
	m.lastIDs = []string{id}
	if m.err != nil {
		return nil, m.err
	}
	return m.bundle, nil
}

func (m *mockExportService) CopyMultiple(
	_ context.Context, platform string, ids []string, opts driving.ExportOptions, _ driving.ProgressFunc,
) (*domain.BatchResult, *driving.ExportResult, error) {
	m.lastPlatform = platform
	m.lastIDs = ids
	m.lastOpts = opts
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.batch, m.result, nil
}

func (m *mockExportService) Render(_ *domain.ContentBundle, opts driving.ExportOptions) *driving.ExportResult {
	m.lastOpts = opts
	return m.result
}

type mockRegistry struct {
	infos []domain.PlatformInfo
}

func (m *mockRegistry) FindAdapterByHostURL(string) (driven.Adapter, bool) { return nil, false }
func (m *mockRegistry) FindAdapterForURL(string) (driven.Adapter, bool)    { return nil, false }
func (m *mockRegistry) Get(string) (driven.Adapter, bool)                  { return nil, false }
func (m *mockRegistry) Adapters() []driven.Adapter                         { return nil }
func (m *mockRegistry) Platforms() []domain.PlatformInfo                   { return m.infos }

var errFetch = errors.New("fetch failed")

func testBundle() *domain.ContentBundle {
	return &domain.ContentBundle{
		ID:    "b-1",
		Title: "Prime numbers",
		Source: domain.SourceInfo{
			Platform: "chatgpt",
			URL:      "https://chatgpt.com/c/abc",
		},
	}
}

func newTestServer(t *testing.T, export *mockExportService, registry *mockRegistry) *Server {
	t.Helper()
	s, err := NewServer(&Ports{Export: export, Registry: registry}, "test")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}
