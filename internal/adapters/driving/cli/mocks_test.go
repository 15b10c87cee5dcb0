package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
	"github.com/custodia-labs/ctxport/internal/core/ports/driving"
)

var errFetch = errors.New("fetch failed")

type mockExportService struct {
	bundle *domain.ContentBundle
	result *driving.ExportResult
	batch  *domain.BatchResult
	err    error

	lastPage     domain.Page
	lastOpts     driving.ExportOptions
	lastPlatform string
	lastIDs      []string
	progress     []domain.BatchProgress
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
	_ context.Context, platform string, ids []string, opts driving.ExportOptions, progress driving.ProgressFunc,
) (*domain.BatchResult, *driving.ExportResult, error) {
	m.lastPlatform = platform
	m.lastIDs = ids
	m.lastOpts = opts
	if m.err != nil {
		return nil, nil, m.err
	}
	for i := range ids {
		p := domain.BatchProgress{Current: i + 1, Total: len(ids)}
		m.progress = append(m.progress, p)
		if progress != nil {
			progress(p)
		}
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

// withServices installs s for the duration of the test and resets every
// flag variable afterwards.
func withServices(t *testing.T, s *Services) {
	t.Helper()

	oldExport, oldRegistry, oldClipboard, oldSettings := exportService, adapterRegistry, clipboardWriter, settings
	exportService, adapterRegistry, clipboardWriter = nil, nil, nil
	settings = defaultSettings()
	SetServices(s)

	t.Cleanup(func() {
		exportService, adapterRegistry, clipboardWriter, settings = oldExport, oldRegistry, oldClipboard, oldSettings
		extractFlags.reset()
		fetchFlags.reset()
		extractHTMLFile = ""
		extractCookie = ""
		extractStorage = map[string]string{}
	})
}

// run executes the root command and returns stdout and stderr.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}
