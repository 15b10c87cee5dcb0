package driving

import (
	"context"

	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
)

// ExportOptions controls Markdown rendering.
type ExportOptions struct {
	Format domain.Format

	// IncludeFrontmatter defaults to true when nil.
	IncludeFrontmatter *bool
}

// ExportResult is rendered Markdown with its statistics.
type ExportResult struct {
	Markdown        string
	MessageCount    int
	EstimatedTokens int
}

// ProgressFunc receives batch progress after each item.
type ProgressFunc func(domain.BatchProgress)

// ExportService extracts conversations and renders them.
type ExportService interface {
	// Extract finds the adapter for the page URL and parses the page.
	Extract(ctx context.Context, page domain.Page) (*domain.ContentBundle, error)

	// Export extracts the page and renders it.
	Export(ctx context.Context, page domain.Page, opts ExportOptions) (*domain.ContentBundle, *ExportResult, error)

	// FetchByID fetches one conversation through the named adapter.
	FetchByID(ctx context.Context, adapterID, id string) (*domain.ContentBundle, error)

	// CopyMultiple fetches the IDs one after another and merges the
	// successes into one document. Per-item failures are recorded in the
	// BatchResult and do not stop the batch.
	CopyMultiple(
		ctx context.Context, adapterID string, ids []string, opts ExportOptions, progress ProgressFunc,
	) (*domain.BatchResult, *ExportResult, error)

	// Render serialises a single bundle.
	Render(bundle *domain.ContentBundle, opts ExportOptions) *ExportResult
}

// AdapterRegistry resolves adapters.
type AdapterRegistry interface {
	// FindAdapterByHostURL returns the first adapter whose host patterns match.
	FindAdapterByHostURL(rawURL string) (driven.Adapter, bool)

	// FindAdapterForURL prefers an adapter that can handle the conversation URL.
	FindAdapterForURL(rawURL string) (driven.Adapter, bool)

	// Get returns the adapter registered under id or platform name.
	Get(id string) (driven.Adapter, bool)

	// Adapters returns every adapter in registration order.
	Adapters() []driven.Adapter

	// Platforms describes the registered adapters.
	Platforms() []domain.PlatformInfo
}

// SettingsService reads application settings.
type SettingsService interface {
	Get() (*domain.Settings, error)
}
