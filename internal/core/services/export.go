package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
	"github.com/custodia-labs/ctxport/internal/core/ports/driving"
	"github.com/custodia-labs/ctxport/internal/logger"
	"github.com/custodia-labs/ctxport/internal/markdown"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// DefaultBatchInterval spaces batch fetches.
const DefaultBatchInterval = 500 * time.Millisecond

// ExportService extracts bundles through the registry and renders them.
type ExportService struct {
	registry      driving.AdapterRegistry
	sessions      driven.SessionProvider
	batchInterval time.Duration
}

// NewExportService creates an export service. Sessions may be nil. A
// non-positive interval uses DefaultBatchInterval.
func NewExportService(
	registry driving.AdapterRegistry, sessions driven.SessionProvider, batchInterval time.Duration,
) *ExportService {
	if batchInterval <= 0 {
		batchInterval = DefaultBatchInterval
	}
	return &ExportService{registry: registry, sessions: sessions, batchInterval: batchInterval}
}

// Extract finds the adapter for page.URL and parses the page. A page
// with no cookies, HTML or storage borrows the stored session of the
// adapter's platform.
func (s *ExportService) Extract(ctx context.Context, page domain.Page) (*domain.ContentBundle, error) {
	a, ok := s.registry.FindAdapterForURL(page.URL)
	if !ok {
		return nil, domain.NewInvalidInput("", "no adapter matches %q", page.URL)
	}
	logger.Info("using adapter %s %s for %s", a.ID(), a.Version(), page.URL)

	if page.Cookies == "" && page.HTML == "" && len(page.LocalStorage) == 0 && s.sessions != nil {
		if stored, ok := s.sessions.Session(a.Platform()); ok {
			logger.Debug("using stored %s session", a.Platform())
			page = stored.WithURL(page.URL)
		}
	}
	return a.Parse(ctx, page)
}

// Export extracts the page and renders it.
func (s *ExportService) Export(
	ctx context.Context, page domain.Page, opts driving.ExportOptions,
) (*domain.ContentBundle, *driving.ExportResult, error) {
	b, err := s.Extract(ctx, page)
	if err != nil {
		return nil, nil, err
	}
	return b, s.Render(b, opts), nil
}

// FetchByID fetches one conversation through the adapter with the given
// ID or platform key.
func (s *ExportService) FetchByID(ctx context.Context, adapterID, id string) (*domain.ContentBundle, error) {
	a, ok := s.registry.Get(adapterID)
	if !ok {
		return nil, fmt.Errorf("%w: adapter %q", domain.ErrNotFound, adapterID)
	}
	return a.FetchByID(ctx, id)
}

// CopyMultiple fetches ids strictly one after another, spaced by the batch
// interval. Failures are recorded per item and the batch continues; only
// context cancellation ends it early. The merged document covers the
// successful items and is nil when there are none.
func (s *ExportService) CopyMultiple(
	ctx context.Context, adapterID string, ids []string, opts driving.ExportOptions, progress driving.ProgressFunc,
) (*domain.BatchResult, *driving.ExportResult, error) {
	result := &domain.BatchResult{Total: len(ids)}

	a, ok := s.registry.Get(adapterID)
	if !ok {
		return result, nil, fmt.Errorf("%w: adapter %q", domain.ErrNotFound, adapterID)
	}

	limiter := rate.NewLimiter(rate.Every(s.batchInterval), 1)
	for i, id := range ids {
		if err := limiter.Wait(ctx); err != nil {
			return result, nil, ctx.Err()
		}

		b, err := a.FetchByID(ctx, id)
		if err != nil && ctx.Err() != nil {
			return result, nil, ctx.Err()
		}
		result.Items = append(result.Items, domain.BatchItem{ID: id, Bundle: b, Err: err})
		if err != nil {
			result.Failed++
			logger.Warn("batch: %s %s failed: %v", a.ID(), id, err)
		} else {
			result.Succeeded++
		}

		if progress != nil {
			progress(domain.BatchProgress{Current: i + 1, Total: len(ids)})
		}
	}

	bundles := result.Bundles()
	if len(bundles) == 0 {
		return result, nil, nil
	}
	res := markdown.SerializeBundle(bundles, markdownOptions(opts))
	return result, toExportResult(res), nil
}

// Render serialises a single bundle.
func (s *ExportService) Render(b *domain.ContentBundle, opts driving.ExportOptions) *driving.ExportResult {
	return toExportResult(markdown.SerializeConversation(b, markdownOptions(opts)))
}

func markdownOptions(opts driving.ExportOptions) markdown.Options {
	mo := markdown.DefaultOptions()
	if opts.Format != "" {
		mo.Format = opts.Format
	}
	mo.IncludeFrontmatter = opts.IncludeFrontmatter
	return mo
}

func toExportResult(r markdown.Result) *driving.ExportResult {
	return &driving.ExportResult{
		Markdown:        r.Markdown,
		MessageCount:    r.MessageCount,
		EstimatedTokens: r.EstimatedTokens,
	}
}
