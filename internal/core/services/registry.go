package services

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/ctxport/internal/connectors"
	"github.com/custodia-labs/ctxport/internal/connectors/chatgpt"
	"github.com/custodia-labs/ctxport/internal/connectors/claude"
	"github.com/custodia-labs/ctxport/internal/connectors/deepseek"
	"github.com/custodia-labs/ctxport/internal/connectors/gemini"
	"github.com/custodia-labs/ctxport/internal/connectors/github"
	"github.com/custodia-labs/ctxport/internal/connectors/grok"
	"github.com/custodia-labs/ctxport/internal/connectors/manifest"
	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
	"github.com/custodia-labs/ctxport/internal/core/ports/driving"
	"github.com/custodia-labs/ctxport/internal/logger"
)

// Ensure Registry implements the interface.
var _ driving.AdapterRegistry = (*Registry)(nil)

// RegistryOptions configures the builtin adapters.
type RegistryOptions struct {
	// ManifestDir holds extra YAML manifests. Empty means none.
	ManifestDir string

	// GitHubToken authenticates GitHub REST calls.
	GitHubToken string
}

// Registry maps page URLs to adapters. Lookups walk adapters in
// registration order.
type Registry struct {
	mu        sync.RWMutex
	env       connectors.Env
	adapters  []driven.Adapter
	byID      map[string]driven.Adapter
	manifests []*manifest.Manifest
}

// NewEmptyRegistry creates a registry with no adapters.
func NewEmptyRegistry(env connectors.Env) *Registry {
	return &Registry{env: env, byID: make(map[string]driven.Adapter)}
}

// NewRegistry creates a registry with the builtin adapters followed by
// any manifests found in opts.ManifestDir.
func NewRegistry(env connectors.Env, opts RegistryOptions) (*Registry, error) {
	r := NewEmptyRegistry(env)

	if err := r.RegisterManifests(chatgpt.Entry(), claude.Entry()); err != nil {
		return nil, err
	}

	gh, err := github.New(env, github.Options{Token: opts.GitHubToken})
	if err != nil {
		return nil, fmt.Errorf("create github connector: %w", err)
	}
	for _, a := range []driven.Adapter{
		gh,
		gemini.New(env, gemini.Options{}),
		grok.New(env, grok.Options{}),
		deepseek.New(env, deepseek.Options{}),
	} {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}

	if opts.ManifestDir != "" {
		loaded, err := manifest.LoadDir(opts.ManifestDir)
		if err != nil {
			return nil, fmt.Errorf("load manifests: %w", err)
		}
		for _, m := range loaded {
			logger.Debug("registering manifest %s from %s", m.ID, opts.ManifestDir)
			if err := r.RegisterManifest(manifest.Entry{Manifest: m}); err != nil {
				return nil, err
			}
		}
	}

	return r, nil
}

// Register adds an adapter. IDs must be unique.
func (r *Registry) Register(a driven.Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID()]; exists {
		return fmt.Errorf("%w: adapter %q", domain.ErrAlreadyExists, a.ID())
	}
	r.byID[a.ID()] = a
	r.adapters = append(r.adapters, a)
	return nil
}

// RegisterManifest validates the manifest and registers an adapter for it.
func (r *Registry) RegisterManifest(e manifest.Entry) error {
	a, err := manifest.New(e.Manifest, e.Hooks, r.env)
	if err != nil {
		return err
	}
	if err := r.Register(a); err != nil {
		return err
	}

	r.mu.Lock()
	r.manifests = append(r.manifests, e.Manifest)
	r.mu.Unlock()
	return nil
}

// RegisterManifests registers entries in order and stops at the first error.
func (r *Registry) RegisterManifests(entries ...manifest.Entry) error {
	for _, e := range entries {
		if err := r.RegisterManifest(e); err != nil {
			return err
		}
	}
	return nil
}

// FindAdapterByHostURL returns the first adapter whose host patterns match.
func (r *Registry) FindAdapterByHostURL(rawURL string) (driven.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.adapters {
		if a.MatchesHost(rawURL) {
			return a, true
		}
	}
	return nil, false
}

// FindAdapterForURL returns the first adapter that can handle the
// conversation URL, falling back to a host match.
func (r *Registry) FindAdapterForURL(rawURL string) (driven.Adapter, bool) {
	r.mu.RLock()
	for _, a := range r.adapters {
		if a.CanHandle(rawURL) {
			r.mu.RUnlock()
			return a, true
		}
	}
	r.mu.RUnlock()
	return r.FindAdapterByHostURL(rawURL)
}

// Get returns the adapter registered under id, or the first adapter whose
// platform key equals id.
func (r *Registry) Get(id string) (driven.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.byID[id]; ok {
		return a, true
	}
	for _, a := range r.adapters {
		if a.Platform() == id {
			return a, true
		}
	}
	return nil, false
}

// Adapters returns every adapter in registration order.
func (r *Registry) Adapters() []driven.Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]driven.Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// GetRegisteredManifests returns the manifests of declarative adapters.
func (r *Registry) GetRegisteredManifests() []*manifest.Manifest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*manifest.Manifest, len(r.manifests))
	copy(out, r.manifests)
	return out
}

// Platforms describes every adapter in registration order.
func (r *Registry) Platforms() []domain.PlatformInfo {
	adapters := r.Adapters()
	infos := make([]domain.PlatformInfo, 0, len(adapters))
	for _, a := range adapters {
		info := domain.PlatformInfo{
			ID:       a.ID(),
			Name:     a.Name(),
			Platform: a.Platform(),
			Version:  a.Version(),
		}
		if ma, ok := a.(*manifest.Adapter); ok {
			info.Declarative = true
			if meta := ma.Manifest().Meta; meta != nil {
				info.Reliability = meta.Reliability
			}
		}
		infos = append(infos, info)
	}
	return infos
}
