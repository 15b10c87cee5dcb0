package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
	"github.com/custodia-labs/ctxport/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyFormat        = "format"
	keyFrontmatter   = "frontmatter"
	keyBatchInterval = "batch_interval_ms"
	keyManifestDir   = "manifest_dir"
	keyGitHubToken   = "github_token"
	keySessions      = "sessions"

	sessionCookies      = "cookies"
	sessionHTMLFile     = "html_file"
	sessionLocalStorage = "local_storage"
)

// Environment overrides, applied over the config file.
const (
	EnvGitHubToken = "CTXPORT_GITHUB_TOKEN"
	EnvManifestDir = "CTXPORT_MANIFEST_DIR"
)

// SettingsService resolves settings from the config store and environment.
type SettingsService struct {
	configStore driven.ConfigStore
	readFile    func(string) ([]byte, error)
}

// NewSettingsService creates a settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore, readFile: os.ReadFile}
}

// Get returns the resolved settings. Unset keys keep their defaults; an
// unknown format or an unreadable session HTML file is an error.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings()

	if v := s.configStore.GetString(keyFormat); v != "" {
		f, err := domain.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", keyFormat, err)
		}
		settings.Format = f
	}
	if _, ok := s.configStore.Get(keyFrontmatter); ok {
		settings.Frontmatter = s.configStore.GetBool(keyFrontmatter)
	}
	if ms := s.configStore.GetInt(keyBatchInterval); ms > 0 {
		settings.BatchInterval = time.Duration(ms) * time.Millisecond
	}

	settings.ManifestDir = envStr(EnvManifestDir, s.configStore.GetString(keyManifestDir))
	settings.GitHubToken = envStr(EnvGitHubToken, s.configStore.GetString(keyGitHubToken))

	sessions, err := s.sessions()
	if err != nil {
		return nil, err
	}
	settings.Sessions = sessions

	return &settings, nil
}

// sessions builds a page per [sessions.<platform>] table.
func (s *SettingsService) sessions() (map[string]domain.Page, error) {
	platforms := make(map[string]bool)
	for key := range s.configStore.GetStringMap(keySessions) {
		platform, _, _ := strings.Cut(key, ".")
		platforms[platform] = true
	}

	pages := make(map[string]domain.Page, len(platforms))
	for platform := range platforms {
		prefix := keySessions + "." + platform + "."
		page := domain.Page{Cookies: s.configStore.GetString(prefix + sessionCookies)}

		if path := s.configStore.GetString(prefix + sessionHTMLFile); path != "" {
			html, err := s.readFile(path)
			if err != nil {
				return nil, fmt.Errorf("session %s: read html file: %w", platform, err)
			}
			page.HTML = string(html)
		}
		if storage := s.configStore.GetStringMap(prefix + sessionLocalStorage); len(storage) > 0 {
			page.LocalStorage = storage
		}
		pages[platform] = page
	}
	return pages, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
