// Package deepseek extracts DeepSeek conversations from the chat history API.
package deepseek

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/ctxport/internal/connectors"
	"github.com/custodia-labs/ctxport/internal/connectors/bundle"
	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
	"github.com/custodia-labs/ctxport/internal/logger"
)

var _ driven.Adapter = (*Connector)(nil)

const (
	adapterID      = "deepseek"
	adapterVersion = "1.0.0"
	platformName   = "DeepSeek"
	platformKey    = "deepseek"

	// DefaultAPIBase is the versioned API root.
	DefaultAPIBase = "https://chat.deepseek.com/api/v0"

	tokenStorageKey = "userToken"
	appVersion      = "20241129.1"
)

var (
	hostPattern         = regexp.MustCompile(`(?i)^https://chat\.deepseek\.com/`)
	conversationPattern = regexp.MustCompile(`^https?://chat\.deepseek\.com/a/chat/(?:s/)?([a-zA-Z0-9-]+)`)
	idPattern           = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
)

// HistoryResponse is the history_messages payload.
type HistoryResponse struct {
	Data struct {
		BizData struct {
			ChatSession struct {
				Title string `json:"title"`
			} `json:"chat_session"`
			ChatMessages []ChatMessage `json:"chat_messages"`
		} `json:"biz_data"`
	} `json:"data"`
}

// ChatMessage is one history entry. ThinkingContent holds DeepThink
// reasoning and is never exported.
type ChatMessage struct {
	MessageID       int64   `json:"message_id"`
	Role            string  `json:"role"`
	Content         string  `json:"content"`
	ThinkingContent string  `json:"thinking_content,omitempty"`
	InsertedAt      float64 `json:"inserted_at,omitempty"`
}

// Options configures the connector.
type Options struct {
	// APIBase overrides DefaultAPIBase.
	APIBase string
}

// Connector extracts DeepSeek conversations.
type Connector struct {
	env     connectors.Env
	apiBase string
}

// New creates a DeepSeek connector.
func New(env connectors.Env, opts Options) *Connector {
	base := strings.TrimSuffix(opts.APIBase, "/")
	if base == "" {
		base = DefaultAPIBase
	}
	return &Connector{env: env, apiBase: base}
}

func (c *Connector) ID() string       { return adapterID }
func (c *Connector) Version() string  { return adapterVersion }
func (c *Connector) Name() string     { return platformName }
func (c *Connector) Platform() string { return platformKey }

// MatchesHost reports whether rawURL is on chat.deepseek.com.
func (c *Connector) MatchesHost(rawURL string) bool {
	return hostPattern.MatchString(rawURL)
}

// CanHandle reports whether rawURL is a chat session page.
func (c *Connector) CanHandle(rawURL string) bool {
	return conversationPattern.MatchString(rawURL)
}

// Parse extracts the conversation shown on page.
func (c *Connector) Parse(ctx context.Context, page domain.Page) (*domain.ContentBundle, error) {
	logger.Section("Extract DeepSeek")

	m := conversationPattern.FindStringSubmatch(page.URL)
	if m == nil {
		return nil, domain.NewInvalidInput(platformName, "Not a DeepSeek conversation page")
	}
	return c.extract(ctx, m[1], page)
}

// FetchByID extracts a chat session by ID using the stored session.
func (c *Connector) FetchByID(ctx context.Context, id string) (*domain.ContentBundle, error) {
	logger.Section("Fetch DeepSeek " + id)

	if !idPattern.MatchString(id) {
		return nil, domain.NewInvalidInput(platformName, "invalid session ID %q", id)
	}
	page := c.env.Session(platformKey).WithURL("https://chat.deepseek.com/a/chat/s/" + id)
	return c.extract(ctx, id, page)
}

func (c *Connector) extract(ctx context.Context, sessionID string, page domain.Page) (*domain.ContentBundle, error) {
	token, ok := AuthToken(page)
	if !ok {
		return nil, domain.NewAuthError(platformName, "Cannot find DeepSeek auth token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiBase+"/chat/history_messages?chat_session_id="+url.QueryEscape(sessionID), http.NoBody)
	if err != nil {
		return nil, domain.NewTransportError(platformName, 0, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-app-version", appVersion)
	req.Header.Set("x-client-locale", "en_US")
	req.Header.Set("x-client-platform", "web")
	req.Header.Set("Cache-Control", "no-store")
	if page.Cookies != "" {
		req.Header.Set("Cookie", page.Cookies)
	}

	var history HistoryResponse
	if err := connectors.DoJSON(ctx, c.env.Client(), req, platformName, &history); err != nil {
		return nil, err
	}

	source := domain.SourceInfo{
		Platform:      platformKey,
		URL:           page.URL,
		ExtractedAt:   c.env.Clock(),
		PluginID:      adapterID,
		PluginVersion: adapterVersion,
	}
	biz := history.Data.BizData
	return bundle.Conversation(source, biz.ChatSession.Title, platformName, Messages(biz.ChatMessages))
}

// AuthToken reads the bearer token from the userToken storage entry,
// which holds either {"value": "..."} or a JSON string.
func AuthToken(page domain.Page) (string, bool) {
	raw, ok := page.Storage(tokenStorageKey)
	if !ok || raw == "" {
		return "", false
	}

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", false
	}
	switch v := parsed.(type) {
	case map[string]any:
		val, ok := v["value"]
		if !ok || val == nil {
			return "", false
		}
		if s, ok := val.(string); ok {
			return s, s != ""
		}
		b, _ := json.Marshal(val)
		return string(b), true
	case string:
		return v, v != ""
	}
	return "", false
}

// Messages orders history entries by message ID and merges consecutive
// turns from the same role. Roles other than user and assistant are dropped.
func Messages(history []ChatMessage) []bundle.Message {
	sorted := make([]ChatMessage, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MessageID < sorted[j].MessageID
	})

	var msgs []bundle.Message
	for _, m := range sorted {
		var role domain.Role
		switch strings.ToLower(m.Role) {
		case "user":
			role = domain.RoleUser
		case "assistant":
			role = domain.RoleAssistant
		default:
			continue
		}
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		msgs = append(msgs, bundle.Message{Role: role, Content: text, Timestamp: insertedAt(m.InsertedAt)})
	}
	return bundle.MergeConsecutive(msgs)
}

func insertedAt(secs float64) time.Time {
	if secs <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(secs * 1000)).UTC()
}
