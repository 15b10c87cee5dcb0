// Package grok extracts Grok conversations from the response-node and
// load-responses endpoints.
package grok

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/ctxport/internal/connectors"
	"github.com/custodia-labs/ctxport/internal/connectors/bundle"
	"github.com/custodia-labs/ctxport/internal/connectors/linearize"
	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
	"github.com/custodia-labs/ctxport/internal/logger"
)

var _ driven.Adapter = (*Connector)(nil)

const (
	adapterID      = "grok"
	adapterVersion = "1.0.0"
	platformName   = "Grok"
	platformKey    = "grok"

	// DefaultAPIBase is the conversation REST root.
	DefaultAPIBase = "https://grok.com/rest/app-chat/conversations"
)

var (
	hostPattern         = regexp.MustCompile(`(?i)^https://grok\.com/`)
	conversationPattern = regexp.MustCompile(`^https?://grok\.com/c/([a-zA-Z0-9-]+)`)
	idPattern           = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
)

// ResponseNode is one entry of the response-node tree.
type ResponseNode struct {
	ResponseID       string `json:"responseId"`
	Sender           string `json:"sender"`
	ParentResponseID string `json:"parentResponseId,omitempty"`
}

// Response is one loaded message.
type Response struct {
	ResponseID       string `json:"responseId"`
	Message          string `json:"message"`
	Sender           string `json:"sender"`
	CreateTime       string `json:"createTime"`
	ParentResponseID string `json:"parentResponseId,omitempty"`
	Model            string `json:"model,omitempty"`
}

type nodeList struct {
	ResponseNodes []ResponseNode `json:"responseNodes"`
}

type responseList struct {
	Responses []Response `json:"responses"`
}

// Options configures the connector.
type Options struct {
	// APIBase overrides DefaultAPIBase.
	APIBase string
}

// Connector extracts Grok conversations.
type Connector struct {
	env     connectors.Env
	apiBase string
}

// New creates a Grok connector.
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

// MatchesHost reports whether rawURL is on grok.com.
func (c *Connector) MatchesHost(rawURL string) bool {
	return hostPattern.MatchString(rawURL)
}

// CanHandle reports whether rawURL is a conversation page.
func (c *Connector) CanHandle(rawURL string) bool {
	return conversationPattern.MatchString(rawURL)
}

// Parse extracts the conversation shown on page.
func (c *Connector) Parse(ctx context.Context, page domain.Page) (*domain.ContentBundle, error) {
	logger.Section("Extract Grok")

	m := conversationPattern.FindStringSubmatch(page.URL)
	if m == nil {
		return nil, domain.NewInvalidInput(platformName, "not a Grok conversation page: %q", page.URL)
	}
	return c.extract(ctx, m[1], page)
}

// FetchByID extracts a conversation by ID using the stored session.
func (c *Connector) FetchByID(ctx context.Context, id string) (*domain.ContentBundle, error) {
	logger.Section("Fetch Grok " + id)

	if !idPattern.MatchString(id) {
		return nil, domain.NewInvalidInput(platformName, "invalid conversation ID %q", id)
	}
	page := c.env.Session(platformKey).WithURL("https://grok.com/c/" + id)
	return c.extract(ctx, id, page)
}

func (c *Connector) extract(ctx context.Context, id string, page domain.Page) (*domain.ContentBundle, error) {
	var nodes nodeList
	if err := c.getJSON(ctx, http.MethodGet, c.apiBase+"/"+id+"/response-node?includeThreads=true", nil, page, &nodes); err != nil {
		return nil, err
	}
	if len(nodes.ResponseNodes) == 0 {
		return nil, domain.NewEmptyResult(platformKey)
	}

	ids := make([]string, len(nodes.ResponseNodes))
	for i, n := range nodes.ResponseNodes {
		ids[i] = n.ResponseID
	}
	var loaded responseList
	if err := c.getJSON(ctx, http.MethodPost, c.apiBase+"/"+id+"/load-responses",
		map[string]any{"responseIds": ids}, page, &loaded); err != nil {
		return nil, err
	}

	sorted, err := SortByTree(nodes.ResponseNodes, loaded.Responses)
	if err != nil {
		return nil, domain.NewMalformedPayload(platformName, "%v", err)
	}

	msgs := make([]bundle.Message, 0, len(sorted))
	for _, r := range sorted {
		role := domain.RoleAssistant
		if strings.EqualFold(r.Sender, "human") {
			role = domain.RoleUser
		}
		msgs = append(msgs, bundle.Message{Role: role, Content: r.Message, Timestamp: parseTime(r.CreateTime)})
	}

	source := domain.SourceInfo{
		Platform:      platformKey,
		URL:           page.URL,
		ExtractedAt:   c.env.Clock(),
		PluginID:      adapterID,
		PluginVersion: adapterVersion,
	}
	return bundle.Conversation(source, "", platformName, msgs)
}

func (c *Connector) getJSON(ctx context.Context, method, url string, body any, page domain.Page, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return domain.NewTransportError(platformName, 0, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if page.Cookies != "" {
		req.Header.Set("Cookie", page.Cookies)
	}
	return connectors.DoJSON(ctx, c.env.Client(), req, platformName, out)
}

// SortByTree orders responses by walking the node chain from the root.
// When a parent lists several children the last one is the active branch.
// Without a root the load order is kept.
func SortByTree(nodes []ResponseNode, responses []Response) ([]Response, error) {
	byID := make(map[string]Response, len(responses))
	for _, r := range responses {
		byID[r.ResponseID] = r
	}

	root := ""
	for _, n := range nodes {
		if n.ParentResponseID == "" {
			root = n.ResponseID
			break
		}
	}
	if root == "" {
		return responses, nil
	}

	child := make(map[string]string)
	for _, n := range nodes {
		if n.ParentResponseID != "" {
			child[n.ParentResponseID] = n.ResponseID
		}
	}

	path, err := linearize.WalkFromRoot(root, func(id string) (string, bool) {
		next, ok := child[id]
		return next, ok
	})
	if err != nil {
		return nil, err
	}

	sorted := make([]Response, 0, len(path))
	for _, id := range path {
		if r, ok := byID[id]; ok {
			sorted = append(sorted, r)
		}
	}
	return sorted, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
