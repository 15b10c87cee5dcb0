package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ctxport/internal/connectors"
	"github.com/custodia-labs/ctxport/internal/connectors/bundle"
	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
	"github.com/custodia-labs/ctxport/internal/logger"
)

// Ensure Adapter implements the interface.
var _ driven.Adapter = (*Adapter)(nil)

// bearerVar is the internal template variable holding the access token.
const bearerVar = "_bearerToken"

// maxTextWorkers bounds concurrent ExtractMessageText calls.
const maxTextWorkers = 8

// Adapter interprets a Manifest and its Hooks.
type Adapter struct {
	manifest *Manifest
	hooks    Hooks
	env      connectors.Env
	rules    []compiledRule
	tokens   *tokenCache
}

// New validates m and returns an adapter for it.
func New(m *Manifest, hooks Hooks, env connectors.Env) (*Adapter, error) {
	if m == nil {
		return nil, fmt.Errorf("manifest: nil manifest")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	a := &Adapter{
		manifest: m,
		hooks:    hooks,
		env:      env,
		rules:    compileRules(m),
	}
	a.tokens = &tokenCache{now: env.Clock, fetch: a.fetchSessionToken}
	return a, nil
}

// ID returns the manifest ID.
func (a *Adapter) ID() string { return a.manifest.ID }

// Version returns the manifest version.
func (a *Adapter) Version() string { return a.manifest.Version }

// Name returns the platform display name.
func (a *Adapter) Name() string { return a.manifest.Name }

// Platform returns the manifest provider.
func (a *Adapter) Platform() string { return a.manifest.Provider }

// Manifest returns the interpreted manifest. Callers must not modify it.
func (a *Adapter) Manifest() *Manifest { return a.manifest }

// MatchesHost reports whether rawURL matches a host pattern.
func (a *Adapter) MatchesHost(rawURL string) bool {
	for _, p := range a.manifest.URLs.HostPatterns {
		if p.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// CanHandle reports whether a conversation ID can be read from rawURL.
func (a *Adapter) CanHandle(rawURL string) bool {
	_, ok := a.conversationID(rawURL)
	return ok
}

// Parse extracts the conversation shown on page.
func (a *Adapter) Parse(ctx context.Context, page domain.Page) (*domain.ContentBundle, error) {
	logger.Section("Extract " + a.manifest.Name)

	id, ok := a.conversationID(page.URL)
	if !ok {
		return nil, domain.NewInvalidInput(a.manifest.Name, "invalid conversation URL %q", page.URL)
	}

	hc := &HookContext{URL: page.URL, Page: page, ConversationID: id, Provider: a.manifest.Provider}
	vars, err := a.resolveAuth(hc)
	if err != nil {
		return nil, err
	}
	return a.extract(ctx, hc, vars)
}

// FetchByID extracts a conversation by ID using the ambient session page.
func (a *Adapter) FetchByID(ctx context.Context, id string) (*domain.ContentBundle, error) {
	logger.Section("Fetch " + a.manifest.Name + " " + id)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewInvalidInput(a.manifest.Name, "empty conversation ID")
	}

	pageURL := strings.ReplaceAll(a.manifest.ConversationURLTemplate, "{conversationId}", id)
	session := a.env.Session(a.manifest.Provider)
	hc := &HookContext{
		URL:            pageURL,
		Page:           session.WithURL(pageURL),
		ConversationID: id,
		Provider:       a.manifest.Provider,
	}

	var vars map[string]string
	var err error
	if a.hooks.ExtractAuthHeadless != nil {
		vars, err = a.hooks.ExtractAuthHeadless(ctx, session)
		if err != nil {
			return nil, a.authError(err)
		}
	} else {
		vars, err = a.resolveAuth(hc)
		if err != nil {
			return nil, err
		}
	}
	return a.extract(ctx, hc, vars)
}

func (a *Adapter) conversationID(rawURL string) (string, bool) {
	if a.hooks.ExtractConversationID != nil {
		id, ok := a.hooks.ExtractConversationID(rawURL)
		return id, ok && id != ""
	}
	for _, p := range a.manifest.URLs.ConversationURLPatterns {
		if m := p.FindStringSubmatch(rawURL); len(m) > 1 && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

func (a *Adapter) resolveAuth(hc *HookContext) (map[string]string, error) {
	if a.hooks.ExtractAuth == nil {
		return map[string]string{}, nil
	}
	vars, err := a.hooks.ExtractAuth(hc)
	if err != nil {
		return nil, a.authError(err)
	}
	return vars, nil
}

func (a *Adapter) authError(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.NewAuthError(a.manifest.Name, "%v%s", err, a.hint())
}

func (a *Adapter) hint() string {
	if a.manifest.Auth.Hint == "" {
		return ""
	}
	return " (" + a.manifest.Auth.Hint + ")"
}

func (a *Adapter) extract(ctx context.Context, hc *HookContext, auth map[string]string) (*domain.ContentBundle, error) {
	vars := map[string]string{"conversationId": hc.ConversationID}
	for k, v := range auth {
		vars[k] = v
	}

	for _, key := range a.manifest.Auth.RequiredVars {
		if vars[key] == "" {
			return nil, domain.NewAuthError(a.manifest.Name, "missing %s%s", key, a.hint())
		}
	}

	if a.manifest.Auth.Method == AuthBearerFromAPI {
		tok, err := a.tokens.Token(ctx, hc.Page, false)
		if err != nil {
			return nil, err
		}
		vars[bearerVar] = tok
	}

	reqURL, err := a.buildRequestURL(hc, vars)
	if err != nil {
		return nil, err
	}

	raw, err := a.fetchConversation(ctx, hc, reqURL, vars)
	if err != nil {
		return nil, err
	}

	msgs, title, err := a.parseResponse(ctx, raw, hc)
	if err != nil {
		return nil, err
	}
	logger.Debug("%s: %d messages after parsing", a.manifest.ID, len(msgs))

	source := domain.SourceInfo{
		Platform:      a.manifest.Provider,
		URL:           hc.URL,
		ExtractedAt:   a.env.Clock(),
		PluginID:      a.manifest.ID,
		PluginVersion: a.manifest.Version,
	}
	return bundle.Conversation(source, title, a.manifest.assistantName(), msgs)
}

func (a *Adapter) buildRequestURL(hc *HookContext, vars map[string]string) (string, error) {
	if a.hooks.BuildRequestURL != nil {
		return a.hooks.BuildRequestURL(hc, vars), nil
	}

	u := ResolveTemplate(a.manifest.Endpoint.URLTemplate, vars)
	if missing := unresolvedVars(u); len(missing) > 0 {
		return "", domain.NewAuthError(a.manifest.Name, "unresolved URL variables %s%s",
			strings.Join(missing, ", "), a.hint())
	}

	if params := a.manifest.Endpoint.QueryParams; len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, resolveRaw(v, vars))
		}
		u += "?" + q.Encode()
	}
	return u, nil
}

func (a *Adapter) fetchConversation(
	ctx context.Context, hc *HookContext, reqURL string, vars map[string]string,
) (any, error) {
	raw, err := a.send(ctx, hc, reqURL, vars)
	if err == nil {
		return raw, nil
	}

	if connectors.StatusOf(err) == http.StatusUnauthorized && a.manifest.Auth.Method == AuthBearerFromAPI {
		logger.Debug("%s: 401, refreshing token and retrying once", a.manifest.ID)
		a.tokens.Invalidate()
		tok, terr := a.tokens.Token(ctx, hc.Page, true)
		if terr != nil {
			return nil, terr
		}
		vars[bearerVar] = tok
		return a.send(ctx, hc, reqURL, vars)
	}
	return nil, err
}

func (a *Adapter) send(ctx context.Context, hc *HookContext, reqURL string, vars map[string]string) (any, error) {
	ep := a.manifest.Endpoint
	method := strings.ToUpper(ep.Method)

	var body io.Reader = http.NoBody
	if method == http.MethodPost && ep.BodyTemplate != nil {
		data, err := json.Marshal(resolveBody(ep.BodyTemplate, vars))
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", a.manifest.ID, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, domain.NewTransportError(a.manifest.Name, 0, err)
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range ep.Headers {
		req.Header.Set(k, v)
	}
	if method == http.MethodPost && ep.BodyTemplate != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := vars[bearerVar]; a.manifest.Auth.Method == AuthBearerFromAPI && tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if ep.ReferrerTemplate != "" {
		req.Header.Set("Referer", ResolveTemplate(ep.ReferrerTemplate, vars))
	}
	if ep.Credentials != "omit" && hc.Page.Cookies != "" {
		req.Header.Set("Cookie", hc.Page.Cookies)
	}
	switch ep.Cache {
	case "no-store":
		req.Header.Set("Cache-Control", "no-store")
	case "no-cache", "reload":
		req.Header.Set("Cache-Control", "no-cache")
	}

	var raw any
	if err := connectors.DoJSON(ctx, a.env.Client(), req, a.manifest.Name, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// resolveBody substitutes template variables in every string of a body template.
func resolveBody(v any, vars map[string]string) any {
	switch t := v.(type) {
	case string:
		return resolveRaw(t, vars)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = resolveBody(x, vars)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = resolveBody(x, vars)
		}
		return out
	}
	return v
}

func (a *Adapter) parseResponse(ctx context.Context, raw any, hc *HookContext) ([]bundle.Message, string, error) {
	content := a.manifest.Parsing.Content

	data, title := raw, ""
	if a.hooks.TransformResponse != nil {
		t, err := a.hooks.TransformResponse(raw, hc)
		if err != nil {
			return nil, "", err
		}
		data, title = t.Data, t.Title
	}
	if title == "" && content.TitlePath != "" {
		title = GetString(data, content.TitlePath)
	}

	v, _ := GetByPath(data, content.MessagesPath)
	list, ok := v.([]any)
	if !ok {
		logger.Debug("%s: %q is not an array", a.manifest.ID, content.MessagesPath)
		return nil, title, nil
	}

	sorted := a.sortMessages(list)

	results := make([]*bundle.Message, len(sorted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxTextWorkers)
	for i, msg := range sorted {
		g.Go(func() error {
			m, err := a.mapMessage(gctx, msg, hc)
			if err != nil {
				return err
			}
			results[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, "", err
	}

	msgs := make([]bundle.Message, 0, len(results))
	for _, m := range results {
		if m != nil {
			msgs = append(msgs, *m)
		}
	}

	if a.hooks.AfterParse != nil {
		msgs = a.hooks.AfterParse(msgs, hc)
	}
	return msgs, title, nil
}

func (a *Adapter) mapMessage(ctx context.Context, msg any, hc *HookContext) (*bundle.Message, error) {
	if shouldSkip(a.rules, msg) {
		return nil, nil
	}

	parsing := a.manifest.Parsing
	roleValue, ok := GetByPath(msg, parsing.Role.Field)
	if !ok || roleValue == nil {
		return nil, nil
	}
	var role domain.Role
	switch parsing.Role.Mapping[Stringify(roleValue)] {
	case MapUser:
		role = domain.RoleUser
	case MapAssistant:
		role = domain.RoleAssistant
	default:
		return nil, nil
	}

	var text string
	if a.hooks.ExtractMessageText != nil {
		var err error
		text, err = a.hooks.ExtractMessageText(ctx, msg, hc)
		if err != nil {
			return nil, err
		}
	} else {
		v, _ := GetByPath(msg, parsing.Content.TextPath)
		text = Stringify(v)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	m := &bundle.Message{Role: role, Content: text}
	if field := parsing.Content.SortField; field != "" {
		v, _ := GetByPath(msg, field)
		m.Timestamp = timestampOf(v)
	}
	return m, nil
}

// sortMessages returns a stably sorted copy when a sort field is set.
func (a *Adapter) sortMessages(list []any) []any {
	field := a.manifest.Parsing.Content.SortField
	if field == "" {
		return list
	}
	desc := a.manifest.Parsing.Content.SortOrder == "desc"

	keys := make([]float64, len(list))
	idx := make([]int, len(list))
	for i, msg := range list {
		v, _ := GetByPath(msg, field)
		keys[i] = sortKey(v)
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		if desc {
			return keys[idx[i]] > keys[idx[j]]
		}
		return keys[idx[i]] < keys[idx[j]]
	})

	out := make([]any, len(list))
	for i, k := range idx {
		out[i] = list[k]
	}
	return out
}

// sortKey converts numbers, numeric strings and timestamps to a
// comparable value. Anything else sorts as zero.
func sortKey(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return float64(ts.UnixMilli())
		}
	}
	return 0
}

func timestampOf(v any) time.Time {
	switch t := v.(type) {
	case float64:
		if t <= 0 {
			return time.Time{}
		}
		if t > 1e12 {
			return time.UnixMilli(int64(t)).UTC()
		}
		sec := int64(t)
		return time.Unix(sec, int64((t-float64(sec))*1e9)).UTC()
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
