package manifest

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/ctxport/internal/connectors"
	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/logger"
)

// tokenSkew is subtracted from the expiry before a cached token is reused.
const tokenSkew = 60 * time.Second

// tokenCache holds one bearer token per adapter. Concurrent refreshes
// share a single in-flight session request; the singleflight key is
// released as soon as that request settles.
type tokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time

	group singleflight.Group
	now   func() time.Time
	fetch func(ctx context.Context, page domain.Page) (string, time.Time, error)
}

// Token returns a valid token, fetching one when the cache is empty,
// about to expire, or force is set.
func (c *tokenCache) Token(ctx context.Context, page domain.Page, force bool) (string, error) {
	if !force {
		c.mu.Lock()
		tok, exp := c.token, c.expiresAt
		c.mu.Unlock()
		if tok != "" && exp.Add(-tokenSkew).After(c.now()) {
			return tok, nil
		}
	}

	ch := c.group.DoChan("token", func() (any, error) {
		tok, exp, err := c.fetch(context.WithoutCancel(ctx), page)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.token, c.expiresAt = tok, exp
		c.mu.Unlock()
		return tok, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Invalidate drops the cached token.
func (c *tokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}

// fetchSessionToken requests the session endpoint with the page cookies
// and reads the token and its expiry.
func (a *Adapter) fetchSessionToken(ctx context.Context, page domain.Page) (string, time.Time, error) {
	auth := a.manifest.Auth
	logger.Debug("%s: fetching session token", a.manifest.ID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, auth.SessionEndpoint, http.NoBody)
	if err != nil {
		return "", time.Time{}, domain.NewAuthError(a.manifest.Name, "build session request: %v", err)
	}
	if page.Cookies != "" {
		req.Header.Set("Cookie", page.Cookies)
	}

	var session any
	if err := connectors.DoJSON(ctx, a.env.Client(), req, a.manifest.Name, &session); err != nil {
		return "", time.Time{}, err
	}

	tok := GetString(session, auth.TokenPath)
	if tok == "" {
		return "", time.Time{}, domain.NewAuthError(a.manifest.Name,
			"cannot retrieve access token from session%s", a.hint())
	}

	now := a.env.Clock()
	if auth.ExpiresPath != "" {
		if raw, ok := GetByPath(session, auth.ExpiresPath); ok {
			if exp, ok := parseExpiry(raw); ok {
				return tok, exp, nil
			}
		}
	}
	return tok, now.Add(auth.TokenTTL()), nil
}

var expiryLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123,
	time.RFC1123Z,
	time.DateTime,
}

// parseExpiry accepts timestamp strings and epoch numbers (seconds, or
// milliseconds above 1e12).
func parseExpiry(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		for _, layout := range expiryLayouts {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts, true
			}
		}
	case float64:
		if t <= 0 {
			return time.Time{}, false
		}
		if t > 1e12 {
			return time.UnixMilli(int64(t)), true
		}
		return time.Unix(int64(t), 0), true
	}
	return time.Time{}, false
}
