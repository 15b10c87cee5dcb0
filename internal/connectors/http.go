package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/logger"
)

// maxBody caps response bodies read into memory.
const maxBody = 64 << 20

// Do sends req and returns the body of a 2xx response. Any other status
// is a transport error carrying the status.
func Do(ctx context.Context, client *http.Client, req *http.Request, platform string) ([]byte, error) {
	req = req.WithContext(ctx)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}

	logger.Debug("%s %s %s", platform, req.Method, req.URL.Redacted())
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.NewTransportError(platform, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, domain.NewTransportError(platform, resp.StatusCode, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug("%s responded with %d", platform, resp.StatusCode)
		return nil, domain.NewTransportError(platform, resp.StatusCode, nil)
	}
	return body, nil
}

// DoJSON sends req and decodes a 2xx JSON body into out.
func DoJSON(ctx context.Context, client *http.Client, req *http.Request, platform string, out any) error {
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	body, err := Do(ctx, client, req, platform)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.NewMalformedPayload(platform, "decode response: %v", err)
	}
	return nil
}

// StatusOf returns the HTTP status carried by a transport error, or 0.
func StatusOf(err error) int {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Status
	}
	return 0
}
