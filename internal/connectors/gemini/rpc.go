package gemini

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/custodia-labs/ctxport/internal/connectors"
	"github.com/custodia-labs/ctxport/internal/core/domain"
)

const (
	rpcID        = "hNvQHb"
	batchExecute = "/_/BardChatUi/data/batchexecute"
	xssiPrefix   = ")]}'"
)

// fetchPayload calls the conversation RPC and decodes its inner payload.
func (c *Connector) fetchPayload(ctx context.Context, id string, params RuntimeParams, cookies string) (any, error) {
	inner, err := json.Marshal([]any{"c_" + id, 100, nil, 1, []int{0}, []int{4}, nil, 1})
	if err != nil {
		return nil, err
	}
	freq, err := json.Marshal([]any{[]any{[]any{rpcID, string(inner), nil, "generic"}}})
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"rpcids":      {rpcID},
		"source-path": {"/app/" + id},
		"bl":          {params.BL},
		"f.sid":       {params.FSID},
		"hl":          {params.HL},
		"_reqid":      {strconv.Itoa(1_000_000 + rand.IntN(9_000_000))},
		"rt":          {"c"},
	}
	form := url.Values{"f.req": {string(freq)}}
	if params.At != "" {
		form.Set("at", params.At)
	}

	endpoint := c.baseURL + batchExecute + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, domain.NewTransportError(platformName, 0, err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")
	req.Header.Set("Origin", DefaultBaseURL)
	req.Header.Set("Referer", DefaultBaseURL+"/app/"+id)
	req.Header.Set("X-Same-Domain", "1")
	req.Header.Set("Cache-Control", "no-store")
	if cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	body, err := connectors.Do(ctx, c.env.Client(), req, platformName)
	if err != nil {
		return nil, err
	}

	raw, ok := FindRPCPayload(string(body), rpcID)
	if !ok {
		return nil, domain.NewMalformedPayload(platformName, "cannot locate Gemini payload in batchexecute response")
	}
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, domain.NewMalformedPayload(platformName, "Gemini payload is not valid JSON")
	}
	return payload, nil
}

// FindRPCPayload scans a batchexecute response line by line for the first
// ["wrb.fr", rpc, "<payload>"] envelope.
func FindRPCPayload(response, rpc string) (string, bool) {
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == xssiPrefix {
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			continue
		}
		if payload, ok := findEnvelope(parsed, rpc); ok {
			return payload, true
		}
	}
	return "", false
}

func findEnvelope(node any, rpc string) (string, bool) {
	arr, ok := node.([]any)
	if !ok {
		return "", false
	}
	if len(arr) >= 3 && arr[0] == "wrb.fr" && arr[1] == rpc {
		if s, ok := arr[2].(string); ok && s != "" {
			return s, true
		}
	}
	for _, child := range arr {
		if payload, ok := findEnvelope(child, rpc); ok {
			return payload, true
		}
	}
	return "", false
}
