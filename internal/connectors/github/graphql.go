package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/ctxport/internal/connectors"
	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/logger"
)

// DefaultGraphQLURL is the same-origin GraphQL endpoint used by github.com.
const DefaultGraphQLURL = "https://github.com/graphql"

const issueQuery = `
query ($owner: String!, $repo: String!, $number: Int!) {
  repository(owner: $owner, name: $repo) {
    issue(number: $number) {
      number
      title
      body
      state
      createdAt
      author { login }
      labels(first: 20) { nodes { name } }
      comments(first: 100) {
        nodes { body createdAt author { login } }
      }
    }
  }
}`

const pullRequestQuery = `
query ($owner: String!, $repo: String!, $number: Int!) {
  repository(owner: $owner, name: $repo) {
    pullRequest(number: $number) {
      number
      title
      body
      state
      merged
      createdAt
      author { login }
      labels(first: 20) { nodes { name } }
      comments(first: 100) {
        nodes { body createdAt author { login } }
      }
      reviews(first: 100) {
        nodes {
          body
          createdAt
          author { login }
          comments(first: 100) {
            nodes { body path diffHunk createdAt author { login } }
          }
        }
      }
    }
  }
}`

type gqlActor struct {
	Login string `json:"login"`
}

type gqlComment struct {
	Body      string    `json:"body"`
	Path      string    `json:"path"`
	DiffHunk  string    `json:"diffHunk"`
	CreatedAt string    `json:"createdAt"`
	Author    *gqlActor `json:"author"`
}

type gqlLabels struct {
	Nodes []struct {
		Name string `json:"name"`
	} `json:"nodes"`
}

type gqlComments struct {
	Nodes []gqlComment `json:"nodes"`
}

type gqlReview struct {
	gqlComment
	Comments gqlComments `json:"comments"`
}

type gqlThread struct {
	Number    int         `json:"number"`
	Title     string      `json:"title"`
	Body      *string     `json:"body"`
	State     string      `json:"state"`
	Merged    bool        `json:"merged"`
	CreatedAt string      `json:"createdAt"`
	Author    *gqlActor   `json:"author"`
	Labels    gqlLabels   `json:"labels"`
	Comments  gqlComments `json:"comments"`
	Reviews   struct {
		Nodes []gqlReview `json:"nodes"`
	} `json:"reviews"`
}

type gqlData struct {
	Repository *struct {
		Issue       *gqlThread `json:"issue"`
		PullRequest *gqlThread `json:"pullRequest"`
	} `json:"repository"`
}

type gqlResponse struct {
	Data   *gqlData `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// pageMeta holds the session markers github.com renders into every page.
type pageMeta struct {
	Login string
	CSRF  string
}

func readPageMeta(html string) pageMeta {
	if strings.TrimSpace(html) == "" {
		return pageMeta{}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Debug("github: parse page HTML: %v", err)
		return pageMeta{}
	}
	return pageMeta{
		Login: doc.Find(`meta[name="user-login"]`).AttrOr("content", ""),
		CSRF:  doc.Find(`meta[name="csrf-token"]`).AttrOr("content", ""),
	}
}

// fetchGraphQL loads the thread through the signed-in session.
func (c *Connector) fetchGraphQL(ctx context.Context, ref Ref, page domain.Page) (thread, error) {
	meta := readPageMeta(page.HTML)
	if meta.Login == "" {
		return thread{}, ErrNotLoggedIn
	}
	if meta.CSRF == "" {
		return thread{}, ErrNoCSRFToken
	}

	query := issueQuery
	if ref.IsPullRequest() {
		query = pullRequestQuery
	}
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": map[string]any{"owner": ref.Owner, "repo": ref.Repo, "number": ref.Number},
	})
	if err != nil {
		return thread{}, fmt.Errorf("github: encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphQLURL, bytes.NewReader(payload))
	if err != nil {
		return thread{}, domain.NewTransportError(platformName, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CSRF-Token", meta.CSRF)
	req.Header.Set("User-Agent", connectors.UserAgent)
	if page.Cookies != "" {
		req.Header.Set("Cookie", page.Cookies)
	}

	body, err := c.doGraphQL(ctx, req)
	if err != nil {
		return thread{}, err
	}

	var out gqlResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return thread{}, domain.NewMalformedPayload(platformName, "decode GraphQL response: %v", err)
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, len(out.Errors))
		for i, e := range out.Errors {
			msgs[i] = e.Message
		}
		return thread{}, domain.NewMalformedPayload(platformName, "GraphQL errors: %s", strings.Join(msgs, ", "))
	}
	if out.Data == nil || out.Data.Repository == nil {
		return thread{}, domain.NewMalformedPayload(platformName, "GraphQL response missing data")
	}

	node := out.Data.Repository.Issue
	if ref.IsPullRequest() {
		node = out.Data.Repository.PullRequest
	}
	if node == nil {
		return thread{}, domain.NewMalformedPayload(platformName, "GraphQL response missing %s", ref.Kind)
	}
	return node.toThread(), nil
}

func (c *Connector) doGraphQL(ctx context.Context, req *http.Request) ([]byte, error) {
	logger.Debug("github POST %s", req.URL.Redacted())
	resp, err := c.env.Client().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.NewTransportError(platformName, 0, err)
	}
	defer resp.Body.Close()

	if rl := c.rest.RateLimiter().CheckRateLimit(resp); rl != nil {
		return nil, domain.NewRateLimitError(platformName, resp.StatusCode, rl)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewTransportError(platformName, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewTransportError(platformName, resp.StatusCode, err)
	}
	return body, nil
}

func (g *gqlThread) toThread() thread {
	t := thread{
		Number:    g.Number,
		Title:     g.Title,
		State:     g.State,
		Merged:    g.Merged,
		CreatedAt: parseTime(g.CreatedAt),
		Author:    g.Author.login(),
	}
	if g.Body != nil {
		t.Body = *g.Body
	}
	for _, l := range g.Labels.Nodes {
		t.Labels = append(t.Labels, l.Name)
	}
	for _, c := range g.Comments.Nodes {
		t.Comments = append(t.Comments, c.toComment())
	}
	for _, r := range g.Reviews.Nodes {
		if strings.TrimSpace(r.Body) != "" {
			t.Reviews = append(t.Reviews, r.toComment())
		}
		for _, c := range r.Comments.Nodes {
			t.ReviewComments = append(t.ReviewComments, c.toComment())
		}
	}
	return t
}

func (c gqlComment) toComment() comment {
	return comment{
		Author:    c.Author.login(),
		Body:      c.Body,
		CreatedAt: parseTime(c.CreatedAt),
		Path:      c.Path,
		DiffHunk:  c.DiffHunk,
	}
}

func (a *gqlActor) login() string {
	if a == nil {
		return ""
	}
	return a.Login
}
