package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/ctxport/internal/core/domain"
)

// perPage is the REST page size.
const perPage = 100

// Client wraps the go-github client with rate limiting and error mapping.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
}

// NewClient creates a REST client on top of base. A non-empty token
// authenticates requests; an empty apiURL selects api.github.com.
func NewClient(base *http.Client, token, apiURL string, limiter *RateLimiter) (*Client, error) {
	hc := base
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		hc.Timeout = base.Timeout
	}

	c := gh.NewClient(hc)
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		u, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("github: parse API URL: %w", err)
		}
		c.BaseURL = u
	}

	if limiter == nil {
		limiter = NewRateLimiter(0)
	}
	return &Client{gh: c, rateLimiter: limiter}, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// GetIssue fetches a single issue.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number int) (*gh.Issue, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	issue, resp, err := c.gh.Issues.Get(ctx, owner, repo, number)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(ctx, err, "get issue")
	}
	return issue, nil
}

// GetPullRequest fetches a single pull request.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*gh.PullRequest, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(ctx, err, "get pull request")
	}
	return pr, nil
}

// ListIssueComments returns every conversation comment of an issue or
// pull request.
func (c *Client) ListIssueComments(ctx context.Context, owner, repo string, number int) ([]*gh.IssueComment, error) {
	opts := &gh.IssueListCommentsOptions{ListOptions: gh.ListOptions{PerPage: perPage}}
	var all []*gh.IssueComment

	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		comments, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, number, opts)
		c.updateRateLimitFromResponse(resp)
		if err != nil {
			return nil, c.wrapError(ctx, err, "list issue comments")
		}
		all = append(all, comments...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// ListReviewComments returns every inline review comment of a pull request.
func (c *Client) ListReviewComments(
	ctx context.Context, owner, repo string, number int,
) ([]*gh.PullRequestComment, error) {
	opts := &gh.PullRequestListCommentsOptions{ListOptions: gh.ListOptions{PerPage: perPage}}
	var all []*gh.PullRequestComment

	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		comments, resp, err := c.gh.PullRequests.ListComments(ctx, owner, repo, number, opts)
		c.updateRateLimitFromResponse(resp)
		if err != nil {
			return nil, c.wrapError(ctx, err, "list review comments")
		}
		all = append(all, comments...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to domain errors carrying our
// APIError and RateLimitError types.
func (c *Client) wrapError(ctx context.Context, err error, operation string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		rl := &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
		return domain.NewRateLimitError(platformName, statusOf(rateLimitErr.Response), rl)
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		rl := &RateLimitError{ResetAt: c.rateLimiter.ResetTime(), Limit: c.rateLimiter.Limit()}
		if d := abuseErr.GetRetryAfter(); d > 0 {
			rl.ResetAt = time.Now().Add(d)
		}
		return domain.NewRateLimitError(platformName, statusOf(abuseErr.Response), rl)
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		status := ghErr.Response.StatusCode
		if status == http.StatusForbidden || status == http.StatusTooManyRequests {
			return domain.NewRateLimitError(platformName, status, &RateLimitError{
				ResetAt:   c.rateLimiter.ResetTime(),
				Remaining: c.rateLimiter.Remaining(),
				Limit:     c.rateLimiter.Limit(),
			})
		}
		apiErr := &APIError{StatusCode: status, Message: ghErr.Message}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return domain.NewTransportError(platformName, status, apiErr)
	}

	return domain.NewTransportError(platformName, 0, fmt.Errorf("%s: %w", operation, err))
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
