package github

import (
	"context"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/sync/errgroup"
)

// fetchREST loads the thread through the public REST API. Pull request
// calls run concurrently.
func (c *Connector) fetchREST(ctx context.Context, ref Ref) (thread, error) {
	if !ref.IsPullRequest() {
		var (
			issue    *gh.Issue
			comments []*gh.IssueComment
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			issue, err = c.rest.GetIssue(gctx, ref.Owner, ref.Repo, ref.Number)
			return err
		})
		g.Go(func() (err error) {
			comments, err = c.rest.ListIssueComments(gctx, ref.Owner, ref.Repo, ref.Number)
			return err
		})
		if err := g.Wait(); err != nil {
			return thread{}, err
		}
		return issueThread(issue, comments), nil
	}

	var (
		pr       *gh.PullRequest
		comments []*gh.IssueComment
		review   []*gh.PullRequestComment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		pr, err = c.rest.GetPullRequest(gctx, ref.Owner, ref.Repo, ref.Number)
		return err
	})
	g.Go(func() (err error) {
		comments, err = c.rest.ListIssueComments(gctx, ref.Owner, ref.Repo, ref.Number)
		return err
	})
	g.Go(func() (err error) {
		review, err = c.rest.ListReviewComments(gctx, ref.Owner, ref.Repo, ref.Number)
		return err
	})
	if err := g.Wait(); err != nil {
		return thread{}, err
	}
	return pullThread(pr, comments, review), nil
}

func issueThread(issue *gh.Issue, comments []*gh.IssueComment) thread {
	t := thread{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		State:     issue.GetState(),
		CreatedAt: issue.GetCreatedAt().Time.UTC(),
		Author:    issue.GetUser().GetLogin(),
		Comments:  issueComments(comments),
	}
	for _, l := range issue.Labels {
		t.Labels = append(t.Labels, l.GetName())
	}
	return t
}

func pullThread(pr *gh.PullRequest, comments []*gh.IssueComment, review []*gh.PullRequestComment) thread {
	t := thread{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		Body:      pr.GetBody(),
		State:     pr.GetState(),
		Merged:    pr.GetMerged(),
		CreatedAt: pr.GetCreatedAt().Time.UTC(),
		Author:    pr.GetUser().GetLogin(),
		Comments:  issueComments(comments),
	}
	for _, l := range pr.Labels {
		t.Labels = append(t.Labels, l.GetName())
	}
	for _, c := range review {
		t.ReviewComments = append(t.ReviewComments, comment{
			Author:    c.GetUser().GetLogin(),
			Body:      c.GetBody(),
			CreatedAt: c.GetCreatedAt().Time.UTC(),
			Path:      c.GetPath(),
			DiffHunk:  c.GetDiffHunk(),
		})
	}
	return t
}

func issueComments(in []*gh.IssueComment) []comment {
	out := make([]comment, 0, len(in))
	for _, c := range in {
		out = append(out, comment{
			Author:    c.GetUser().GetLogin(),
			Body:      c.GetBody(),
			CreatedAt: c.GetCreatedAt().Time.UTC(),
		})
	}
	return out
}
