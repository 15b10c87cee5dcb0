package github

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/ctxport/internal/connectors/bundle"
	"github.com/custodia-labs/ctxport/internal/core/domain"
)

// ghostLogin stands in for deleted accounts.
const ghostLogin = "ghost"

// thread is the fetch-path independent view of an issue or pull request.
type thread struct {
	Number    int
	Title     string
	Body      string
	State     string
	Merged    bool
	CreatedAt time.Time
	Author    string
	Labels    []string

	Comments       []comment
	Reviews        []comment
	ReviewComments []comment
}

type comment struct {
	Author    string
	Body      string
	CreatedAt time.Time
	Path      string
	DiffHunk  string
}

func loginOrGhost(login string) string {
	if login == "" {
		return ghostLogin
	}
	return login
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

type pending struct {
	comment
	nodeType string
	role     domain.Role
	meta     map[string]any
}

// buildBundle turns a thread into a bundle. Pull request activity is
// merged chronologically; issue comments keep their API order.
func buildBundle(ref Ref, t thread, source domain.SourceInfo) (*domain.ContentBundle, error) {
	author := loginOrGhost(t.Author)
	b := bundle.NewBuilder(source).
		SetTitle(fmt.Sprintf("#%d %s", t.Number, t.Title)).
		SetTags(t.Labels).
		AddParticipant(author, author, domain.RoleAuthor)

	meta := map[string]any{
		"state": strings.ToLower(t.State),
		"repo":  ref.Repository(),
	}
	if ref.IsPullRequest() {
		meta["merged"] = t.Merged
	}
	b.AddNode(author, t.Body, ref.Kind, t.CreatedAt, meta)

	var items []pending
	for _, c := range t.Comments {
		items = append(items, pending{comment: c, nodeType: domain.NodeTypeComment, role: domain.RoleCommenter})
	}
	for _, c := range t.Reviews {
		items = append(items, pending{comment: c, nodeType: domain.NodeTypeReview, role: domain.RoleReviewer})
	}
	for _, c := range t.ReviewComments {
		items = append(items, pending{
			comment:  c,
			nodeType: domain.NodeTypeReviewComment,
			role:     domain.RoleReviewer,
			meta:     map[string]any{"path": c.Path, "diff_hunk": c.DiffHunk},
		})
	}

	for _, it := range items {
		login := loginOrGhost(it.Author)
		b.AddParticipant(login, login, it.role)
	}

	if ref.IsPullRequest() {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		})
	}
	for _, it := range items {
		b.AddNode(loginOrGhost(it.Author), it.Body, it.nodeType, it.CreatedAt, it.meta)
	}

	return b.Build()
}
