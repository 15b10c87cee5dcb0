package github

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/custodia-labs/ctxport/internal/core/domain"
)

var (
	issueURLPattern = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/issues/(\d+)`)
	pullURLPattern  = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/pull/(\d+)`)
	issueIDPattern  = regexp.MustCompile(`^([^/]+)/([^/]+)/issues/(\d+)$`)
	pullIDPattern   = regexp.MustCompile(`^([^/]+)/([^/]+)/pull/(\d+)$`)
)

// Ref identifies one issue or pull request.
type Ref struct {
	Owner  string
	Repo   string
	Number int

	// Kind is domain.NodeTypeIssue or domain.NodeTypePullRequest.
	Kind string
}

// ParseURL reads a Ref from an issue or pull request page URL.
func ParseURL(rawURL string) (Ref, bool) {
	if ref, ok := match(issueURLPattern, rawURL, domain.NodeTypeIssue); ok {
		return ref, true
	}
	return match(pullURLPattern, rawURL, domain.NodeTypePullRequest)
}

// ParseID reads a Ref from "owner/repo/issues/N" or "owner/repo/pull/N".
func ParseID(id string) (Ref, bool) {
	if ref, ok := match(issueIDPattern, id, domain.NodeTypeIssue); ok {
		return ref, true
	}
	return match(pullIDPattern, id, domain.NodeTypePullRequest)
}

func match(re *regexp.Regexp, s, kind string) (Ref, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return Ref{}, false
	}
	n, err := strconv.Atoi(m[3])
	if err != nil {
		return Ref{}, false
	}
	return Ref{Owner: m[1], Repo: m[2], Number: n, Kind: kind}, true
}

// IsPullRequest reports whether the ref names a pull request.
func (r Ref) IsPullRequest() bool {
	return r.Kind == domain.NodeTypePullRequest
}

// Repository returns "owner/repo".
func (r Ref) Repository() string {
	return r.Owner + "/" + r.Repo
}

// URL returns the canonical page URL.
func (r Ref) URL() string {
	return "https://github.com/" + r.ID()
}

// ID returns the fetch-by-ID form.
func (r Ref) ID() string {
	segment := "issues"
	if r.IsPullRequest() {
		segment = "pull"
	}
	return fmt.Sprintf("%s/%s/%s/%d", r.Owner, r.Repo, segment, r.Number)
}
