package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is the chat role of a participant.
// Non-chat participants (GitHub users) carry descriptive roles instead.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"

	RoleAuthor    Role = "author"
	RoleCommenter Role = "commenter"
	RoleReviewer  Role = "reviewer"
)

// IsChat reports whether r is one of the chat roles.
func (r Role) IsChat() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Node types used outside plain chat messages.
const (
	NodeTypeMessage       = "message"
	NodeTypeIssue         = "issue"
	NodeTypePullRequest   = "pull-request"
	NodeTypeComment       = "comment"
	NodeTypeReview        = "review"
	NodeTypeReviewComment = "review-comment"
)

// ContentBundle is the canonical representation of one extracted
// conversation, issue or pull request.
type ContentBundle struct {
	// ID is a random identifier, unrelated to the platform ID.
	ID string

	// Title is optional.
	Title string

	Participants []Participant

	// Nodes are sorted by Order, which is dense and starts at zero.
	Nodes []ContentNode

	Source SourceInfo

	// Tags holds platform labels, GitHub only.
	Tags []string
}

// Participant is a speaker in a bundle.
type Participant struct {
	ID   string
	Name string
	Role Role
}

// ContentNode is one message, comment or review in a bundle.
type ContentNode struct {
	ID            string
	ParticipantID string

	// Content is trimmed Markdown, never empty.
	Content string

	Order int

	// Type is "message" for chat platforms and one of the GitHub node types otherwise.
	Type string

	// Timestamp is zero when the platform does not supply one.
	Timestamp time.Time

	Meta map[string]any
}

// SourceInfo records where a bundle came from.
type SourceInfo struct {
	Platform      string
	URL           string
	ExtractedAt   time.Time
	PluginID      string
	PluginVersion string
}

// Participant returns the participant with the given ID.
func (b *ContentBundle) Participant(id string) (Participant, bool) {
	for _, p := range b.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// MessageCount returns the number of content nodes.
func (b *ContentBundle) MessageCount() int {
	return len(b.Nodes)
}

// Validate checks the bundle invariants.
func (b *ContentBundle) Validate() error {
	if b.ID == "" {
		return errors.New("bundle: missing id")
	}
	if len(b.Nodes) == 0 {
		return errors.New("bundle: no nodes")
	}

	known := make(map[string]bool, len(b.Participants))
	for _, p := range b.Participants {
		known[p.ID] = true
	}

	seen := make(map[int]bool, len(b.Nodes))
	for i, n := range b.Nodes {
		if !known[n.ParticipantID] {
			return fmt.Errorf("bundle: node %d references unknown participant %q", i, n.ParticipantID)
		}
		if seen[n.Order] {
			return fmt.Errorf("bundle: duplicate order %d", n.Order)
		}
		seen[n.Order] = true
		if i > 0 && n.Order < b.Nodes[i-1].Order {
			return fmt.Errorf("bundle: node %d out of order", i)
		}
		if n.Content == "" || strings.TrimSpace(n.Content) != n.Content {
			return fmt.Errorf("bundle: node %d content is empty or untrimmed", i)
		}
	}
	return nil
}
