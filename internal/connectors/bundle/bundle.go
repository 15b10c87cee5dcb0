// Package bundle builds domain.ContentBundle values that satisfy the
// bundle invariants: trimmed non-empty content, resolvable participants
// and dense ordering.
package bundle

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/ctxport/internal/core/domain"
)

// TitleLimit is the rune length at which derived titles are truncated.
const TitleLimit = 50

// Builder accumulates participants and nodes for one bundle.
type Builder struct {
	source       domain.SourceInfo
	title        string
	tags         []string
	participants []domain.Participant
	known        map[string]bool
	nodes        []domain.ContentNode
}

// NewBuilder starts a bundle for the given source.
func NewBuilder(source domain.SourceInfo) *Builder {
	return &Builder{
		source: source,
		known:  make(map[string]bool),
	}
}

// SetTitle sets the bundle title.
func (b *Builder) SetTitle(title string) *Builder {
	b.title = strings.TrimSpace(title)
	return b
}

// SetTags sets the bundle tags.
func (b *Builder) SetTags(tags []string) *Builder {
	b.tags = tags
	return b
}

// AddParticipant registers a participant once; later calls with the same
// ID are ignored.
func (b *Builder) AddParticipant(id, name string, role domain.Role) *Builder {
	if b.known[id] {
		return b
	}
	b.known[id] = true
	b.participants = append(b.participants, domain.Participant{ID: id, Name: name, Role: role})
	return b
}

// AddNode appends a node. Content is trimmed and empty nodes are dropped.
// It reports whether the node was kept.
func (b *Builder) AddNode(participantID, content, nodeType string, ts time.Time, meta map[string]any) bool {
	content = strings.TrimSpace(content)
	if content == "" {
		return false
	}
	b.nodes = append(b.nodes, domain.ContentNode{
		ID:            uuid.NewString(),
		ParticipantID: participantID,
		Content:       content,
		Order:         len(b.nodes),
		Type:          nodeType,
		Timestamp:     ts,
		Meta:          meta,
	})
	return true
}

// Len returns the number of kept nodes.
func (b *Builder) Len() int {
	return len(b.nodes)
}

// Build finalises the bundle. Zero nodes is an EmptyResult error.
func (b *Builder) Build() (*domain.ContentBundle, error) {
	if len(b.nodes) == 0 {
		return nil, domain.NewEmptyResult(b.source.Platform)
	}
	for _, n := range b.nodes {
		if !b.known[n.ParticipantID] {
			b.AddParticipant(n.ParticipantID, n.ParticipantID, "")
		}
	}
	return &domain.ContentBundle{
		ID:           uuid.NewString(),
		Title:        b.title,
		Participants: b.participants,
		Nodes:        b.nodes,
		Source:       b.source,
		Tags:         b.tags,
	}, nil
}

// TruncateTitle shortens s to TitleLimit runes, appending "..." when cut.
func TruncateTitle(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= TitleLimit {
		return s
	}
	r := []rune(s)
	return string(r[:TitleLimit]) + "..."
}
