package bundle

import (
	"strings"
	"time"

	"github.com/custodia-labs/ctxport/internal/core/domain"
)

// Message is one chat turn before bundle construction.
type Message struct {
	Role      domain.Role
	Content   string
	Timestamp time.Time
}

// Participant IDs used by chat bundles.
const (
	UserID      = "user"
	AssistantID = "assistant"
)

// Conversation builds a two-participant chat bundle. An empty title is
// derived from the first user message.
func Conversation(
	source domain.SourceInfo, title, assistantName string, msgs []Message,
) (*domain.ContentBundle, error) {
	if assistantName == "" {
		assistantName = "Assistant"
	}

	b := NewBuilder(source).
		AddParticipant(UserID, "User", domain.RoleUser).
		AddParticipant(AssistantID, assistantName, domain.RoleAssistant)

	for _, m := range msgs {
		id := AssistantID
		if m.Role == domain.RoleUser {
			id = UserID
		}
		b.AddNode(id, m.Content, domain.NodeTypeMessage, m.Timestamp, nil)
	}

	if strings.TrimSpace(title) == "" {
		title = FirstUserTitle(msgs)
	}
	b.SetTitle(title)
	return b.Build()
}

// FirstUserTitle derives a title from the first non-empty user message.
func FirstUserTitle(msgs []Message) string {
	for _, m := range msgs {
		if m.Role == domain.RoleUser && strings.TrimSpace(m.Content) != "" {
			return TruncateTitle(m.Content)
		}
	}
	return ""
}

// MergeConsecutive joins adjacent messages of the same role with a newline.
// The merged message keeps the earlier timestamp.
func MergeConsecutive(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if n := len(out); n > 0 && out[n-1].Role == m.Role {
			out[n-1].Content = strings.TrimSpace(out[n-1].Content + "\n" + m.Content)
			continue
		}
		out = append(out, m)
	}
	return out
}

// DedupeAdjacent drops a message identical in role and content to the one
// before it.
func DedupeAdjacent(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if n := len(out); n > 0 && out[n-1].Role == m.Role && out[n-1].Content == m.Content {
			continue
		}
		out = append(out, m)
	}
	return out
}
