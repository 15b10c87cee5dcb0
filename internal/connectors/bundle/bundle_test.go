package bundle

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ctxport/internal/core/domain"
)

var testSource = domain.SourceInfo{
	Platform:      "chatgpt",
	URL:           "https://chatgpt.com/c/abc",
	ExtractedAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	PluginID:      "chatgpt-ext",
	PluginVersion: "2.0.0",
}

func TestBuilder_DropsEmptyAndNumbersDensely(t *testing.T) {
	b := NewBuilder(testSource).AddParticipant("user", "User", domain.RoleUser)

	assert.True(t, b.AddNode("user", "  first  ", domain.NodeTypeMessage, time.Time{}, nil))
	assert.False(t, b.AddNode("user", " \n\t ", domain.NodeTypeMessage, time.Time{}, nil))
	assert.True(t, b.AddNode("user", "second", domain.NodeTypeMessage, time.Time{}, nil))

	got, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, got.Validate())

	require.Len(t, got.Nodes, 2)
	assert.Equal(t, "first", got.Nodes[0].Content)
	assert.Equal(t, 0, got.Nodes[0].Order)
	assert.Equal(t, 1, got.Nodes[1].Order)
	assert.NotEqual(t, got.Nodes[0].ID, got.Nodes[1].ID)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, testSource, got.Source)
}

func TestBuilder_EmptyIsError(t *testing.T) {
	_, err := NewBuilder(testSource).Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyResult)
	assert.Contains(t, err.Error(), "chatgpt")
}

func TestBuilder_UnknownParticipantRegistered(t *testing.T) {
	b := NewBuilder(testSource)
	b.AddNode("octocat", "hello", domain.NodeTypeComment, time.Time{}, nil)

	got, err := b.Build()
	require.NoError(t, err)
	assert.NoError(t, got.Validate())
	assert.Equal(t, "octocat", got.Participants[0].Name)
}

func TestConversation(t *testing.T) {
	msgs := []Message{
		{Role: domain.RoleUser, Content: strings.Repeat("a", 60)},
		{Role: domain.RoleAssistant, Content: "reply"},
	}

	got, err := Conversation(testSource, "", "ChatGPT", msgs)
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("a", 50)+"...", got.Title)
	require.Len(t, got.Participants, 2)
	assert.Equal(t, "ChatGPT", got.Participants[1].Name)
	assert.Equal(t, UserID, got.Nodes[0].ParticipantID)
	assert.Equal(t, AssistantID, got.Nodes[1].ParticipantID)

	got, err = Conversation(testSource, "Given", "", msgs)
	require.NoError(t, err)
	assert.Equal(t, "Given", got.Title)
	assert.Equal(t, "Assistant", got.Participants[1].Name)
}

func TestTruncateTitle(t *testing.T) {
	assert.Equal(t, "short", TruncateTitle("  short "))
	assert.Equal(t, strings.Repeat("語", 50)+"...", TruncateTitle(strings.Repeat("語", 51)))
	assert.Equal(t, strings.Repeat("x", 50), TruncateTitle(strings.Repeat("x", 50)))
}

func TestMergeConsecutive(t *testing.T) {
	in := []Message{
		{Role: domain.RoleUser, Content: "a"},
		{Role: domain.RoleAssistant, Content: "b"},
		{Role: domain.RoleAssistant, Content: "c "},
		{Role: domain.RoleUser, Content: "d"},
	}
	out := MergeConsecutive(in)
	require.Len(t, out, 3)
	assert.Equal(t, "b\nc", out[1].Content)
	assert.Equal(t, "b", in[1].Content, "input must not be mutated")
}

func TestDedupeAdjacent(t *testing.T) {
	in := []Message{
		{Role: domain.RoleUser, Content: "a"},
		{Role: domain.RoleUser, Content: "a"},
		{Role: domain.RoleAssistant, Content: "a"},
		{Role: domain.RoleUser, Content: "a"},
	}
	assert.Len(t, DedupeAdjacent(in), 3)
}
