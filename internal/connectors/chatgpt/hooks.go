package chatgpt

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/ctxport/internal/connectors/linearize"
	"github.com/custodia-labs/ctxport/internal/connectors/manifest"
	"github.com/custodia-labs/ctxport/internal/core/domain"
)

// linearKey is where TransformResponse stores the linearised messages.
const linearKey = "_linearMessages"

// Hooks returns the ChatGPT hooks.
func Hooks() manifest.Hooks {
	return manifest.Hooks{
		TransformResponse:  transformResponse,
		ExtractMessageText: extractMessageText,
	}
}

func transformResponse(raw any, _ *manifest.HookContext) (manifest.Transformed, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return manifest.Transformed{}, domain.NewMalformedPayload("chatgpt", "conversation response is not an object")
	}
	mapping, _ := obj["mapping"].(map[string]any)
	current, _ := obj["current_node"].(string)

	ids, err := Linearize(mapping, current)
	if err != nil {
		return manifest.Transformed{}, domain.NewMalformedPayload("chatgpt", "%v", err)
	}

	linear := make([]any, 0, len(ids))
	for _, id := range ids {
		if node, ok := mapping[id]; ok && node != nil {
			linear = append(linear, node)
		}
	}

	data := make(map[string]any, len(obj)+1)
	for k, v := range obj {
		data[k] = v
	}
	data[linearKey] = linear

	title, _ := obj["title"].(string)
	return manifest.Transformed{Data: data, Title: title}, nil
}

// Linearize orders a ChatGPT mapping. With a known current node it walks
// parents back to the root, which selects the visible branch. Without one
// it falls back to sorting every node by message.create_time.
func Linearize(mapping map[string]any, current string) ([]string, error) {
	if _, ok := mapping[current]; current != "" && ok {
		return linearize.WalkToRoot(current, func(id string) (string, bool) {
			p := manifest.GetString(mapping[id], "parent")
			return p, p != ""
		})
	}

	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	nodes := make([]linearize.Timed, 0, len(keys))
	for _, k := range keys {
		id := manifest.GetString(mapping[k], "id")
		if id == "" {
			continue
		}
		created, _ := manifest.GetByPath(mapping[k], "message.create_time")
		f, _ := created.(float64)
		nodes = append(nodes, linearize.Timed{ID: id, Created: f})
	}
	return linearize.ByCreation(nodes), nil
}

func extractMessageText(_ context.Context, msg any, _ *manifest.HookContext) (string, error) {
	content, ok := manifest.GetByPath(msg, "message.content")
	if !ok || content == nil {
		return "", nil
	}
	return StripCitations(FlattenContent(content)), nil
}

// FlattenContent renders a message content object as Markdown.
func FlattenContent(content any) string {
	c, ok := content.(map[string]any)
	if !ok {
		return ""
	}
	ct, _ := c["content_type"].(string)

	switch ct {
	case "text", "multimodal_text":
		return flattenParts(c["parts"])
	case "code":
		lang, _ := c["language"].(string)
		if lang == "unknown" {
			lang = ""
		}
		text, _ := c["text"].(string)
		return fence(lang, text)
	case "execution_output":
		text, _ := c["text"].(string)
		return fence("", text)
	case "tether_quote":
		return quote(c)
	case "tether_browsing_display", "user_editable_context", "reasoning_recap", "thoughts":
		return ""
	}

	if text, ok := c["text"].(string); ok {
		return text
	}
	return flattenParts(c["parts"])
}

func flattenParts(v any) string {
	parts, _ := v.([]any)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		switch part := p.(type) {
		case string:
			if strings.TrimSpace(part) != "" {
				out = append(out, part)
			}
		case map[string]any:
			if s := flattenPart(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return strings.Join(out, "\n")
}

func flattenPart(part map[string]any) string {
	ct, _ := part["content_type"].(string)
	switch ct {
	case "image_asset_pointer":
		return "[Image]"
	case "audio_transcription":
		text, _ := part["text"].(string)
		return text
	case "audio_asset_pointer", "real_time_user_audio_video_asset_pointer":
		return ""
	}
	if text, ok := part["text"].(string); ok {
		return text
	}
	return ""
}

func fence(lang, text string) string {
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return "```" + lang + "\n" + text + "\n```"
}

func quote(c map[string]any) string {
	text, _ := c["text"].(string)
	if strings.TrimSpace(text) == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	if title, _ := c["title"].(string); title != "" {
		return "> **" + title + "**\n" + strings.Join(lines, "\n")
	}
	return strings.Join(lines, "\n")
}

var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`【[^】]*】`),
	regexp.MustCompile(`\x{E200}[^\x{E201}]*\x{E201}`),
}

var extraSpaces = regexp.MustCompile(`[ \t]+\n`)

// StripCitations removes inline citation markers.
func StripCitations(s string) string {
	for _, re := range citationPatterns {
		s = re.ReplaceAllString(s, "")
	}
	return extraSpaces.ReplaceAllString(s, "\n")
}
