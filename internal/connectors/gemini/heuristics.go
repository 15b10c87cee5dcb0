package gemini

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/ctxport/internal/connectors/bundle"
	"github.com/custodia-labs/ctxport/internal/core/domain"
)

// HeuristicsVersion identifies the payload ruleset below. Bump it whenever
// a shape or rejection rule changes so drift reports can be correlated.
const HeuristicsVersion = "2026.02.1"

var (
	imageURLPattern    = regexp.MustCompile(`^https://lh3\.googleusercontent\.com/gg(?:-dl)?/`)
	opaqueIDPattern    = regexp.MustCompile(`^(?:rc_|r_|c_)[a-zA-Z0-9_]+$`)
	tokenPattern       = regexp.MustCompile(`^[A-Za-z0-9+/=_-]{48,}$`)
	wordPattern        = regexp.MustCompile(`[A-Za-z0-9\x{4e00}-\x{9fff}]`)
	assistantIDPattern = regexp.MustCompile(`^rc_[a-zA-Z0-9]+$`)
)

// textRule rejects strings that are structurally present but are not
// message text.
type textRule struct {
	name   string
	reject func(string) bool
}

var textRules = []textRule{
	{"empty", func(s string) bool { return s == "" }},
	{"bare-url", func(s string) bool {
		return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
	}},
	{"image-generation-content", func(s string) bool {
		return strings.Contains(s, "googleusercontent.com/image_generation_content/")
	}},
	{"opaque-id", opaqueIDPattern.MatchString},
	{"token", tokenPattern.MatchString},
	{"no-word-characters", func(s string) bool { return !wordPattern.MatchString(s) }},
}

// Stats records how the ruleset behaved on one payload.
type Stats struct {
	Version        string
	ArraysVisited  int
	UserTurns      int
	AssistantTurns int

	// Rejected counts candidate strings per rule name.
	Rejected map[string]int
}

type walker struct {
	stats Stats
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(s)
}

func (w *walker) isMessageText(s string) bool {
	text := normalizeText(s)
	for _, r := range textRules {
		if r.reject(text) {
			w.stats.Rejected[r.name]++
			return false
		}
	}
	return true
}

// children returns the direct children of arrays and objects in document
// order. Object keys are sorted.
func children(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = t[k]
		}
		return out
	}
	return nil
}

// allStrings returns every string under root in pre-order.
func allStrings(root any) []string {
	var out []string
	stack := []any{root}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s, ok := cur.(string); ok {
			out = append(out, s)
			continue
		}
		kids := children(cur)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

func (w *walker) firstText(root any) string {
	for _, s := range allStrings(root) {
		if w.isMessageText(s) {
			return normalizeText(s)
		}
	}
	return ""
}

func imageURLs(root any) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, s := range allStrings(root) {
		u := strings.TrimSpace(s)
		if !imageURLPattern.MatchString(u) || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

// userTurn matches [[...], 1, null, ...].
func (w *walker) userTurn(node []any) string {
	if len(node) < 3 || node[2] != nil {
		return ""
	}
	if n, ok := node[1].(float64); !ok || n != 1 {
		return ""
	}
	if _, ok := node[0].([]any); !ok {
		return ""
	}
	return w.firstText(node[0])
}

// assistantTurn matches ["rc_<id>", ...]. Generated images are appended;
// image-only turns keep the last image.
func (w *walker) assistantTurn(node []any) string {
	if len(node) == 0 {
		return ""
	}
	id, ok := node[0].(string)
	if !ok || !assistantIDPattern.MatchString(id) {
		return ""
	}

	var text string
	if len(node) > 1 {
		text = w.firstText(node[1])
	}
	images := imageURLs(node)
	if text == "" && len(images) == 0 {
		return ""
	}

	md := make([]string, len(images))
	for i, u := range images {
		md[i] = "![Generated image](" + u + ")"
	}
	switch {
	case text == "":
		return md[len(md)-1]
	case len(md) > 0:
		return text + "\n\n" + strings.Join(md, "\n")
	default:
		return text
	}
}

// ExtractMessages walks the decoded conversation payload in pre-order and
// returns the recognised turns with adjacent duplicates removed.
func ExtractMessages(payload any) ([]bundle.Message, Stats) {
	w := &walker{stats: Stats{Version: HeuristicsVersion, Rejected: map[string]int{}}}

	var msgs []bundle.Message
	stack := []any{payload}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, ok := cur.([]any)
		if !ok {
			continue
		}
		w.stats.ArraysVisited++

		if text := w.userTurn(node); text != "" {
			w.stats.UserTurns++
			msgs = append(msgs, bundle.Message{Role: domain.RoleUser, Content: text})
		}
		if text := w.assistantTurn(node); text != "" {
			w.stats.AssistantTurns++
			msgs = append(msgs, bundle.Message{Role: domain.RoleAssistant, Content: text})
		}

		for i := len(node) - 1; i >= 0; i-- {
			stack = append(stack, node[i])
		}
	}
	return bundle.DedupeAdjacent(msgs), w.stats
}
