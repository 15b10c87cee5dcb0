package markdown

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/ctxport/internal/core/domain"
)

var (
	codeBlockPattern    = regexp.MustCompile("(?s)```.*?```")
	compactBlockPattern = regexp.MustCompile("(?s)(```\\w*\\n)(.*?)(```)")
	blankRunPattern     = regexp.MustCompile(`\n{3,}`)
)

// commentPrefixes mark lines dropped from code blocks in compact output.
var commentPrefixes = []string{"//", "#", "/*", "*", "*/"}

// FilterNodes renders nodes in order as "## Label" sections according to
// format. The zero format renders everything.
func FilterNodes(nodes []domain.ContentNode, participants []domain.Participant, format domain.Format) []string {
	labels := labeler(participants)

	ordered := make([]domain.ContentNode, len(nodes))
	copy(ordered, nodes)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	parts := make([]string, 0, len(ordered))
	for _, n := range ordered {
		label := labels(n.ParticipantID)
		switch format {
		case domain.FormatUserOnly:
			if label != "User" {
				continue
			}
			parts = append(parts, section(label, n.Content))
		case domain.FormatCodeOnly:
			blocks := codeBlockPattern.FindAllString(n.Content, -1)
			if len(blocks) == 0 {
				continue
			}
			parts = append(parts, section(label, strings.Join(blocks, "\n\n")))
		case domain.FormatCompact:
			parts = append(parts, section(label, Compact(n.Content)))
		default:
			parts = append(parts, section(label, n.Content))
		}
	}
	return parts
}

// Compact strips comment-only and blank lines from fenced code blocks and
// collapses runs of blank lines.
func Compact(content string) string {
	content = compactBlockPattern.ReplaceAllStringFunc(content, func(block string) string {
		m := compactBlockPattern.FindStringSubmatch(block)
		open, code, closing := m[1], m[2], m[3]

		var kept []string
		for _, line := range strings.Split(code, "\n") {
			if !isCommentOrBlank(line) {
				kept = append(kept, line)
			}
		}
		return open + strings.Join(kept, "\n") + "\n" + closing
	})
	return blankRunPattern.ReplaceAllString(content, "\n\n")
}

func isCommentOrBlank(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	for _, p := range commentPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// labeler maps participant IDs to section labels. Chat roles get fixed
// labels; other participants are labelled by name.
func labeler(participants []domain.Participant) func(id string) string {
	byID := make(map[string]domain.Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}
	return func(id string) string {
		p, ok := byID[id]
		if !ok {
			return "Assistant"
		}
		switch p.Role {
		case domain.RoleUser:
			return "User"
		case domain.RoleSystem:
			return "System"
		case domain.RoleAssistant, "":
			return "Assistant"
		}
		return p.Name
	}
}

func section(label, content string) string {
	return "## " + label + "\n\n" + content
}
