package markdown

import (
	"strconv"
	"strings"
	"time"
)

// FrontmatterVersion is written as the ctxport key of every document.
const FrontmatterVersion = "v2"

// dateLayout is ISO-8601 with milliseconds.
const dateLayout = "2006-01-02T15:04:05.000Z07:00"

// field is one frontmatter entry. Value is a string or an int.
type field struct {
	key   string
	value any
}

// frontmatter renders fields in order between "---" fences.
func frontmatter(fields []field) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	for _, f := range fields {
		sb.WriteString(f.key)
		sb.WriteString(": ")
		switch v := f.value.(type) {
		case string:
			sb.WriteString(quote(v))
		case int:
			sb.WriteString(strconv.Itoa(v))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("---")
	return sb.String()
}

// quote wraps values containing ':', '"' or '#' in double quotes.
func quote(s string) string {
	if !strings.ContainsAny(s, `:"#`) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
