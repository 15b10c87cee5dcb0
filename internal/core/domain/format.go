package domain

import "fmt"

// Format selects how a bundle is rendered to Markdown.
type Format string

const (
	FormatFull     Format = "full"
	FormatUserOnly Format = "user-only"
	FormatCodeOnly Format = "code-only"
	FormatCompact  Format = "compact"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatFull, FormatUserOnly, FormatCodeOnly, FormatCompact}
}

// ParseFormat converts a user-supplied string to a Format.
// The empty string selects FormatFull.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatFull, nil
	}
	for _, f := range Formats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown format %q", ErrInvalidInput, s)
}
