package markdown

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/ctxport/internal/core/domain"
)

// Options controls rendering. The zero value renders the full format with
// frontmatter.
type Options struct {
	Format domain.Format

	// IncludeFrontmatter defaults to true when nil.
	IncludeFrontmatter *bool

	// Estimator defaults to HeuristicEstimator.
	Estimator Estimator
}

// DefaultOptions renders the full format with frontmatter.
func DefaultOptions() Options {
	return Options{Format: domain.FormatFull}
}

// WithFrontmatter returns a copy of o with the frontmatter switched on or off.
func (o Options) WithFrontmatter(on bool) Options {
	o.IncludeFrontmatter = &on
	return o
}

// Result is a rendered document with its counts.
type Result struct {
	Markdown        string
	MessageCount    int
	EstimatedTokens int
}

func (o Options) format() domain.Format {
	if o.Format == "" {
		return domain.FormatFull
	}
	return o.Format
}

func (o Options) frontmatter() bool {
	return o.IncludeFrontmatter == nil || *o.IncludeFrontmatter
}

func (o Options) estimate(text string) int {
	if text == "" {
		return 0
	}
	if o.Estimator == nil {
		return HeuristicEstimator{}.Estimate(text)
	}
	return o.Estimator.Estimate(text)
}

// SerializeConversation renders one bundle. The token estimate covers the
// whole document, frontmatter included.
func SerializeConversation(b *domain.ContentBundle, opts Options) Result {
	format := opts.format()
	body := strings.Join(FilterNodes(b.Nodes, b.Participants, format), "\n\n")

	var sections []string
	if opts.frontmatter() {
		fields := []field{{"ctxport", FrontmatterVersion}}
		if b.Source.Platform != "" {
			fields = append(fields, field{"source", b.Source.Platform})
		}
		if b.Source.URL != "" {
			fields = append(fields, field{"url", b.Source.URL})
		}
		if b.Title != "" {
			fields = append(fields, field{"title", b.Title})
		}
		if !b.Source.ExtractedAt.IsZero() {
			fields = append(fields, field{"date", formatDate(b.Source.ExtractedAt)})
		}
		fields = append(fields,
			field{"nodes", len(b.Nodes)},
			field{"format", string(format)},
		)
		sections = append(sections, frontmatter(fields))
	}
	sections = append(sections, body)

	md := strings.Join(sections, "\n\n")
	return Result{
		Markdown:        md,
		MessageCount:    len(b.Nodes),
		EstimatedTokens: opts.estimate(md),
	}
}

// SerializeBundle merges bundles into one document with a numbered section
// per bundle. The token estimate covers the body only.
func SerializeBundle(bundles []*domain.ContentBundle, opts Options) Result {
	format := opts.format()
	total := len(bundles)

	parts := make([]string, 0, total)
	messages := 0
	var latest time.Time
	for i, b := range bundles {
		title := b.Title
		if title == "" {
			title = "Untitled"
		}
		platform := b.Source.Platform
		if platform == "" {
			platform = "unknown"
		}
		count := len(b.Nodes)
		messages += count
		if t := b.Source.ExtractedAt; t.After(latest) {
			latest = t
		}

		meta := fmt.Sprintf("> Source: %s | Messages: %d", platform, count)
		if b.Source.URL != "" {
			meta += " | URL: " + b.Source.URL
		}
		header := fmt.Sprintf("# [%d/%d] %s", i+1, total, title)
		nodes := strings.Join(FilterNodes(b.Nodes, b.Participants, format), "\n\n")
		parts = append(parts, header+"\n\n"+meta+"\n\n"+nodes)
	}

	body := strings.Join(parts, "\n\n---\n\n")
	tokens := opts.estimate(body)

	var sections []string
	if opts.frontmatter() {
		fields := []field{
			{"ctxport", FrontmatterVersion},
			{"bundle", "merged"},
			{"conversations", total},
		}
		// date is omitted when no bundle carries an extraction time.
		if !latest.IsZero() {
			fields = append(fields, field{"date", formatDate(latest)})
		}
		fields = append(fields,
			field{"total_messages", messages},
			field{"total_tokens", FormatTokenCount(tokens)},
			field{"format", string(format)},
		)
		sections = append(sections, frontmatter(fields))
	}
	sections = append(sections, body)

	return Result{
		Markdown:        strings.Join(sections, "\n\n"),
		MessageCount:    messages,
		EstimatedTokens: tokens,
	}
}
