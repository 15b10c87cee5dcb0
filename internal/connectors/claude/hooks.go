package claude

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/custodia-labs/ctxport/internal/connectors/bundle"
	"github.com/custodia-labs/ctxport/internal/connectors/manifest"
	"github.com/custodia-labs/ctxport/internal/core/domain"
)

const orgCookie = "lastActiveOrg"

var errNoOrg = errors.New("cannot find Claude organization ID")

// Hooks returns the Claude hooks.
func Hooks() manifest.Hooks {
	return manifest.Hooks{
		ExtractAuth: func(hc *manifest.HookContext) (map[string]string, error) {
			return orgVars(hc.Page)
		},
		ExtractAuthHeadless: func(_ context.Context, session domain.Page) (map[string]string, error) {
			return orgVars(session)
		},
		ExtractMessageText: func(_ context.Context, msg any, _ *manifest.HookContext) (string, error) {
			return MessageText(msg), nil
		},
		AfterParse: func(msgs []bundle.Message, _ *manifest.HookContext) []bundle.Message {
			return bundle.MergeConsecutive(msgs)
		},
	}
}

func orgVars(page domain.Page) (map[string]string, error) {
	org, ok := page.Cookie(orgCookie)
	if !ok || org == "" {
		return nil, errNoOrg
	}
	return map[string]string{"orgId": org}, nil
}

// MessageText renders one chat message as Markdown. Structured content
// items win over the legacy text field.
func MessageText(msg any) string {
	var parts []string
	items, _ := manifest.GetByPath(msg, "content")
	list, _ := items.([]any)
	for _, item := range list {
		if s := itemText(item); strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}

	text := strings.Join(parts, "\n\n")
	if strings.TrimSpace(text) == "" {
		text = manifest.GetString(msg, "text")
	}
	return strings.TrimSpace(ReplaceArtifacts(text))
}

func itemText(item any) string {
	switch manifest.GetString(item, "type") {
	case "text":
		return manifest.GetString(item, "text")
	case "tool_use":
		if manifest.GetString(item, "name") != "artifacts" {
			return ""
		}
		return artifactBlock(
			manifest.GetString(item, "input.title"),
			manifest.GetString(item, "input.language"),
			manifest.GetString(item, "input.content"),
		)
	}
	return ""
}

var (
	artifactTag  = regexp.MustCompile(`(?s)<antArtifact\b([^>]*)>(.*?)</antArtifact>`)
	artifactAttr = regexp.MustCompile(`(\w+)="([^"]*)"`)
)

// ReplaceArtifacts turns inline antArtifact tags into fenced code blocks.
func ReplaceArtifacts(s string) string {
	return artifactTag.ReplaceAllStringFunc(s, func(tag string) string {
		m := artifactTag.FindStringSubmatch(tag)
		attrs := map[string]string{}
		for _, a := range artifactAttr.FindAllStringSubmatch(m[1], -1) {
			attrs[a[1]] = a[2]
		}
		lang := attrs["language"]
		if lang == "" && attrs["type"] == "text/markdown" {
			lang = "markdown"
		}
		return artifactBlock(attrs["title"], lang, m[2])
	})
}

func artifactBlock(title, lang, body string) string {
	body = strings.Trim(body, "\n")
	if strings.TrimSpace(body) == "" {
		return ""
	}
	block := "```" + lang + "\n" + body + "\n```"
	if title != "" {
		return "**" + title + "**\n\n" + block
	}
	return block
}
