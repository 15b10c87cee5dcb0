// Package claude declares the Claude manifest. The organisation ID comes
// from the lastActiveOrg cookie.
package claude

import (
	"github.com/custodia-labs/ctxport/internal/connectors/manifest"
)

// Manifest returns a fresh copy of the Claude manifest.
func Manifest() *manifest.Manifest {
	return &manifest.Manifest{
		ID:            "claude-ext",
		Version:       "2.0.0",
		Name:          "Claude",
		Provider:      "claude",
		AssistantName: "Claude",

		URLs: manifest.URLPatternConfig{
			HostPermissions: []string{"https://claude.ai/*"},
			HostPatterns:    []manifest.Pattern{manifest.MustPattern(`(?i)^https://claude\.ai/`)},
			ConversationURLPatterns: []manifest.Pattern{
				manifest.MustPattern(`^https?://claude\.ai/chat/([a-zA-Z0-9-]+)`),
			},
		},

		Auth: manifest.AuthConfig{
			Method:       manifest.AuthCookieSession,
			RequiredVars: []string{"orgId"},
			Hint:         "the lastActiveOrg cookie is required",
		},

		Endpoint: manifest.ConversationEndpoint{
			URLTemplate: "https://claude.ai/api/organizations/{orgId}/chat_conversations/{conversationId}",
			Method:      "GET",
			QueryParams: map[string]string{
				"tree":             "True",
				"rendering_mode":   "messages",
				"render_all_tools": "true",
			},
			Credentials:      "include",
			Cache:            "no-store",
			ReferrerTemplate: "https://claude.ai/chat/{conversationId}",
		},

		Parsing: manifest.MessageParseConfig{
			Role: manifest.RoleMapping{
				Field: "sender",
				Mapping: map[string]manifest.MappedRole{
					"human":     manifest.MapUser,
					"assistant": manifest.MapAssistant,
				},
			},
			Content: manifest.ContentExtraction{
				MessagesPath: "chat_messages",
				TextPath:     "_extractedText",
				TitlePath:    "name",
				SortField:    "created_at",
				SortOrder:    "asc",
			},
		},

		Injection: manifest.InjectionConfig{
			CopyButton: manifest.SelectorFallbacks{
				Selectors: []string{
					"header .flex.items-center.gap-1",
					"header .flex.items-center.gap-2",
					`[class*="sticky"] .flex.items-center`,
					`div[class*="conversation"] header .flex`,
				},
				Position: manifest.PositionPrepend,
			},
			ListItem: manifest.ListItemConfig{
				LinkSelector:      `a[href^="/chat/"]`,
				IDPattern:         manifest.MustPattern(`/chat/([a-zA-Z0-9-]+)$`),
				ContainerSelector: `[class*="sidebar"], nav`,
			},
			MainContentSelector: `main, [class*="conversation"]`,
			SidebarSelector:     `[class*="sidebar"], nav`,
		},

		Theme: manifest.ThemeConfig{
			Light: manifest.ThemeTokens{
				Primary: "#c6613f", Secondary: "#ffedd5",
				PrimaryForeground: "#ffffff", SecondaryForeground: "#9a3412",
			},
			Dark: &manifest.ThemeTokens{
				Primary: "#c6613f", Secondary: "#7c2d12",
				PrimaryForeground: "#431407", SecondaryForeground: "#ffedd5",
			},
		},

		Meta: &manifest.Meta{
			Reliability:  "high",
			Coverage:     "all Claude conversation types",
			LastVerified: "2026-02-07",
			KnownLimitations: []string{
				"organisation ID is read from the lastActiveOrg cookie",
				"artifacts are rendered as code blocks",
			},
		},

		ConversationURLTemplate: "https://claude.ai/chat/{conversationId}",
	}
}

// Entry returns the manifest with its hooks.
func Entry() manifest.Entry {
	return manifest.Entry{Manifest: Manifest(), Hooks: Hooks()}
}
