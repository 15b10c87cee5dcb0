// Package chatgpt declares the ChatGPT manifest and the hooks that
// linearise its tree-shaped conversation mapping.
package chatgpt

import (
	"github.com/custodia-labs/ctxport/internal/connectors/manifest"
)

// Manifest returns a fresh copy of the ChatGPT manifest.
func Manifest() *manifest.Manifest {
	yes := true
	return &manifest.Manifest{
		ID:            "chatgpt-ext",
		Version:       "2.0.0",
		Name:          "ChatGPT",
		Provider:      "chatgpt",
		AssistantName: "ChatGPT",

		URLs: manifest.URLPatternConfig{
			HostPermissions: []string{"https://chatgpt.com/*", "https://chat.openai.com/*"},
			HostPatterns: []manifest.Pattern{
				manifest.MustPattern(`(?i)^https://chatgpt\.com/`),
				manifest.MustPattern(`(?i)^https://chat\.openai\.com/`),
			},
			ConversationURLPatterns: []manifest.Pattern{
				manifest.MustPattern(`^https?://(?:chat\.openai\.com|chatgpt\.com)/c/([a-zA-Z0-9-]+)`),
			},
		},

		Auth: manifest.AuthConfig{
			Method:          manifest.AuthBearerFromAPI,
			SessionEndpoint: "https://chatgpt.com/api/auth/session",
			TokenPath:       "accessToken",
			ExpiresPath:     "expires",
			TokenTTLMs:      600_000,
			Hint:            "sign in at chatgpt.com and pass the session cookies",
		},

		Endpoint: manifest.ConversationEndpoint{
			URLTemplate: "https://chatgpt.com/backend-api/conversation/{conversationId}",
			Method:      "GET",
			Credentials: "include",
			Cache:       "no-store",
		},

		Parsing: manifest.MessageParseConfig{
			Role: manifest.RoleMapping{
				Field: "message.author.role",
				Mapping: map[string]manifest.MappedRole{
					"user":      manifest.MapUser,
					"assistant": manifest.MapAssistant,
					"tool":      manifest.MapAssistant,
					"system":    manifest.MapSkip,
				},
			},
			Content: manifest.ContentExtraction{
				MessagesPath: linearKey,
				TextPath:     "_extractedText",
				TitlePath:    "title",
				SortField:    "message.create_time",
				SortOrder:    "asc",
			},
		},

		Injection: manifest.InjectionConfig{
			CopyButton: manifest.SelectorFallbacks{
				Selectors: []string{
					"main .sticky .flex.items-center.gap-2",
					`main header [class*="flex"][class*="items-center"]`,
					`div[data-testid="conversation-header"] .flex.items-center`,
				},
				Position: manifest.PositionPrepend,
			},
			ListItem: manifest.ListItemConfig{
				LinkSelector:      `nav a[href^="/c/"], nav a[href^="/g/"]`,
				IDPattern:         manifest.MustPattern(`/(?:c|g)/([a-zA-Z0-9-]+)$`),
				ContainerSelector: "nav",
			},
			MainContentSelector: "main",
			SidebarSelector:     "nav",
		},

		Theme: manifest.ThemeConfig{
			Light: manifest.ThemeTokens{
				Primary: "#0d0d0d", Secondary: "#5d5d5d",
				PrimaryForeground: "#ffffff", SecondaryForeground: "#ffffff",
			},
			Dark: &manifest.ThemeTokens{
				Primary: "#0d0d0d", Secondary: "#5d5d5d",
				PrimaryForeground: "#ffffff", SecondaryForeground: "#ffffff",
			},
		},

		Filters: manifest.MessageFilter{
			SkipWhen: []manifest.SkipRule{
				{Field: "message.content.content_type", Equals: "thoughts"},
				{Field: "message.content.content_type", Equals: "code"},
				{Field: "message.metadata.is_visually_hidden_from_conversation", Equals: yes},
				{Field: "message.metadata.is_redacted", Equals: yes},
				{Field: "message.metadata.is_user_system_message", Equals: yes},
				{Field: "message.metadata.reasoning_status", MatchesPattern: ".+"},
			},
		},

		Meta: &manifest.Meta{
			Reliability:  "high",
			Coverage:     "all ChatGPT conversation types, including Canvas and reasoning models",
			LastVerified: "2026-02-07",
			KnownLimitations: []string{
				"rate-limited conversations need a retry later",
				"generated images are kept as placeholders",
			},
		},

		ConversationURLTemplate: "https://chatgpt.com/c/{conversationId}",
	}
}

// Entry returns the manifest with its hooks.
func Entry() manifest.Entry {
	return manifest.Entry{Manifest: Manifest(), Hooks: Hooks()}
}
