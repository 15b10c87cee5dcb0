package manifest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AuthMethod selects how requests are authenticated.
type AuthMethod string

const (
	AuthCookieSession AuthMethod = "cookie-session"
	AuthBearerFromAPI AuthMethod = "bearer-from-api"
	AuthNone          AuthMethod = "none"
)

// MappedRole is the target of a role mapping entry.
type MappedRole string

const (
	MapUser      MappedRole = "user"
	MapAssistant MappedRole = "assistant"
	MapSkip      MappedRole = "skip"
)

// Position is where the copy button is inserted relative to its anchor.
type Position string

const (
	PositionPrepend Position = "prepend"
	PositionAppend  Position = "append"
	PositionBefore  Position = "before"
	PositionAfter   Position = "after"
)

// DefaultTokenTTL applies when the session response has no usable expiry.
const DefaultTokenTTL = 10 * time.Minute

// Pattern is a compiled regular expression that decodes from a YAML string.
type Pattern struct {
	*regexp.Regexp
}

// MustPattern compiles expr or panics.
func MustPattern(expr string) Pattern {
	return Pattern{regexp.MustCompile(expr)}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Pattern) UnmarshalYAML(node *yaml.Node) error {
	var expr string
	if err := node.Decode(&expr); err != nil {
		return err
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	p.Regexp = re
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (p Pattern) MarshalYAML() (any, error) {
	if p.Regexp == nil {
		return "", nil
	}
	return p.String(), nil
}

// URLPatternConfig identifies platform pages.
type URLPatternConfig struct {
	HostPermissions []string `yaml:"host_permissions"`
	HostPatterns    []Pattern `yaml:"host_patterns"`

	// ConversationURLPatterns each carry exactly one capture group, the
	// conversation ID.
	ConversationURLPatterns []Pattern `yaml:"conversation_url_patterns"`
}

// AuthConfig describes request authentication.
type AuthConfig struct {
	Method          AuthMethod `yaml:"method"`
	SessionEndpoint string     `yaml:"session_endpoint,omitempty"`
	TokenPath       string     `yaml:"token_path,omitempty"`
	ExpiresPath     string     `yaml:"expires_path,omitempty"`
	TokenTTLMs      int64      `yaml:"token_ttl_ms,omitempty"`

	// RequiredVars must be present after auth resolution.
	RequiredVars []string `yaml:"required_vars,omitempty"`

	// Hint is appended to auth errors.
	Hint string `yaml:"hint,omitempty"`
}

// TokenTTL returns the fallback token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLMs > 0 {
		return time.Duration(a.TokenTTLMs) * time.Millisecond
	}
	return DefaultTokenTTL
}

// ConversationEndpoint describes the conversation request.
type ConversationEndpoint struct {
	URLTemplate      string            `yaml:"url_template"`
	Method           string            `yaml:"method"`
	Headers          map[string]string `yaml:"headers,omitempty"`
	QueryParams      map[string]string `yaml:"query_params,omitempty"`
	BodyTemplate     any               `yaml:"body_template,omitempty"`
	Credentials      string            `yaml:"credentials"`
	Cache            string            `yaml:"cache"`
	ReferrerTemplate string            `yaml:"referrer_template,omitempty"`
}

// RoleMapping maps a raw role value to user, assistant or skip.
type RoleMapping struct {
	Field   string                `yaml:"field"`
	Mapping map[string]MappedRole `yaml:"mapping"`
}

// ContentExtraction locates messages and their text.
type ContentExtraction struct {
	MessagesPath string `yaml:"messages_path"`
	SortField    string `yaml:"sort_field,omitempty"`
	SortOrder    string `yaml:"sort_order,omitempty"`
	TextPath     string `yaml:"text_path"`
	TitlePath    string `yaml:"title_path,omitempty"`
}

// MessageParseConfig groups role and content rules.
type MessageParseConfig struct {
	Role    RoleMapping       `yaml:"role"`
	Content ContentExtraction `yaml:"content"`
}

// SelectorFallbacks is an ordered list of CSS selectors.
type SelectorFallbacks struct {
	Selectors []string `yaml:"selectors"`
	Position  Position `yaml:"position"`
}

// ListItemConfig locates conversation links in a sidebar.
type ListItemConfig struct {
	LinkSelector      string  `yaml:"link_selector"`
	IDPattern         Pattern `yaml:"id_pattern"`
	ContainerSelector string  `yaml:"container_selector,omitempty"`
}

// InjectionConfig is carried as data for UI layers.
type InjectionConfig struct {
	CopyButton          SelectorFallbacks `yaml:"copy_button"`
	ListItem            ListItemConfig    `yaml:"list_item"`
	MainContentSelector string            `yaml:"main_content_selector,omitempty"`
	SidebarSelector     string            `yaml:"sidebar_selector,omitempty"`
}

// ThemeTokens are CSS colour values.
type ThemeTokens struct {
	Primary             string `yaml:"primary"`
	Secondary           string `yaml:"secondary"`
	PrimaryForeground   string `yaml:"primary_foreground"`
	SecondaryForeground string `yaml:"secondary_foreground"`
}

// ThemeConfig is carried as data for UI layers.
type ThemeConfig struct {
	Light ThemeTokens  `yaml:"light"`
	Dark  *ThemeTokens `yaml:"dark,omitempty"`
}

// SkipRule skips a message when its field matches. Exactly one of
// Equals, Exists and MatchesPattern is normally set.
type SkipRule struct {
	Field          string `yaml:"field"`
	Equals         any    `yaml:"equals,omitempty"`
	Exists         *bool  `yaml:"exists,omitempty"`
	MatchesPattern string `yaml:"matches_pattern,omitempty"`
}

// MessageFilter lists skip rules; the first match wins.
type MessageFilter struct {
	SkipWhen []SkipRule `yaml:"skip_when,omitempty"`
}

// Meta is informational.
type Meta struct {
	Reliability      string   `yaml:"reliability"`
	Coverage         string   `yaml:"coverage,omitempty"`
	LastVerified     string   `yaml:"last_verified,omitempty"`
	KnownLimitations []string `yaml:"known_limitations,omitempty"`
}

// Manifest is the static description of one platform integration.
type Manifest struct {
	ID       string `yaml:"id"`
	Version  string `yaml:"version"`
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"`

	// AssistantName labels the assistant participant. Defaults to Name.
	AssistantName string `yaml:"assistant_name,omitempty"`

	URLs      URLPatternConfig     `yaml:"urls"`
	Auth      AuthConfig           `yaml:"auth"`
	Endpoint  ConversationEndpoint `yaml:"endpoint"`
	Parsing   MessageParseConfig   `yaml:"parsing"`
	Injection InjectionConfig      `yaml:"injection"`
	Theme     ThemeConfig          `yaml:"theme"`
	Filters   MessageFilter        `yaml:"filters,omitempty"`
	Meta      *Meta                `yaml:"meta,omitempty"`

	// ConversationURLTemplate synthesises a page URL from an ID.
	ConversationURLTemplate string `yaml:"conversation_url_template"`
}

var semverRe = regexp.MustCompile(`^\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?$`)

// Validate checks the manifest for structural errors.
func (m *Manifest) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if m.ID == "" {
		add("id is required")
	}
	if !semverRe.MatchString(m.Version) {
		add("version %q is not semver", m.Version)
	}
	if m.Name == "" {
		add("name is required")
	}
	if m.Provider == "" {
		add("provider is required")
	}

	if len(m.URLs.ConversationURLPatterns) == 0 {
		add("at least one conversation URL pattern is required")
	}
	for i, p := range m.URLs.ConversationURLPatterns {
		if p.Regexp == nil {
			add("conversation pattern %d is empty", i)
		} else if p.NumSubexp() != 1 {
			add("conversation pattern %d must have exactly one capture group", i)
		}
	}
	for i, p := range m.URLs.HostPatterns {
		if p.Regexp == nil {
			add("host pattern %d is empty", i)
		}
	}

	switch m.Auth.Method {
	case AuthCookieSession, AuthNone:
	case AuthBearerFromAPI:
		if m.Auth.SessionEndpoint == "" || m.Auth.TokenPath == "" {
			add("bearer-from-api auth needs session_endpoint and token_path")
		}
	default:
		add("unknown auth method %q", m.Auth.Method)
	}

	if m.Endpoint.URLTemplate == "" {
		add("endpoint url_template is required")
	}
	switch strings.ToUpper(m.Endpoint.Method) {
	case "GET", "POST":
	default:
		add("endpoint method %q must be GET or POST", m.Endpoint.Method)
	}
	switch m.Endpoint.Credentials {
	case "", "include", "omit", "same-origin":
	default:
		add("unknown credentials mode %q", m.Endpoint.Credentials)
	}

	if m.Parsing.Role.Field == "" {
		add("parsing role field is required")
	}
	for raw, mapped := range m.Parsing.Role.Mapping {
		switch mapped {
		case MapUser, MapAssistant, MapSkip:
		default:
			add("role %q maps to unknown value %q", raw, mapped)
		}
	}
	if m.Parsing.Content.MessagesPath == "" {
		add("parsing messages_path is required")
	}
	switch m.Parsing.Content.SortOrder {
	case "", "asc", "desc":
	default:
		add("sort_order %q must be asc or desc", m.Parsing.Content.SortOrder)
	}

	switch m.Injection.CopyButton.Position {
	case "", PositionPrepend, PositionAppend, PositionBefore, PositionAfter:
	default:
		add("unknown injection position %q", m.Injection.CopyButton.Position)
	}

	for i, r := range m.Filters.SkipWhen {
		if r.Field == "" {
			add("skip rule %d has no field", i)
		}
	}

	if !strings.Contains(m.ConversationURLTemplate, "{conversationId}") {
		add("conversation_url_template must contain {conversationId}")
	}

	if len(problems) > 0 {
		return fmt.Errorf("manifest %q: %s", m.ID, strings.Join(problems, "; "))
	}
	return nil
}

func (m *Manifest) assistantName() string {
	if m.AssistantName != "" {
		return m.AssistantName
	}
	return m.Name
}
