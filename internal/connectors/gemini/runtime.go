package gemini

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RuntimeParams are the per-session values the web app embeds in its HTML.
type RuntimeParams struct {
	// BL is the build label (cfb2h).
	BL string
	// FSID is the session ID (FdrFJe).
	FSID string
	// At is the anti-forgery token (SNlM0e). It may be empty for some sessions.
	At string
	// HL is the interface language.
	HL string
}

var (
	atPattern  = regexp.MustCompile(`"SNlM0e":"([^"]*)"`)
	blPattern  = regexp.MustCompile(`"cfb2h":"([^"]+)"`)
	sidPattern = regexp.MustCompile(`"FdrFJe":"([^"]+)"`)
)

// ExtractRuntimeParams scrapes the runtime values from page HTML. It
// reports false when the build label or session ID is missing.
func ExtractRuntimeParams(html, hl string) (RuntimeParams, bool) {
	bl := firstGroup(blPattern, html)
	sid := firstGroup(sidPattern, html)
	if bl == "" || sid == "" {
		return RuntimeParams{}, false
	}
	return RuntimeParams{BL: bl, FSID: sid, At: firstGroup(atPattern, html), HL: hl}, true
}

func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return ""
}

// PreferredLanguage returns the lang attribute of the html element, or "en".
func PreferredLanguage(html string) string {
	if strings.TrimSpace(html) == "" {
		return "en"
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "en"
	}
	if lang := strings.TrimSpace(doc.Find("html").AttrOr("lang", "")); lang != "" {
		return lang
	}
	return "en"
}
