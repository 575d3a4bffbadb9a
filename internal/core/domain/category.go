package domain

import (
	"fmt"
	"strings"
)

// Priority ranks for app categories. Lower is more forensically relevant.
const (
	// PriorityCritical marks primary evidence sources (messaging, notes).
	PriorityCritical = 1
	// PriorityImportant marks strong secondary sources (social, email, media).
	PriorityImportant = 2
	// PriorityUseful marks contextual sources (navigation).
	PriorityUseful = 3
	// PriorityBackground marks system/platform packages.
	PriorityBackground = 4
	// PriorityUnknown is assigned to apps no catalog rule matches.
	PriorityUnknown = 5
)

// AppCategoryRule maps application identifiers to a category and priority.
// Apps is an ordered list of identifier substrings; the first rule whose
// substring appears in an app identifier wins.
type AppCategoryRule struct {
	// Category is the human-readable category name (e.g. "messaging").
	Category string

	// Priority is the rank in [1,4]; 1 is highest.
	Priority int

	// Apps are identifier-matching substrings, in match order.
	Apps []string
}

// TablePatternRule lists table-name substrings considered important
// for one application.
type TablePatternRule struct {
	// App is the identifier substring the rule applies to.
	App string

	// Patterns are case-insensitive table-name substrings.
	Patterns []string
}

// Catalog is the immutable classification table configured at startup.
// It resolves app identifiers to categories/priorities and answers which
// table names are important for a given app.
type Catalog struct {
	rules    []AppCategoryRule
	patterns []TablePatternRule
}

// NewCatalog builds a catalog from explicit rule lists.
// Rule order is preserved; matching is first-match-wins.
func NewCatalog(rules []AppCategoryRule, patterns []TablePatternRule) (*Catalog, error) {
	for _, r := range rules {
		if r.Category == "" || len(r.Apps) == 0 {
			return nil, fmt.Errorf("%w: category rule missing name or apps", ErrInvalidInput)
		}
		if r.Priority < PriorityCritical || r.Priority > PriorityBackground {
			return nil, fmt.Errorf("%w: priority %d for category %q outside [1,4]",
				ErrInvalidInput, r.Priority, r.Category)
		}
	}
	c := &Catalog{
		rules:    make([]AppCategoryRule, len(rules)),
		patterns: make([]TablePatternRule, len(patterns)),
	}
	copy(c.rules, rules)
	copy(c.patterns, patterns)
	return c, nil
}

// Match resolves an app identifier to its category and priority.
// Unmatched identifiers report ok=false with PriorityUnknown.
func (c *Catalog) Match(appID string) (category string, priority int, ok bool) {
	for _, rule := range c.rules {
		for _, sub := range rule.Apps {
			if strings.Contains(appID, sub) {
				return rule.Category, rule.Priority, true
			}
		}
	}
	return "uncategorised", PriorityUnknown, false
}

// ImportantPatterns returns the important-table name patterns for an app,
// or nil when no pattern rule matches (meaning: no reordering hint).
func (c *Catalog) ImportantPatterns(appID string) []string {
	for _, rule := range c.patterns {
		if strings.Contains(appID, rule.App) {
			out := make([]string, len(rule.Patterns))
			copy(out, rule.Patterns)
			return out
		}
	}
	return nil
}

// IsImportantTable reports whether a table name matches the app's
// important-pattern set (case-insensitive substring match).
func (c *Catalog) IsImportantTable(appID, table string) bool {
	lower := strings.ToLower(table)
	for _, p := range c.ImportantPatterns(appID) {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Rules returns a copy of the category rules in match order.
func (c *Catalog) Rules() []AppCategoryRule {
	out := make([]AppCategoryRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// DefaultCatalog returns the built-in classification table for third-party
// Android/WearOS packages.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultRules, defaultPatterns)
	if err != nil {
		// The built-in table is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return c
}

var defaultRules = []AppCategoryRule{
	{
		Category: "messaging",
		Priority: PriorityCritical,
		Apps: []string{
			"com.kakao.talk", "jp.naver.line.android", "com.whatsapp",
			"com.facebook.orca", "com.discord", "org.telegram.messenger",
			"com.skype.raider", "com.viber.voip",
		},
	},
	{
		Category: "productivity",
		Priority: PriorityCritical,
		Apps: []string{
			"com.google.android.keep", "com.evernote", "com.microsoft.office.onenote",
			"com.todoist", "com.any.do", "com.dropbox.android", "com.notion.id",
		},
	},
	{
		Category: "social",
		Priority: PriorityImportant,
		Apps: []string{
			"com.instagram.android", "com.facebook.katana", "com.twitter.android",
			"com.snapchat.android", "com.tiktok.musically", "com.linkedin.android",
			"com.reddit.frontpage",
		},
	},
	{
		Category: "media",
		Priority: PriorityImportant,
		Apps: []string{
			"com.spotify.music", "com.netflix.mediaclient", "com.youtube.android",
			"com.soundcloud.android", "com.coffeebeanventures.easyvoicerecorder",
			"com.google.android.apps.photos", "com.amazon.mp3",
		},
	},
	{
		Category: "email",
		Priority: PriorityImportant,
		Apps: []string{
			"com.google.android.gm", "com.microsoft.office.outlook",
			"com.yahoo.mobile.client.android.mail", "com.apple.android.mail",
		},
	},
	{
		Category: "navigation",
		Priority: PriorityUseful,
		Apps: []string{
			"net.daum.android.map", "com.google.android.apps.maps", "com.waze",
			"com.here.app.maps",
		},
	},
	{
		Category: "system",
		Priority: PriorityBackground,
		Apps: []string{
			"com.google.android.gms", "com.android.vending", "com.samsung",
			"com.sec.", "android", "com.google.android.gsf",
		},
	},
}

var defaultPatterns = []TablePatternRule{
	{App: "com.kakao.talk", Patterns: []string{"chat", "message", "friend", "room", "OpenChatRoom"}},
	{App: "jp.naver.line.android", Patterns: []string{"chat", "message", "contact", "room", "group"}},
	{App: "com.whatsapp", Patterns: []string{"messages", "chat", "contacts", "group"}},
	{App: "com.google.android.keep", Patterns: []string{"note", "list", "reminder", "label"}},
	{App: "com.coffeebeanventures.easyvoicerecorder", Patterns: []string{"recording", "voice", "audio"}},
	{App: "com.instagram.android", Patterns: []string{"user", "media", "story", "direct"}},
	{App: "com.spotify.music", Patterns: []string{"track", "playlist", "user", "offline"}},
	{App: "com.netflix.mediaclient", Patterns: []string{"profile", "viewing", "download"}},
	{App: "com.google.android.gm", Patterns: []string{"message", "conversation", "label", "attachment"}},
	{App: "com.evernote", Patterns: []string{"note", "notebook", "tag", "resource"}},
	{App: "com.dropbox.android", Patterns: []string{"file", "sync", "account"}},
	{App: "com.discord", Patterns: []string{"message", "channel", "guild", "user"}},
	{App: "org.telegram.messenger", Patterns: []string{"message", "chat", "contact", "media"}},
}
