package model

import "time"

// PlatformPostLimit is the hard per-post character limit imposed by the platform.
const PlatformPostLimit = 280

type Language int

const (
	LanguagePrimary   Language = iota // English
	LanguageSecondary                 // Simplified Chinese
)

func (l Language) Code() string {
	if l == LanguageSecondary {
		return "zh"
	}
	return "en"
}

type ContentKind string

const (
	ContentKindVerse   ContentKind = "bible_verse"
	ContentKindMarkets ContentKind = "markets"
	ContentKindNews    ContentKind = "world_news"
)

// Locale governs how a content kind is rendered and scheduled.
type Locale struct {
	Language   Language
	Timezone   string
	MaxReplies int
}

// Post is an immutable, platform-legal unit of delivery. Text is guaranteed
// to fit PlatformPostLimit by the formatter that created it.
type Post struct {
	Text     string
	Language Language
}

// Thread is an ordered chain of posts. Thread[0] is the main post, the rest
// are replies, each linked to its immediate predecessor at delivery time.
type Thread []Post

type DeliveryResult struct {
	Success   bool
	PostedIDs []string
}

// DeliveryRecord is one row of delivery history, kept for observability only.
type DeliveryRecord struct {
	RunID      string
	CreatedAt  time.Time
	Kind       ContentKind
	Locale     string
	Provenance Provenance
	Success    bool
	PostedIDs  []string
}

// PostLength counts characters the way the platform does, so multi-byte
// text (Chinese posts in particular) is not over-counted.
func PostLength(s string) int {
	return len([]rune(s))
}
