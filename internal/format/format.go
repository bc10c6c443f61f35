// Package format renders content payloads into platform-legal post strings.
// Every formatter builds the full templated string first; when it exceeds
// the limit, only the variable portion (verse text, headline, or the tail
// of a table) is truncated - fixed template parts never are.
package format

import (
	"fmt"
	"math"
	"strings"

	"uk.co.dudmesh.herald/internal/model"
)

const (
	ellipsis = "..."

	// verseLimit is tighter than the platform limit so verse posts leave
	// headroom for quote marks added by clients that re-share them.
	verseLimit = 270
)

// Verse renders a scripture payload as `"<text>"\n\n<reference> (KJV)`.
func Verse(p model.VersePayload, lang model.Language) (model.Post, error) {
	if p.Text == "" || p.Reference == "" {
		return model.Post{}, fmt.Errorf("verse payload missing text or reference: %+v", p)
	}

	text := strings.Join(strings.Fields(p.Text), " ")
	post := fmt.Sprintf("\"%s\"\n\n%s (KJV)", text, p.Reference)

	if model.PostLength(post) > verseLimit {
		fixed := model.PostLength(fmt.Sprintf("\"\"\n\n%s (KJV)", p.Reference))
		max := verseLimit - fixed - len(ellipsis)
		if max < 0 {
			return model.Post{}, fmt.Errorf("verse reference %q leaves no room for text", p.Reference)
		}
		post = fmt.Sprintf("\"%s%s\"\n\n%s (KJV)", truncateRunes(text, max), ellipsis, p.Reference)
	}

	return model.Post{Text: post, Language: lang}, nil
}

// Markets renders a combined index + crypto snapshot. The sentiment name is
// expected to be in the target language already.
func Markets(p model.MarketPayload, lang model.Language) (model.Post, error) {
	if len(p.Indices) == 0 && len(p.Crypto) == 0 {
		return model.Post{}, fmt.Errorf("market payload has no quotes")
	}

	sb := strings.Builder{}
	if lang == model.LanguageSecondary {
		sb.WriteString("24小时中国市场更新\n\n")
		fmt.Fprintf(&sb, "市场情绪: %s (%d/100)\n\n", p.SentimentName, p.SentimentValue)
		sb.WriteString("中国市场:\n")
	} else {
		sb.WriteString("24H US Markets Update\n\n")
		fmt.Fprintf(&sb, "Sentiment: %s (%d/100)\n\n", p.SentimentName, p.SentimentValue)
		sb.WriteString("US MARKETS:\n")
	}

	for _, q := range p.Indices {
		fmt.Fprintf(&sb, "%s %s: %+.1f%%\n", TrendGlyph(q.Change), q.Label, q.Change)
	}

	if lang == model.LanguageSecondary {
		sb.WriteString("\n加密货币:\n")
	} else {
		sb.WriteString("\nCRYPTO:\n")
	}
	for _, q := range p.Crypto {
		sb.WriteString(QuoteLine(q))
		sb.WriteRune('\n')
	}

	if lang == model.LanguageSecondary {
		sb.WriteString("\n#市场 #金融 #加密货币")
	} else {
		sb.WriteString("\n#Markets #Finance #Crypto")
	}

	post := sb.String()
	if model.PostLength(post) > model.PlatformPostLimit {
		post = truncateRunes(post, model.PlatformPostLimit-len(ellipsis)) + ellipsis
	}

	return model.Post{Text: post, Language: lang}, nil
}

// News renders a single headline with its source line and fixed hashtags.
func News(p model.NewsPayload, lang model.Language) (model.Post, error) {
	if p.Title == "" || p.Source == "" {
		return model.Post{}, fmt.Errorf("news payload missing title or source: %+v", p)
	}

	header, sourceLabel, hashtags := "🚀 AI Breakthrough", "Source", "#AI #ArtificialIntelligence #Innovation"
	if lang == model.LanguageSecondary {
		header, sourceLabel, hashtags = "🚀 人工智能突破", "来源", "#人工智能 #AI #创新"
	}

	render := func(title string) string {
		return fmt.Sprintf("%s\n\n%s\n\n%s: %s\n\n%s", header, title, sourceLabel, p.Source, hashtags)
	}

	post := render(p.Title)
	if model.PostLength(post) > model.PlatformPostLimit {
		fixed := model.PostLength(render(""))
		max := model.PlatformPostLimit - fixed - len(ellipsis)
		if max < 0 {
			return model.Post{}, fmt.Errorf("news source %q leaves no room for title", p.Source)
		}
		post = render(truncateRunes(p.Title, max) + ellipsis)
	}

	return model.Post{Text: post, Language: lang}, nil
}

// QuoteLine renders one priced instrument, e.g. `+ BTC: $68,000 (+2.0%)`.
func QuoteLine(q model.Quote) string {
	return fmt.Sprintf("%s %s: %s (%+.1f%%)", TrendGlyph(q.Change), q.Label, FormatPrice(q.Price), q.Change)
}

// TrendGlyph is a purely visual marker, distinct from the numeric sign.
func TrendGlyph(change float64) string {
	if change >= 0 {
		return "+"
	}
	return "-"
}

// FormatPrice renders a price with precision appropriate to its magnitude.
func FormatPrice(price float64) string {
	switch {
	case price >= 1000:
		return "$" + groupThousands(int64(math.Round(price)))
	case price >= 1:
		return fmt.Sprintf("$%.2f", price)
	default:
		return fmt.Sprintf("$%.4f", price)
	}
}

func groupThousands(n int64) string {
	digits := fmt.Sprintf("%d", n)
	if len(digits) <= 3 {
		return digits
	}
	sb := strings.Builder{}
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteRune(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
