package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"uk.co.dudmesh.herald/internal/model"
)

const (
	defaultNewsURL = "https://newsapi.org/v2/everything"

	// Headlines longer than this drown the rest of the post template.
	maxTitleLength = 150
)

var usSearchTerms = []string{
	"OpenAI breakthrough",
	"ChatGPT advancement",
	"Google AI innovation",
	"Anthropic Claude",
	"Microsoft AI",
	"artificial intelligence breakthrough",
	"AI model release",
	"machine learning breakthrough",
}

var chineseSearchTerms = []string{
	"Baidu AI breakthrough",
	"ByteDance AI innovation",
	"Alibaba AI",
	"Tencent AI",
	"DeepSeek AI",
	"Chinese AI breakthrough",
	"China artificial intelligence",
	"Huawei AI innovation",
}

var aiKeywords = []string{
	"ai", "artificial intelligence", "machine learning", "gpt", "llm",
	"neural network", "deep learning", "chatbot", "model",
}

var positiveKeywords = []string{
	"breakthrough", "innovation", "advancement", "new", "launch",
	"unveil", "release", "announce", "improve", "upgrade", "revolutionize",
}

var negativeKeywords = []string{
	"crash", "crisis", "war", "death", "killed", "disaster",
	"fraud", "scandal", "layoff", "lawsuit", "controversy", "fail",
}

var mockUSNews = model.NewsPayload{
	Title:  "OpenAI unveils GPT-5 with revolutionary reasoning capabilities and multimodal understanding",
	Source: "TechCrunch",
}

var mockChineseNews = model.NewsPayload{
	Title:  "Baidu launches ERNIE 4.0 AI model, surpassing GPT-4 in Chinese language tasks",
	Source: "South China Morning Post",
}

type News struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewNews(apiKey string) *News {
	return &News{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultNewsURL,
		apiKey:     apiKey,
	}
}

// Fetch returns one recent AI-breakthrough headline for the locale, or a
// static mock article when the API is unconfigured or turns up nothing.
func (s *News) Fetch(ctx context.Context, lang model.Language) (model.NewsPayload, model.Provenance) {
	terms, mock := usSearchTerms, mockUSNews
	if lang == model.LanguageSecondary {
		terms, mock = chineseSearchTerms, mockChineseNews
	}

	if s.apiKey == "" {
		log.Warnf("no news API key configured, using mock article")
		return mock, model.ProvenanceFallback
	}

	for _, term := range terms {
		article, err := s.search(ctx, term)
		if err != nil {
			log.Warnf("searching news for %q: %v", term, err)
			continue
		}
		if article != nil {
			return *article, model.ProvenanceLive
		}
	}

	log.Warnf("no usable articles found, using mock article")
	return mock, model.ProvenanceFallback
}

type newsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// search returns the first breakthrough-flavoured article for a term, or nil
// when the term matched nothing usable.
func (s *News) search(ctx context.Context, term string) (*model.NewsPayload, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("apiKey", s.apiKey)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", "5")
	params.Set("from", time.Now().AddDate(0, 0, -3).Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news endpoint returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Articles []newsArticle `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("unmarshalling news: %w", err)
	}

	for _, article := range parsed.Articles {
		if !isBreakthrough(article) {
			continue
		}
		title := article.Title
		if model.PostLength(title) > maxTitleLength {
			title = string([]rune(title)[:maxTitleLength])
		}
		source := article.Source.Name
		if source == "" {
			source = "Tech News"
		}
		return &model.NewsPayload{Title: title, Source: source}, nil
	}

	return nil, nil
}

// isBreakthrough keeps AI-related, positively framed articles and filters
// out negative news outright.
func isBreakthrough(article newsArticle) bool {
	text := strings.ToLower(article.Title + " " + article.Description)

	if !containsAny(text, aiKeywords) {
		return false
	}
	if containsAny(text, negativeKeywords) {
		return false
	}
	return containsAny(text, positiveKeywords) || containsAny(text, aiKeywords)
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
