// Package drafter turns a main post into short follow-up replies using an
// OpenAI-compatible chat-completions backend (Groq). Drafting is strictly
// best-effort: an unconfigured or failing backend yields zero replies and
// the thread still posts.
package drafter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"uk.co.dudmesh.herald/internal/model"
)

const (
	defaultAPIURL = "https://api.groq.com/openai/v1"
	defaultModel  = "llama-3.3-70b-versatile"
)

type Client struct {
	httpClient *http.Client
	apiKey     string
	apiURL     string
	model      string
}

func New(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		apiURL:     defaultAPIURL,
		model:      defaultModel,
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Draft asks the backend for up to maxReplies follow-up posts for mainText.
// contextText carries kind-specific framing (market data, verse reference).
// The returned replies are ordered as drafted, each within the platform
// limit; an empty slice with nil error means drafting was simply disabled.
func (c *Client) Draft(ctx context.Context, mainText, contextText string, maxReplies int, lang model.Language) ([]string, error) {
	if !c.Enabled() || maxReplies <= 0 {
		return nil, nil
	}

	languageNote := ""
	if lang == model.LanguageSecondary {
		languageNote = "\n6. Write in Simplified Chinese"
	}

	prompt := fmt.Sprintf(`You are a social media expert creating engaging threads.

MAIN POST:
%s

CONTEXT/DATA:
%s

Create %d follow-up posts that:
1. Provide interesting insights or explanations
2. Are concise and engaging (under 280 characters each)
3. Use clear, simple language
4. Don't use emojis
5. Add value to the main post%s

Format: Return ONLY the follow-up posts, one per line, numbered 1., 2., etc.
Do NOT include the main post or any hashtags.`, mainText, contextText, maxReplies, languageNote)

	content, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("drafting replies: %w", err)
	}

	return parseReplies(content, maxReplies), nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a concise social media expert. Create engaging, informative posts without emojis."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   600,
		TopP:        0.9,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshalling response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response has no choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// parseReplies extracts numbered lines ("1. ...", "2. ...") from a model
// response, keeping only replies the platform would accept.
func parseReplies(content string, maxReplies int) []string {
	var replies []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		rest, ok := stripNumberPrefix(line)
		if !ok {
			continue
		}
		if rest == "" || model.PostLength(rest) > model.PlatformPostLimit {
			continue
		}
		replies = append(replies, rest)
		if len(replies) == maxReplies {
			break
		}
	}
	return replies
}

func stripNumberPrefix(line string) (string, bool) {
	for i := 1; i <= 9; i++ {
		prefix := fmt.Sprintf("%d.", i)
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return "", false
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
