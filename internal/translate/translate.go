// Package translate provides best-effort English to Simplified Chinese
// translation via the public Google Translate endpoint. Failures never
// propagate: the caller always gets usable text back.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"uk.co.dudmesh.herald/internal/model"
)

const translateURL = "https://translate.googleapis.com/translate_a/single"

type GoogleTranslator struct {
	httpClient *http.Client
	source     string
	target     string
}

func NewGoogle() *GoogleTranslator {
	return &GoogleTranslator{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		source:     "en",
		target:     "zh-CN",
	}
}

// Translate returns the translated text, or the input unchanged when the
// backend is unreachable or returns something unusable.
func (t *GoogleTranslator) Translate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	translated, err := t.translate(ctx, text)
	if err != nil {
		log.Warnf("translation failed, keeping original: %v", err)
		return text
	}
	return translated
}

// TranslateWithLimit translates and truncates the result to limit characters
// with a visible ellipsis, since Chinese renderings can run longer than the
// source under the platform's counting rules.
func (t *GoogleTranslator) TranslateWithLimit(ctx context.Context, text string, limit int) string {
	translated := t.Translate(ctx, text)
	if model.PostLength(translated) > limit {
		translated = string([]rune(translated)[:limit-3]) + "..."
		log.Warnf("translated text truncated to %d chars", limit)
	}
	return translated
}

func (t *GoogleTranslator) translate(ctx context.Context, text string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", t.source)
	params.Set("tl", t.target)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, translateURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting translation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	return parseResponse(body)
}

// parseResponse walks the endpoint's nested-array payload: the first element
// is a list of [translatedSegment, sourceSegment, ...] tuples.
func parseResponse(body []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return "", fmt.Errorf("unmarshalling response: %w", err)
	}
	if len(outer) == 0 {
		return "", fmt.Errorf("empty translation response")
	}

	var segments [][]interface{}
	if err := json.Unmarshal(outer[0], &segments); err != nil {
		return "", fmt.Errorf("unmarshalling segments: %w", err)
	}

	sb := strings.Builder{}
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		if part, ok := segment[0].(string); ok {
			sb.WriteString(part)
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("translation response has no text")
	}
	return sb.String(), nil
}
