package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"uk.co.dudmesh.herald/internal/model"
)

const defaultTweetURL = "https://api.twitter.com/2/tweets"

type Credentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// xAPI talks to the X API v2 with OAuth 1.0a user-context signing.
type xAPI struct {
	httpClient *http.Client
	tweetURL   string
}

func NewXAPI(creds Credentials) API {
	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	httpClient.Timeout = 10 * time.Second

	return &xAPI{
		httpClient: httpClient,
		tweetURL:   defaultTweetURL,
	}
}

type tweetRequest struct {
	Text  string      `json:"text"`
	Reply *tweetReply `json:"reply,omitempty"`
}

type tweetReply struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (x *xAPI) CreatePost(ctx context.Context, text string) (string, error) {
	return x.createTweet(ctx, tweetRequest{Text: text})
}

func (x *xAPI) CreateReply(ctx context.Context, text string, parentID string) (string, error) {
	return x.createTweet(ctx, tweetRequest{Text: text, Reply: &tweetReply{InReplyToTweetID: parentID}})
}

func (x *xAPI) createTweet(ctx context.Context, tweet tweetRequest) (string, error) {
	payload, err := json.Marshal(tweet)
	if err != nil {
		return "", fmt.Errorf("marshalling tweet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.tweetURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting tweet: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: %s", model.ErrorRateLimited, strings.TrimSpace(string(body)))
	case resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: %s", model.ErrorForbidden, strings.TrimSpace(string(body)))
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return "", fmt.Errorf("platform returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed tweetResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshalling response: %w", err)
	}
	if parsed.Data.ID == "" {
		return "", fmt.Errorf("platform response missing tweet id")
	}

	return parsed.Data.ID, nil
}
