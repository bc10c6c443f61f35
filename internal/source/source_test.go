package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"uk.co.dudmesh.herald/internal/model"
)

func TestBibleFetch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	t.Run("live verse from upstream", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"reference":"John 3:16","text":"For God so loved the world, that he gave his only begotten Son."}`))
		}))
		defer server.Close()

		s := NewBible()
		s.baseURL = server.URL

		verse, provenance := s.Fetch(ctx)
		assert.Equal(model.ProvenanceLive, provenance)
		assert.Equal("John 3:16", verse.Reference)
	})

	t.Run("unreachable upstream falls back to static verse", func(t *testing.T) {
		s := NewBible()
		s.baseURL = "http://127.0.0.1:1"

		verse, provenance := s.Fetch(ctx)
		assert.Equal(model.ProvenanceFallback, provenance)
		assert.Equal(staticVerse, verse)
	})

	t.Run("too-short verses are rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"reference":"John 11:35","text":"Jesus wept."}`))
		}))
		defer server.Close()

		s := NewBible()
		s.baseURL = server.URL

		_, provenance := s.Fetch(ctx)
		assert.Equal(model.ProvenanceFallback, provenance)
	})
}

func TestCandidateReferences(t *testing.T) {
	assert := assert.New(t)

	refs := candidateReferences()
	assert.Greater(len(refs), maxFetchAttempts)
	for _, ref := range refs[1:] {
		assert.Contains(fallbackReferences, ref)
	}
}

func TestNewsFetch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	t.Run("no API key yields mock article", func(t *testing.T) {
		s := NewNews("")
		payload, provenance := s.Fetch(ctx, model.LanguagePrimary)
		assert.Equal(model.ProvenanceFallback, provenance)
		assert.Equal(mockUSNews, payload)
	})

	t.Run("secondary locale mock differs", func(t *testing.T) {
		s := NewNews("")
		payload, _ := s.Fetch(ctx, model.LanguageSecondary)
		assert.Equal(mockChineseNews, payload)
	})
}

func TestIsBreakthrough(t *testing.T) {
	assert := assert.New(t)

	t.Run("accepts positive AI news", func(t *testing.T) {
		assert.True(isBreakthrough(newsArticle{
			Title:       "OpenAI unveils new model with breakthrough reasoning",
			Description: "A major advancement in artificial intelligence",
		}))
	})

	t.Run("rejects non-AI news", func(t *testing.T) {
		assert.False(isBreakthrough(newsArticle{
			Title:       "Local bakery wins award",
			Description: "Best croissants in town",
		}))
	})

	t.Run("rejects negative AI news", func(t *testing.T) {
		assert.False(isBreakthrough(newsArticle{
			Title:       "AI startup collapses amid fraud scandal",
			Description: "Investors file lawsuit over machine learning claims",
		}))
	})
}

func TestMarketsFetchFallback(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewMarkets()
	s.fearGreedURL = "http://127.0.0.1:1"
	s.coinGeckoURL = "http://127.0.0.1:1"
	s.chartURL = "http://127.0.0.1:1"

	payload, provenance := s.Fetch(ctx, model.LanguagePrimary)
	assert.Equal(model.ProvenanceFallback, provenance)
	assert.Equal(50, payload.SentimentValue)
	assert.Equal(fallbackUSIndices, payload.Indices)
	assert.Len(payload.Crypto, 4)

	zhPayload, _ := s.Fetch(ctx, model.LanguageSecondary)
	assert.Equal(fallbackChineseIndices, zhPayload.Indices)
	assert.Len(zhPayload.Crypto, 3)
}
