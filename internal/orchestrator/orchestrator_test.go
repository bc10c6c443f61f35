package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"uk.co.dudmesh.herald/internal/model"
)

type fakeVerseSource struct{}

func (fakeVerseSource) Fetch(context.Context) (model.VersePayload, model.Provenance) {
	return model.VersePayload{
		Text:      "The LORD is my shepherd; I shall not want.",
		Reference: "Psalm 23:1",
	}, model.ProvenanceLive
}

type fakeMarketsSource struct{}

func (fakeMarketsSource) Fetch(context.Context, model.Language) (model.MarketPayload, model.Provenance) {
	return model.MarketPayload{
		SentimentValue: 60,
		SentimentName:  "Greed",
		Indices:        []model.Quote{{Label: "S&P 500", Price: 5800, Change: 0.5}},
		Crypto:         []model.Quote{{Label: "BTC", Price: 68000, Change: 2.0}},
	}, model.ProvenanceFallback
}

type fakeNewsSource struct{}

func (fakeNewsSource) Fetch(context.Context, model.Language) (model.NewsPayload, model.Provenance) {
	return model.NewsPayload{Title: "A new model appears", Source: "TechCrunch"}, model.ProvenanceLive
}

type fakeTranslator struct{}

func (fakeTranslator) Translate(_ context.Context, text string) string {
	return "zh:" + text
}

type fakeDrafter struct {
	replies []string
	err     error
}

func (f *fakeDrafter) Draft(context.Context, string, string, int, model.Language) ([]string, error) {
	return f.replies, f.err
}

type fakePoster struct {
	threads []model.Thread
	err     error
}

func (f *fakePoster) PostThread(_ context.Context, t model.Thread) (model.DeliveryResult, error) {
	f.threads = append(f.threads, t)
	if f.err != nil {
		return model.DeliveryResult{}, f.err
	}
	ids := make([]string, len(t))
	for i := range t {
		ids[i] = model.CreateID()
	}
	return model.DeliveryResult{Success: true, PostedIDs: ids}, nil
}

type fakeRecorder struct {
	records []model.DeliveryRecord
}

func (f *fakeRecorder) Record(r model.DeliveryRecord) error {
	f.records = append(f.records, r)
	return nil
}

func allSources() Sources {
	return Sources{Verse: fakeVerseSource{}, Markets: fakeMarketsSource{}, News: fakeNewsSource{}}
}

func primaryLocale() model.Locale {
	return model.Locale{Language: model.LanguagePrimary, Timezone: "America/Chicago", MaxReplies: 2}
}

func secondaryLocale() model.Locale {
	return model.Locale{Language: model.LanguageSecondary, Timezone: "Asia/Shanghai", MaxReplies: 1}
}

func TestDeliver(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	t.Run("verse thread with drafted replies", func(t *testing.T) {
		poster := &fakePoster{}
		recorder := &fakeRecorder{}
		o := New(allSources(), fakeTranslator{}, &fakeDrafter{replies: []string{"insight one", "insight two"}}, poster, recorder, true)

		result := o.Deliver(ctx, model.ContentKindVerse, primaryLocale())
		assert.True(result.Success)
		assert.Len(poster.threads, 1)
		assert.Len(poster.threads[0], 3)
		assert.Contains(poster.threads[0][0].Text, "(KJV)")

		assert.Len(recorder.records, 1)
		assert.True(recorder.records[0].Success)
		assert.Equal(model.ContentKindVerse, recorder.records[0].Kind)
		assert.Equal("en", recorder.records[0].Locale)
	})

	t.Run("drafting failure degrades to single-post thread", func(t *testing.T) {
		poster := &fakePoster{}
		o := New(allSources(), fakeTranslator{}, &fakeDrafter{err: errors.New("backend down")}, poster, nil, true)

		result := o.Deliver(ctx, model.ContentKindMarkets, primaryLocale())
		assert.True(result.Success)
		assert.Len(poster.threads[0], 1)
	})

	t.Run("secondary locale translates variable content", func(t *testing.T) {
		poster := &fakePoster{}
		o := New(allSources(), fakeTranslator{}, &fakeDrafter{}, poster, nil, true)

		o.Deliver(ctx, model.ContentKindNews, secondaryLocale())
		assert.Contains(poster.threads[0][0].Text, "zh:A new model appears")
		assert.Contains(poster.threads[0][0].Text, "zh:TechCrunch")
	})

	t.Run("translation disabled leaves content untouched", func(t *testing.T) {
		poster := &fakePoster{}
		o := New(allSources(), fakeTranslator{}, &fakeDrafter{}, poster, nil, false)

		o.Deliver(ctx, model.ContentKindNews, secondaryLocale())
		assert.NotContains(poster.threads[0][0].Text, "zh:")
	})

	t.Run("delivery failure is contained and recorded", func(t *testing.T) {
		poster := &fakePoster{err: model.ErrorRateLimited}
		recorder := &fakeRecorder{}
		o := New(allSources(), fakeTranslator{}, &fakeDrafter{}, poster, recorder, true)

		result := o.Deliver(ctx, model.ContentKindVerse, primaryLocale())
		assert.False(result.Success)
		assert.Len(recorder.records, 1)
		assert.False(recorder.records[0].Success)
	})

	t.Run("unknown kind is a loud no-op", func(t *testing.T) {
		poster := &fakePoster{}
		o := New(allSources(), fakeTranslator{}, &fakeDrafter{}, poster, nil, true)

		result := o.Deliver(ctx, model.ContentKind("weather"), primaryLocale())
		assert.False(result.Success)
		assert.Empty(poster.threads)
	})

	t.Run("provenance is recorded", func(t *testing.T) {
		recorder := &fakeRecorder{}
		o := New(allSources(), fakeTranslator{}, &fakeDrafter{}, &fakePoster{}, recorder, true)

		o.Deliver(ctx, model.ContentKindMarkets, primaryLocale())
		assert.Equal(model.ProvenanceFallback, recorder.records[0].Provenance)
	})
}

func TestPreview(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	t.Run("returns the assembled thread without posting", func(t *testing.T) {
		poster := &fakePoster{}
		o := New(allSources(), fakeTranslator{}, &fakeDrafter{replies: []string{"reply"}}, poster, nil, true)

		th, err := o.Preview(ctx, model.ContentKindVerse, primaryLocale())
		assert.Nil(err)
		assert.Len(th, 2)
		assert.Empty(poster.threads)
	})

	t.Run("oversized drafted reply is dropped", func(t *testing.T) {
		oversized := strings.Repeat("a", model.PlatformPostLimit+1)
		o := New(allSources(), fakeTranslator{}, &fakeDrafter{replies: []string{oversized}}, &fakePoster{}, nil, true)

		th, err := o.Preview(ctx, model.ContentKindVerse, primaryLocale())
		assert.Nil(err)
		assert.Len(th, 1)
	})
}
