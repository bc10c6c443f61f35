// Package orchestrator runs the per-slot delivery pipeline:
// fetch -> format -> translate -> draft -> assemble -> deliver.
// Every stage before delivery degrades to best-available content; a delivery
// failure ends that slot only and can never leak into a sibling slot.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"

	"uk.co.dudmesh.herald/internal/format"
	"uk.co.dudmesh.herald/internal/model"
	"uk.co.dudmesh.herald/internal/thread"
)

type VerseSource interface {
	Fetch(ctx context.Context) (model.VersePayload, model.Provenance)
}

type MarketsSource interface {
	Fetch(ctx context.Context, lang model.Language) (model.MarketPayload, model.Provenance)
}

type NewsSource interface {
	Fetch(ctx context.Context, lang model.Language) (model.NewsPayload, model.Provenance)
}

type Translator interface {
	Translate(ctx context.Context, text string) string
}

type Drafter interface {
	Draft(ctx context.Context, mainText, contextText string, maxReplies int, lang model.Language) ([]string, error)
}

type Poster interface {
	PostThread(ctx context.Context, t model.Thread) (model.DeliveryResult, error)
}

type Recorder interface {
	Record(record model.DeliveryRecord) error
}

type Sources struct {
	Verse   VerseSource
	Markets MarketsSource
	News    NewsSource
}

type Orchestrator struct {
	sources            Sources
	translator         Translator
	drafter            Drafter
	poster             Poster
	recorder           Recorder
	translationEnabled bool
}

// New wires the pipeline from explicitly constructed collaborators. The
// recorder may be nil; delivery history is then simply not kept.
func New(sources Sources, translator Translator, drafter Drafter, poster Poster, recorder Recorder, translationEnabled bool) *Orchestrator {
	return &Orchestrator{
		sources:            sources,
		translator:         translator,
		drafter:            drafter,
		poster:             poster,
		recorder:           recorder,
		translationEnabled: translationEnabled,
	}
}

// Deliver runs one scheduled slot end to end. It never returns an error:
// failures are logged and recorded, and the result reports what happened.
func (o *Orchestrator) Deliver(ctx context.Context, kind model.ContentKind, locale model.Locale) model.DeliveryResult {
	runID := cuid2.Generate()
	log.Infof("[%s] delivering %s (%s)", runID, kind, locale.Language.Code())

	result, provenance, err := o.run(ctx, kind, locale)
	if err != nil {
		log.Errorf("[%s] delivery of %s (%s) failed: %v", runID, kind, locale.Language.Code(), err)
	} else {
		log.Infof("[%s] delivered %d posts (%s data)", runID, len(result.PostedIDs), provenance)
	}

	o.record(runID, kind, locale, provenance, result)
	return result
}

// Preview runs the pipeline up to assembly and returns the thread exactly as
// it would be delivered, without posting anything.
func (o *Orchestrator) Preview(ctx context.Context, kind model.ContentKind, locale model.Locale) (model.Thread, error) {
	main, draftContext, _, err := o.compose(ctx, kind, locale)
	if err != nil {
		return nil, fmt.Errorf("composing main post: %w", err)
	}
	replies := o.draftReplies(ctx, main, draftContext, locale)
	return thread.Assemble(main, replies, locale.MaxReplies), nil
}

func (o *Orchestrator) run(ctx context.Context, kind model.ContentKind, locale model.Locale) (model.DeliveryResult, model.Provenance, error) {
	main, draftContext, provenance, err := o.compose(ctx, kind, locale)
	if err != nil {
		return model.DeliveryResult{}, provenance, fmt.Errorf("composing main post: %w", err)
	}

	replies := o.draftReplies(ctx, main, draftContext, locale)
	t := thread.Assemble(main, replies, locale.MaxReplies)

	result, err := o.poster.PostThread(ctx, t)
	if err != nil {
		return result, provenance, fmt.Errorf("delivering thread: %w", err)
	}
	return result, provenance, nil
}

// compose fetches the slot's payload and renders the main post, translating
// the variable content first for the secondary locale.
func (o *Orchestrator) compose(ctx context.Context, kind model.ContentKind, locale model.Locale) (model.Post, string, model.Provenance, error) {
	translating := locale.Language == model.LanguageSecondary && o.translationEnabled && o.translator != nil

	switch kind {
	case model.ContentKindVerse:
		payload, provenance := o.sources.Verse.Fetch(ctx)
		if translating {
			payload.Text = o.translator.Translate(ctx, payload.Text)
			payload.Reference = o.translator.Translate(ctx, payload.Reference)
		}
		main, err := format.Verse(payload, locale.Language)
		draftContext := fmt.Sprintf("Bible verse %q (%s). Provide historical context, practical modern application, and an inspiring closing thought. Be encouraging and accessible.", payload.Text, payload.Reference)
		return main, draftContext, provenance, err

	case model.ContentKindMarkets:
		payload, provenance := o.sources.Markets.Fetch(ctx, locale.Language)
		if translating {
			payload.SentimentName = o.translator.Translate(ctx, payload.SentimentName)
		}
		main, err := format.Markets(payload, locale.Language)
		draftContext := fmt.Sprintf("Market data:\n%s\n\nProvide insights about market trends, what is driving the changes, and what investors should watch.", main.Text)
		return main, draftContext, provenance, err

	case model.ContentKindNews:
		payload, provenance := o.sources.News.Fetch(ctx, locale.Language)
		if translating {
			payload.Title = o.translator.Translate(ctx, payload.Title)
			payload.Source = o.translator.Translate(ctx, payload.Source)
		}
		main, err := format.News(payload, locale.Language)
		draftContext := fmt.Sprintf("News item: %s (%s). Provide deeper insights and context about this news story and its significance.", payload.Title, payload.Source)
		return main, draftContext, provenance, err
	}

	return model.Post{}, "", model.ProvenanceFallback, fmt.Errorf("%w: %s", model.ErrorUnknownContentKind, kind)
}

// draftReplies is strictly best-effort; any drafting failure means the
// thread posts with just its main post.
func (o *Orchestrator) draftReplies(ctx context.Context, main model.Post, draftContext string, locale model.Locale) []string {
	if o.drafter == nil || locale.MaxReplies == 0 {
		return nil
	}
	replies, err := o.drafter.Draft(ctx, main.Text, draftContext, locale.MaxReplies, locale.Language)
	if err != nil {
		log.Warnf("drafting replies failed, posting without them: %v", err)
		return nil
	}
	return replies
}

func (o *Orchestrator) record(runID string, kind model.ContentKind, locale model.Locale, provenance model.Provenance, result model.DeliveryResult) {
	if o.recorder == nil {
		return
	}
	err := o.recorder.Record(model.DeliveryRecord{
		RunID:      runID,
		CreatedAt:  time.Now().UTC(),
		Kind:       kind,
		Locale:     locale.Language.Code(),
		Provenance: provenance,
		Success:    result.Success,
		PostedIDs:  result.PostedIDs,
	})
	if err != nil {
		log.Errorf("[%s] recording delivery: %v", runID, err)
	}
}
