// Package source holds the content source adapters. Each adapter resolves
// every upstream failure internally to a static fallback payload and reports
// which it used, so a fetch never fails the delivery pipeline.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/gommon/log"
	"uk.co.dudmesh.herald/internal/model"
)

const (
	defaultBibleURL = "https://bible-api.com"

	// Verses outside this band make poor posts: fragments read as noise
	// and long passages would be mostly ellipsis after truncation.
	minVerseLength = 20
	maxVerseLength = 500

	// maxFetchAttempts bounds the fallback walk; the random reference plus
	// a few curated ones, then the static verse.
	maxFetchAttempts = 4
)

type bibleBook struct {
	name     string
	chapters int
}

var bibleBooks = []bibleBook{
	{"Genesis", 50}, {"Exodus", 40}, {"Leviticus", 27}, {"Numbers", 36}, {"Deuteronomy", 34},
	{"Joshua", 24}, {"Judges", 21}, {"Ruth", 4}, {"1 Samuel", 31}, {"2 Samuel", 24},
	{"1 Kings", 22}, {"2 Kings", 25}, {"1 Chronicles", 29}, {"2 Chronicles", 36},
	{"Ezra", 10}, {"Nehemiah", 13}, {"Esther", 10}, {"Job", 42},
	{"Psalms", 150}, {"Proverbs", 31}, {"Ecclesiastes", 12}, {"Song of Solomon", 8},
	{"Isaiah", 66}, {"Jeremiah", 52}, {"Lamentations", 5}, {"Ezekiel", 48}, {"Daniel", 12},
	{"Hosea", 14}, {"Joel", 3}, {"Amos", 9}, {"Obadiah", 1}, {"Jonah", 4},
	{"Micah", 7}, {"Nahum", 3}, {"Habakkuk", 3}, {"Zephaniah", 3}, {"Haggai", 2},
	{"Zechariah", 14}, {"Malachi", 4},
	{"Matthew", 28}, {"Mark", 16}, {"Luke", 24}, {"John", 21}, {"Acts", 28},
	{"Romans", 16}, {"1 Corinthians", 16}, {"2 Corinthians", 13}, {"Galatians", 6},
	{"Ephesians", 6}, {"Philippians", 4}, {"Colossians", 4}, {"1 Thessalonians", 5},
	{"2 Thessalonians", 3}, {"1 Timothy", 6}, {"2 Timothy", 4}, {"Titus", 3},
	{"Philemon", 1}, {"Hebrews", 13}, {"James", 5}, {"1 Peter", 5}, {"2 Peter", 3},
	{"1 John", 5}, {"2 John", 1}, {"3 John", 1}, {"Jude", 1}, {"Revelation", 22},
}

var fallbackReferences = []string{
	"Philippians 4:13", "Jeremiah 29:11", "Proverbs 3:5-6", "Isaiah 41:10",
	"Romans 8:28", "Psalm 23:1", "Matthew 6:33", "Joshua 1:9", "John 3:16",
}

var staticVerse = model.VersePayload{
	Text:      "For God so loved the world, that he gave his only begotten Son, that whosoever believeth in him should not perish, but have everlasting life.",
	Reference: "John 3:16",
}

type Bible struct {
	httpClient *http.Client
	baseURL    string
}

func NewBible() *Bible {
	return &Bible{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBibleURL,
	}
}

// Fetch returns a KJV verse. It tries a random reference first, then walks a
// bounded list of curated fallback references, and finally hands back the
// static verse.
func (s *Bible) Fetch(ctx context.Context) (model.VersePayload, model.Provenance) {
	refs := candidateReferences()
	if len(refs) > maxFetchAttempts {
		refs = refs[:maxFetchAttempts]
	}

	for _, ref := range refs {
		verse, err := s.fetchVerse(ctx, ref)
		if err != nil {
			log.Warnf("fetching verse %q: %v", ref, err)
			continue
		}
		return verse, model.ProvenanceLive
	}

	log.Warnf("all verse fetches failed, using static verse")
	return staticVerse, model.ProvenanceFallback
}

func (s *Bible) fetchVerse(ctx context.Context, reference string) (model.VersePayload, error) {
	endpoint := fmt.Sprintf("%s/%s?translation=kjv", s.baseURL, url.PathEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.VersePayload{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return model.VersePayload{}, fmt.Errorf("requesting verse: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.VersePayload{}, fmt.Errorf("verse endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.VersePayload{}, fmt.Errorf("reading response: %w", err)
	}

	var parsed struct {
		Text      string `json:"text"`
		Reference string `json:"reference"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.VersePayload{}, fmt.Errorf("unmarshalling verse: %w", err)
	}

	verse := model.VersePayload{Text: parsed.Text, Reference: parsed.Reference}
	if length := model.PostLength(verse.Text); length < minVerseLength || length > maxVerseLength {
		return model.VersePayload{}, fmt.Errorf("verse length %d outside usable range", length)
	}

	return verse, nil
}

// candidateReferences is a random reference followed by shuffled curated
// fallbacks, so repeated failures walk a different path each day.
func candidateReferences() []string {
	refs := []string{randomReference()}
	shuffled := append([]string{}, fallbackReferences...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return append(refs, shuffled...)
}

func randomReference() string {
	book := bibleBooks[rand.Intn(len(bibleBooks))]
	chapter := rand.Intn(book.chapters) + 1
	// Most chapters have at least 20 verses; stay in the safe range.
	verse := rand.Intn(20) + 1
	return fmt.Sprintf("%s %d:%d", book.name, chapter, verse)
}
