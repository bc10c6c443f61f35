package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"uk.co.dudmesh.herald/internal/model"
)

type fakeHistory struct {
	records []model.DeliveryRecord
}

func (f *fakeHistory) Recent(limit int) ([]model.DeliveryRecord, error) {
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

type fakePreviewer struct {
	thread model.Thread
}

func (f *fakePreviewer) Preview(context.Context, model.ContentKind, model.Locale) (model.Thread, error) {
	return f.thread, nil
}

func testLocales() map[string]model.Locale {
	return map[string]model.Locale{
		"en": {Language: model.LanguagePrimary, MaxReplies: 2},
		"zh": {Language: model.LanguageSecondary, MaxReplies: 1},
	}
}

func TestStatus(t *testing.T) {
	assert := assert.New(t)

	history := &fakeHistory{records: []model.DeliveryRecord{
		{RunID: "run-1", CreatedAt: time.Now().UTC(), Kind: model.ContentKindVerse, Locale: "en", Success: true},
	}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.Nil(Status(history)(c))
	assert.Equal(http.StatusOK, rec.Code)

	var records []model.DeliveryRecord
	assert.Nil(json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(records, 1)
	assert.Equal("run-1", records[0].RunID)
}

func TestPreview(t *testing.T) {
	assert := assert.New(t)

	previewer := &fakePreviewer{thread: model.Thread{{Text: "main post"}}}

	newContext := func(kind, locale string) (echo.Context, *httptest.ResponseRecorder) {
		e := echo.New()
		target := "/preview/" + kind
		if locale != "" {
			target += "?locale=" + locale
		}
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("kind")
		c.SetParamValues(kind)
		return c, rec
	}

	t.Run("returns the assembled thread", func(t *testing.T) {
		c, rec := newContext("bible_verse", "en")
		assert.Nil(Preview(previewer, testLocales())(c))
		assert.Equal(http.StatusOK, rec.Code)
		assert.Contains(rec.Body.String(), "main post")
	})

	t.Run("unknown kind is 404", func(t *testing.T) {
		c, _ := newContext("weather", "en")
		err := Preview(previewer, testLocales())(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(ok)
		assert.Equal(http.StatusNotFound, httpErr.Code)
	})

	t.Run("unknown locale is 400", func(t *testing.T) {
		c, _ := newContext("bible_verse", "fr")
		err := Preview(previewer, testLocales())(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(ok)
		assert.Equal(http.StatusBadRequest, httpErr.Code)
	})

	t.Run("locale defaults to en", func(t *testing.T) {
		c, rec := newContext("markets", "")
		assert.Nil(Preview(previewer, testLocales())(c))
		assert.Contains(rec.Body.String(), `"locale":"en"`)
	})
}
