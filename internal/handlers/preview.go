package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"uk.co.dudmesh.herald/internal/model"
)

type Previewer interface {
	Preview(ctx context.Context, kind model.ContentKind, locale model.Locale) (model.Thread, error)
}

// Preview renders the thread a content kind would deliver right now, without
// posting. The primary validation tool before enabling live delivery.
func Preview(previewer Previewer, locales map[string]model.Locale) echo.HandlerFunc {
	return func(c echo.Context) error {
		kind := model.ContentKind(c.Param("kind"))
		switch kind {
		case model.ContentKindVerse, model.ContentKindMarkets, model.ContentKindNews:
		default:
			return echo.NewHTTPError(http.StatusNotFound, "unknown content kind")
		}

		localeName := c.QueryParam("locale")
		if localeName == "" {
			localeName = "en"
		}
		locale, ok := locales[localeName]
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown locale")
		}

		thread, err := previewer.Preview(c.Request().Context(), kind, locale)
		if err != nil {
			return internalError(c, err)
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"kind":   kind,
			"locale": localeName,
			"thread": thread,
		})
	}
}
