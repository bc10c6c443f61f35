// Package handlers exposes the bot's read-only admin surface: delivery
// history and dry-run previews.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"uk.co.dudmesh.herald/internal/model"
)

const recentRunLimit = 50

type DeliveryHistory interface {
	Recent(limit int) ([]model.DeliveryRecord, error)
}

func Status(history DeliveryHistory) echo.HandlerFunc {
	return func(c echo.Context) error {
		records, err := history.Recent(recentRunLimit)
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(http.StatusOK, records)
	}
}

func StatusPage(history DeliveryHistory) echo.HandlerFunc {
	return func(c echo.Context) error {
		records, err := history.Recent(recentRunLimit)
		if err != nil {
			return internalError(c, err)
		}
		return c.Render(http.StatusOK, "status.html", map[string]interface{}{
			"Runs": records,
		})
	}
}

func internalError(c echo.Context, err error) error {
	c.Logger().Errorf("handler: %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError)
}
