package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextRun(t *testing.T) {
	assert := assert.New(t)

	loc, err := time.LoadLocation("America/Chicago")
	assert.Nil(err)

	t.Run("later today when the slot is still ahead", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 6, 30, 0, 0, loc)
		next := NextRun(now, 7, 0)
		assert.Equal(time.Date(2024, 3, 10, 7, 0, 0, 0, loc), next)
	})

	t.Run("tomorrow when the slot has passed", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 8, 15, 0, 0, loc)
		next := NextRun(now, 7, 0)
		assert.Equal(time.Date(2024, 3, 11, 7, 0, 0, 0, loc), next)
	})

	t.Run("tomorrow when now is exactly the slot", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 7, 0, 0, 0, loc)
		next := NextRun(now, 7, 0)
		assert.Equal(time.Date(2024, 3, 11, 7, 0, 0, 0, loc), next)
	})

	t.Run("respects the caller's location", func(t *testing.T) {
		beijing, err := time.LoadLocation("Asia/Shanghai")
		assert.Nil(err)
		now := time.Date(2024, 3, 10, 5, 0, 0, 0, beijing)
		next := NextRun(now, 7, 0)
		assert.Equal(beijing, next.Location())
	})
}
