package drafter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"uk.co.dudmesh.herald/internal/model"
)

func TestParseReplies(t *testing.T) {
	assert := assert.New(t)

	t.Run("extracts numbered lines in order", func(t *testing.T) {
		content := "1. First insight here.\n2. Second insight here.\n3. Third insight here."
		replies := parseReplies(content, 3)
		assert.Equal([]string{"First insight here.", "Second insight here.", "Third insight here."}, replies)
	})

	t.Run("ignores unnumbered chatter", func(t *testing.T) {
		content := "Here are your posts:\n\n1. The real one.\n\nHope that helps!"
		replies := parseReplies(content, 2)
		assert.Equal([]string{"The real one."}, replies)
	})

	t.Run("caps at maxReplies", func(t *testing.T) {
		content := "1. one\n2. two\n3. three"
		assert.Len(parseReplies(content, 2), 2)
	})

	t.Run("filters oversized replies", func(t *testing.T) {
		content := "1. " + strings.Repeat("a", model.PlatformPostLimit+1) + "\n2. fits"
		assert.Equal([]string{"fits"}, parseReplies(content, 2))
	})

	t.Run("empty content yields nothing", func(t *testing.T) {
		assert.Empty(parseReplies("", 2))
	})
}

func TestDraftDisabled(t *testing.T) {
	assert := assert.New(t)

	client := New("")
	assert.False(client.Enabled())

	replies, err := client.Draft(context.Background(), "main", "context", 2, model.LanguagePrimary)
	assert.Nil(err)
	assert.Empty(replies)
}
