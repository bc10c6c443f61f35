// Package thread combines a main post with drafted replies into an ordered,
// bounded thread.
package thread

import (
	"github.com/labstack/gommon/log"
	"uk.co.dudmesh.herald/internal/model"
)

// Assemble returns a thread of the main post followed by at most maxReplies
// drafted replies, in the order they were drafted. Replies over the platform
// limit are dropped outright, never truncated.
func Assemble(main model.Post, draftedReplies []string, maxReplies int) model.Thread {
	t := model.Thread{main}

	for _, reply := range draftedReplies {
		if len(t)-1 >= maxReplies {
			break
		}
		if model.PostLength(reply) > model.PlatformPostLimit {
			log.Warnf("dropping oversized drafted reply (%d chars)", model.PostLength(reply))
			continue
		}
		t = append(t, model.Post{Text: reply, Language: main.Language})
	}

	return t
}
