// Package platform owns delivery to the external posting platform: single
// posts, linear reply chains with pacing, and dry-run simulation.
package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"uk.co.dudmesh.herald/internal/model"
)

// API is the wire-level surface of the platform.
type API interface {
	CreatePost(ctx context.Context, text string) (string, error)
	CreateReply(ctx context.Context, text string, parentID string) (string, error)
}

type Client struct {
	api    API
	dryRun bool
	pacing time.Duration
}

func New(api API, dryRun bool, pacing time.Duration) *Client {
	return &Client{
		api:    api,
		dryRun: dryRun,
		pacing: pacing,
	}
}

// PostSingle delivers one post and returns the platform-assigned id. It does
// not retry; the caller decides what a failure means.
func (c *Client) PostSingle(ctx context.Context, post model.Post) (string, error) {
	if post.Text == "" {
		return "", model.ErrorEmptyPost
	}

	text := post.Text
	if model.PostLength(text) > model.PlatformPostLimit {
		// Formatters guarantee the limit; this is a last-resort guard.
		text = string([]rune(text)[:model.PlatformPostLimit-3]) + "..."
		log.Warnf("post truncated to %d chars at delivery", model.PlatformPostLimit)
	}

	if c.dryRun {
		id := "dryrun-" + model.CreateID()
		log.Infof("[DRY RUN] would post (%s): %s", post.Language.Code(), text)
		return id, nil
	}

	id, err := c.api.CreatePost(ctx, text)
	if err != nil {
		return "", fmt.Errorf("creating post: %w", err)
	}
	log.Infof("posted %s", id)
	return id, nil
}

// PostThread delivers thread[0] as the root, then each reply in order,
// linked to the id returned for its immediate predecessor. The first
// failure aborts the remainder; posts already delivered stay up.
func (c *Client) PostThread(ctx context.Context, t model.Thread) (model.DeliveryResult, error) {
	if len(t) == 0 {
		return model.DeliveryResult{}, model.ErrorEmptyThread
	}

	rootID, err := c.PostSingle(ctx, t[0])
	if err != nil {
		return model.DeliveryResult{}, fmt.Errorf("posting thread root: %w", err)
	}

	posted := []string{rootID}
	parentID := rootID

	for i, reply := range t[1:] {
		if err := c.pace(ctx); err != nil {
			return model.DeliveryResult{PostedIDs: posted}, fmt.Errorf("pacing before reply %d: %w", i+1, err)
		}

		var id string
		if c.dryRun {
			id = "dryrun-" + model.CreateID()
			log.Infof("[DRY RUN] would reply to %s (%s): %s", parentID, reply.Language.Code(), reply.Text)
		} else {
			id, err = c.api.CreateReply(ctx, reply.Text, parentID)
			if err != nil {
				log.Errorf("posting thread reply %d: %v", i+1, err)
				return model.DeliveryResult{PostedIDs: posted}, fmt.Errorf("posting thread reply %d: %w", i+1, err)
			}
			log.Infof("posted reply %d as %s", i+1, id)
		}

		posted = append(posted, id)
		parentID = id
	}

	return model.DeliveryResult{Success: true, PostedIDs: posted}, nil
}

// pace waits the configured interval between posts so the platform's rate
// limits are respected. Dry-run keeps the wait token but shrinks it so
// simulated runs stay quick.
func (c *Client) pace(ctx context.Context) error {
	delay := c.pacing
	if c.dryRun {
		delay /= 20
	}
	if delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
