package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/recipe_api/internal/logging"
)

const (
	TopicUserEvents   = "user_events"
	TopicRecipeEvents = "recipe_events"

	sideEffectTimeout = 5 * time.Second
)

const (
	EventUserRegistered = "user_registered"
	EventTokenIssued    = "token_issued"
	EventRecipeCreated  = "recipe_created"
	EventRecipeUpdated  = "recipe_updated"
	EventRecipeDeleted  = "recipe_deleted"
)

type UserEvent struct {
	Type   string `json:"type"`
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

type RecipeEvent struct {
	Type     string `json:"type"`
	UserID   uint   `json:"user_id"`
	RecipeID uint   `json:"recipe_id"`
	Title    string `json:"title,omitempty"`
}

// publish runs after the store commit; a failure only gets logged.
func publish(ctx context.Context, p Publisher, topic, key string, event any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := p.Publish(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "key", key, "error", err)
	}
}
