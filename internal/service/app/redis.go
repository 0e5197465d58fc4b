package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lockchat/internal/protocol/session"

	"github.com/redis/go-redis/v9"
)

func stateKey(from, to string) string {
	return fmt.Sprintf("session:%s:%s", from, to)
}

func (c *App) SaveState(ctx context.Context, from string, to string, state *session.State) error {
	if state == nil {
		return nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.redisService.Set(ctx, stateKey(from, to), data, c.cfg.StateTTL)
}

// GetState returns nil, nil when no session was saved.
func (c *App) GetState(ctx context.Context, from string, to string) (*session.State, error) {
	v, err := c.redisService.Get(ctx, stateKey(from, to))
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	var state session.State
	err = json.Unmarshal([]byte(v), &state)
	if err != nil {
		return nil, err
	}

	return &state, nil
}
