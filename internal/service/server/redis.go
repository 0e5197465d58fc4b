package server

import (
	"context"
	"fmt"
)

func queueKey(to string) string {
	return fmt.Sprintf("queue:%s", to)
}

// GetMessagesFromCache removes and returns the raw frames queued for to.
func (c *HttpServer) GetMessagesFromCache(ctx context.Context, to string) ([][]byte, error) {
	vals, err := c.queue.Drain(ctx, queueKey(to))
	if err != nil {
		return nil, err
	}

	res := make([][]byte, 0, len(vals))
	for _, v := range vals {
		res = append(res, []byte(v))
	}
	return res, nil
}

func (c *HttpServer) PutMessagesToCache(ctx context.Context, to string, messages [][]byte) error {
	if len(messages) == 0 {
		return nil
	}
	vals := make([]any, 0, len(messages))
	for _, m := range messages {
		vals = append(vals, m)
	}

	return c.queue.RPush(ctx, queueKey(to), vals...)
}
