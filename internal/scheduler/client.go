package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// Client enqueues sweep tasks, mainly for manual triggers and tests; the
// periodic scheduler covers the regular runs.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(redisAddr, redisPassword string) (*Client, error) {
	if redisAddr == "" {
		return nil, fmt.Errorf("redis address not configured")
	}

	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
		}),
		queue: "default",
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// TriggerSweep enqueues an immediate follow-up sweep for the window.
func (c *Client) TriggerSweep(ctx context.Context, window string) error {
	if window != WindowToday && window != WindowTomorrow {
		return fmt.Errorf("invalid sweep window %q", window)
	}

	task, err := NewFollowUpSweepTask(FollowUpSweepPayload{Window: window})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}
