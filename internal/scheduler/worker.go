package scheduler

import (
	"context"
	"fmt"

	"kronus_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes sweep tasks from Redis and runs them through the Sweeper.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	sweeper *Sweeper
	log     *logger.Logger
}

func NewWorker(redisAddr, redisPassword string, sweeper *Sweeper, log *logger.Logger) (*Worker, error) {
	if redisAddr == "" {
		return nil, fmt.Errorf("redis address not configured")
	}

	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
	}, asynq.Config{
		// Sweeps are cheap and infrequent; one at a time keeps digests from
		// racing each other.
		Concurrency: 1,
		Queues: map[string]int{
			"default": 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		sweeper: sweeper,
		log:     log,
	}

	mux.HandleFunc(TaskFollowUpSweep, w.handleFollowUpSweep)

	return w, nil
}

func (w *Worker) handleFollowUpSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpSweepPayload(task)
	if err != nil {
		return err
	}
	return w.sweeper.Run(ctx, payload.Window)
}

// Run blocks until the context is cancelled, then shuts the server down.
func (w *Worker) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
