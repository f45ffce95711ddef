package scheduler

import (
	"fmt"
	"time"

	"kronus_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic registers the cron entries that enqueue the daily sweeps.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// PeriodicConfig carries the cron specs and the timezone they run in.
type PeriodicConfig struct {
	RedisAddr     string
	RedisPassword string
	Timezone      string
	TodayCron     string
	TomorrowCron  string
}

func NewPeriodic(cfg PeriodicConfig, log *logger.Logger) (*Periodic, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis address not configured")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load sweep timezone %q: %w", cfg.Timezone, err)
	}

	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}, &asynq.SchedulerOpts{
		Location: loc,
	})

	todayTask, err := NewFollowUpSweepTask(FollowUpSweepPayload{Window: WindowToday})
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(cfg.TodayCron, todayTask); err != nil {
		return nil, fmt.Errorf("register today sweep: %w", err)
	}

	tomorrowTask, err := NewFollowUpSweepTask(FollowUpSweepPayload{Window: WindowTomorrow})
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(cfg.TomorrowCron, tomorrowTask); err != nil {
		return nil, fmt.Errorf("register tomorrow sweep: %w", err)
	}

	return &Periodic{scheduler: scheduler, log: log}, nil
}

// Run blocks until the scheduler stops.
func (p *Periodic) Run() {
	if err := p.scheduler.Run(); err != nil {
		p.log.Error("periodic scheduler stopped", "error", err)
	}
}

// Shutdown stops the scheduler gracefully.
func (p *Periodic) Shutdown() {
	p.scheduler.Shutdown()
}
