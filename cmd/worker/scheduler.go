package main

import (
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"supplychain-backend/internal/shared"
	"supplychain-backend/pkg/container"
)

// asynqScheduler wraps asynq.Scheduler for shutdown handling.
type asynqScheduler struct {
	*asynq.Scheduler
}

func setupScheduler(c *container.Container) *asynqScheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     c.Config.Redis.Host,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		},
		nil,
	)

	// Periodic sweep catches records that drifted into an alert state
	// without a triggering mutation.
	spec := fmt.Sprintf("@every %s", c.Config.Alert.SweepInterval)
	task := asynq.NewTask(shared.TypeAlertSweep, nil)
	if _, err := scheduler.Register(spec, task, asynq.Queue(shared.QueueAlerts)); err != nil {
		log.Fatalf("[Scheduler] Failed to register sweep: %v", err)
	}

	go func() {
		log.Println("[Scheduler] Starting...")
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[Scheduler] Failed: %v", err)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	log.Println("[Scheduler] Shutting down...")
	s.Scheduler.Shutdown()
	log.Println("[Scheduler] ✓ Stopped")
}
