package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	alertJob "supplychain-backend/internal/domains/alert/job"
	"supplychain-backend/internal/shared"
	"supplychain-backend/pkg/container"
)

// asynqServer wraps asynq.Server for shutdown handling.
type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(c *container.Container) *asynqServer {
	mux := asynq.NewServeMux()
	mux.Handle(shared.TypeAlertEvaluate, alertJob.NewEvaluateHandler(c.AlertService))
	mux.Handle(shared.TypeAlertSweep, alertJob.NewSweepHandler(c.AlertService))

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     c.Config.Redis.Host,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		},
		asynq.Config{
			Queues: map[string]int{
				shared.QueueAlerts: 10,
				"default":          5,
			},
			Concurrency: 10,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq] ❌ Task failed - Type: %s, Error: %v", task.Type(), err)
			}),
		},
	)

	go func() {
		log.Println("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[Worker] Failed: %v", err)
		}
	}()

	return &asynqServer{Server: srv}
}

func (s *asynqServer) Shutdown() {
	log.Println("[Worker] Shutting down...")
	s.Server.Shutdown()
	log.Println("[Worker] ✓ Stopped")
}
