package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"supplychain-backend/internal/domains/alert/service"
)

// SweepHandler runs the periodic full evaluation over every ledger record,
// catching records that drifted into an alert state without a recent
// mutation.
type SweepHandler struct {
	engine service.ServiceInterface
}

func NewSweepHandler(engine service.ServiceInterface) *SweepHandler {
	return &SweepHandler{engine: engine}
}

func (h *SweepHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	log.Info().Msg("Starting alert sweep over all inventory records")
	h.engine.EvaluateScope(ctx, nil, nil)
	log.Info().Msg("Alert sweep completed")
	return nil
}
