package job

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"supplychain-backend/internal/domains/alert/service"
	"supplychain-backend/internal/shared"
	"supplychain-backend/internal/shared/utils"
	"supplychain-backend/pkg/logger"
)

// EvaluateHandler re-evaluates the alert rules for one ledger record after a
// stock mutation.
type EvaluateHandler struct {
	engine service.ServiceInterface
}

func NewEvaluateHandler(engine service.ServiceInterface) *EvaluateHandler {
	return &EvaluateHandler{engine: engine}
}

func (h *EvaluateHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.AlertEvaluatePayload
	if err := utils.UnmarshalTask(task, &payload); err != nil {
		logger.Error("alert evaluate: bad payload", err)
		return err
	}

	productID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		logger.Error("alert evaluate: bad product id", err)
		return err
	}
	locationID, err := uuid.Parse(payload.LocationID)
	if err != nil {
		logger.Error("alert evaluate: bad location id", err)
		return err
	}

	h.engine.EvaluatePair(ctx, productID, locationID)
	return nil
}
