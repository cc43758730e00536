package job

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"supplychain-backend/internal/shared"
	"supplychain-backend/pkg/logger"
)

// Enqueuer pushes alert evaluation tasks onto the queue after ledger
// mutations. Enqueue failures are logged and swallowed so a queue outage
// never fails a stock operation.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) TriggerEvaluation(productID, locationID uuid.UUID) {
	payload, err := json.Marshal(shared.AlertEvaluatePayload{
		ProductID:  productID.String(),
		LocationID: locationID.String(),
	})
	if err != nil {
		logger.Error("alert enqueue: marshal payload failed", err)
		return
	}

	task := asynq.NewTask(shared.TypeAlertEvaluate, payload)
	if _, err := e.client.Enqueue(task, asynq.Queue(shared.QueueAlerts)); err != nil {
		logger.Error("alert enqueue: failed to enqueue evaluation task", err)
	}
}
