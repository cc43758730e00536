package shared

// Asynq task type names and queues.
const (
	TypeAlertEvaluate = "alert:evaluate"
	TypeAlertSweep    = "alert:sweep"

	QueueAlerts = "alerts"
)

// AlertEvaluatePayload identifies the ledger record to re-evaluate.
type AlertEvaluatePayload struct {
	ProductID  string `json:"productId"`
	LocationID string `json:"locationId"`
}
