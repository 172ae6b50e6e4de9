package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskConnectivityProbe re-checks database reachability.
	TaskConnectivityProbe = "probe:connectivity"
	// TaskDocumentExpiryScan flags compliance documents nearing expiry.
	TaskDocumentExpiryScan = "documents:expiry_scan"
	// TaskReportsRefresh rebuilds the materialized profitability views.
	TaskReportsRefresh = "reports:refresh"
)

// ExpiryScanPayload tunes the document scan.
type ExpiryScanPayload struct {
	// Notify reserved for a future alerting channel; the scan always logs.
	Notify bool `json:"notify"`
}

// NewConnectivityProbeTask constructs the probe task.
func NewConnectivityProbeTask() *asynq.Task {
	return asynq.NewTask(TaskConnectivityProbe, nil)
}

// NewDocumentExpiryScanTask constructs the expiry scan task.
func NewDocumentExpiryScanTask(payload ExpiryScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDocumentExpiryScan, data), nil
}

// NewReportsRefreshTask constructs the reports refresh task.
func NewReportsRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskReportsRefresh, nil)
}
