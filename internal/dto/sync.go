package dto

import "github.com/noah-isme/mru-results-api/internal/models"

// StartSyncRequest captures POST /sync payload.
type StartSyncRequest struct {
	TableName       string `json:"table_name" validate:"required,max=64"`
	RangeLimit      int    `json:"range_limit" validate:"omitempty,min=1"`
	StartID         int64  `json:"start_id" validate:"min=0"`
	MinAcademicYear string `json:"min_academic_year" validate:"omitempty,academic_year"`
	UpsertMode      string `json:"upsert_mode" validate:"omitempty,oneof=native check"`
	TriggeredBy     string `json:"triggered_by" validate:"omitempty,max=100"`
}

// SyncRunResponse exposes a run with its derived progress.
type SyncRunResponse struct {
	models.SyncRun
	ProgressPercentage float64 `json:"progress_percentage"`
}

// NewSyncRunResponse wraps a run for API output.
func NewSyncRunResponse(run models.SyncRun) SyncRunResponse {
	return SyncRunResponse{SyncRun: run, ProgressPercentage: run.ProgressPercentage()}
}

// SyncListQuery captures GET /sync filters.
type SyncListQuery struct {
	TableName string `form:"table_name"`
	Status    string `form:"status"`
	Limit     int    `form:"limit"`
}

// ConnectionStatus reports the remote database reachability check.
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	Host      string `json:"host"`
	Database  string `json:"database"`
	LatencyMs int64  `json:"latency_ms"`
	Message   string `json:"message"`
}
