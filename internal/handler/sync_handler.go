package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mru-results-api/internal/dto"
	"github.com/noah-isme/mru-results-api/internal/models"
	appErrors "github.com/noah-isme/mru-results-api/pkg/errors"
	"github.com/noah-isme/mru-results-api/pkg/response"
)

type syncService interface {
	Start(ctx context.Context, req dto.StartSyncRequest) (*models.SyncRun, error)
	Process(ctx context.Context, id string) (*models.SyncRun, error)
	Pause(ctx context.Context, id string) (*models.SyncRun, error)
	Status(ctx context.Context, id string) (*models.SyncRun, error)
	List(ctx context.Context, filter models.SyncRunFilter) ([]models.SyncRun, error)
	Statistics(ctx context.Context, table string) (*models.SyncStatistics, error)
	TestConnection(ctx context.Context) dto.ConnectionStatus
	RemoteTables(ctx context.Context) ([]string, error)
	SupportedTables() []string
}

// SyncHandler exposes the remote result synchronisation endpoints.
type SyncHandler struct {
	service syncService
}

// NewSyncHandler constructs the handler.
func NewSyncHandler(service syncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// Start godoc
// @Summary Queue a sync run
// @Tags Sync
// @Accept json
// @Produce json
// @Param payload body dto.StartSyncRequest true "Sync request"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sync [post]
func (h *SyncHandler) Start(c *gin.Context) {
	var req dto.StartSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	run, err := h.service.Start(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, dto.NewSyncRunResponse(*run))
}

// List godoc
// @Summary List recent sync runs
// @Tags Sync
// @Produce json
// @Param table_name query string false "Table name"
// @Param status query string false "Run status"
// @Param limit query int false "Maximum runs"
// @Success 200 {object} response.Envelope
// @Router /sync [get]
func (h *SyncHandler) List(c *gin.Context) {
	var query dto.SyncListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	runs, err := h.service.List(c.Request.Context(), models.SyncRunFilter{
		TableName: query.TableName,
		Status:    models.SyncStatus(query.Status),
		Limit:     query.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	items := make([]dto.SyncRunResponse, 0, len(runs))
	for _, run := range runs {
		items = append(items, dto.NewSyncRunResponse(run))
	}
	response.JSON(c, http.StatusOK, items)
}

// Statistics godoc
// @Summary Aggregate sync history
// @Tags Sync
// @Produce json
// @Param table_name query string false "Table name"
// @Success 200 {object} response.Envelope
// @Router /sync/statistics [get]
func (h *SyncHandler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context(), c.Query("table_name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, map[string]interface{}{
		"supported_tables": h.service.SupportedTables(),
	})
}

// Connection godoc
// @Summary Test the remote database connection
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /sync/connection [get]
func (h *SyncHandler) Connection(c *gin.Context) {
	status := h.service.TestConnection(c.Request.Context())
	code := http.StatusOK
	if !status.Connected {
		code = http.StatusServiceUnavailable
	}
	response.JSON(c, code, status)
}

// Tables godoc
// @Summary List remote tables
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sync/tables [get]
func (h *SyncHandler) Tables(c *gin.Context) {
	tables, err := h.service.RemoteTables(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tables)
}

// Status godoc
// @Summary Sync run status
// @Tags Sync
// @Produce json
// @Param id path string true "Sync run ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sync/{id} [get]
func (h *SyncHandler) Status(c *gin.Context) {
	run, err := h.service.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSyncRunResponse(*run))
}

// Process godoc
// @Summary Queue an existing run
// @Tags Sync
// @Produce json
// @Param id path string true "Sync run ID"
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sync/{id}/process [post]
func (h *SyncHandler) Process(c *gin.Context) {
	run, err := h.service.Process(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, dto.NewSyncRunResponse(*run))
}

// Pause godoc
// @Summary Pause a run
// @Tags Sync
// @Produce json
// @Param id path string true "Sync run ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sync/{id}/pause [post]
func (h *SyncHandler) Pause(c *gin.Context) {
	run, err := h.service.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSyncRunResponse(*run))
}
