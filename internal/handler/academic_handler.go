package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mru-results-api/internal/dto"
	"github.com/noah-isme/mru-results-api/internal/middleware"
	"github.com/noah-isme/mru-results-api/internal/models"
	appErrors "github.com/noah-isme/mru-results-api/pkg/errors"
	"github.com/noah-isme/mru-results-api/pkg/response"
)

type academicReportService interface {
	Snapshot(ctx context.Context, regno string, q dto.SnapshotQuery) (*models.AcademicSnapshot, error)
	Summary(ctx context.Context, q dto.AcademicFilterQuery) (*models.SummaryReport, error)
	MissingMarks(ctx context.Context, q dto.MissingMarksQuery) (*models.MissingMarksReport, error)
}

// AcademicHandler exposes derived academic reports.
type AcademicHandler struct {
	reports academicReportService
}

// NewAcademicHandler constructs the handler.
func NewAcademicHandler(reports academicReportService) *AcademicHandler {
	return &AcademicHandler{reports: reports}
}

// Snapshot godoc
// @Summary Student academic snapshot
// @Tags Academics
// @Produce json
// @Param regno path string true "Registration number"
// @Param programme_level query int false "Programme level override"
// @Param expected_courses query int false "Expected course count"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /academics/students/{regno}/snapshot [get]
func (h *AcademicHandler) Snapshot(c *gin.Context) {
	var query dto.SnapshotQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	snapshot, err := h.reports.Snapshot(c.Request.Context(), c.Param("regno"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, middleware.ExtractMeta(c))
}

// Summary godoc
// @Summary Cohort summary report
// @Tags Academics
// @Produce json
// @Param acad query string false "Academic year"
// @Param semester query int false "Semester"
// @Param progid query string false "Programme"
// @Param studyyear query int false "Year of study"
// @Param specialisation query string false "Specialisation"
// @Param expected_courses query int false "Expected course count"
// @Success 200 {object} response.Envelope
// @Router /academics/summary [get]
func (h *AcademicHandler) Summary(c *gin.Context) {
	var query dto.AcademicFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	report, err := h.reports.Summary(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, middleware.ExtractMeta(c))
}

// MissingMarks godoc
// @Summary Students with missing marks
// @Tags Academics
// @Produce json
// @Param acad query string false "Academic year"
// @Param semester query int false "Semester"
// @Param progid query string false "Programme"
// @Param studyyear query int false "Year of study"
// @Param specialisation query string false "Specialisation"
// @Param sort query string false "Sort field"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /academics/missing-marks [get]
func (h *AcademicHandler) MissingMarks(c *gin.Context) {
	var query dto.MissingMarksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	report, err := h.reports.MissingMarks(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, middleware.ExtractMeta(c, map[string]interface{}{
		"incomplete_students": report.Statistics.TotalStudents,
	}))
}
