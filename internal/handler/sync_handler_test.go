package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mru-results-api/internal/dto"
	"github.com/noah-isme/mru-results-api/internal/models"
	appErrors "github.com/noah-isme/mru-results-api/pkg/errors"
)

type syncServiceMock struct {
	run        *models.SyncRun
	runs       []models.SyncRun
	stats      *models.SyncStatistics
	connection dto.ConnectionStatus
	tables     []string
	err        error

	startReq   dto.StartSyncRequest
	listFilter models.SyncRunFilter
	lastID     string
}

func (m *syncServiceMock) Start(ctx context.Context, req dto.StartSyncRequest) (*models.SyncRun, error) {
	m.startReq = req
	return m.run, m.err
}

func (m *syncServiceMock) Process(ctx context.Context, id string) (*models.SyncRun, error) {
	m.lastID = id
	return m.run, m.err
}

func (m *syncServiceMock) Pause(ctx context.Context, id string) (*models.SyncRun, error) {
	m.lastID = id
	return m.run, m.err
}

func (m *syncServiceMock) Status(ctx context.Context, id string) (*models.SyncRun, error) {
	m.lastID = id
	return m.run, m.err
}

func (m *syncServiceMock) List(ctx context.Context, filter models.SyncRunFilter) ([]models.SyncRun, error) {
	m.listFilter = filter
	return m.runs, m.err
}

func (m *syncServiceMock) Statistics(ctx context.Context, table string) (*models.SyncStatistics, error) {
	return m.stats, m.err
}

func (m *syncServiceMock) TestConnection(ctx context.Context) dto.ConnectionStatus {
	return m.connection
}

func (m *syncServiceMock) RemoteTables(ctx context.Context) ([]string, error) {
	return m.tables, m.err
}

func (m *syncServiceMock) SupportedTables() []string {
	return []string{"acad_results"}
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newTestRouter(syncSvc syncService, reports academicReportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = true
	RegisterRoutes(r, "/api/v1", NewSyncHandler(syncSvc), NewAcademicHandler(reports))
	return r
}

func perform(t *testing.T, r http.Handler, method, path string, body []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestSyncHandlerStartQueuesRun(t *testing.T) {
	total := int64(200)
	svc := &syncServiceMock{run: &models.SyncRun{
		ID:            "run-1",
		TableName:     "acad_results",
		Status:        models.SyncStatusPending,
		TotalRecords:  &total,
		RecordsSynced: 50,
	}}
	r := newTestRouter(svc, &academicServiceMock{})

	payload, _ := json.Marshal(map[string]interface{}{"table_name": "acad_results", "range_limit": 500, "start_id": 10})
	w, env := perform(t, r, http.MethodPost, "/api/v1/sync", payload)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "acad_results", svc.startReq.TableName)
	assert.Equal(t, 500, svc.startReq.RangeLimit)
	assert.Equal(t, int64(10), svc.startReq.StartID)

	var resp dto.SyncRunResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "run-1", resp.ID)
	assert.Equal(t, 25.0, resp.ProgressPercentage)
}

func TestSyncHandlerStartRejectsBadBody(t *testing.T) {
	r := newTestRouter(&syncServiceMock{}, &academicServiceMock{})

	w, env := perform(t, r, http.MethodPost, "/api/v1/sync", []byte("{"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, env.Error.Code)
}

func TestSyncHandlerStartUnsupportedTable(t *testing.T) {
	svc := &syncServiceMock{err: appErrors.Clone(appErrors.ErrUnsupportedTable, "Transformation logic for table acad_student is not implemented")}
	r := newTestRouter(svc, &academicServiceMock{})

	payload, _ := json.Marshal(map[string]interface{}{"table_name": "acad_student"})
	w, env := perform(t, r, http.MethodPost, "/api/v1/sync", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "acad_student")
}

func TestSyncHandlerProcessConflicts(t *testing.T) {
	svc := &syncServiceMock{err: appErrors.Clone(appErrors.ErrSyncCompleted, "Sync has already been completed")}
	r := newTestRouter(svc, &academicServiceMock{})

	w, env := perform(t, r, http.MethodPost, "/api/v1/sync/run-9/process", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "run-9", svc.lastID)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrSyncCompleted.Code, env.Error.Code)
}

func TestSyncHandlerPauseAndStatus(t *testing.T) {
	svc := &syncServiceMock{run: &models.SyncRun{ID: "run-2", Status: models.SyncStatusPaused}}
	r := newTestRouter(svc, &academicServiceMock{})

	w, _ := perform(t, r, http.MethodPost, "/api/v1/sync/run-2/pause", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := perform(t, r, http.MethodGet, "/api/v1/sync/run-2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.SyncRunResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, models.SyncStatusPaused, resp.Status)

	svc.err = appErrors.Clone(appErrors.ErrNotFound, "sync run not found")
	w, _ = perform(t, r, http.MethodGet, "/api/v1/sync/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSyncHandlerListPassesFilters(t *testing.T) {
	svc := &syncServiceMock{runs: []models.SyncRun{{ID: "a"}, {ID: "b"}}}
	r := newTestRouter(svc, &academicServiceMock{})

	w, env := perform(t, r, http.MethodGet, "/api/v1/sync?table_name=acad_results&status=failed&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SyncRunFilter{TableName: "acad_results", Status: models.SyncStatusFailed, Limit: 5}, svc.listFilter)

	var runs []dto.SyncRunResponse
	require.NoError(t, json.Unmarshal(env.Data, &runs))
	assert.Len(t, runs, 2)
}

func TestSyncHandlerStatisticsAndTables(t *testing.T) {
	svc := &syncServiceMock{
		stats:  &models.SyncStatistics{TotalSyncs: 3, Completed: 2, Failed: 1},
		tables: []string{"acad_results", "acad_student"},
	}
	r := newTestRouter(svc, &academicServiceMock{})

	w, env := perform(t, r, http.MethodGet, "/api/v1/sync/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"acad_results"}, env.Meta["supported_tables"])

	w, env = perform(t, r, http.MethodGet, "/api/v1/sync/tables", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tables []string
	require.NoError(t, json.Unmarshal(env.Data, &tables))
	assert.Equal(t, svc.tables, tables)
}

func TestSyncHandlerConnection(t *testing.T) {
	svc := &syncServiceMock{connection: dto.ConnectionStatus{Connected: true, Message: "Connection successful"}}
	r := newTestRouter(svc, &academicServiceMock{})

	w, _ := perform(t, r, http.MethodGet, "/api/v1/sync/connection", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	svc.connection = dto.ConnectionStatus{Connected: false, Message: "dial tcp: connection refused"}
	w, env := perform(t, r, http.MethodGet, "/api/v1/sync/connection", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var status dto.ConnectionStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.False(t, status.Connected)
}
