package jobs

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEnqueuer struct {
	refreshCalls int
	scans        []ExpiryScanPayload
}

func (s *stubEnqueuer) EnqueueReportsRefresh(ctx context.Context) (*asynq.TaskInfo, error) {
	s.refreshCalls++
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil
}

func (s *stubEnqueuer) EnqueueExpiryScan(ctx context.Context, payload ExpiryScanPayload) (*asynq.TaskInfo, error) {
	s.scans = append(s.scans, payload)
	return &asynq.TaskInfo{ID: "task-2", Queue: QueueDefault}, nil
}

func newJobsRouter(e Enqueuer) http.Handler {
	h := NewHandler(nil, e, slog.Default())
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	return r
}

func TestEnqueueReportsRefreshAccepted(t *testing.T) {
	enqueuer := &stubEnqueuer{}
	router := newJobsRouter(enqueuer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/reports-refresh", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, enqueuer.refreshCalls)
	assert.Contains(t, rec.Body.String(), "task-1")
}

func TestEnqueueExpiryScanCarriesPayload(t *testing.T) {
	enqueuer := &stubEnqueuer{}
	router := newJobsRouter(enqueuer)

	req := httptest.NewRequest(http.MethodPost, "/jobs/expiry-scan", strings.NewReader(`{"notify":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, enqueuer.scans, 1)
	assert.True(t, enqueuer.scans[0].Notify)
}

func TestEnqueueExpiryScanRejectsMalformedPayload(t *testing.T) {
	enqueuer := &stubEnqueuer{}
	router := newJobsRouter(enqueuer)

	req := httptest.NewRequest(http.MethodPost, "/jobs/expiry-scan", strings.NewReader(`{notify`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, enqueuer.scans)
}

func TestEnqueueUnavailableWithoutClient(t *testing.T) {
	router := newJobsRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/reports-refresh", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
