package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"radartools/app"
	"radartools/domain/core"
	"radartools/domain/sweep"
	"radartools/domain/target"
	"radartools/internal"
	"radartools/internal/config"
	"radartools/internal/errors"
	"radartools/models"
)

type mockDetection struct {
	mock.Mock
}

func (m *mockDetection) Evaluate(ctx context.Context, req models.EvaluateRequest) (*models.Evaluation, error) {
	args := m.Called(ctx, req)
	eval, _ := args.Get(0).(*models.Evaluation)
	return eval, args.Error(1)
}

func (m *mockDetection) Threshold(ctx context.Context, pulses int, pfa float64) (*models.ThresholdResult, error) {
	args := m.Called(ctx, pulses, pfa)
	res, _ := args.Get(0).(*models.ThresholdResult)
	return res, args.Error(1)
}

type mockSweeps struct {
	mock.Mock
}

func (m *mockSweeps) Curves(ctx context.Context, req models.CurveRequest) (*sweep.Result, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*sweep.Result)
	return r, args.Error(1)
}

func (m *mockSweeps) RequiredSNR(ctx context.Context, req models.RequiredSNRRequest) (*sweep.Table, error) {
	args := m.Called(ctx, req)
	t, _ := args.Get(0).(*sweep.Table)
	return t, args.Error(1)
}

type mockSelfCheck struct {
	mock.Mock
}

func (m *mockSelfCheck) Run(ctx context.Context) (*models.SelfCheckReport, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*models.SelfCheckReport)
	return r, args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	s := NewServer(new(mockDetection), new(mockSweeps), new(mockSelfCheck), quietLogger(), 0)
	w := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestThreshold(t *testing.T) {
	det := new(mockDetection)
	det.On("Threshold", mock.Anything, 3, 1e-6).Return(&models.ThresholdResult{Pulses: 3, Pfa: 1e-6, Threshold: 19.129}, nil)
	s := NewServer(det, new(mockSweeps), new(mockSelfCheck), quietLogger(), time.Second)

	w := do(t, s, http.MethodGet, "/api/v1/threshold?pulses=3&pfa=1e-6", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got models.ThresholdResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.ThresholdResult{Pulses: 3, Pfa: 1e-6, Threshold: 19.129}, got)
	det.AssertExpectations(t)
}

func TestThreshold_BadQuery(t *testing.T) {
	s := NewServer(new(mockDetection), new(mockSweeps), new(mockSelfCheck), quietLogger(), 0)
	for _, q := range []string{"?pfa=abc", "?pulses=x&pfa=0.1", "?pfa=0", ""} {
		w := do(t, s, http.MethodGet, "/api/v1/threshold"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, errors.CodeInvalidInput, decodeError(t, w).Code, q)
	}
}

func TestEvaluate_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", errors.InvalidInput("bad"), http.StatusBadRequest, errors.CodeInvalidInput},
		{"domain", errors.FromDomain(core.NewDomainError(2), "bad pd"), http.StatusBadRequest, errors.CodeDomainError},
		{"no convergence", errors.FromDomain(core.NewNoBracketError(0.5, 1), "solve"), http.StatusUnprocessableEntity, errors.CodeNoConvergence},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, "TIMEOUT"},
		{"internal", assert.AnError, http.StatusInternalServerError, errors.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := new(mockDetection)
			det.On("Evaluate", mock.Anything, mock.Anything).Return(nil, tt.err)
			s := NewServer(det, new(mockSweeps), new(mockSelfCheck), quietLogger(), 0)

			w := do(t, s, http.MethodPost, "/api/v1/evaluate", `{"snr": 1}`)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestEvaluate_MalformedBody(t *testing.T) {
	s := NewServer(new(mockDetection), new(mockSweeps), new(mockSelfCheck), quietLogger(), 0)
	w := do(t, s, http.MethodPost, "/api/v1/evaluate", `{"snr": "loud"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSweep_PassesRequest(t *testing.T) {
	sw := new(mockSweeps)
	want := models.CurveRequest{Variants: []string{"swerling1"}, Pulses: []int{10}, Grid: &sweep.Grid{MinDB: 0, MaxDB: 10, StepDB: 1}}
	sw.On("Curves", mock.Anything, want).Return(&sweep.Result{Pfa: 1e-6}, nil)
	s := NewServer(new(mockDetection), sw, new(mockSelfCheck), quietLogger(), 0)

	w := do(t, s, http.MethodPost, "/api/v1/sweep",
		`{"variants":["swerling1"],"pulses":[10],"grid":{"min_db":0,"max_db":10,"step_db":1}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	sw.AssertExpectations(t)
}

func TestSelfCheck(t *testing.T) {
	sc := new(mockSelfCheck)
	sc.On("Run", mock.Anything).Return(&models.SelfCheckReport{Passed: true}, nil)
	s := NewServer(new(mockDetection), new(mockSweeps), sc, quietLogger(), 0)

	w := do(t, s, http.MethodGet, "/api/v1/selfcheck", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"passed":true`)
}

// The remaining tests run the real services behind the router.

func newLiveServer() *Server {
	cfg := config.Default()
	logger := quietLogger()
	return NewServer(
		app.NewDetectionService(cfg.Defaults, logger),
		app.NewSweepService(cfg.Sweep, cfg.Defaults, logger),
		app.NewSelfCheckService(logger),
		logger, cfg.Server.RequestTimeout,
	)
}

func TestLive_Evaluate(t *testing.T) {
	w := do(t, newLiveServer(), http.MethodPost, "/api/v1/evaluate", `{"variant":"marcum","pulses":3,"snr":10,"pfa":1e-6}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var eval models.Evaluation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eval))
	assert.Equal(t, target.NonFluctuating, eval.Variant)
	assert.InDelta(t, .97272573, eval.Pd, 0.001)
}

func TestLive_RequiredSNR(t *testing.T) {
	w := do(t, newLiveServer(), http.MethodPost, "/api/v1/required-snr", `{"variants":["sw3"],"pulses":[1,10],"pd_targets":[0.9]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var table sweep.Table
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &table))
	require.Len(t, table.Rows, 2)
	assert.Greater(t, table.Rows[0].SNR, table.Rows[1].SNR)
}

func TestLive_EvaluateNoConvergence(t *testing.T) {
	w := do(t, newLiveServer(), http.MethodPost, "/api/v1/evaluate", `{"pd":1e-9}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLive_ThresholdDefaultPulses(t *testing.T) {
	w := do(t, newLiveServer(), http.MethodGet, "/api/v1/threshold?pfa=1e-6", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.ThresholdResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Pulses)
	assert.InDelta(t, 13.81551055, got.Threshold, 1e-6)
}
