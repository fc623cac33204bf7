package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radartools/internal/config"
	"radartools/models"
)

func TestNew_WiresServices(t *testing.T) {
	c, err := New(config.Default())
	require.NoError(t, err)

	snr := 10.0
	eval, err := c.Detection.Evaluate(context.Background(), models.EvaluateRequest{SNR: &snr})
	require.NoError(t, err)
	assert.Greater(t, eval.Pd, 0.0)

	w := httptest.NewRecorder()
	c.APIServer().Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
