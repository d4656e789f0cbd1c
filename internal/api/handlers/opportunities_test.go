package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/golf-edge/pkg/config"
	"github.com/jstittsworth/golf-edge/pkg/utils"
)

// Query validation runs before any feed or ledger access, so the handler can
// be exercised with nil services.
func scanTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	cfg := &config.Config{
		ScanMarkets:     []string{"win"},
		MinEV:           5,
		MinStake:        1,
		Bankroll:        1000,
		KellyMultiplier: 0.25,
		MaxRecommended:  10,
	}

	router := gin.New()
	router.GET("/opportunities/scan", NewOpportunityHandler(nil, nil, nil, cfg, log).Scan)
	return router
}

func doScan(t *testing.T, router *gin.Engine, query string) (*httptest.ResponseRecorder, utils.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/opportunities/scan"+query, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestScanRequiresEvent(t *testing.T) {
	router := scanTestRouter(t)

	w, body := doScan(t, router, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, utils.ErrCodeValidation, body.Error.Code)
}

func TestScanRejectsUnknownMarket(t *testing.T) {
	router := scanTestRouter(t)

	w, body := doScan(t, router, "?event=masters-2026&markets=handicap")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, utils.ErrCodeValidation, body.Error.Code)
}

func TestScanRejectsMalformedNumericParams(t *testing.T) {
	// Malformed overrides are caller bugs and must 400, not silently fall
	// back to config defaults.
	router := scanTestRouter(t)

	queries := []string{
		"?event=masters-2026&min_ev=abc",
		"?event=masters-2026&min_stake=1..5",
		"?event=masters-2026&bankroll=1e",
		"?event=masters-2026&kelly_multiplier=quarter",
		"?event=masters-2026&max=3.5",
	}

	for _, query := range queries {
		w, body := doScan(t, router, query)
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %s", query)
		assert.False(t, body.Success, "query %s", query)
		require.NotNil(t, body.Error, "query %s", query)
		assert.Equal(t, utils.ErrCodeValidation, body.Error.Code, "query %s", query)
	}
}
