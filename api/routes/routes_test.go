package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArowuTest/poolgame-backend/internal/cache"
	"github.com/ArowuTest/poolgame-backend/internal/config"
	"github.com/ArowuTest/poolgame-backend/internal/events"
	"github.com/ArowuTest/poolgame-backend/internal/logging"
	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories/memory"
	"github.com/ArowuTest/poolgame-backend/internal/services"
	"github.com/ArowuTest/poolgame-backend/pkg/jwt"
)

const testSecret = "test-secret"

func newRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := memory.NewStore()
	store := mem.Repositories()
	logger := logging.Discard()
	publisher := events.NoopPublisher{}

	cfg := &config.Config{
		Server: config.ServerConfig{AllowedHosts: []string{"*"}},
		JWT:    config.JWTConfig{Secret: testSecret, Issuer: "poolgame"},
	}
	svc := Services{
		Draws:       services.NewDrawService(store.Rounds, store.Draws, publisher, logger, nil),
		Settlements: services.NewSettlementService(store, cache.NewMemoryResultCache(), publisher, logger, time.Minute, nil),
		Rounds:      services.NewRoundService(store.Rounds, publisher, logger, nil),
	}
	return SetupRouter(cfg, svc, logger), mem
}

func token(t *testing.T, role string) string {
	t.Helper()
	issuer, err := jwt.NewIssuer(testSecret, "poolgame")
	require.NoError(t, err)
	signed, err := issuer.Issue("user-1", role, time.Hour)
	require.NoError(t, err)
	return signed
}

func call(r *gin.Engine, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedRound(t *testing.T, mem *memory.Store) {
	t.Helper()
	mem.PutRound(&models.Round{
		ID:           "r1",
		Kind:         models.GameKindNumberSet,
		Status:       models.RoundStatusOpen,
		MinSelection: 3,
		MaxSelection: 3,
		DrawSize:     3,
		EndTime:      time.Now().Add(-time.Minute),
		Premiation: models.PremiationConfig{
			Mode: models.PremiationModeFixed,
			Shares: map[models.Category]float64{
				models.CategoryChampion:       0.5,
				models.CategoryRunnerUp:       0.2,
				models.CategoryLastPlace:      0.1,
				models.CategoryAdministrative: 0.1,
				models.CategoryCommission:     0.1,
			},
		},
	})
	col := "col-1"
	_, err := mem.Repositories().Bets.CreateMany(context.Background(), []*models.Bet{
		{ID: "A", RoundID: "r1", CollaboratorID: &col, Selection: []string{"1", "2", "3"}, Amount: decimal.RequireFromString("30")},
		{ID: "B", RoundID: "r1", Selection: []string{"1", "5", "6"}, Amount: decimal.RequireFromString("30")},
		{ID: "C", RoundID: "r1", Selection: []string{"7", "8", "9"}, Amount: decimal.RequireFromString("30")},
	})
	require.NoError(t, err)
}

func TestHealth(t *testing.T) {
	r, _ := newRouter(t)
	w := call(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthorization(t *testing.T) {
	r, mem := newRouter(t)
	seedRound(t, mem)

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/rounds/r1/status", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/rounds/r1/status", "garbage", nil).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/rounds/r1/status", token(t, "viewer"), nil).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, "/api/v1/rounds/r1/close", token(t, "viewer"), nil).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPut, "/api/v1/rounds/r1/premiation", token(t, "operator"), gin.H{"unit": "fraction"}).Code)
}

func TestRoundLifecycle(t *testing.T) {
	r, mem := newRouter(t)
	seedRound(t, mem)
	operator := token(t, "operator")

	w := call(r, http.MethodPost, "/api/v1/rounds/r1/settle", operator, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "open rounds do not settle")

	w = call(r, http.MethodPost, "/api/v1/rounds/r1/close", operator, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodPost, "/api/v1/rounds/r1/settle", operator, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "draw is missing")

	w = call(r, http.MethodPost, "/api/v1/rounds/r1/draw", operator, gin.H{"values": []string{"1", "2", "3"}})
	require.Equal(t, http.StatusCreated, w.Code)

	w = call(r, http.MethodPost, "/api/v1/rounds/r1/settle", operator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var first struct {
		Outcome string                  `json:"outcome"`
		Result  models.SettlementResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, "settled", first.Outcome)
	assert.Equal(t, "90", first.Result.TotalCollected.String())

	w = call(r, http.MethodPost, "/api/v1/rounds/r1/settle", operator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var second struct {
		Outcome string                  `json:"outcome"`
		Result  models.SettlementResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, "already_processed", second.Outcome)
	assert.Equal(t, first.Result.PlanDigest, second.Result.PlanDigest)

	w = call(r, http.MethodGet, "/api/v1/rounds/r1/status", operator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "settled", status["status"])
	assert.Equal(t, true, status["processed"])

	w = call(r, http.MethodGet, "/api/v1/rounds/r1/settlement", operator, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
