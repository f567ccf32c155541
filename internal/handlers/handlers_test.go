package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArowuTest/poolgame-backend/internal/middleware"
	"github.com/ArowuTest/poolgame-backend/internal/models"
)

type stubSettlements struct {
	result *models.SettlementResult
	err    error
}

func (s *stubSettlements) Settle(context.Context, string) (*models.SettlementResult, error) {
	return s.result, s.err
}

func (s *stubSettlements) SettlePending(context.Context) (int, error) { return 0, nil }

func (s *stubSettlements) GetResult(context.Context, string) (*models.SettlementResult, error) {
	return s.result, s.err
}

func (s *stubSettlements) GetWinners(context.Context, string) ([]*models.WinnerRecord, error) {
	return nil, s.err
}

func (s *stubSettlements) GetLedger(context.Context, string) ([]*models.LedgerEntry, error) {
	return nil, s.err
}

type stubDraws struct {
	err        error
	recordedBy string
	timeSlot   string
}

func (s *stubDraws) RecordDraw(_ context.Context, roundID string, values []string, timeSlot, _, recordedBy string) (*models.Draw, error) {
	s.recordedBy = recordedBy
	s.timeSlot = timeSlot
	if s.err != nil {
		return nil, s.err
	}
	return &models.Draw{ID: "d1", RoundID: roundID, Values: values, TimeSlot: timeSlot}, nil
}

func (s *stubDraws) GetDraw(context.Context, string) (*models.Draw, error) { return nil, s.err }

type stubRounds struct {
	unit models.ShareUnit
	cfg  models.PremiationConfig
	err  error
}

func (s *stubRounds) Status(_ context.Context, id string) (*models.Round, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Round{ID: id, Status: models.RoundStatusClosed}, nil
}

func (s *stubRounds) Close(context.Context, string) (models.RoundStatus, error) {
	return models.RoundStatusClosed, s.err
}

func (s *stubRounds) CloseDue(context.Context) (int, error) { return 0, s.err }

func (s *stubRounds) UpdatePremiation(_ context.Context, _ string, cfg models.PremiationConfig, unit models.ShareUnit) (*models.PremiationConfig, error) {
	s.unit = unit
	s.cfg = cfg
	if s.err != nil {
		return nil, s.err
	}
	return &cfg, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad value", models.ErrValidation), http.StatusUnprocessableEntity},
		{models.ErrConfigInvalid, http.StatusUnprocessableEntity},
		{models.ErrDrawMissing, http.StatusNotFound},
		{models.ErrAlreadyRecorded, http.StatusConflict},
		{models.ErrInvalidTransition, http.StatusConflict},
		{models.ErrSettlementInProgress, http.StatusAccepted},
		{models.ErrAlreadyProcessed, http.StatusOK},
		{fmt.Errorf("save: %w", models.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestSettleHandler(t *testing.T) {
	result := &models.SettlementResult{RoundID: "r1", TotalCollected: decimal.RequireFromString("90")}

	tests := []struct {
		name        string
		stub        *stubSettlements
		wantStatus  int
		wantOutcome string
	}{
		{"settled", &stubSettlements{result: result}, http.StatusOK, OutcomeSettled},
		{"already processed", &stubSettlements{result: result, err: models.ErrAlreadyProcessed}, http.StatusOK, OutcomeAlreadyProcessed},
		{"in progress", &stubSettlements{err: models.ErrSettlementInProgress}, http.StatusAccepted, OutcomeInProgress},
		{"store down", &stubSettlements{err: models.ErrStoreUnavailable}, http.StatusServiceUnavailable, ""},
		{"no bets", &stubSettlements{err: models.ErrNoBets}, http.StatusConflict, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/rounds/:id/settle", NewSettlementHandler(tt.stub).Settle)

			w := serve(r, http.MethodPost, "/rounds/r1/settle", nil)
			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantOutcome != "" {
				assert.Equal(t, tt.wantOutcome, body["outcome"])
			} else {
				assert.Contains(t, body, "error")
			}
		})
	}
}

func TestRecordDrawHandler(t *testing.T) {
	stub := &stubDraws{}
	r := gin.New()
	r.POST("/rounds/:id/draw", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "operator-1")
		c.Next()
	}, NewDrawHandler(stub).RecordDraw)

	w := serve(r, http.MethodPost, "/rounds/r1/draw", gin.H{"values": []string{"1", "2", "3"}})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "operator-1", stub.recordedBy)

	w = serve(r, http.MethodPost, "/rounds/r1/draw", gin.H{"values": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stub.err = models.ErrAlreadyRecorded
	w = serve(r, http.MethodPost, "/rounds/r1/draw", gin.H{"values": []string{"1", "2", "3"}})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdatePremiationHandler(t *testing.T) {
	stub := &stubRounds{}
	r := gin.New()
	r.PUT("/rounds/:id/premiation", NewRoundHandler(stub).UpdatePremiation)

	w := serve(r, http.MethodPut, "/rounds/r1/premiation", gin.H{
		"shares": gin.H{"champion": 50, "runner_up": 20, "last_place": 10, "administrative_cost": 10, "collaborator_commission": 10},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "unit is required")

	w = serve(r, http.MethodPut, "/rounds/r1/premiation", gin.H{
		"unit":   "percent",
		"shares": gin.H{"champion": 50, "runner_up": 20, "last_place": 10, "administrative_cost": 10, "collaborator_commission": 10},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ShareUnitPercent, stub.unit)

	stub.err = models.ErrConfigInvalid
	w = serve(r, http.MethodPut, "/rounds/r1/premiation", gin.H{"unit": "fraction"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRequestBodiesUseSnakeCaseKeys(t *testing.T) {
	draws := &stubDraws{}
	rounds := &stubRounds{}
	r := gin.New()
	r.POST("/rounds/:id/draw", NewDrawHandler(draws).RecordDraw)
	r.PUT("/rounds/:id/premiation", NewRoundHandler(rounds).UpdatePremiation)

	w := serve(r, http.MethodPost, "/rounds/r1/draw", gin.H{"values": []string{"07"}, "time_slot": "PM"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "PM", draws.timeSlot)

	w = serve(r, http.MethodPut, "/rounds/r1/premiation", gin.H{
		"unit":        "fraction",
		"mode":        "points",
		"shares":      gin.H{"administrative_cost": 0.2},
		"point_tiers": []gin.H{{"points": 3, "share": 0.5}, {"points": 2, "share": 0.3}},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, rounds.cfg.PointTiers, 2)
	assert.Equal(t, 3, rounds.cfg.PointTiers[0].Points)
	assert.Equal(t, models.PremiationModePoints, rounds.cfg.Mode)
}

func TestRoundStatusHandler(t *testing.T) {
	r := gin.New()
	r.GET("/rounds/:id/status", NewRoundHandler(&stubRounds{}).GetStatus)

	w := serve(r, http.MethodGet, "/rounds/r1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "closed", body["status"])
	assert.Equal(t, false, body["processed"])

	r = gin.New()
	r.GET("/rounds/:id/status", NewRoundHandler(&stubRounds{err: models.ErrNotFound}).GetStatus)
	w = serve(r, http.MethodGet, "/rounds/r1/status", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
