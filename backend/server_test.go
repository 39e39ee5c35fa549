package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestPingAndIdleStatus(t *testing.T) {
	handler := newServer().routes()

	rec := doJSON(t, handler, http.MethodGet, "/api/ping", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = doJSON(t, handler, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeBody[StatusResponse](t, rec)
	require.Equal(t, "not_started", status.Status)
	require.Empty(t, status.ExhibitionID)
	require.Len(t, status.Board, 3)
	require.Equal(t, 1, status.NextPlayer)
}

func TestAnalyzeReportsBothWinChecks(t *testing.T) {
	handler := newServer().routes()
	rec := doJSON(t, handler, http.MethodPost, "/api/analyze", analyzeRequest{
		Board: [][]int{
			{1, 2, 0},
			{0, 1, 2},
			{0, 0, 1},
		},
		WinLength: 3,
		Player:    2,
		LastMove:  &Move{Row: 2, Col: 2},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[analyzeResponse](t, rec)
	require.Equal(t, 1, resp.Winner)
	require.NotNil(t, resp.LastMoveWins)
	require.True(t, *resp.LastMoveWins)
	require.Nil(t, resp.SuggestedMove)
	require.Equal(t, 4, resp.EmptyCells)
	require.Less(t, resp.Evaluation, winScore)
	require.Greater(t, resp.Evaluation, -winScore)
}

func TestAnalyzeSuggestsBlock(t *testing.T) {
	handler := newServer().routes()
	for _, level := range []int{0, int(LevelGreedy), int(LevelSearch)} {
		rec := doJSON(t, handler, http.MethodPost, "/api/analyze", analyzeRequest{
			Board: [][]int{
				{1, 1, 0},
				{0, 2, 0},
				{0, 0, 0},
			},
			WinLength: 3,
			Player:    2,
			Level:     level,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decodeBody[analyzeResponse](t, rec)
		require.Equal(t, 0, resp.Winner)
		require.NotNil(t, resp.SuggestedMove, "level %d", level)
		require.Equal(t, 0, resp.SuggestedMove.Row, "level %d", level)
		require.Equal(t, 2, resp.SuggestedMove.Col, "level %d", level)
	}
}

func TestAnalyzeFullBoardHasNoSuggestion(t *testing.T) {
	handler := newServer().routes()
	rec := doJSON(t, handler, http.MethodPost, "/api/analyze", analyzeRequest{
		Board: [][]int{
			{1, 2, 1},
			{1, 2, 2},
			{2, 1, 1},
		},
		WinLength: 3,
		Player:    1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[analyzeResponse](t, rec)
	require.Equal(t, 0, resp.Winner)
	require.Nil(t, resp.SuggestedMove)
	require.Equal(t, ErrNoMovesAvailable.Error(), resp.SuggestedError)
}

func TestAnalyzeRejectsBadPositions(t *testing.T) {
	handler := newServer().routes()
	cases := map[string]analyzeRequest{
		"ragged":      {Board: [][]int{{0, 0}, {0}}, WinLength: 2, Player: 1},
		"bad cell":    {Board: [][]int{{0, 3}}, WinLength: 1, Player: 1},
		"k too long":  {Board: [][]int{{0, 0}}, WinLength: 3, Player: 1},
		"bad player":  {Board: [][]int{{0, 0}}, WinLength: 2, Player: 3},
		"bad level":   {Board: [][]int{{0, 0}}, WinLength: 2, Player: 1, Level: 5},
		"empty board": {WinLength: 1, Player: 1},
		"last move":   {Board: [][]int{{0, 0}}, WinLength: 2, Player: 1, LastMove: &Move{Row: 4, Col: 0}},
	}
	for name, req := range cases {
		rec := doJSON(t, handler, http.MethodPost, "/api/analyze", req)
		require.Equal(t, http.StatusBadRequest, rec.Code, name)
		require.Contains(t, rec.Body.String(), "error", name)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExhibitionStartRunStop(t *testing.T) {
	srv := newServer()
	handler := srv.routes()

	rec := doJSON(t, handler, http.MethodPost, "/api/exhibition/start", map[string]any{
		"settings": GameSettingsDTO{Rows: 3, Cols: 3, WinLength: 3, PlayerOneLevel: int(LevelGreedy), PlayerTwoLevel: int(LevelRandom)},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	status := decodeBody[StatusResponse](t, rec)
	_, err := uuid.Parse(status.ExhibitionID)
	require.NoError(t, err)
	require.Equal(t, "running", status.Status)
	require.Equal(t, "Bot Level 2", status.Settings.PlayerOneName)

	deadline := time.Now().Add(5 * time.Second)
	for srv.controller.State().Status == StatusRunning {
		require.True(t, time.Now().Before(deadline), "exhibition did not finish")
		srv.tick()
		time.Sleep(time.Millisecond)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/status", nil)
	status = decodeBody[StatusResponse](t, rec)
	require.NotEqual(t, "running", status.Status)
	require.Len(t, status.History, status.MoveCount)

	rec = doJSON(t, handler, http.MethodPost, "/api/exhibition/stop", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status = decodeBody[StatusResponse](t, rec)
	require.Equal(t, "not_started", status.Status)
	require.Empty(t, status.ExhibitionID)
	require.Empty(t, status.History)
}

func TestExhibitionStartRejectsInvalidSettings(t *testing.T) {
	handler := newServer().routes()
	cases := map[string]GameSettingsDTO{
		"level":      {PlayerOneLevel: 4},
		"win length": {Rows: 3, Cols: 3, WinLength: 9},
		"too large":  {Rows: maxServerBoardDim + 1, Cols: 3, WinLength: 3},
		"negative":   {Rows: -1, Cols: 3, WinLength: 3},
	}
	for name, dto := range cases {
		rec := doJSON(t, handler, http.MethodPost, "/api/exhibition/start", map[string]any{"settings": dto})
		require.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	prev := GetConfig()
	defer configStore.Update(prev)

	handler := newServer().routes()
	cfg := DefaultConfig()
	cfg.GhostMode = true
	cfg.AiGhostThrottleMs = 10
	cfg.Heuristics.NearWin = 80

	rec := doJSON(t, handler, http.MethodPost, "/api/config", cfg)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, cfg, decodeBody[Config](t, rec))

	rec = doJSON(t, handler, http.MethodGet, "/api/config", nil)
	require.Equal(t, cfg, decodeBody[Config](t, rec))
	require.Equal(t, cfg, GetConfig())

	cfg.AiGhostThrottleMs = -1
	rec = doJSON(t, handler, http.MethodPost, "/api/config", cfg)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	zeroWeights := DefaultConfig()
	zeroWeights.Heuristics = HeuristicConfig{}
	rec = doJSON(t, handler, http.MethodPost, "/api/config", zeroWeights)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "heuristic weights")
	require.Equal(t, 80, GetConfig().Heuristics.NearWin)
}

func TestAnalyzeLargestBoardStaysInteractive(t *testing.T) {
	handler := newServer().routes()
	grid := make([][]int, maxServerBoardDim)
	for row := range grid {
		grid[row] = make([]int, maxServerBoardDim)
	}
	for _, k := range []int{3, 4, 5} {
		start := time.Now()
		rec := doJSON(t, handler, http.MethodPost, "/api/analyze", analyzeRequest{
			Board:     grid,
			WinLength: k,
			Player:    1,
			Level:     int(LevelSearch),
		})
		elapsed := time.Since(start)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decodeBody[analyzeResponse](t, rec)
		require.NotNil(t, resp.SuggestedMove, "k=%d", k)
		require.Equal(t, 4, resp.Depth)
		require.Less(t, elapsed, 5*time.Second, "k=%d took %s", k, elapsed)
	}

	grid = append(grid, make([]int, maxServerBoardDim))
	rec := doJSON(t, handler, http.MethodPost, "/api/analyze", analyzeRequest{Board: grid, WinLength: 3, Player: 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
