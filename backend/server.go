package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	maxServerBoardDim = 7
	tickInterval      = 50 * time.Millisecond
)

type StatusResponse struct {
	ExhibitionID    string            `json:"exhibition_id"`
	Settings        GameSettingsDTO   `json:"settings"`
	Config          Config            `json:"config"`
	Board           [][]int           `json:"board"`
	NextPlayer      int               `json:"next_player"`
	Winner          int               `json:"winner"`
	Status          string            `json:"status"`
	MoveCount       int               `json:"move_count"`
	AiThinking      bool              `json:"ai_thinking"`
	History         []historyEntryDTO `json:"history"`
	WinningLine     []Move            `json:"winning_line"`
	TurnStartedAtMs int64             `json:"turn_started_at_ms"`
}

type GameSettingsDTO struct {
	Rows            int    `json:"rows"`
	Cols            int    `json:"cols"`
	WinLength       int    `json:"win_length"`
	PlayerOneLevel  int    `json:"player_one_level"`
	PlayerTwoLevel  int    `json:"player_two_level"`
	PlayerOneName   string `json:"player_one_name,omitempty"`
	PlayerTwoName   string `json:"player_two_name,omitempty"`
	PlayerTwoStarts bool   `json:"player_two_starts,omitempty"`
}

type historyEntryDTO struct {
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	Player    int     `json:"player"`
	ElapsedMs float64 `json:"elapsed_ms"`
	IsAi      bool    `json:"is_ai"`
	Depth     int     `json:"depth"`
}

type historyPayload struct {
	History []historyEntryDTO `json:"history"`
}

type resetPayload struct {
	ExhibitionID string  `json:"exhibition_id"`
	Board        [][]int `json:"board"`
	NextPlayer   int     `json:"next_player"`
	Status       string  `json:"status"`
}

type analyzeRequest struct {
	Board     [][]int `json:"board"`
	WinLength int     `json:"win_length"`
	Player    int     `json:"player"`
	Level     int     `json:"level,omitempty"`
	LastMove  *Move   `json:"last_move,omitempty"`
}

type analyzeResponse struct {
	Rows           int    `json:"rows"`
	Cols           int    `json:"cols"`
	WinLength      int    `json:"win_length"`
	Winner         int    `json:"winner"`
	LastMoveWins   *bool  `json:"last_move_wins,omitempty"`
	Evaluation     int    `json:"evaluation"`
	EmptyCells     int    `json:"empty_cells"`
	Depth          int    `json:"depth"`
	Level          string `json:"level"`
	SuggestedMove  *Move  `json:"suggested_move,omitempty"`
	SuggestedError string `json:"suggested_error,omitempty"`
}

type server struct {
	controller *GameController
	hub        *Hub
	ghostHub   *GhostHub
}

func newServer() *server {
	s := &server{
		controller: NewGameController(DefaultGameSettings()),
		hub:        NewHub(),
		ghostHub:   NewGhostHub(),
	}
	s.controller.SetGhostPublisher(
		func() bool { return s.ghostHub.HasClients() && GetConfig().GhostMode },
		func(payload ghostPayload) {
			s.ghostHub.Publish(payload)
		},
	)
	return s
}

// run starts the hubs and the tick loop; all of them stop with ctx.
func (s *server) run(ctx context.Context) {
	go s.hub.Run(ctx.Done())
	go s.ghostHub.Run(ctx.Done())
	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *server) tick() bool {
	if !s.controller.Tick() {
		return false
	}
	if entry, ok := s.controller.LatestHistoryEntry(); ok {
		s.hub.PublishHistory(historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}})
	}
	s.hub.PublishStatus(controllerStatus(s.controller))
	return true
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controllerStatus(s.controller))
	})

	r.Post("/api/exhibition/start", s.handleExhibitionStart)

	r.Post("/api/exhibition/stop", func(w http.ResponseWriter, r *http.Request) {
		s.controller.Stop()
		s.hub.PublishReset(resetFromController(s.controller))
		writeJSON(w, http.StatusOK, controllerStatus(s.controller))
	})

	r.Post("/api/analyze", s.handleAnalyze)

	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, GetConfig())
	})

	r.Post("/api/config", func(w http.ResponseWriter, r *http.Request) {
		var payload Config
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if err := payload.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		configStore.Update(payload)
		s.hub.PublishConfig(payload)
		writeJSON(w, http.StatusOK, GetConfig())
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(s.hub, s.controller, w, r)
	})
	r.Get("/ws/ghost", func(w http.ResponseWriter, r *http.Request) {
		serveGhostWS(s.ghostHub, w, r)
	})
	return r
}

func (s *server) handleExhibitionStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Settings GameSettingsDTO `json:"settings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	settings, err := settingsFromDTO(payload.Settings)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	id, err := s.controller.StartExhibition(settings)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	log.Printf("[backend] exhibition %s started", id)
	s.hub.PublishReset(resetFromController(s.controller))
	writeJSON(w, http.StatusOK, controllerStatus(s.controller))
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	resp, err := analyzePosition(payload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// analyzePosition scores a posted position without touching the exhibition.
// The suggested move comes from a fresh bot of the requested level.
func analyzePosition(req analyzeRequest) (analyzeResponse, error) {
	board, err := boardFromSlice(req.Board, req.WinLength)
	if err != nil {
		return analyzeResponse{}, err
	}
	if req.Player != 1 && req.Player != 2 {
		return analyzeResponse{}, fmt.Errorf("%w: player must be 1 or 2", ErrInvalidSettings)
	}
	level := LevelSearch
	if req.Level != 0 {
		level = BotLevel(req.Level)
	}
	if !level.IsValid() {
		return analyzeResponse{}, fmt.Errorf("%w: bot level %d", ErrInvalidSettings, req.Level)
	}
	settings := DefaultGameSettings()
	settings.Rows = board.Rows()
	settings.Cols = board.Cols()
	settings.WinLength = board.WinLength()
	rules := NewRules(settings)
	player := intToPlayer(req.Player)

	resp := analyzeResponse{
		Rows:       board.Rows(),
		Cols:       board.Cols(),
		WinLength:  board.WinLength(),
		Evaluation: EvaluateBoard(board, player, GetConfig()),
		EmptyCells: board.CountEmpty(),
		Level:      level.String(),
	}
	if winner, ok := rules.Winner(board); ok {
		resp.Winner = playerToInt(winner)
	}
	if req.LastMove != nil {
		if !board.InBounds(req.LastMove.Row, req.LastMove.Col) {
			return analyzeResponse{}, fmt.Errorf("last_move: %w", ErrOutOfBounds)
		}
		wins := rules.IsWin(board, *req.LastMove)
		resp.LastMoveWins = &wins
	}
	if level == LevelSearch {
		resp.Depth = DynamicDepth(resp.EmptyCells)
	}
	if resp.Winner != 0 {
		return resp, nil
	}

	state := GameState{Board: board, ToMove: player, Status: StatusRunning}
	move, err := NewAIPlayer("", level).ChooseMove(state, rules)
	if err != nil {
		resp.SuggestedError = err.Error()
		return resp, nil
	}
	resp.SuggestedMove = &move
	return resp, nil
}

func boardFromSlice(grid [][]int, k int) (Board, error) {
	rows := len(grid)
	if rows == 0 || rows > maxServerBoardDim {
		return Board{}, fmt.Errorf("%w: rows must be in [1,%d]", ErrInvalidSettings, maxServerBoardDim)
	}
	cols := len(grid[0])
	if cols == 0 || cols > maxServerBoardDim {
		return Board{}, fmt.Errorf("%w: cols must be in [1,%d]", ErrInvalidSettings, maxServerBoardDim)
	}
	if k < 1 || k > max(rows, cols) {
		return Board{}, fmt.Errorf("%w: win length %d outside [1,%d]", ErrInvalidSettings, k, max(rows, cols))
	}
	board := NewBoard(rows, cols, k)
	for row, line := range grid {
		if len(line) != cols {
			return Board{}, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidSettings, row, len(line), cols)
		}
		for col, value := range line {
			if value < 0 || value > 2 {
				return Board{}, fmt.Errorf("%w: cell (%d,%d) holds %d", ErrInvalidSettings, row, col, value)
			}
			board.Set(row, col, intToCell(value))
		}
	}
	return board, nil
}

func settingsFromDTO(dto GameSettingsDTO) (GameSettings, error) {
	settings := DefaultGameSettings()
	if dto.Rows != 0 {
		settings.Rows = dto.Rows
	}
	if dto.Cols != 0 {
		settings.Cols = dto.Cols
	}
	if dto.WinLength != 0 {
		settings.WinLength = dto.WinLength
	}
	if settings.Rows > maxServerBoardDim || settings.Cols > maxServerBoardDim {
		return GameSettings{}, fmt.Errorf("%w: exhibition boards are at most %dx%d", ErrInvalidSettings, maxServerBoardDim, maxServerBoardDim)
	}
	settings.PlayerOneType = PlayerAI
	settings.PlayerTwoType = PlayerAI
	settings.PlayerOneLevel = LevelSearch
	settings.PlayerTwoLevel = LevelSearch
	if dto.PlayerOneLevel != 0 {
		settings.PlayerOneLevel = BotLevel(dto.PlayerOneLevel)
	}
	if dto.PlayerTwoLevel != 0 {
		settings.PlayerTwoLevel = BotLevel(dto.PlayerTwoLevel)
	}
	settings.PlayerOneName = dto.PlayerOneName
	settings.PlayerTwoName = dto.PlayerTwoName
	settings.PlayerOneStarts = !dto.PlayerTwoStarts
	if err := settings.Validate(); err != nil {
		return GameSettings{}, err
	}
	return settings, nil
}

func controllerSettingsDTO(settings GameSettings) GameSettingsDTO {
	return GameSettingsDTO{
		Rows:            settings.Rows,
		Cols:            settings.Cols,
		WinLength:       settings.WinLength,
		PlayerOneLevel:  int(settings.PlayerOneLevel),
		PlayerTwoLevel:  int(settings.PlayerTwoLevel),
		PlayerOneName:   settings.NameFor(PlayerOne),
		PlayerTwoName:   settings.NameFor(PlayerTwo),
		PlayerTwoStarts: !settings.PlayerOneStarts,
	}
}

func controllerStatus(controller *GameController) StatusResponse {
	state := controller.State()
	return StatusResponse{
		ExhibitionID:    controller.ExhibitionID(),
		Settings:        controllerSettingsDTO(controller.Settings()),
		Config:          GetConfig(),
		Board:           boardToSlice(state.Board),
		NextPlayer:      playerToInt(state.ToMove),
		Winner:          winnerFromStatus(state.Status),
		Status:          statusToString(state.Status),
		MoveCount:       state.MoveCount,
		AiThinking:      controller.AiThinking(),
		History:         historyToDTO(controller.History()),
		WinningLine:     append([]Move{}, state.WinningLine...),
		TurnStartedAtMs: controller.CurrentTurnStartedAtMs(),
	}
}

func resetFromController(controller *GameController) resetPayload {
	state := controller.State()
	return resetPayload{
		ExhibitionID: controller.ExhibitionID(),
		Board:        boardToSlice(state.Board),
		NextPlayer:   playerToInt(state.ToMove),
		Status:       statusToString(state.Status),
	}
}

func boardToSlice(board Board) [][]int {
	rows := make([][]int, board.Rows())
	for row := range rows {
		rows[row] = make([]int, board.Cols())
		for col := range rows[row] {
			rows[row][col] = cellToInt(board.At(row, col))
		}
	}
	return rows
}

func playerToInt(player PlayerColor) int {
	if player == PlayerOne {
		return 1
	}
	return 2
}

func intToPlayer(value int) PlayerColor {
	if value == 2 {
		return PlayerTwo
	}
	return PlayerOne
}

func winnerFromStatus(status GameStatus) int {
	switch status {
	case StatusPlayerOneWon:
		return 1
	case StatusPlayerTwoWon:
		return 2
	default:
		return 0
	}
}

func statusToString(status GameStatus) string {
	switch status {
	case StatusNotStarted:
		return "not_started"
	case StatusPlayerOneWon:
		return "player_one_won"
	case StatusPlayerTwoWon:
		return "player_two_won"
	case StatusDraw:
		return "draw"
	default:
		return "running"
	}
}

func historyToDTO(history MoveHistory) []historyEntryDTO {
	entries := history.All()
	result := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		result = append(result, historyEntryToDTO(entry))
	}
	return result
}

func historyEntryToDTO(entry HistoryEntry) historyEntryDTO {
	return historyEntryDTO{
		Row:       entry.Move.Row,
		Col:       entry.Move.Col,
		Player:    playerToInt(entry.Player),
		ElapsedMs: entry.ElapsedMs,
		IsAi:      entry.IsAi,
		Depth:     entry.Depth,
	}
}

func serveWS(hub *Hub, controller *GameController, w http.ResponseWriter, r *http.Request) {
	sendStatus := func(peer *wsPeer) {
		peer.push(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})
	}
	acceptPeer(&hub.peers, "status", w, r, sendStatus, func(peer *wsPeer, msg wsMessage) {
		if msg.Type == "request_status" {
			sendStatus(peer)
		}
	})
}

// serve blocks until ctx is cancelled or the listener fails, then shuts the
// server down gracefully.
func serve(ctx context.Context, addr string) error {
	s := newServer()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.run(runCtx)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	log.Printf("[backend] listening on %s", addr)
	var runErr error
	select {
	case <-ctx.Done():
		log.Printf("[backend] shutdown signal received: %v", ctx.Err())
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Printf("[backend] server error: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[backend] graceful shutdown failed: %v", err)
		if closeErr := httpServer.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Printf("[backend] forced close failed: %v", closeErr)
		}
	}
	return runErr
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
