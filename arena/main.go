package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"
)

// arena plays round-robin bot exhibitions against a running backend and
// keeps an Elo table per bot level.
type arena struct {
	client       *http.Client
	baseURL      string
	pollInterval time.Duration
	gameTimeout  time.Duration
	logger       *log.Logger
	rows         int
	cols         int
	winLength    int
	gamesPerPair int
	eloK         float64
}

type exhibitionSettings struct {
	Rows           int `json:"rows"`
	Cols           int `json:"cols"`
	WinLength      int `json:"win_length"`
	PlayerOneLevel int `json:"player_one_level"`
	PlayerTwoLevel int `json:"player_two_level"`
}

type statusResponse struct {
	ExhibitionID string            `json:"exhibition_id"`
	Status       string            `json:"status"`
	Winner       int               `json:"winner"`
	MoveCount    int               `json:"move_count"`
	History      []json.RawMessage `json:"history"`
}

type contender struct {
	Level  int     `json:"level"`
	Elo    float64 `json:"elo"`
	Wins   int     `json:"wins"`
	Draws  int     `json:"draws"`
	Losses int     `json:"losses"`
}

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs first.
func run() int {
	logger, closeLog, err := buildLogger(getenv("ARENA_LOG_PATH", ""))
	if err != nil {
		log.Printf("failed to initialize logger: %v", err)
		return 1
	}
	defer closeLog()

	a := &arena{
		client:       &http.Client{Timeout: 10 * time.Second},
		baseURL:      getenv("MNK_BACKEND_URL", "http://localhost:8080"),
		pollInterval: time.Duration(getenvInt("ARENA_POLL_MS", 100)) * time.Millisecond,
		gameTimeout:  time.Duration(getenvInt("ARENA_GAME_TIMEOUT_SEC", 120)) * time.Second,
		logger:       logger,
		rows:         getenvInt("ARENA_ROWS", 3),
		cols:         getenvInt("ARENA_COLS", 3),
		winLength:    getenvInt("ARENA_K", 3),
		gamesPerPair: getenvInt("ARENA_GAMES_PER_PAIR", 4),
		eloK:         getenvFloat("ARENA_ELO_K", 20),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logf("arena started. backend=%s board=%dx%d k=%d games_per_pair=%d", a.baseURL, a.rows, a.cols, a.winLength, a.gamesPerPair)
	if err := a.waitBackendReady(ctx); err != nil {
		a.logf("backend not ready: %v", err)
		return 1
	}
	table, err := a.runTournament(ctx, []int{1, 2, 3})
	if err != nil {
		a.logf("tournament stopped: %v", err)
	}
	for _, c := range table {
		a.logf("level %d elo=%.1f w=%d d=%d l=%d", c.Level, c.Elo, c.Wins, c.Draws, c.Losses)
	}
	if err != nil {
		return 1
	}
	return 0
}

// runTournament plays every pair of levels from both seats and returns the
// contenders sorted by Elo.
func (a *arena) runTournament(ctx context.Context, levels []int) ([]contender, error) {
	table := make([]*contender, len(levels))
	for i, level := range levels {
		table[i] = &contender{Level: level, Elo: 1000}
	}
	var runErr error
pairs:
	for i := 0; i < len(table); i++ {
		for j := i + 1; j < len(table); j++ {
			for game := 0; game < a.gamesPerPair; game++ {
				first, second := table[i], table[j]
				if game%2 == 1 {
					first, second = second, first
				}
				status, err := a.playGame(ctx, first.Level, second.Level)
				if err != nil {
					runErr = err
					break pairs
				}
				result := 0.5
				switch status.Winner {
				case 1:
					result = 1
					first.Wins++
					second.Losses++
				case 2:
					result = 0
					first.Losses++
					second.Wins++
				default:
					first.Draws++
					second.Draws++
				}
				updateElo(first, second, result, a.eloK)
				a.logf("level %d vs level %d: %s after %d moves", first.Level, second.Level, status.Status, status.MoveCount)
			}
		}
	}
	out := make([]contender, 0, len(table))
	for _, c := range table {
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Elo > out[j].Elo })
	return out, runErr
}

func (a *arena) playGame(ctx context.Context, levelOne, levelTwo int) (statusResponse, error) {
	var started statusResponse
	err := a.postJSON("/api/exhibition/start", map[string]any{
		"settings": exhibitionSettings{
			Rows:           a.rows,
			Cols:           a.cols,
			WinLength:      a.winLength,
			PlayerOneLevel: levelOne,
			PlayerTwoLevel: levelTwo,
		},
	}, &started)
	if err != nil {
		return statusResponse{}, err
	}
	deadline := time.Now().Add(a.gameTimeout)
	for {
		status, err := a.fetchStatus()
		if err != nil {
			return statusResponse{}, err
		}
		if status.ExhibitionID != started.ExhibitionID {
			return statusResponse{}, fmt.Errorf("exhibition %s replaced by %q", started.ExhibitionID, status.ExhibitionID)
		}
		if status.Status != "running" {
			return status, nil
		}
		if a.gameTimeout > 0 && time.Now().After(deadline) {
			_ = a.postJSON("/api/exhibition/stop", map[string]any{}, nil)
			return statusResponse{}, fmt.Errorf("game timeout after %s", a.gameTimeout)
		}
		if !sleepWithContext(ctx, a.pollInterval) {
			return statusResponse{}, ctx.Err()
		}
	}
}

func updateElo(a *contender, b *contender, resultForA float64, k float64) {
	expectedA := 1.0 / (1.0 + math.Pow(10, (b.Elo-a.Elo)/400.0))
	delta := k * (resultForA - expectedA)
	a.Elo += delta
	b.Elo -= delta
}

func (a *arena) fetchStatus() (statusResponse, error) {
	var status statusResponse
	if err := a.getJSON("/api/status", &status); err != nil {
		return statusResponse{}, err
	}
	return status, nil
}

func (a *arena) waitBackendReady(ctx context.Context) error {
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if err := a.getJSON("/api/ping", &map[string]bool{}); err == nil {
			return nil
		}
		if !sleepWithContext(ctx, time.Second) {
			return ctx.Err()
		}
	}
	return errors.New("timeout after 60s")
}

func (a *arena) getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("GET %s -> %d: %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *arena) postJSON(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("POST %s -> %d: %s", path, resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func buildLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(os.Stdout, "", 0), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := log.New(io.MultiWriter(os.Stdout, f), "", 0)
	return logger, func() { _ = f.Close() }, nil
}

func (a *arena) logf(format string, args ...any) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	a.logger.Printf("[%s] %s", ts, fmt.Sprintf(format, args...))
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var parsed int
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getenvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var parsed float64
	if _, err := fmt.Sscanf(value, "%f", &parsed); err != nil {
		return fallback
	}
	return parsed
}
