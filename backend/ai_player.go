package main

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

type BotLevel int

const (
	LevelRandom BotLevel = iota + 1
	LevelGreedy
	LevelSearch
)

func (l BotLevel) IsValid() bool {
	return l >= LevelRandom && l <= LevelSearch
}

func (l BotLevel) String() string {
	switch l {
	case LevelRandom:
		return "random"
	case LevelGreedy:
		return "greedy"
	case LevelSearch:
		return "search"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

func botName(level BotLevel) string {
	return fmt.Sprintf("Bot Level %d", int(level))
}

type AIPlayer struct {
	name        string
	level       BotLevel
	rngMu       sync.Mutex
	rng         *rand.Rand
	thinking    atomic.Bool
	abandoned   atomic.Bool
	probeMu     sync.Mutex
	probeSink   func(Board, Move)
	lastPublish time.Time
	resultMu    sync.Mutex
	ready       bool
	result      Move
	resultErr   error
}

func NewAIPlayer(name string, level BotLevel) *AIPlayer {
	seed := GetConfig().AiRandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewAIPlayerWithRand(name, level, rand.New(rand.NewSource(seed)))
}

func NewAIPlayerWithRand(name string, level BotLevel, rng *rand.Rand) *AIPlayer {
	if name == "" {
		name = botName(level)
	}
	return &AIPlayer{name: name, level: level, rng: rng}
}

func (a *AIPlayer) IsHuman() bool {
	return false
}

func (a *AIPlayer) Name() string {
	return a.name
}

func (a *AIPlayer) Level() BotLevel {
	return a.level
}

func (a *AIPlayer) IsThinking() bool {
	return a.thinking.Load()
}

// SetProbeSink installs a callback fed with search probes (throttled by
// AiGhostThrottleMs). nil disables it.
func (a *AIPlayer) SetProbeSink(sink func(Board, Move)) {
	a.probeMu.Lock()
	a.probeSink = sink
	a.lastPublish = time.Time{}
	a.probeMu.Unlock()
}

// Abandon stops the bot for good once its seat is gone: a running search
// unwinds at its next node, no probe is published after Abandon returns,
// and any pending or later ChooseMove reports ErrGameNotRunning.
func (a *AIPlayer) Abandon() {
	a.abandoned.Store(true)
	a.SetProbeSink(nil)
}

func (a *AIPlayer) ChooseMove(state GameState, rules Rules) (Move, error) {
	if !a.level.IsValid() {
		return Move{}, fmt.Errorf("%w: bot level %d", ErrInvalidSettings, int(a.level))
	}
	board := state.Board.Clone()
	move, ok := a.SelectMove(&board, rules, state.ToMove)
	if a.abandoned.Load() {
		return Move{}, ErrGameNotRunning
	}
	if !ok {
		return Move{}, ErrNoMovesAvailable
	}
	return move, nil
}

// StartThinking runs ChooseMove on its own goroutine. The result is picked up
// with TakeMove once HasMoveReady reports true. A call while a search is
// already running is ignored.
func (a *AIPlayer) StartThinking(state GameState, rules Rules) {
	if !a.thinking.CompareAndSwap(false, true) {
		return
	}
	a.resultMu.Lock()
	a.ready = false
	a.resultMu.Unlock()
	go func() {
		move, err := a.ChooseMove(state, rules)
		a.resultMu.Lock()
		a.result = move
		a.resultErr = err
		a.ready = true
		a.resultMu.Unlock()
		a.thinking.Store(false)
	}()
}

func (a *AIPlayer) HasMoveReady() bool {
	a.resultMu.Lock()
	defer a.resultMu.Unlock()
	return a.ready
}

func (a *AIPlayer) TakeMove() (Move, error) {
	a.resultMu.Lock()
	defer a.resultMu.Unlock()
	a.ready = false
	return a.result, a.resultErr
}

// SelectMove applies the bot's level to board for player. Probes are undone
// before it returns. ok is false when the board is full or the level is
// unknown.
func (a *AIPlayer) SelectMove(board *Board, rules Rules, player PlayerColor) (Move, bool) {
	moves := board.AvailableMoves()
	if len(moves) == 0 {
		return Move{}, false
	}
	switch a.level {
	case LevelRandom:
		return a.chooseRandom(moves), true
	case LevelGreedy:
		return a.chooseGreedy(board, rules, player, moves), true
	case LevelSearch:
		return a.chooseSearch(board, rules, player, moves), true
	default:
		return Move{}, false
	}
}

func (a *AIPlayer) chooseRandom(moves []Move) Move {
	a.rngMu.Lock()
	defer a.rngMu.Unlock()
	return moves[a.rng.Intn(len(moves))]
}

func (a *AIPlayer) chooseGreedy(board *Board, rules Rules, player PlayerColor, moves []Move) Move {
	if move, ok := findImmediateWin(board, rules, player, moves); ok {
		return move
	}
	if move, ok := findImmediateWin(board, rules, otherPlayer(player), moves); ok {
		return move
	}
	return a.chooseRandom(moves)
}

func (a *AIPlayer) chooseSearch(board *Board, rules Rules, player PlayerColor, moves []Move) Move {
	config := GetConfig()
	stats := &SearchStats{Start: time.Now()}
	settings := SearchSettings{
		Config:    config,
		Stats:     stats,
		Cancelled: a.abandoned.Load,
	}
	if a.currentProbeSink() != nil {
		throttle := time.Duration(config.AiGhostThrottleMs) * time.Millisecond
		settings.OnProbe = func(b Board, probe Move, _ int) {
			a.publishProbe(b, probe, throttle)
		}
	}
	move, score, ok := SearchBestMove(board, rules, player, settings)
	if config.AiLogSearchStats {
		logSearchStats(a.name, stats, score, move, ok)
	}
	if !ok {
		return a.chooseRandom(moves)
	}
	move.Depth = stats.Depth
	return move
}

// findImmediateWin probes each move for player and returns the first one
// that completes a line.
func findImmediateWin(board *Board, rules Rules, player PlayerColor, moves []Move) (Move, bool) {
	cell := CellFromPlayer(player)
	for _, move := range moves {
		board.Set(move.Row, move.Col, cell)
		won := rules.IsWin(*board, move)
		board.Clear(move)
		if won {
			return move, true
		}
	}
	return Move{}, false
}

func (a *AIPlayer) currentProbeSink() func(Board, Move) {
	a.probeMu.Lock()
	defer a.probeMu.Unlock()
	return a.probeSink
}

// publishProbe holds probeMu across the sink call so SetProbeSink(nil)
// waits for an in-flight probe.
func (a *AIPlayer) publishProbe(board Board, probe Move, throttle time.Duration) {
	a.probeMu.Lock()
	defer a.probeMu.Unlock()
	if a.probeSink == nil || a.abandoned.Load() {
		return
	}
	now := time.Now()
	if throttle > 0 && !a.lastPublish.IsZero() && now.Sub(a.lastPublish) < throttle {
		return
	}
	a.lastPublish = now
	a.probeSink(board.Clone(), probe)
}

func logSearchStats(tag string, stats *SearchStats, score int, move Move, ok bool) {
	if stats == nil {
		return
	}
	elapsed := stats.Elapsed
	if elapsed == 0 && !stats.Start.IsZero() {
		elapsed = time.Since(stats.Start)
	}
	nps := 0.0
	if elapsed > 0 {
		nps = float64(stats.Nodes) / elapsed.Seconds()
	}
	best := "none"
	if ok {
		best = fmt.Sprintf("(%d,%d)", move.Row, move.Col)
	}
	log.Printf("[ai:search] %s t=%dms depth=%d nodes=%d nps=%.0f leaf_evals=%d cutoffs=%d win_exits=%d best=%s score=%d",
		tag,
		elapsed.Milliseconds(),
		stats.Depth,
		stats.Nodes,
		nps,
		stats.LeafEvals,
		stats.Cutoffs,
		stats.WinShortCircuits,
		best,
		score,
	)
}
