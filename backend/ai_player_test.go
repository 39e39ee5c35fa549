package main

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"
)

func stateFor(t *testing.T, k int, grid [][]int, toMove PlayerColor) (GameState, Rules) {
	t.Helper()
	board := mustBoard(t, k, grid)
	state := GameState{Board: board, ToMove: toMove, Status: StatusRunning}
	return state, rulesFor(board)
}

func newTestBot(level BotLevel) *AIPlayer {
	return NewAIPlayerWithRand("", level, rand.New(rand.NewSource(1)))
}

func TestBotNames(t *testing.T) {
	for _, level := range []BotLevel{LevelRandom, LevelGreedy, LevelSearch} {
		bot := newTestBot(level)
		if bot.Name() != botName(level) {
			t.Fatalf("expected default name %q, got %q", botName(level), bot.Name())
		}
		if bot.IsHuman() {
			t.Fatalf("expected bots not to be human")
		}
	}
	if got := botName(LevelGreedy); got != "Bot Level 2" {
		t.Fatalf("expected \"Bot Level 2\", got %q", got)
	}
	if BotLevel(0).IsValid() || BotLevel(4).IsValid() {
		t.Fatalf("expected levels outside 1..3 to be invalid")
	}
}

func TestGreedyBlocksOpponent(t *testing.T) {
	state, rules := stateFor(t, 3, [][]int{
		{1, 1, 0},
		{0, 2, 0},
		{0, 0, 0},
	}, PlayerTwo)
	move, err := newTestBot(LevelGreedy).ChooseMove(state, rules)
	if err != nil {
		t.Fatalf("choose move: %v", err)
	}
	if !move.Equals(Move{Row: 0, Col: 2}) {
		t.Fatalf("expected block at (0,2), got %v", move)
	}
}

func TestGreedyPrefersWinOverBlock(t *testing.T) {
	state, rules := stateFor(t, 3, [][]int{
		{1, 1, 0},
		{2, 2, 0},
		{0, 0, 1},
	}, PlayerTwo)
	move, err := newTestBot(LevelGreedy).ChooseMove(state, rules)
	if err != nil {
		t.Fatalf("choose move: %v", err)
	}
	if !move.Equals(Move{Row: 1, Col: 2}) {
		t.Fatalf("expected win at (1,2), got %v", move)
	}
}

func TestSearchBotWinsAndBlocks(t *testing.T) {
	win, rules := stateFor(t, 3, [][]int{
		{1, 2, 2},
		{0, 1, 0},
		{0, 0, 0},
	}, PlayerOne)
	move, err := newTestBot(LevelSearch).ChooseMove(win, rules)
	if err != nil {
		t.Fatalf("choose move: %v", err)
	}
	if !move.Equals(Move{Row: 2, Col: 2}) {
		t.Fatalf("expected win at (2,2), got %v", move)
	}
	if move.Depth != DynamicDepth(5) {
		t.Fatalf("expected move to carry search depth %d, got %d", DynamicDepth(5), move.Depth)
	}

	block, rules := stateFor(t, 3, [][]int{
		{1, 0, 0},
		{0, 1, 0},
		{2, 0, 0},
	}, PlayerTwo)
	move, err = newTestBot(LevelSearch).ChooseMove(block, rules)
	if err != nil {
		t.Fatalf("choose move: %v", err)
	}
	if !move.Equals(Move{Row: 2, Col: 2}) {
		t.Fatalf("expected block at (2,2), got %v", move)
	}
}

func TestRandomBotPicksEmptyCells(t *testing.T) {
	state, rules := stateFor(t, 3, [][]int{
		{1, 2, 1},
		{0, 2, 0},
		{2, 1, 0},
	}, PlayerOne)
	bot := newTestBot(LevelRandom)
	for i := 0; i < 50; i++ {
		move, err := bot.ChooseMove(state, rules)
		if err != nil {
			t.Fatalf("choose move: %v", err)
		}
		if !state.Board.IsEmpty(move.Row, move.Col) {
			t.Fatalf("random bot picked occupied or off-board cell %v", move)
		}
	}
}

func TestBotsReportNoMovesOnFullBoard(t *testing.T) {
	state, rules := stateFor(t, 3, [][]int{
		{1, 2, 1},
		{1, 2, 2},
		{2, 1, 1},
	}, PlayerOne)
	for _, level := range []BotLevel{LevelRandom, LevelGreedy, LevelSearch} {
		if _, err := newTestBot(level).ChooseMove(state, rules); !errors.Is(err, ErrNoMovesAvailable) {
			t.Fatalf("level %s: expected ErrNoMovesAvailable, got %v", level, err)
		}
	}
}

func TestChooseMoveLeavesStateBoardAlone(t *testing.T) {
	state, rules := stateFor(t, 3, [][]int{
		{1, 0, 0},
		{0, 2, 0},
		{0, 0, 0},
	}, PlayerOne)
	before := state.Board.Clone()
	for _, level := range []BotLevel{LevelRandom, LevelGreedy, LevelSearch} {
		if _, err := newTestBot(level).ChooseMove(state, rules); err != nil {
			t.Fatalf("level %s: %v", level, err)
		}
		if !state.Board.Equal(before) {
			t.Fatalf("level %s changed the caller's board", level)
		}
	}
}

func TestStartThinkingDeliversMove(t *testing.T) {
	state, rules := stateFor(t, 3, [][]int{
		{1, 2, 2},
		{0, 1, 0},
		{0, 0, 0},
	}, PlayerOne)
	bot := newTestBot(LevelSearch)
	probes := 0
	bot.SetProbeSink(func(Board, Move) { probes++ })
	bot.StartThinking(state, rules)

	deadline := time.Now().Add(3 * time.Second)
	for !bot.HasMoveReady() {
		if time.Now().After(deadline) {
			t.Fatalf("expected the bot to finish thinking")
		}
		time.Sleep(2 * time.Millisecond)
	}
	move, err := bot.TakeMove()
	if err != nil {
		t.Fatalf("take move: %v", err)
	}
	if !move.Equals(Move{Row: 2, Col: 2}) {
		t.Fatalf("expected (2,2), got %v", move)
	}
	if bot.HasMoveReady() {
		t.Fatalf("expected the result to be consumed")
	}
	if probes == 0 {
		t.Fatalf("expected at least one probe to reach the sink")
	}
}

func TestUnknownLevelIsNotTreatedAsSearch(t *testing.T) {
	state, rules := stateFor(t, 3, [][]int{
		{1, 1, 0},
		{0, 2, 0},
		{0, 0, 0},
	}, PlayerTwo)
	bot := newTestBot(BotLevel(9))
	board := state.Board.Clone()
	if _, ok := bot.SelectMove(&board, rules, PlayerTwo); ok {
		t.Fatalf("expected no move for an unknown level")
	}
	if _, err := bot.ChooseMove(state, rules); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
}

func TestAbandonStopsSearchAndProbes(t *testing.T) {
	prev := GetConfig()
	cfg := prev
	cfg.AiGhostThrottleMs = 0
	configStore.Update(cfg)
	defer configStore.Update(prev)

	state := GameState{Board: NewBoard(7, 7, 4), ToMove: PlayerOne, Status: StatusRunning}
	rules := rulesFor(state.Board)
	bot := newTestBot(LevelSearch)
	var mu sync.Mutex
	probes := 0
	bot.SetProbeSink(func(Board, Move) {
		mu.Lock()
		probes++
		mu.Unlock()
	})
	bot.StartThinking(state, rules)

	deadline := time.Now().Add(3 * time.Second)
	for {
		mu.Lock()
		seen := probes
		mu.Unlock()
		if seen > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected the search to publish probes")
		}
		time.Sleep(time.Millisecond)
	}

	bot.Abandon()
	mu.Lock()
	afterAbandon := probes
	mu.Unlock()

	for bot.IsThinking() {
		if time.Now().After(deadline) {
			t.Fatalf("expected the abandoned search to unwind")
		}
		time.Sleep(time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	if probes != afterAbandon {
		t.Fatalf("expected no probes after Abandon, got %d more", probes-afterAbandon)
	}
	if _, err := bot.TakeMove(); !errors.Is(err, ErrGameNotRunning) {
		t.Fatalf("expected ErrGameNotRunning from an abandoned search, got %v", err)
	}
}
