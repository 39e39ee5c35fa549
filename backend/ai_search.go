package main

import (
	"math"
	"time"
)

type SearchStats struct {
	Start            time.Time
	Depth            int
	Nodes            int
	LeafEvals        int
	Cutoffs          int
	WinShortCircuits int
	Elapsed          time.Duration
}

type SearchSettings struct {
	// Player is the side the search was launched for; leaves are scored for it.
	Player PlayerColor
	Config Config
	Stats  *SearchStats
	// OnProbe sees the board with the probe stone placed. The board is only
	// valid during the call.
	OnProbe func(board Board, probe Move, depth int)
	// Cancelled is polled before every probe; once it reports true the
	// search unwinds and SearchBestMove reports no move.
	Cancelled func() bool
}

type minimaxContext struct {
	board    *Board
	rules    Rules
	settings SearchSettings
}

// DynamicDepth picks the search depth from the number of empty cells.
func DynamicDepth(empty int) int {
	switch {
	case empty > 12:
		return 4
	case empty > 6:
		return 6
	default:
		return 8
	}
}

// Minimax runs a depth-limited alpha-beta search on board, placing and
// clearing probe stones in place. The board is back to its original state
// on every return. ok is false when no move was examined.
func Minimax(board *Board, rules Rules, toMove PlayerColor, maximizing bool, alpha, beta, depth int, settings SearchSettings) (int, Move, bool) {
	ctx := minimaxContext{board: board, rules: rules, settings: settings}
	return ctx.minimax(toMove, maximizing, alpha, beta, depth)
}

// SearchBestMove searches for player at the depth DynamicDepth assigns to
// the current board.
func SearchBestMove(board *Board, rules Rules, player PlayerColor, settings SearchSettings) (Move, int, bool) {
	settings.Player = player
	depth := DynamicDepth(board.CountEmpty())
	if settings.Stats != nil {
		if settings.Stats.Start.IsZero() {
			settings.Stats.Start = time.Now()
		}
		settings.Stats.Depth = depth
	}
	score, move, ok := Minimax(board, rules, player, true, math.MinInt, math.MaxInt, depth, settings)
	if settings.Stats != nil {
		settings.Stats.Elapsed = time.Since(settings.Stats.Start)
	}
	if settings.cancelled() {
		return Move{}, 0, false
	}
	return move, score, ok
}

func (ctx minimaxContext) minimax(toMove PlayerColor, maximizing bool, alpha, beta, depth int) (int, Move, bool) {
	stats := ctx.settings.Stats
	if stats != nil {
		stats.Nodes++
	}
	moves := ctx.board.AvailableMoves()
	if depth <= 0 || len(moves) == 0 {
		if stats != nil {
			stats.LeafEvals++
		}
		return EvaluateBoard(*ctx.board, ctx.settings.Player, ctx.settings.Config), Move{}, false
	}

	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}
	bestMove := Move{}
	found := false
	cell := CellFromPlayer(toMove)
	for _, move := range moves {
		if ctx.settings.cancelled() {
			break
		}
		ctx.board.Set(move.Row, move.Col, cell)
		if ctx.settings.OnProbe != nil {
			ctx.settings.OnProbe(*ctx.board, move, depth)
		}
		if ctx.rules.IsWin(*ctx.board, move) {
			ctx.board.Clear(move)
			if stats != nil {
				stats.WinShortCircuits++
			}
			if maximizing {
				return winScore, move, true
			}
			return -winScore, move, true
		}
		score, _, _ := ctx.minimax(otherPlayer(toMove), !maximizing, alpha, beta, depth-1)
		ctx.board.Clear(move)

		if maximizing {
			if !found || score > best {
				best = score
				bestMove = move
				found = true
			}
			alpha = max(alpha, best)
		} else {
			if !found || score < best {
				best = score
				bestMove = move
				found = true
			}
			beta = min(beta, best)
		}
		if beta <= alpha {
			if stats != nil {
				stats.Cutoffs++
			}
			break
		}
	}
	return best, bestMove, found
}

func (s SearchSettings) cancelled() bool {
	return s.Cancelled != nil && s.Cancelled()
}
