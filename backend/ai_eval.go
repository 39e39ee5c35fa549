package main

import "sync"

const (
	winScore = 10000
	// evalCap keeps heuristic scores strictly inside the win sentinels.
	evalCap = winScore / 2
)

type ThreatTotals struct {
	NearWin int
}

type ThreatWeights struct {
	CenterControl int
	NearWin       int
}

type shapeKey struct {
	rows int
	cols int
	min  int
}

type lineCache struct {
	mu    sync.Mutex
	lines map[shapeKey][][]int
}

var cachedLines = &lineCache{lines: make(map[shapeKey][][]int)}

// getLinesForShape returns every row, column and diagonal of a rows x cols
// grid holding at least minLen cells, as flat cell indices.
func getLinesForShape(rows, cols, minLen int) [][]int {
	key := shapeKey{rows: rows, cols: cols, min: minLen}
	cachedLines.mu.Lock()
	defer cachedLines.mu.Unlock()
	if lines, ok := cachedLines.lines[key]; ok {
		return lines
	}
	lines := buildLines(rows, cols, minLen)
	cachedLines.lines[key] = lines
	return lines
}

func buildLines(rows, cols, minLen int) [][]int {
	lines := [][]int{}
	if rows <= 0 || cols <= 0 {
		return lines
	}
	keep := func(line []int) {
		if len(line) >= minLen {
			lines = append(lines, line)
		}
	}
	// Rows.
	for r := 0; r < rows; r++ {
		keep(collectDiag(rows, cols, r, 0, 0, 1))
	}
	// Cols.
	for c := 0; c < cols; c++ {
		keep(collectDiag(rows, cols, 0, c, 1, 0))
	}
	// Diagonals (\)
	for c := 0; c < cols; c++ {
		keep(collectDiag(rows, cols, 0, c, 1, 1))
	}
	for r := 1; r < rows; r++ {
		keep(collectDiag(rows, cols, r, 0, 1, 1))
	}
	// Anti-diagonals (/)
	for c := 0; c < cols; c++ {
		keep(collectDiag(rows, cols, 0, c, 1, -1))
	}
	for r := 1; r < rows; r++ {
		keep(collectDiag(rows, cols, r, cols-1, 1, -1))
	}
	return lines
}

func collectDiag(rows, cols, startRow, startCol, dr, dc int) []int {
	line := []int{}
	r := startRow
	c := startCol
	for r >= 0 && c >= 0 && r < rows && c < cols {
		line = append(line, r*cols+c)
		r += dr
		c += dc
	}
	return line
}

// EvaluateBoard scores the position from player's point of view. Higher is
// better. The board is only read.
func EvaluateBoard(board Board, player PlayerColor, config Config) int {
	weights := resolveThreatWeights(config)
	me := CellFromPlayer(player)
	opp := CellFromPlayer(otherPlayer(player))
	score := 0

	if board.Rows() > 0 && board.Cols() > 0 {
		switch board.At(board.Rows()/2, board.Cols()/2) {
		case me:
			score += weights.CenterControl
		case opp:
			score -= weights.CenterControl
		}
	}

	totalsMe, totalsOpp := countNearWins(board, me, opp)
	score += weightedSum(totalsMe, weights) - weightedSum(totalsOpp, weights)

	if score > evalCap {
		return evalCap
	}
	if score < -evalCap {
		return -evalCap
	}
	return score
}

// countNearWins credits each stone sitting in a k-window that holds k-1
// stones of one side and a single empty cell.
func countNearWins(board Board, me, opp Cell) (ThreatTotals, ThreatTotals) {
	var totalsMe ThreatTotals
	var totalsOpp ThreatTotals
	k := board.WinLength()
	if k < 2 {
		return totalsMe, totalsOpp
	}
	for _, line := range getLinesForShape(board.Rows(), board.Cols(), k) {
		mine, theirs, empty := 0, 0, 0
		for i, idx := range line {
			switch board.cells[idx] {
			case me:
				mine++
			case opp:
				theirs++
			default:
				empty++
			}
			if i >= k {
				switch board.cells[line[i-k]] {
				case me:
					mine--
				case opp:
					theirs--
				default:
					empty--
				}
			}
			if i < k-1 || empty != 1 {
				continue
			}
			if mine == k-1 {
				totalsMe.NearWin += mine
			} else if theirs == k-1 {
				totalsOpp.NearWin += theirs
			}
		}
	}
	return totalsMe, totalsOpp
}

func resolveThreatWeights(config Config) ThreatWeights {
	if config.Heuristics == (HeuristicConfig{}) {
		config.Heuristics = DefaultConfig().Heuristics
	}
	return ThreatWeights{
		CenterControl: config.Heuristics.CenterControl,
		NearWin:       config.Heuristics.NearWin,
	}
}

func weightedSum(t ThreatTotals, w ThreatWeights) int {
	return t.NearWin * w.NearWin
}
