package main

import "fmt"

var winDirections = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

type Rules struct {
	settings GameSettings
}

func NewRules(settings GameSettings) Rules {
	return Rules{settings: settings}
}

func (r Rules) IsLegal(state GameState, move Move) (bool, error) {
	if !state.Board.InBounds(move.Row, move.Col) {
		return false, ErrOutOfBounds
	}
	if !state.Board.IsEmpty(move.Row, move.Col) {
		return false, ErrCellOccupied
	}
	return true, nil
}

// IsWin reports whether the stone at lastMove completes k in a row. It only
// walks the four axes through that cell, so it is what the search calls.
func (r Rules) IsWin(board Board, lastMove Move) bool {
	if board.WinLength() < 1 || !board.InBounds(lastMove.Row, lastMove.Col) {
		return false
	}
	if board.At(lastMove.Row, lastMove.Col) == CellEmpty {
		return false
	}
	for i := 0; i < 4; i++ {
		dr := winDirections[i][0]
		dc := winDirections[i][1]
		count := 1
		count += r.countDirection(board, lastMove, dr, dc)
		count += r.countDirection(board, lastMove, -dr, -dc)
		if count >= board.WinLength() {
			return true
		}
	}
	return false
}

// HasWon scans every row, column and diagonal long enough to hold k marks.
func (r Rules) HasWon(board Board, player PlayerColor) bool {
	k := board.WinLength()
	if k < 1 {
		return false
	}
	target := CellFromPlayer(player)
	for _, line := range getLinesForShape(board.Rows(), board.Cols(), k) {
		run := 0
		for _, idx := range line {
			if board.cells[idx] != target {
				run = 0
				continue
			}
			run++
			if run >= k {
				return true
			}
		}
	}
	return false
}

// Winner returns the player holding a k-line, if any.
func (r Rules) Winner(board Board) (PlayerColor, bool) {
	if r.HasWon(board, PlayerOne) {
		return PlayerOne, true
	}
	if r.HasWon(board, PlayerTwo) {
		return PlayerTwo, true
	}
	return PlayerOne, false
}

func (r Rules) IsDraw(board Board) bool {
	return board.CountEmpty() == 0
}

func (r Rules) FindAlignmentLine(board Board, lastMove Move) ([]Move, bool) {
	line := []Move{}
	if board.WinLength() < 1 || !board.InBounds(lastMove.Row, lastMove.Col) {
		return line, false
	}
	if board.At(lastMove.Row, lastMove.Col) == CellEmpty {
		return line, false
	}
	for i := 0; i < 4; i++ {
		dr := winDirections[i][0]
		dc := winDirections[i][1]
		line = r.collectLine(board, lastMove, dr, dc)
		if len(line) >= board.WinLength() {
			return line, true
		}
	}
	return []Move{}, false
}

func (r Rules) Settings() GameSettings {
	return r.settings
}

func (r Rules) countDirection(board Board, start Move, dr, dc int) int {
	target := board.At(start.Row, start.Col)
	row := start.Row + dr
	col := start.Col + dc
	count := 0
	for board.InBounds(row, col) && board.At(row, col) == target {
		count++
		row += dr
		col += dc
	}
	return count
}

func (r Rules) collectLine(board Board, start Move, dr, dc int) []Move {
	line := []Move{}
	target := board.At(start.Row, start.Col)
	row := start.Row
	col := start.Col
	for board.InBounds(row-dr, col-dc) && board.At(row-dr, col-dc) == target {
		row -= dr
		col -= dc
	}
	for board.InBounds(row, col) && board.At(row, col) == target {
		line = append(line, Move{Row: row, Col: col})
		row += dr
		col += dc
	}
	return line
}

func (r Rules) String() string {
	return fmt.Sprintf("Rules{%dx%d, k=%d}", r.settings.Rows, r.settings.Cols, r.settings.WinLength)
}
