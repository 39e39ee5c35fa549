package main

import (
	"fmt"
	"strings"
)

type Cell int

const (
	CellEmpty Cell = iota
	CellPlayerOne
	CellPlayerTwo
)

type Board struct {
	rows  int
	cols  int
	k     int
	cells []Cell
}

func NewBoard(rows, cols, k int) Board {
	b := Board{}
	b.Reset(rows, cols, k)
	return b
}

func (b *Board) Reset(rows, cols, k int) {
	b.rows = rows
	b.cols = cols
	b.k = k
	b.cells = make([]Cell, rows*cols)
}

func (b Board) At(row, col int) Cell {
	return b.cells[b.index(row, col)]
}

// Set writes a cell without any legality check. Real turns go through Place.
func (b *Board) Set(row, col int, value Cell) {
	b.cells[b.index(row, col)] = value
}

// Place puts cell on an empty, in-bounds square. The board is untouched on error.
func (b *Board) Place(move Move, cell Cell) error {
	if !b.InBounds(move.Row, move.Col) {
		return fmt.Errorf("place (%d,%d) on %dx%d: %w", move.Row, move.Col, b.rows, b.cols, ErrOutOfBounds)
	}
	if b.At(move.Row, move.Col) != CellEmpty {
		return fmt.Errorf("place (%d,%d): %w", move.Row, move.Col, ErrCellOccupied)
	}
	b.Set(move.Row, move.Col, cell)
	return nil
}

// Clear resets a cell to empty. Search uses it to undo its own probes only.
func (b *Board) Clear(move Move) {
	b.cells[b.index(move.Row, move.Col)] = CellEmpty
}

func (b Board) InBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < b.rows && col < b.cols
}

func (b Board) IsEmpty(row, col int) bool {
	return b.InBounds(row, col) && b.At(row, col) == CellEmpty
}

func (b Board) CountEmpty() int {
	count := 0
	for _, cell := range b.cells {
		if cell == CellEmpty {
			count++
		}
	}
	return count
}

// AvailableMoves lists every empty cell in row-major order.
func (b Board) AvailableMoves() []Move {
	moves := make([]Move, 0, len(b.cells))
	for row := 0; row < b.rows; row++ {
		for col := 0; col < b.cols; col++ {
			if b.cells[b.index(row, col)] == CellEmpty {
				moves = append(moves, Move{Row: row, Col: col})
			}
		}
	}
	return moves
}

func (b Board) Rows() int {
	return b.rows
}

func (b Board) Cols() int {
	return b.cols
}

func (b Board) WinLength() int {
	return b.k
}

func (b Board) Clone() Board {
	clone := Board{rows: b.rows, cols: b.cols, k: b.k}
	clone.cells = make([]Cell, len(b.cells))
	copy(clone.cells, b.cells)
	return clone
}

func (b Board) Equal(other Board) bool {
	if b.rows != other.rows || b.cols != other.cols || b.k != other.k {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// String renders the grid the way the console shows it: 0 empty, 1 and 2 for the players.
func (b Board) String() string {
	var sb strings.Builder
	for row := 0; row < b.rows; row++ {
		for col := 0; col < b.cols; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(fmt.Sprintf("%d", cellToInt(b.At(row, col))))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b Board) index(row, col int) int {
	return row*b.cols + col
}

func (c Cell) String() string {
	switch c {
	case CellPlayerOne:
		return "PlayerOne"
	case CellPlayerTwo:
		return "PlayerTwo"
	default:
		return "Empty"
	}
}

func CellFromPlayer(player PlayerColor) Cell {
	if player == PlayerOne {
		return CellPlayerOne
	}
	return CellPlayerTwo
}

func PlayerFromCell(cell Cell) (PlayerColor, error) {
	switch cell {
	case CellPlayerOne:
		return PlayerOne, nil
	case CellPlayerTwo:
		return PlayerTwo, nil
	default:
		return PlayerOne, fmt.Errorf("empty cell has no player")
	}
}

func cellToInt(cell Cell) int {
	switch cell {
	case CellPlayerOne:
		return 1
	case CellPlayerTwo:
		return 2
	default:
		return 0
	}
}

func intToCell(value int) Cell {
	switch value {
	case 1:
		return CellPlayerOne
	case 2:
		return CellPlayerTwo
	default:
		return CellEmpty
	}
}
