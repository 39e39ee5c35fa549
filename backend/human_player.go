package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// HumanPlayer reads moves from a console. Rows and columns are entered
// 1-based and converted before they reach the board.
type HumanPlayer struct {
	name string
	in   *bufio.Reader
	out  io.Writer
}

// NewHumanPlayer reuses in when it is already a *bufio.Reader so that two
// players on one console share the same buffer.
func NewHumanPlayer(name string, in io.Reader, out io.Writer) *HumanPlayer {
	if in == nil {
		in = strings.NewReader("")
	}
	reader, ok := in.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(in)
	}
	if out == nil {
		out = io.Discard
	}
	return &HumanPlayer{name: name, in: reader, out: out}
}

func (h *HumanPlayer) IsHuman() bool {
	return true
}

func (h *HumanPlayer) Name() string {
	return h.name
}

// ChooseMove prompts until it gets an in-bounds empty cell. It only fails
// when the input runs out.
func (h *HumanPlayer) ChooseMove(state GameState, rules Rules) (Move, error) {
	if state.Board.CountEmpty() == 0 {
		return Move{}, ErrNoMovesAvailable
	}
	for {
		row, err := h.readIndex(fmt.Sprintf("%s, choose a row (1-%d): ", h.name, state.Board.Rows()))
		if err != nil {
			return Move{}, err
		}
		col, err := h.readIndex(fmt.Sprintf("%s, choose a column (1-%d): ", h.name, state.Board.Cols()))
		if err != nil {
			return Move{}, err
		}
		move := Move{Row: row - 1, Col: col - 1}
		if ok, err := rules.IsLegal(state, move); !ok {
			switch {
			case errors.Is(err, ErrCellOccupied):
				fmt.Fprintln(h.out, "Invalid move! That cell is already taken.")
			case errors.Is(err, ErrOutOfBounds):
				fmt.Fprintln(h.out, "Invalid move! That cell is off the board.")
			default:
				fmt.Fprintln(h.out, "Invalid move! Try again.")
			}
			continue
		}
		return move, nil
	}
}

func (h *HumanPlayer) readIndex(prompt string) (int, error) {
	return promptInt(h.in, h.out, prompt)
}
