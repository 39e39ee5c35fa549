package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

type Game struct {
	settings  GameSettings
	rules     Rules
	state     GameState
	history   MoveHistory
	playerOne IPlayer
	playerTwo IPlayer
	turnStart time.Time
	in        *bufio.Reader
	out       io.Writer
}

func NewGame(settings GameSettings) Game {
	return NewConsoleGame(settings, os.Stdin, os.Stdout)
}

// NewConsoleGame wires human seats to in/out. Bots ignore both.
func NewConsoleGame(settings GameSettings, in io.Reader, out io.Writer) Game {
	g := Game{out: out}
	if in != nil {
		reader, ok := in.(*bufio.Reader)
		if !ok {
			reader = bufio.NewReader(in)
		}
		g.in = reader
	}
	if g.out == nil {
		g.out = io.Discard
	}
	g.Reset(settings)
	return g
}

func (g *Game) Reset(settings GameSettings) {
	g.abandonBots()
	g.settings = settings
	g.rules = NewRules(settings)
	g.state.Reset(settings)
	g.history.Clear()
	g.createPlayers()
	g.turnStart = time.Now()
	g.logMatchup()
}

// SetPlayers replaces both seats, keeping the board and history.
func (g *Game) SetPlayers(one, two IPlayer) {
	g.abandonBots()
	g.playerOne = one
	g.playerTwo = two
}

func (g *Game) Start() {
	if g.state.Status == StatusNotStarted {
		g.state.Status = StatusRunning
		g.turnStart = time.Now()
	}
}

func (g *Game) State() GameState {
	return g.state.Clone()
}

func (g *Game) Settings() GameSettings {
	return g.settings
}

func (g *Game) History() MoveHistory {
	return g.history
}

func (g *Game) TurnStartedAtMs() int64 {
	if g.turnStart.IsZero() {
		return 0
	}
	return g.turnStart.UnixMilli()
}

// Winner reports the winning side once the game is over.
func (g *Game) Winner() (PlayerColor, bool) {
	switch g.state.Status {
	case StatusPlayerOneWon:
		return PlayerOne, true
	case StatusPlayerTwoWon:
		return PlayerTwo, true
	default:
		return PlayerOne, false
	}
}

// TryApplyMove plays move for the side to move. The state is unchanged on
// error.
func (g *Game) TryApplyMove(move Move) error {
	if g.state.Status != StatusRunning {
		return ErrGameNotRunning
	}
	mover := g.state.ToMove
	if err := g.state.Board.Place(move, CellFromPlayer(mover)); err != nil {
		g.state.LastMessage = "Illegal move: " + err.Error()
		return err
	}
	player := g.currentPlayer()
	isAiMove := player != nil && !player.IsHuman()
	elapsedMs := float64(time.Since(g.turnStart).Milliseconds())

	g.state.LastMessage = ""
	g.state.LastMove = move
	g.state.HasLastMove = true
	g.state.MoveCount++
	g.state.WinningLine = nil
	g.history.Push(HistoryEntry{Move: move, Player: mover, ElapsedMs: elapsedMs, IsAi: isAiMove, Depth: move.Depth})

	if g.rules.HasWon(g.state.Board, mover) {
		if line, ok := g.rules.FindAlignmentLine(g.state.Board, move); ok {
			g.state.WinningLine = line
		}
		g.state.Status = wonStatus(mover)
		g.logWin(mover)
		return nil
	}
	if g.state.MoveCount >= g.settings.Rows*g.settings.Cols || g.rules.IsDraw(g.state.Board) {
		g.endInDraw()
		return nil
	}
	g.state.ToMove = otherPlayer(mover)
	g.turnStart = time.Now()
	return nil
}

// Step asks the side to move for a move and plays it, blocking until the
// player answers. A player with nothing left to play ends the game drawn.
func (g *Game) Step() error {
	if g.state.Status != StatusRunning {
		return ErrGameNotRunning
	}
	player := g.currentPlayer()
	if player == nil {
		return fmt.Errorf("no player seated for %s", g.state.ToMove)
	}
	move, err := player.ChooseMove(g.state.Clone(), g.rules)
	if errors.Is(err, ErrNoMovesAvailable) {
		g.endInDraw()
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", player.Name(), err)
	}
	return g.TryApplyMove(move)
}

// Play runs the console loop: board before every turn, final board, then the
// result line.
func (g *Game) Play() error {
	g.Start()
	for g.state.Status == StatusRunning {
		g.Display()
		if err := g.Step(); err != nil {
			return err
		}
	}
	g.Display()
	g.Announce()
	return nil
}

func (g *Game) Display() {
	fmt.Fprintf(g.out, "\nCurrent Board:\n%s\n", g.state.Board.String())
}

func (g *Game) Announce() {
	if winner, ok := g.Winner(); ok {
		fmt.Fprintf(g.out, "%s has won!\n", g.playerForColor(winner).Name())
		return
	}
	if g.state.Status == StatusDraw {
		fmt.Fprintln(g.out, "The game is a draw!")
	}
}

// Tick advances a bot-only match without blocking: it starts the bot's search
// and applies the move on a later tick once it is ready. Human seats are never
// driven from here.
func (g *Game) Tick(ghostEnabled bool, ghostSink func(ghostPayload)) bool {
	if g.state.Status != StatusRunning {
		return false
	}
	ai, ok := g.currentPlayer().(*AIPlayer)
	if !ok {
		return false
	}
	if ai.HasMoveReady() {
		move, err := ai.TakeMove()
		if errors.Is(err, ErrNoMovesAvailable) {
			g.endInDraw()
			return true
		}
		if err != nil {
			log.Printf("[game] %s failed to move: %v", ai.Name(), err)
			return false
		}
		if err := g.TryApplyMove(move); err != nil {
			log.Printf("[game] %s played %v: %v", ai.Name(), move, err)
			return false
		}
		return true
	}
	if !ai.IsThinking() {
		if ghostEnabled && ghostSink != nil {
			toMove := playerToInt(g.state.ToMove)
			historyLen := g.history.Size()
			ai.SetProbeSink(func(board Board, probe Move) {
				ghostSink(ghostPayload{
					Mode:       "probe",
					Positions:  ghostPositionsFromBoard(board),
					Probe:      &ghostCell{Row: probe.Row, Col: probe.Col, Player: toMove},
					NextPlayer: toMove,
					HistoryLen: historyLen,
					Active:     true,
				})
			})
		} else {
			ai.SetProbeSink(nil)
		}
		ai.StartThinking(g.state.Clone(), g.rules)
	}
	return false
}

func (g *Game) AiThinking() bool {
	ai, ok := g.currentPlayer().(*AIPlayer)
	return ok && ai.IsThinking()
}

func (g *Game) BotsOnly() bool {
	return g.settings.PlayerOneType == PlayerAI && g.settings.PlayerTwoType == PlayerAI
}

func (g *Game) PlayerName(color PlayerColor) string {
	if player := g.playerForColor(color); player != nil {
		return player.Name()
	}
	return g.settings.NameFor(color)
}

func (g *Game) currentPlayer() IPlayer {
	return g.playerForColor(g.state.ToMove)
}

func (g *Game) playerForColor(color PlayerColor) IPlayer {
	if color == PlayerOne {
		return g.playerOne
	}
	return g.playerTwo
}

func (g *Game) createPlayers() {
	g.playerOne = g.newPlayer(PlayerOne)
	g.playerTwo = g.newPlayer(PlayerTwo)
}

func (g *Game) newPlayer(color PlayerColor) IPlayer {
	name := g.settings.NameFor(color)
	if g.settings.TypeFor(color) == PlayerHuman {
		var in io.Reader
		if g.in != nil {
			in = g.in
		}
		return NewHumanPlayer(name, in, g.out)
	}
	return NewAIPlayer(name, g.settings.LevelFor(color))
}

// abandonBots stops the outgoing bot seats so a search still running for a
// replaced match neither publishes probes nor keeps a core busy.
func (g *Game) abandonBots() {
	for _, seat := range []IPlayer{g.playerOne, g.playerTwo} {
		if ai, ok := seat.(*AIPlayer); ok {
			ai.Abandon()
		}
	}
}

func (g *Game) endInDraw() {
	g.state.Status = StatusDraw
	g.state.WinningLine = nil
	log.Printf("[game] draw after %d moves", g.state.MoveCount)
}

func (g *Game) logMatchup() {
	label := func(color PlayerColor) string {
		if g.settings.TypeFor(color) == PlayerAI {
			return fmt.Sprintf("%s, bot %s", g.settings.NameFor(color), g.settings.LevelFor(color))
		}
		return g.settings.NameFor(color) + ", human"
	}
	log.Printf("[game] %dx%d k=%d: %s vs %s", g.settings.Rows, g.settings.Cols, g.settings.WinLength, label(PlayerOne), label(PlayerTwo))
}

func (g *Game) logWin(player PlayerColor) {
	log.Printf("[game] %s (%s) won after %d moves", g.PlayerName(player), player, g.state.MoveCount)
}
