package main

type PlayerColor int

type GameStatus int

const (
	PlayerOne PlayerColor = iota
	PlayerTwo
)

const (
	StatusNotStarted GameStatus = iota
	StatusRunning
	StatusPlayerOneWon
	StatusPlayerTwoWon
	StatusDraw
)

type GameState struct {
	Board       Board
	ToMove      PlayerColor
	Status      GameStatus
	HasLastMove bool
	LastMove    Move
	MoveCount   int
	LastMessage string
	WinningLine []Move
}

func DefaultGameState(settings GameSettings) GameState {
	state := GameState{}
	state.Reset(settings)
	return state
}

func (s *GameState) Reset(settings GameSettings) {
	s.Board = NewBoard(settings.Rows, settings.Cols, settings.WinLength)
	if settings.PlayerOneStarts {
		s.ToMove = PlayerOne
	} else {
		s.ToMove = PlayerTwo
	}
	s.Status = StatusNotStarted
	s.HasLastMove = false
	s.LastMove = Move{Row: -1, Col: -1}
	s.MoveCount = 0
	s.LastMessage = ""
	s.WinningLine = nil
}

func (s GameState) Clone() GameState {
	clone := s
	clone.Board = s.Board.Clone()
	clone.WinningLine = append([]Move(nil), s.WinningLine...)
	return clone
}

func otherPlayer(player PlayerColor) PlayerColor {
	if player == PlayerOne {
		return PlayerTwo
	}
	return PlayerOne
}

func (p PlayerColor) String() string {
	if p == PlayerOne {
		return "PlayerOne"
	}
	return "PlayerTwo"
}

func wonStatus(player PlayerColor) GameStatus {
	if player == PlayerOne {
		return StatusPlayerOneWon
	}
	return StatusPlayerTwoWon
}
