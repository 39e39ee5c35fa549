package main

import "fmt"

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

type GameSettings struct {
	Rows            int        `json:"rows"`
	Cols            int        `json:"cols"`
	WinLength       int        `json:"win_length"`
	PlayerOneType   PlayerType `json:"-"`
	PlayerTwoType   PlayerType `json:"-"`
	PlayerOneLevel  BotLevel   `json:"player_one_level"`
	PlayerTwoLevel  BotLevel   `json:"player_two_level"`
	PlayerOneName   string     `json:"player_one_name"`
	PlayerTwoName   string     `json:"player_two_name"`
	PlayerOneStarts bool       `json:"player_one_starts"`
}

func DefaultGameSettings() GameSettings {
	return GameSettings{
		Rows:            3,
		Cols:            3,
		WinLength:       3,
		PlayerOneType:   PlayerHuman,
		PlayerTwoType:   PlayerAI,
		PlayerOneLevel:  LevelSearch,
		PlayerTwoLevel:  LevelSearch,
		PlayerOneName:   "Player 1",
		PlayerTwoName:   botName(LevelSearch),
		PlayerOneStarts: true,
	}
}

func (s GameSettings) Validate() error {
	if s.Rows <= 0 || s.Cols <= 0 {
		return fmt.Errorf("%w: board must be at least 1x1, got %dx%d", ErrInvalidSettings, s.Rows, s.Cols)
	}
	if s.WinLength < 1 || s.WinLength > max(s.Rows, s.Cols) {
		return fmt.Errorf("%w: win length %d outside [1,%d]", ErrInvalidSettings, s.WinLength, max(s.Rows, s.Cols))
	}
	if s.PlayerOneType == PlayerAI && !s.PlayerOneLevel.IsValid() {
		return fmt.Errorf("%w: player one bot level %d", ErrInvalidSettings, s.PlayerOneLevel)
	}
	if s.PlayerTwoType == PlayerAI && !s.PlayerTwoLevel.IsValid() {
		return fmt.Errorf("%w: player two bot level %d", ErrInvalidSettings, s.PlayerTwoLevel)
	}
	return nil
}

func (s GameSettings) TypeFor(player PlayerColor) PlayerType {
	if player == PlayerOne {
		return s.PlayerOneType
	}
	return s.PlayerTwoType
}

func (s GameSettings) LevelFor(player PlayerColor) BotLevel {
	if player == PlayerOne {
		return s.PlayerOneLevel
	}
	return s.PlayerTwoLevel
}

func (s GameSettings) NameFor(player PlayerColor) string {
	name := s.PlayerTwoName
	if player == PlayerOne {
		name = s.PlayerOneName
	}
	if name != "" {
		return name
	}
	if s.TypeFor(player) == PlayerAI {
		return botName(s.LevelFor(player))
	}
	if player == PlayerOne {
		return "Player 1"
	}
	return "Player 2"
}
