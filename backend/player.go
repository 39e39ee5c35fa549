package main

// IPlayer is a move source: a console human or a bot policy.
type IPlayer interface {
	IsHuman() bool
	Name() string
	ChooseMove(state GameState, rules Rules) (Move, error)
}
