package main

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// GameController serializes access to the exhibition match shared by the
// HTTP handlers and the tick loop.
type GameController struct {
	mu             sync.Mutex
	game           Game
	exhibitionID   string
	ghostEnabled   func() bool
	ghostPublisher func(ghostPayload)
}

func NewGameController(settings GameSettings) *GameController {
	return &GameController{game: NewConsoleGame(settings, nil, nil)}
}

func (gc *GameController) SetGhostPublisher(enabled func() bool, publisher func(ghostPayload)) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.ghostEnabled = enabled
	gc.ghostPublisher = publisher
}

// StartExhibition resets the match with settings and starts it. Both seats
// must be bots.
func (gc *GameController) StartExhibition(settings GameSettings) (string, error) {
	if err := settings.Validate(); err != nil {
		return "", err
	}
	if settings.PlayerOneType != PlayerAI || settings.PlayerTwoType != PlayerAI {
		return "", fmt.Errorf("%w: exhibitions seat two bots", ErrInvalidSettings)
	}
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.Reset(settings)
	gc.game.Start()
	gc.exhibitionID = uuid.NewString()
	return gc.exhibitionID, nil
}

// Stop abandons the current exhibition and leaves an unstarted board with
// the same settings.
func (gc *GameController) Stop() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.Reset(gc.game.Settings())
	gc.exhibitionID = ""
}

func (gc *GameController) Tick() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	ghostEnabled := false
	if gc.ghostEnabled != nil {
		ghostEnabled = gc.ghostEnabled()
	}
	return gc.game.Tick(ghostEnabled, gc.ghostPublisher)
}

func (gc *GameController) ExhibitionID() string {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.exhibitionID
}

func (gc *GameController) State() GameState {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.State()
}

func (gc *GameController) Settings() GameSettings {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Settings()
}

func (gc *GameController) History() MoveHistory {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.History()
}

func (gc *GameController) PlayerNames() (string, string) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.PlayerName(PlayerOne), gc.game.PlayerName(PlayerTwo)
}

func (gc *GameController) CurrentTurnStartedAtMs() int64 {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.TurnStartedAtMs()
}

func (gc *GameController) LatestHistoryEntry() (HistoryEntry, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.History().Last()
}

func (gc *GameController) AiThinking() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.AiThinking()
}
