package main

import (
	"net/http"
	"sync"
)

type ghostCell struct {
	Row    int `json:"row"`
	Col    int `json:"col"`
	Player int `json:"player"`
}

// ghostPayload is one search probe: the stones on the board while the probe
// stone is placed.
type ghostPayload struct {
	Mode       string      `json:"mode,omitempty"`
	Positions  []ghostCell `json:"positions,omitempty"`
	Probe      *ghostCell  `json:"probe,omitempty"`
	NextPlayer int         `json:"next_player,omitempty"`
	HistoryLen int         `json:"history_len,omitempty"`
	Active     bool        `json:"active"`
}

// GhostHub streams search probes to /ws/ghost. Probes arrive far faster
// than a browser can draw them, so only the newest pending probe is kept.
type GhostHub struct {
	peers   wsPeers
	mu      sync.Mutex
	pending *ghostPayload
	wake    chan struct{}
}

func NewGhostHub() *GhostHub {
	return &GhostHub{wake: make(chan struct{}, 1)}
}

func (h *GhostHub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-h.wake:
			if payload, ok := h.takePending(); ok {
				h.peers.broadcast(wsMessage{Type: "ghost", Payload: mustMarshal(payload)})
			}
		}
	}
}

// Publish replaces any probe not yet sent.
func (h *GhostHub) Publish(payload ghostPayload) {
	h.mu.Lock()
	h.pending = &payload
	h.mu.Unlock()
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

func (h *GhostHub) takePending() (ghostPayload, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == nil {
		return ghostPayload{}, false
	}
	payload := *h.pending
	h.pending = nil
	return payload, true
}

func (h *GhostHub) HasClients() bool {
	return h.peers.count() > 0
}

func serveGhostWS(hub *GhostHub, w http.ResponseWriter, r *http.Request) {
	acceptPeer(&hub.peers, "ghost", w, r, nil, nil)
}

func ghostPositionsFromBoard(board Board) []ghostCell {
	positions := []ghostCell{}
	for row := 0; row < board.Rows(); row++ {
		for col := 0; col < board.Cols(); col++ {
			if cell := board.At(row, col); cell != CellEmpty {
				positions = append(positions, ghostCell{Row: row, Col: col, Player: cellToInt(cell)})
			}
		}
	}
	return positions
}
