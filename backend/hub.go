package main

// Hub fans exhibition events out to /ws/ subscribers. Each event kind has
// its own queue so a burst of history updates cannot starve a reset.
type Hub struct {
	peers   wsPeers
	history chan historyPayload
	status  chan StatusResponse
	reset   chan resetPayload
	config  chan Config
}

func NewHub() *Hub {
	return &Hub{
		history: make(chan historyPayload, 32),
		status:  make(chan StatusResponse, 32),
		reset:   make(chan resetPayload, 8),
		config:  make(chan Config, 8),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case payload := <-h.history:
			h.peers.broadcast(wsMessage{Type: "history", Payload: mustMarshal(payload)})
		case payload := <-h.status:
			h.peers.broadcast(wsMessage{Type: "status", Payload: mustMarshal(payload)})
		case payload := <-h.reset:
			h.peers.broadcast(wsMessage{Type: "reset", Payload: mustMarshal(payload)})
		case payload := <-h.config:
			h.peers.broadcast(wsMessage{Type: "config", Payload: mustMarshal(payload)})
		}
	}
}

// The Publish* helpers drop the event when its queue is full; subscribers
// can always resync with request_status.

func (h *Hub) PublishHistory(payload historyPayload) {
	publish(h.history, payload)
}

func (h *Hub) PublishStatus(payload StatusResponse) {
	publish(h.status, payload)
}

func (h *Hub) PublishReset(payload resetPayload) {
	publish(h.reset, payload)
}

func (h *Hub) PublishConfig(payload Config) {
	publish(h.config, payload)
}

func (h *Hub) HasClients() bool {
	return h.peers.count() > 0
}

func publish[T any](queue chan T, payload T) {
	select {
	case queue <- payload:
	default:
	}
}
