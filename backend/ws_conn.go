package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsIdlePingInterval = 30 * time.Second
	wsPeerQueue        = 16
)

var wsUpgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// wsPeer is one subscribed socket. Outbound frames queue on send and a full
// queue drops them, so a slow browser never stalls a broadcast.
type wsPeer struct {
	conn *websocket.Conn
	send chan []byte
}

func (p *wsPeer) push(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	p.enqueue(data)
}

func (p *wsPeer) enqueue(data []byte) {
	select {
	case p.send <- data:
	default:
	}
}

// pump writes queued frames until send is closed, sending a ping frame when
// the socket has been quiet for wsIdlePingInterval.
func (p *wsPeer) pump() error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	ping := mustMarshal(wsMessage{Type: "ping"})
	for {
		select {
		case data, ok := <-p.send:
			if !ok {
				return nil
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
		}
		lastWrite = time.Now()
	}
}

// wsPeers is the subscriber set shared by the status and ghost streams.
type wsPeers struct {
	mu    sync.Mutex
	peers map[*wsPeer]struct{}
}

func (s *wsPeers) add(p *wsPeer) {
	s.mu.Lock()
	if s.peers == nil {
		s.peers = make(map[*wsPeer]struct{})
	}
	s.peers[p] = struct{}{}
	s.mu.Unlock()
}

func (s *wsPeers) remove(p *wsPeer) {
	s.mu.Lock()
	if _, ok := s.peers[p]; ok {
		delete(s.peers, p)
		close(p.send)
	}
	s.mu.Unlock()
}

func (s *wsPeers) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

// broadcast encodes msg once and queues it on every peer.
func (s *wsPeers) broadcast(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[ws] dropping %s message: %v", msg.Type, err)
		return
	}
	s.mu.Lock()
	for p := range s.peers {
		p.enqueue(data)
	}
	s.mu.Unlock()
}

// acceptPeer upgrades r, registers the socket in set and blocks reading
// until it drops. greet runs once after registration; onMessage sees every
// inbound message that decodes. Either may be nil.
func acceptPeer(set *wsPeers, tag string, w http.ResponseWriter, r *http.Request, greet func(*wsPeer), onMessage func(*wsPeer, wsMessage)) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] %s upgrade failed: %v", tag, err)
		return
	}
	peer := &wsPeer{conn: conn, send: make(chan []byte, wsPeerQueue)}
	set.add(peer)
	defer set.remove(peer)

	if greet != nil {
		greet(peer)
	}
	go func() {
		defer conn.Close()
		if err := peer.pump(); err != nil {
			log.Printf("[ws] %s write failed: %v", tag, err)
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if onMessage == nil {
			continue
		}
		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		onMessage(peer, msg)
	}
}
