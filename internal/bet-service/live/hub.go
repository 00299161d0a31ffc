package live

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/bet-tracker/pkg/contracts/events"
)

// allBets é a chave de quem assina todas as apostas
const allBets = "*"

const (
	writeWait  = 5 * time.Second
	sendBuffer = 64
)

// ClientMsg é o que o cliente envia pelo websocket.
// BetID vazio ou "*" assina todas as apostas.
type ClientMsg struct {
	Type  string `json:"type"` // subscribe | unsubscribe | ping
	BetID string `json:"bet_id"`
}

// peer tem uma fila de envio própria; só writePump escreve na conexão
type peer struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newPeer(conn *websocket.Conn) *peer {
	return &peer{conn: conn, send: make(chan []byte, sendBuffer), done: make(chan struct{})}
}

// enqueue não bloqueia; false = fila cheia ou conexão encerrada
func (p *peer) enqueue(b []byte) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.send <- b:
		return true
	default:
		return false
	}
}

func (p *peer) close() {
	p.once.Do(func() {
		close(p.done)
		_ = p.conn.Close()
	})
}

func (p *peer) writePump() {
	defer p.close()
	for {
		select {
		case <-p.done:
			return
		case b := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}

// Hub mantém as conexões websocket e repassa eventos bet_changed para quem
// assinou a aposta (ou todas)
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[string]map[*peer]struct{}
}

// AllowOrigins aceita requisições sem Origin (clientes não-browser) ou
// vindas de uma das origens liberadas no CORS
func AllowOrigins(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed["*"]; ok {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*peer]struct{}),
	}
}

// ServeHTTP faz o upgrade e trata subscribe/unsubscribe/ping até o cliente sair
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("ws upgrade failed", zap.Error(err))
		return
	}
	// o http.Server aplica ReadTimeout na conexão; aqui ela fica aberta
	_ = conn.SetReadDeadline(time.Time{})
	p := newPeer(conn)
	go p.writePump()
	defer func() {
		h.drop(p)
		p.close()
	}()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		key := msg.BetID
		if key == "" {
			key = allBets
		}
		switch msg.Type {
		case "subscribe":
			h.subscribe(key, p)
			p.enqueue(ack("subscribed", key))
		case "unsubscribe":
			h.unsubscribe(key, p)
			p.enqueue(ack("unsubscribed", key))
		case "ping":
			p.enqueue([]byte(`{"type":"pong"}`))
		}
	}
}

func ack(kind, key string) []byte {
	b, _ := json.Marshal(map[string]string{"type": kind, "bet_id": key})
	return b
}

func (h *Hub) subscribe(key string, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[key]; !ok {
		h.subs[key] = make(map[*peer]struct{})
	}
	h.subs[key][p] = struct{}{}
}

func (h *Hub) unsubscribe(key string, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[key]; ok {
		delete(set, p)
		if len(set) == 0 {
			delete(h.subs, key)
		}
	}
}

func (h *Hub) drop(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, set := range h.subs {
		delete(set, p)
		if len(set) == 0 {
			delete(h.subs, key)
		}
	}
}

// Broadcast enfileira o evento para quem assinou a aposta e para quem assinou
// todas; cada conexão recebe no máximo uma cópia. Não bloqueia: conexão com a
// fila cheia é derrubada.
func (h *Hub) Broadcast(e events.BetChanged) {
	h.mu.RLock()
	targets := make(map[*peer]struct{})
	for _, key := range []string{allBets, strconv.FormatInt(e.BetID, 10)} {
		for p := range h.subs[key] {
			targets[p] = struct{}{}
		}
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	b, err := json.Marshal(e)
	if err != nil {
		h.log.Warn("ws marshal", zap.Error(err))
		return
	}
	for p := range targets {
		if !p.enqueue(b) {
			h.log.Debug("ws peer too slow, closing")
			h.drop(p)
			p.close()
		}
	}
}

// Publish entrega o evento direto no hub local (instância única, sem Redis)
func (h *Hub) Publish(_ context.Context, e events.BetChanged) error {
	h.Broadcast(e)
	return nil
}

// Subscribers retorna quantas conexões distintas estão inscritas
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[*peer]struct{})
	for _, set := range h.subs {
		for p := range set {
			seen[p] = struct{}{}
		}
	}
	return len(seen)
}
