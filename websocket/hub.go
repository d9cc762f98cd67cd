package websocket

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/matink112/TradeEngine/logging"
)

// Hub maintains the set of active clients and fans messages out to them.
// Slow clients are dropped rather than allowed to block the broadcast loop.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	broadcastTrade   chan *TradeMessage
	broadcastSummary chan *SummaryMessage
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:          make(map[*Client]bool),
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		broadcastTrade:   make(chan *TradeMessage, 256),
		broadcastSummary: make(chan *SummaryMessage, 256),
	}
}

// Run starts the hub's main event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			logging.GetLogger().WithFields(logrus.Fields{
				"event":     "websocket_connected",
				"client_id": client.id,
				"clients":   len(h.clients),
			}).Info("WebSocket client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				logging.GetLogger().WithFields(logrus.Fields{
					"event":     "websocket_disconnected",
					"client_id": client.id,
					"clients":   len(h.clients),
				}).Info("WebSocket client disconnected")
			}

		case trade := <-h.broadcastTrade:
			h.broadcast(Message{
				Type:      "trade",
				Timestamp: time.Now().Unix(),
				Data:      trade,
			})

		case summary := <-h.broadcastSummary:
			h.broadcast(Message{
				Type:      "summary",
				Timestamp: time.Now().Unix(),
				Data:      summary,
			})
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastTrade queues a trade for fan-out. Never blocks the caller.
func (h *Hub) BroadcastTrade(trade *TradeMessage) {
	select {
	case h.broadcastTrade <- trade:
	default:
	}
}

// BroadcastSummary queues a summary for fan-out. Never blocks the caller.
func (h *Hub) BroadcastSummary(summary *SummaryMessage) {
	select {
	case h.broadcastSummary <- summary:
	default:
	}
}

func (h *Hub) broadcast(message Message) {
	payload, err := json.Marshal(message)
	if err != nil {
		logging.GetLogger().WithField("error", err.Error()).Error("WebSocket marshal failed")
		return
	}

	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}
