package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HubOptions - настройки хаба
type HubOptions struct {
	// Provider рассылает события другим экземплярам. nil - только локальные клиенты.
	Provider PubSubProvider
	// Channel - канал Pub/Sub
	Channel string
	// AllowOrigins - разрешенные Origin для апгрейда. Пусто - любой.
	AllowOrigins []string
}

// Hub хранит подключенных клиентов ленты и рассылает им события
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	instanceID string
	provider   PubSubProvider
	channel    string
	origins    map[string]struct{}

	log logrus.FieldLogger
}

// NewHub создает хаб. Горутины здесь не запускаются: релей кластера стартует через StartCluster.
func NewHub(opts HubOptions, log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		instanceID: uuid.New().String(),
		provider:   opts.Provider,
		channel:    opts.Channel,
		log:        log.WithField("component", "ws_hub"),
	}
	if len(opts.AllowOrigins) > 0 {
		h.origins = make(map[string]struct{}, len(opts.AllowOrigins))
		for _, o := range opts.AllowOrigins {
			if o == "*" {
				h.origins = nil
				break
			}
			h.origins[o] = struct{}{}
		}
	}
	return h
}

// InstanceID возвращает ID этого экземпляра хаба
func (h *Hub) InstanceID() string {
	return h.instanceID
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.WithField("conn_id", c.ConnectionID).Debug("Client registered")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.closeSend()
		h.log.WithField("conn_id", c.ConnectionID).Debug("Client unregistered")
	}
}

// BroadcastJSON отправляет событие всем клиентам этого экземпляра и публикует его в кластер
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	h.BroadcastBytesLocal(data)

	if h.provider == nil {
		return nil
	}
	msg, err := json.Marshal(ClusterMessage{InstanceID: h.instanceID, Payload: data, Timestamp: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal cluster message: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.provider.Publish(ctx, h.channel, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// BroadcastBytesLocal отправляет сообщение только локальным клиентам.
// Клиенты с переполненным буфером отключаются.
func (h *Hub) BroadcastBytesLocal(message []byte) {
	var slow []*Client

	h.mu.RLock()
	for c := range h.clients {
		if !c.enqueue(message) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.WithField("conn_id", c.ConnectionID).Warn("Client buffer is full, disconnecting")
		h.unregister(c)
	}
}

// StartCluster подписывается на канал и пересылает локальным клиентам события
// других экземпляров. Работает до отмены ctx.
func (h *Hub) StartCluster(ctx context.Context) error {
	if h.provider == nil {
		return nil
	}
	messages, err := h.provider.Subscribe(ctx, h.channel)
	if err != nil {
		return err
	}

	go func() {
		for raw := range messages {
			var msg ClusterMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				h.log.WithError(err).Warn("Malformed cluster message")
				continue
			}
			if msg.InstanceID == h.instanceID {
				continue
			}
			h.BroadcastBytesLocal(msg.Payload)
		}
	}()

	h.log.WithFields(logrus.Fields{"channel": h.channel, "instance_id": h.instanceID}).Info("Cluster relay started")
	return nil
}

// Close отключает всех клиентов
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.closeSend()
	}
}
