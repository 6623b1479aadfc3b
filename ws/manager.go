package ws

import (
	"context"
	"sync"

	"dealvalue_backend/internal/logger"
	"dealvalue_backend/internal/metrics"
)

// Frame - одно сообщение чата в исходном виде
type Frame struct {
	Type int
	Data []byte
}

// WebSocketManager - хаб релея. Регистрация, удаление и рассылка
// выполняются в одной горутине Run, поэтому удаленный клиент
// не получает сообщений, разосланных после его удаления.
type WebSocketManager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Frame
	stopped    chan struct{}
	mu         sync.RWMutex

	backplane Backplane
}

func NewWebSocketManager(backplane Backplane) *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Frame),
		stopped:    make(chan struct{}),
		backplane:  backplane,
	}
}

// Run обслуживает хаб до отмены ctx. Если задан backplane,
// сообщения других экземпляров тоже раздаются локальным клиентам.
func (manager *WebSocketManager) Run(ctx context.Context) {
	defer close(manager.stopped)

	var remote <-chan Frame
	if manager.backplane != nil {
		frames, err := manager.backplane.Subscribe(ctx)
		if err != nil {
			logger.Error("Chat backplane subscription failed", "error", err.Error())
		} else {
			remote = frames
		}
	}

	for {
		select {
		case <-ctx.Done():
			manager.closeAll()
			return

		case client := <-manager.register:
			manager.mu.Lock()
			manager.clients[client.ID] = client
			total := len(manager.clients)
			manager.mu.Unlock()
			metrics.ChatPeers.Inc()
			logger.RelayLog("registered", client.ID, "total", total)

		case client := <-manager.unregister:
			manager.mu.Lock()
			if _, ok := manager.clients[client.ID]; ok {
				delete(manager.clients, client.ID)
				client.close()
				metrics.ChatPeers.Dec()
			}
			total := len(manager.clients)
			manager.mu.Unlock()
			logger.RelayLog("unregistered", client.ID, "total", total)

		case frame := <-manager.broadcast:
			manager.broadcastFrame(frame)

		case frame, ok := <-remote:
			if !ok {
				remote = nil
				continue
			}
			manager.broadcastFrame(frame)
		}
	}
}

// Broadcast передает кадр всем открытым клиентам, включая отправителя
func (manager *WebSocketManager) Broadcast(ctx context.Context, frame Frame) {
	select {
	case manager.broadcast <- frame:
	case <-manager.stopped:
		return
	case <-ctx.Done():
		return
	}
	metrics.ChatMessagesTotal.Inc()

	if manager.backplane != nil {
		if err := manager.backplane.Publish(ctx, frame); err != nil {
			logger.Warn("Chat backplane publish failed", "error", err.Error())
		}
	}
}

// Register добавляет клиента. false, если хаб уже остановлен.
func (manager *WebSocketManager) Register(client *Client) bool {
	select {
	case manager.register <- client:
		return true
	case <-manager.stopped:
		return false
	}
}

// Unregister удаляет клиента, после этого он не получает новых кадров
func (manager *WebSocketManager) Unregister(client *Client) {
	select {
	case manager.unregister <- client:
	case <-manager.stopped:
		client.close()
	}
}

// broadcastFrame кладет кадр в очередь каждого клиента. Очереди не ограничены,
// медленный клиент не блокирует хаб и не отключается.
func (manager *WebSocketManager) broadcastFrame(frame Frame) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	for _, client := range manager.clients {
		client.enqueue(frame)
	}
}

// GetClientCount возвращает количество подключенных клиентов
func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients)
}

// IsClientConnected проверяет, подключен ли клиент
func (manager *WebSocketManager) IsClientConnected(clientID string) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	_, exists := manager.clients[clientID]
	return exists
}

func (manager *WebSocketManager) closeAll() {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	for id, client := range manager.clients {
		client.close()
		delete(manager.clients, id)
		metrics.ChatPeers.Dec()
	}
}
