package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRelay(t *testing.T, backplane Backplane) (*WebSocketManager, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	manager := NewWebSocketManager(backplane)
	go manager.Run(ctx)

	r := gin.New()
	r.GET("/chat", NewWebSocketHandler(manager).ServeWS)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return manager, "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) (int, string) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return msgType, string(data)
}

func waitPeers(t *testing.T, manager *WebSocketManager, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return manager.GetClientCount() == n },
		2*time.Second, 10*time.Millisecond, "ожидалось %d клиентов", n)
}

func TestRelay_BroadcastIncludesSender(t *testing.T) {
	// 1. Подготовка
	manager, url := startRelay(t, nil)
	alice := dial(t, url)
	bob := dial(t, url)
	waitPeers(t, manager, 2)

	// 2. Действие
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(`{"text":"oi"}`)))

	// 3. Проверка
	for _, conn := range []*websocket.Conn{alice, bob} {
		msgType, data := read(t, conn)
		assert.Equal(t, websocket.TextMessage, msgType)
		assert.Equal(t, `{"text":"oi"}`, data, "сообщение доставляется без изменений")
	}
}

func TestRelay_NonJSONAndBinaryFrames(t *testing.T) {
	manager, url := startRelay(t, nil)
	alice := dial(t, url)
	bob := dial(t, url)
	waitPeers(t, manager, 2)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("plain text")))
	msgType, data := read(t, bob)
	assert.Equal(t, websocket.TextMessage, msgType)
	assert.Equal(t, "plain text", data)

	require.NoError(t, bob.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02}))
	// alice сначала получает свой текст, потом бинарный кадр
	_, _ = read(t, alice)
	msgType, data = read(t, alice)
	assert.Equal(t, websocket.BinaryMessage, msgType, "тип кадра сохраняется")
	assert.Equal(t, "\x01\x02", data)
}

func TestRelay_ClosedPeerIsRemoved(t *testing.T) {
	manager, url := startRelay(t, nil)
	alice := dial(t, url)
	bob := dial(t, url)
	waitPeers(t, manager, 2)

	require.NoError(t, bob.Close())
	waitPeers(t, manager, 1)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("still here")))
	_, data := read(t, alice)
	assert.Equal(t, "still here", data)
}

func TestClient_NoFramesAfterClose(t *testing.T) {
	c := newClient("peer", nil, nil)

	c.enqueue(Frame{Type: websocket.TextMessage, Data: []byte("a")})
	c.enqueue(Frame{Type: websocket.TextMessage, Data: []byte("b")})
	assert.Len(t, c.drain(), 2, "очередь не ограничена и не теряет кадры")

	c.close()
	c.enqueue(Frame{Type: websocket.TextMessage, Data: []byte("late")})
	assert.Empty(t, c.drain(), "закрытый клиент не получает новых кадров")

	// повторное закрытие безопасно
	c.close()
}

// memoryBus - backplane в памяти для нескольких хабов
type memoryBus struct {
	mu   sync.Mutex
	subs []chan Frame
}

type busMember struct {
	bus  *memoryBus
	self chan Frame
}

func (b *memoryBus) member() *busMember {
	ch := make(chan Frame, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return &busMember{bus: b, self: ch}
}

func (m *busMember) Publish(_ context.Context, frame Frame) error {
	m.bus.mu.Lock()
	defer m.bus.mu.Unlock()
	for _, ch := range m.bus.subs {
		if ch != m.self {
			ch <- frame
		}
	}
	return nil
}

func (m *busMember) Subscribe(context.Context) (<-chan Frame, error) { return m.self, nil }
func (m *busMember) Close() error                                  { return nil }

func TestRelay_BackplaneFansOutAcrossInstances(t *testing.T) {
	bus := &memoryBus{}
	managerA, urlA := startRelay(t, bus.member())
	managerB, urlB := startRelay(t, bus.member())

	alice := dial(t, urlA)
	bob := dial(t, urlB)
	waitPeers(t, managerA, 1)
	waitPeers(t, managerB, 1)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("cross")))

	_, data := read(t, alice)
	assert.Equal(t, "cross", data)
	_, data = read(t, bob)
	assert.Equal(t, "cross", data, "кадр доходит до клиента другого экземпляра")
}
