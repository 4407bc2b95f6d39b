package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketManagerClientTracking(t *testing.T) {
	m := NewWebSocketManager(10)

	c1 := &Client{UserID: "u1", RoomID: "r1", SendChan: make(chan *Event, 1)}
	c2 := &Client{UserID: "u2", RoomID: "r1", SendChan: make(chan *Event, 1)}
	c3 := &Client{UserID: "u3", RoomID: "r2", SendChan: make(chan *Event, 1)}

	require.NoError(t, m.addClient(c1))
	require.NoError(t, m.addClient(c2))
	require.NoError(t, m.addClient(c3))

	assert.Equal(t, 2, m.GetRoomClients("r1"))
	assert.Equal(t, 1, m.GetRoomClients("r2"))
	assert.Equal(t, 3, m.TotalClients())

	m.removeClient(c1)
	assert.Equal(t, 1, m.GetRoomClients("r1"))
	assert.Equal(t, 2, m.TotalClients())

	// 重複移除不影響計數
	m.removeClient(c1)
	assert.Equal(t, 2, m.TotalClients())

	m.removeClient(c2)
	assert.Equal(t, 0, m.GetRoomClients("r1"))
}

func TestWebSocketManagerConnectionCap(t *testing.T) {
	m := NewWebSocketManager(2)

	require.NoError(t, m.addClient(&Client{UserID: "u1", RoomID: "r1"}))
	require.NoError(t, m.addClient(&Client{UserID: "u2", RoomID: "r1"}))

	err := m.addClient(&Client{UserID: "u3", RoomID: "r1"})
	assert.Error(t, err)
	assert.Equal(t, 2, m.TotalClients())
}

func TestBroadcastToRoom(t *testing.T) {
	m := NewWebSocketManager(10)

	c1 := &Client{UserID: "u1", RoomID: "r1", SendChan: make(chan *Event, 4)}
	c2 := &Client{UserID: "u2", RoomID: "r2", SendChan: make(chan *Event, 4)}
	require.NoError(t, m.addClient(c1))
	require.NoError(t, m.addClient(c2))

	m.BroadcastToRoom("r1", &Event{Type: "test"})

	// 只有 r1 的客戶端收到事件
	select {
	case ev := <-c1.SendChan:
		assert.Equal(t, "test", ev.Type)
	default:
		t.Fatal("r1 client did not receive event")
	}
	select {
	case <-c2.SendChan:
		t.Fatal("r2 client should not receive event")
	default:
	}
}

func TestSendAfterRemoveDoesNotPanic(t *testing.T) {
	m := NewWebSocketManager(10)

	c := &Client{UserID: "u1", RoomID: "r1", SendChan: make(chan *Event, 1)}
	require.NoError(t, m.addClient(c))
	m.removeClient(c)

	// 斷線後的發送與廣播直接丟棄，不會寫入已關閉的 channel
	assert.NotPanics(t, func() {
		m.SendToClient(c, &Event{Type: "system"})
		m.BroadcastToRoom("r1", &Event{Type: "system"})
	})

	_, open := <-c.SendChan
	assert.False(t, open)
}

func TestSlowConsumerDisconnected(t *testing.T) {
	m := NewWebSocketManager(10)

	c := &Client{UserID: "u1", RoomID: "r1", SendChan: make(chan *Event, 1)}
	require.NoError(t, m.addClient(c))

	// 塞滿緩衝後再發送，客戶端被視為過慢而移除
	m.SendToClient(c, &Event{Type: "system"})
	m.SendToClient(c, &Event{Type: "system"})

	assert.Equal(t, 0, m.TotalClients())
	assert.NotPanics(t, func() {
		m.SendToClient(c, &Event{Type: "system"})
	})
}
