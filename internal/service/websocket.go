package service

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event 是透過 WebSocket 廣播的事件
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	Conn     *websocket.Conn // WebSocket 連接
	UserID   string          // 用戶 ID
	RoomID   string          // 房間 ID
	SendChan chan *Event     // 事件發送通道，用於異步傳送事件

	closed bool // SendChan 是否已關閉，由 clientsMux 保護
}

// IncomingHandler 處理客戶端上行消息，回傳錯誤時會回覆 error 事件
type IncomingHandler func(client *Client, msgType string, payload json.RawMessage) error

// WebSocketManager 管理所有的 WebSocket 連接和事件廣播
type WebSocketManager struct {
	clients    map[string]map[*Client]bool // 兩層 map: roomID -> client -> bool
	clientsMux sync.RWMutex                // 用於保護 clients map 的讀寫鎖
	total      int                         // 目前連接總數
	maxConns   int                         // 全服連接上限
	handler    IncomingHandler
}

// NewWebSocketManager 創建並初始化新的 WebSocket 管理器
func NewWebSocketManager(maxConns int) *WebSocketManager {
	if maxConns <= 0 {
		maxConns = 50
	}
	return &WebSocketManager{
		clients:  make(map[string]map[*Client]bool),
		maxConns: maxConns,
	}
}

// SetIncomingHandler 註冊上行消息處理器，需在接受連接前設定
func (m *WebSocketManager) SetIncomingHandler(h IncomingHandler) {
	m.handler = h
}

// HandleConnection 處理新的 WebSocket 連接請求，阻塞直到連接關閉
func (m *WebSocketManager) HandleConnection(conn *websocket.Conn, roomID, userID string) error {
	client := &Client{
		Conn:     conn,
		UserID:   userID,
		RoomID:   roomID,
		SendChan: make(chan *Event, 256), // 設置緩衝大小為 256 的事件通道
	}

	if err := m.addClient(client); err != nil {
		conn.WriteJSON(&Event{Type: "error", Data: map[string]string{"message": err.Error()}})
		conn.Close()
		return err
	}

	// 確保連接關閉時清理資源，SendChan 由 removeClient 統一關閉
	defer func() {
		m.removeClient(client)
		conn.Close()
	}()

	// 啟動讀寫處理
	go m.writePump(client)
	m.readPump(client)
	return nil
}

type incomingMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// readPump 持續監聽並處理從客戶端接收的消息
func (m *WebSocketManager) readPump(client *Client) {
	client.Conn.SetReadLimit(4096) // 設置最大消息大小為 4KB
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			break
		}

		var msg incomingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("message parse error: %v", err)
			continue
		}

		if m.handler == nil {
			continue
		}
		if err := m.handler(client, msg.Type, msg.Data); err != nil {
			m.SendToClient(client, &Event{
				Type: "error",
				Data: map[string]string{"message": err.Error()},
			})
		}
	}
}

// writePump 處理向客戶端發送事件的邏輯
func (m *WebSocketManager) writePump(client *Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			// 設置寫入超時
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := client.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			eventBytes, err := json.Marshal(event)
			if err != nil {
				log.Printf("event encoding error: %v", err)
				continue
			}

			if _, err := w.Write(eventBytes); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			// 發送心跳包
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendToClient 向單一客戶端發送事件。
// 發送在讀鎖內進行，removeClient 關閉通道需要寫鎖，兩者不會交錯
func (m *WebSocketManager) SendToClient(client *Client, event *Event) {
	m.clientsMux.RLock()
	if client.closed {
		m.clientsMux.RUnlock()
		return
	}

	select {
	case client.SendChan <- event:
		m.clientsMux.RUnlock()
	default:
		m.clientsMux.RUnlock()
		// 客戶端事件隊列已滿，關閉連接
		m.removeClient(client)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
}

// BroadcastToRoom 向房間內的所有客戶端廣播事件
func (m *WebSocketManager) BroadcastToRoom(roomID string, event *Event) {
	m.clientsMux.RLock()
	room := m.clients[roomID]
	targets := make([]*Client, 0, len(room))
	for client := range room {
		targets = append(targets, client)
	}
	m.clientsMux.RUnlock()

	for _, client := range targets {
		m.SendToClient(client, event)
	}
}

// BroadcastSystemMessage 發送系統消息到指定房間
func (m *WebSocketManager) BroadcastSystemMessage(roomID, content string) {
	m.BroadcastToRoom(roomID, &Event{
		Type: "system",
		Data: map[string]string{"message": content},
	})
}

// addClient 安全地添加新的客戶端連接
func (m *WebSocketManager) addClient(client *Client) error {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if m.total >= m.maxConns {
		return errors.New("伺服器連接數已達上限")
	}

	if m.clients[client.RoomID] == nil {
		m.clients[client.RoomID] = make(map[*Client]bool)
	}
	m.clients[client.RoomID][client] = true
	m.total++
	return nil
}

// removeClient 安全地移除客戶端連接並關閉其事件通道
func (m *WebSocketManager) removeClient(client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if client.closed {
		return
	}
	client.closed = true
	if client.SendChan != nil {
		close(client.SendChan)
	}

	if clients, ok := m.clients[client.RoomID]; ok {
		if clients[client] {
			delete(clients, client)
			m.total--
		}
		// 如果房間空了，刪除房間
		if len(clients) == 0 {
			delete(m.clients, client.RoomID)
		}
	}
}

// GetRoomClients 獲取指定房間的在線客戶端數量
func (m *WebSocketManager) GetRoomClients(roomID string) int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return len(m.clients[roomID])
}

// TotalClients 獲取全服在線連接數
func (m *WebSocketManager) TotalClients() int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return m.total
}
