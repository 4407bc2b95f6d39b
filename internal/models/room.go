package models

import (
	"time"
)

// RoomStatus 定義房間狀態的類型
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusStarting RoomStatus = "starting"
	RoomStatusPlaying  RoomStatus = "playing"
	RoomStatusFinished RoomStatus = "finished"
)

// Room 表示一個遊戲房間
type Room struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	CreatorID string `gorm:"type:varchar(36);not null;index" json:"creator_id"`

	// 房間設定
	MaxPlayers int        `gorm:"not null;default:4" json:"max_players"`
	AICount    int        `gorm:"not null;default:0" json:"ai_count"`
	Password   string     `gorm:"type:varchar(50)" json:"-"` // 房間密碼（可選）
	Status     RoomStatus `gorm:"type:varchar(20);not null;default:'waiting'" json:"status"`

	// 其他設定（含 AI 模板 ID 列表）
	Settings JSONMap `gorm:"type:jsonb" json:"settings,omitempty"`

	// 目前房間內的真人玩家 ID 列表
	CurrentPlayers StringList `gorm:"type:jsonb;not null" json:"current_players"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlayerCount 回傳目前真人玩家數
func (r *Room) PlayerCount() int {
	return len(r.CurrentPlayers)
}

// TotalCount 回傳真人加 AI 的總人數
func (r *Room) TotalCount() int {
	return r.PlayerCount() + r.AICount
}

// IsFull 檢查房間是否已滿
func (r *Room) IsFull() bool {
	return r.TotalCount() >= r.MaxPlayers
}

// CanStartGame 檢查是否達到開局人數（至少 3 人）且仍在等待狀態
func (r *Room) CanStartGame() bool {
	return r.TotalCount() >= 3 && r.Status == RoomStatusWaiting
}

// HasPlayer 檢查指定用戶是否在房間中
func (r *Room) HasPlayer(userID string) bool {
	for _, id := range r.CurrentPlayers {
		if id == userID {
			return true
		}
	}
	return false
}

// AITemplateIDs 從房間設定取出 AI 模板 ID 列表
func (r *Room) AITemplateIDs() []string {
	if r.Settings == nil {
		return nil
	}
	raw, ok := r.Settings["ai_template_ids"]
	if !ok {
		return nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids
}
