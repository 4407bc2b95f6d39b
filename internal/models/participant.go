package models

import (
	"time"
)

// Participant 統一存放真人與 AI 玩家的參賽記錄，
// 讓 speeches 與 votes 的外鍵可以指向同一張表
type Participant struct {
	ID     string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	GameID string `gorm:"type:varchar(36);not null;index" json:"game_id"`

	// 真人用戶 ID 或 AI 玩家 ID
	PlayerID string `gorm:"type:varchar(36);not null;index" json:"player_id"`
	Username string `gorm:"type:varchar(50);not null" json:"username"`
	IsAI     bool   `gorm:"not null;default:false" json:"is_ai"`

	// 遊戲內角色與詞彙
	Role PlayerRole `gorm:"type:varchar(20);not null" json:"role"`
	Word string     `gorm:"type:varchar(100);not null" json:"word"`

	IsAlive bool `gorm:"not null;default:true" json:"is_alive"`
	IsReady bool `gorm:"not null;default:true" json:"is_ready"`

	CreatedAt time.Time `json:"created_at"`
}
