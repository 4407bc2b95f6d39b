package models

import (
	"time"
)

// UserRole 定義用戶角色的類型
type UserRole string

const (
	UserRolePlayer UserRole = "player" // 一般玩家
	UserRoleAdmin  UserRole = "admin"  // 管理員，可維護題庫與 AI 玩家
)

// User 表示系統中的用戶，包含帳號資訊與遊戲統計
type User struct {
	ID           string   `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username     string   `gorm:"uniqueIndex;type:varchar(50);not null" json:"username"` // 用戶名，必須唯一
	Email        string   `gorm:"uniqueIndex;type:varchar(100);not null" json:"email"`
	PasswordHash string   `gorm:"type:varchar(255);not null" json:"-"` // 密碼雜湊，json 序列化時會被忽略
	Role         UserRole `gorm:"type:varchar(20);not null;default:'player'" json:"role"`

	// 遊戲統計
	Score       int `gorm:"not null;default:0" json:"score"`
	GamesPlayed int `gorm:"not null;default:0" json:"games_played"`
	GamesWon    int `gorm:"not null;default:0" json:"games_won"`

	// 排行榜進階統計
	BestRank           *int       `json:"best_rank,omitempty"`                          // 歷史最佳排名
	TotalScoreEarned   int        `gorm:"not null;default:0" json:"total_score_earned"` // 累計獲得積分
	ConsecutiveWins    int        `gorm:"not null;default:0" json:"consecutive_wins"`   // 當前連勝次數
	MaxConsecutiveWins int        `gorm:"not null;default:0" json:"max_consecutive_wins"`
	LastGameAt         *time.Time `json:"last_game_at,omitempty"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// WinRate 計算勝率（百分比）
func (u *User) WinRate() float64 {
	if u.GamesPlayed == 0 {
		return 0
	}
	return float64(u.GamesWon) / float64(u.GamesPlayed) * 100
}
