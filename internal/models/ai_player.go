package models

import (
	"time"
)

// AIDifficulty 定義 AI 難度等級
type AIDifficulty string

const (
	AIDifficultyBeginner AIDifficulty = "beginner"
	AIDifficultyNormal   AIDifficulty = "normal"
	AIDifficultyExpert   AIDifficulty = "expert"
)

// AIPersonality 定義 AI 個性類型
type AIPersonality string

const (
	AIPersonalityCautious   AIPersonality = "cautious"   // 謹慎保守
	AIPersonalityAggressive AIPersonality = "aggressive" // 積極大膽
	AIPersonalityNormal     AIPersonality = "normal"     // 平衡
	AIPersonalityRandom     AIPersonality = "random"     // 不可預測
)

// AIPlayer 是 AI 玩家模板，由管理員建立與維護。
// 每個模板可以設定獨立的 LLM API 配置。
type AIPlayer struct {
	ID          string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string        `gorm:"type:varchar(50);not null" json:"name"`
	Difficulty  AIDifficulty  `gorm:"type:varchar(20);not null;default:'normal'" json:"difficulty"`
	Personality AIPersonality `gorm:"type:varchar(20);not null;default:'normal'" json:"personality"`

	// LLM API 設定，空值時使用全域預設
	APIBaseURL string `gorm:"type:varchar(500)" json:"api_base_url,omitempty"`
	APIKey     string `gorm:"type:varchar(500)" json:"-"`
	ModelName  string `gorm:"type:varchar(100)" json:"model_name,omitempty"`

	// 統計
	GamesPlayed   int `gorm:"not null;default:0" json:"games_played"`
	GamesWon      int `gorm:"not null;default:0" json:"games_won"`
	TotalSpeeches int `gorm:"not null;default:0" json:"total_speeches"`
	TotalVotes    int `gorm:"not null;default:0" json:"total_votes"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WinRate 計算 AI 勝率（百分比）
func (a *AIPlayer) WinRate() float64 {
	if a.GamesPlayed == 0 {
		return 0
	}
	return float64(a.GamesWon) / float64(a.GamesPlayed) * 100
}
