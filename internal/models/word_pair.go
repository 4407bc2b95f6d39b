package models

import (
	"time"
)

// WordPair 表示一組遊戲詞彙：平民詞與臥底詞相近但不同
type WordPair struct {
	ID             string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CivilianWord   string `gorm:"type:varchar(50);not null" json:"civilian_word"`
	UndercoverWord string `gorm:"type:varchar(50);not null" json:"undercover_word"`
	Category       string `gorm:"type:varchar(50);not null" json:"category"`
	Difficulty     int    `gorm:"not null;default:1" json:"difficulty"` // 1-5 難度等級

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WordForRole 依角色回傳對應的詞彙
func (w *WordPair) WordForRole(role PlayerRole) string {
	if role == RoleUndercover {
		return w.UndercoverWord
	}
	return w.CivilianWord
}
