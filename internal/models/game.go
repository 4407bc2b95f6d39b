package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// GamePhase 定義遊戲階段的類型
type GamePhase string

const (
	PhasePreparing GamePhase = "preparing" // 準備中
	PhaseSpeaking  GamePhase = "speaking"  // 發言階段
	PhaseVoting    GamePhase = "voting"    // 投票階段
	PhaseResult    GamePhase = "result"    // 結果揭曉
	PhaseFinished  GamePhase = "finished"  // 遊戲結束
)

// PlayerRole 定義玩家角色的類型
type PlayerRole string

const (
	RoleCivilian   PlayerRole = "civilian"   // 平民
	RoleUndercover PlayerRole = "undercover" // 臥底
)

// GamePlayer 是遊戲狀態中的玩家快照，真人與 AI 共用同一結構
type GamePlayer struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Role     PlayerRole `json:"role"`
	Word     string     `json:"word"`
	IsAI     bool       `json:"is_ai"`
	IsAlive  bool       `json:"is_alive"`
	IsReady  bool       `json:"is_ready"`
}

// GamePlayerList 以 jsonb 形式存放玩家快照列表
type GamePlayerList []GamePlayer

func (l GamePlayerList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *GamePlayerList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Game 表示一局遊戲的完整狀態
type Game struct {
	ID         string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RoomID     string `gorm:"type:varchar(36);not null;index" json:"room_id"`
	WordPairID string `gorm:"type:varchar(36);not null" json:"word_pair_id"`

	// 遊戲進度
	CurrentPhase   GamePhase  `gorm:"type:varchar(20);not null;default:'preparing'" json:"current_phase"`
	CurrentSpeaker string     `gorm:"type:varchar(36)" json:"current_speaker,omitempty"`
	CurrentVoter   string     `gorm:"type:varchar(36)" json:"current_voter,omitempty"`
	RoundNumber    int        `gorm:"not null;default:1" json:"round_number"`
	TurnDeadline   *time.Time `json:"turn_deadline,omitempty"` // 當前行動者的時限

	// 玩家快照與淘汰記錄，淘汰列表按輪次順序排列
	Players           GamePlayerList `gorm:"type:jsonb;not null" json:"players"`
	EliminatedPlayers GamePlayerList `gorm:"type:jsonb" json:"eliminated_players"`

	// 勝負結果
	WinnerRole    PlayerRole `gorm:"type:varchar(20)" json:"winner_role,omitempty"`
	WinnerPlayers StringList `gorm:"type:jsonb" json:"winner_players,omitempty"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// FindPlayer 依玩家 ID 取得玩家快照，找不到時回傳 nil
func (g *Game) FindPlayer(playerID string) *GamePlayer {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return &g.Players[i]
		}
	}
	return nil
}

// AlivePlayers 回傳仍然存活的玩家，順序與加入順序一致
func (g *Game) AlivePlayers() []GamePlayer {
	alive := make([]GamePlayer, 0, len(g.Players))
	for _, p := range g.Players {
		if p.IsAlive {
			alive = append(alive, p)
		}
	}
	return alive
}

// CivilianCount 回傳存活的平民人數
func (g *Game) CivilianCount() int {
	count := 0
	for _, p := range g.AlivePlayers() {
		if p.Role == RoleCivilian {
			count++
		}
	}
	return count
}

// UndercoverCount 回傳存活的臥底人數
func (g *Game) UndercoverCount() int {
	count := 0
	for _, p := range g.AlivePlayers() {
		if p.Role == RoleUndercover {
			count++
		}
	}
	return count
}

// IsGameOver 判斷勝負是否已定：
// 臥底全滅則平民勝，臥底人數達到平民人數則臥底勝
func (g *Game) IsGameOver() bool {
	return g.UndercoverCount() == 0 || g.UndercoverCount() >= g.CivilianCount()
}

// Speech 表示一條玩家發言記錄
type Speech struct {
	ID            string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	GameID        string `gorm:"type:varchar(36);not null;index" json:"game_id"`
	ParticipantID string `gorm:"type:varchar(36);not null;index" json:"participant_id"`

	Content     string `gorm:"type:text;not null" json:"content"`
	RoundNumber int    `gorm:"not null" json:"round_number"`
	SpeechOrder int    `gorm:"not null" json:"speech_order"`

	CreatedAt time.Time `json:"created_at"`
}

// Vote 表示一條投票記錄，voter 與 target 均指向 participants 表
type Vote struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	GameID   string `gorm:"type:varchar(36);not null;index" json:"game_id"`
	VoterID  string `gorm:"type:varchar(36);not null" json:"voter_id"`
	TargetID string `gorm:"type:varchar(36);not null" json:"target_id"`

	RoundNumber int `gorm:"not null" json:"round_number"`

	CreatedAt time.Time `json:"created_at"`
}
