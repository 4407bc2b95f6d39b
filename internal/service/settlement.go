package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"undercover_web/internal/models"
	"undercover_web/internal/repository"
	"undercover_web/internal/storage"
)

const (
	settlementLogKey = "settlement_log:%s"
	settlementLogTTL = 24 * time.Hour

	winBasePoints  = 10
	lossBasePoints = -5
	maxPerformance = 8
)

// SettlementResult 是單一玩家的結算明細
type SettlementResult struct {
	PlayerID         string `json:"player_id"`
	Username         string `json:"username"`
	Won              bool   `json:"won"`
	BasePoints       int    `json:"base_points"`
	PerformanceBonus int    `json:"performance_bonus"`
	StreakBonus      int    `json:"streak_bonus"`
	Total            int    `json:"total"`
	NewScore         int    `json:"new_score"`
	ConsecutiveWins  int    `json:"consecutive_wins"`
}

// SettlementService 負責遊戲結束後的積分結算
type SettlementService struct {
	userRepo     repository.UserRepository
	aiPlayerRepo repository.AIPlayerRepository
	gameRepo     repository.GameRepository
	redis        *storage.RedisClient
	leaderboard  *LeaderboardService
}

func NewSettlementService(
	userRepo repository.UserRepository,
	aiPlayerRepo repository.AIPlayerRepository,
	gameRepo repository.GameRepository,
	redis *storage.RedisClient,
	leaderboard *LeaderboardService,
) *SettlementService {
	return &SettlementService{
		userRepo:     userRepo,
		aiPlayerRepo: aiPlayerRepo,
		gameRepo:     gameRepo,
		redis:        redis,
		leaderboard:  leaderboard,
	}
}

// SettleGame 計算並套用所有真人玩家的積分變化。
// 單一玩家結算失敗只記錄日誌，不影響其他玩家與遊戲結束流程
func (s *SettlementService) SettleGame(game *models.Game) ([]SettlementResult, error) {
	speeches, err := s.gameRepo.ListSpeeches(game.ID)
	if err != nil {
		log.Printf("settlement: list speeches failed: %v", err)
		speeches = nil
	}
	votes, err := s.gameRepo.ListVotes(game.ID)
	if err != nil {
		log.Printf("settlement: list votes failed: %v", err)
		votes = nil
	}
	participants, err := s.gameRepo.ListParticipants(game.ID)
	if err != nil {
		log.Printf("settlement: list participants failed: %v", err)
		participants = nil
	}

	speechStats := collectSpeechStats(speeches, votes, participants)
	winners := make(map[string]bool, len(game.WinnerPlayers))
	for _, id := range game.WinnerPlayers {
		winners[id] = true
	}

	var results []SettlementResult
	for i := range game.Players {
		p := &game.Players[i]
		if p.IsAI {
			s.updateAIStats(p.ID, winners[p.ID], speechStats[p.ID])
			continue
		}

		result, err := s.settlePlayer(game, p, winners[p.ID], speechStats[p.ID])
		if err != nil {
			log.Printf("settlement: player %s failed: %v", p.ID, err)
			continue
		}
		results = append(results, *result)
	}

	s.storeLog(game.ID, results)
	s.leaderboard.InvalidateCache()
	return results, nil
}

type playerSpeechStats struct {
	Count       int
	TotalLength int
	Votes       int
}

func collectSpeechStats(speeches []models.Speech, votes []models.Vote, participants []models.Participant) map[string]playerSpeechStats {
	byParticipant := make(map[string]string, len(participants))
	for i := range participants {
		byParticipant[participants[i].ID] = participants[i].PlayerID
	}

	stats := make(map[string]playerSpeechStats)
	for i := range speeches {
		playerID, ok := byParticipant[speeches[i].ParticipantID]
		if !ok {
			continue
		}
		st := stats[playerID]
		st.Count++
		st.TotalLength += len([]rune(speeches[i].Content))
		stats[playerID] = st
	}
	for i := range votes {
		playerID, ok := byParticipant[votes[i].VoterID]
		if !ok {
			continue
		}
		st := stats[playerID]
		st.Votes++
		stats[playerID] = st
	}
	return stats
}

func (s *SettlementService) settlePlayer(game *models.Game, p *models.GamePlayer, won bool, stats playerSpeechStats) (*SettlementResult, error) {
	user, err := s.userRepo.FindByID(p.ID)
	if err != nil {
		return nil, err
	}

	base := lossBasePoints
	if won {
		base = winBasePoints
	}

	performance := performanceBonus(stats, roundsSurvived(game, p.ID))

	if won {
		user.ConsecutiveWins++
		if user.ConsecutiveWins > user.MaxConsecutiveWins {
			user.MaxConsecutiveWins = user.ConsecutiveWins
		}
	} else {
		user.ConsecutiveWins = 0
	}
	streak := streakBonus(user.ConsecutiveWins)

	total := base + performance + streak
	user.Score += total
	// 總積分不低於零
	if user.Score < 0 {
		user.Score = 0
	}

	user.GamesPlayed++
	if won {
		user.GamesWon++
	}
	if total > 0 {
		user.TotalScoreEarned += total
	}
	now := time.Now()
	user.LastGameAt = &now

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return &SettlementResult{
		PlayerID:         p.ID,
		Username:         p.Username,
		Won:              won,
		BasePoints:       base,
		PerformanceBonus: performance,
		StreakBonus:      streak,
		Total:            total,
		NewScore:         user.Score,
		ConsecutiveWins:  user.ConsecutiveWins,
	}, nil
}

// performanceBonus 由發言表現與存活輪數組成，上限 8 分
func performanceBonus(stats playerSpeechStats, rounds int) int {
	bonus := 0
	switch {
	case stats.Count >= 3:
		bonus += 3
	case stats.Count >= 2:
		bonus += 2
	case stats.Count >= 1:
		bonus++
	}

	if stats.Count > 0 {
		avg := stats.TotalLength / stats.Count
		switch {
		case avg >= 50:
			bonus += 2
		case avg >= 30:
			bonus++
		}
	}

	survival := rounds / 2
	if survival > 3 {
		survival = 3
	}
	bonus += survival

	if bonus > maxPerformance {
		bonus = maxPerformance
	}
	return bonus
}

// streakBonus 連勝獎勵：兩連勝起跳，五連勝以上封頂
func streakBonus(streak int) int {
	switch {
	case streak >= 5:
		return 5
	case streak == 4:
		return 3
	case streak == 3:
		return 2
	case streak == 2:
		return 1
	default:
		return 0
	}
}

// roundsSurvived 計算玩家存活的輪數，被淘汰者以淘汰輪次計
func roundsSurvived(game *models.Game, playerID string) int {
	for i := range game.EliminatedPlayers {
		if game.EliminatedPlayers[i].ID == playerID {
			return i + 1
		}
	}
	return game.RoundNumber
}

func (s *SettlementService) updateAIStats(aiID string, won bool, stats playerSpeechStats) {
	ai, err := s.aiPlayerRepo.FindByID(aiID)
	if err != nil {
		return
	}
	ai.GamesPlayed++
	if won {
		ai.GamesWon++
	}
	ai.TotalSpeeches += stats.Count
	ai.TotalVotes += stats.Votes
	if err := s.aiPlayerRepo.Update(ai); err != nil {
		log.Printf("settlement: update ai %s failed: %v", aiID, err)
	}
}

func (s *SettlementService) storeLog(gameID string, results []SettlementResult) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	key := fmt.Sprintf(settlementLogKey, gameID)
	if err := s.redis.Set(context.Background(), key, data, settlementLogTTL).Err(); err != nil {
		log.Printf("settlement: store log failed: %v", err)
	}
}

// GetSettlementLog 讀取某場遊戲的結算明細
func (s *SettlementService) GetSettlementLog(gameID string) ([]SettlementResult, error) {
	key := fmt.Sprintf(settlementLogKey, gameID)
	data, err := s.redis.Get(context.Background(), key).Bytes()
	if err != nil {
		if storage.IsNil(err) {
			return nil, nil
		}
		return nil, err
	}
	var results []SettlementResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, err
	}
	return results, nil
}
