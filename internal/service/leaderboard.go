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
	leaderboardCacheKey    = "leaderboard:%d:%d"
	leaderboardCachePrefix = "leaderboard:*"
	leaderboardCacheTTL    = 5 * time.Minute

	recentGamesWindow = 10
)

// LeaderboardEntry 是排行榜上的一列
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	Score       int     `json:"score"`
	GamesPlayed int     `json:"games_played"`
	GamesWon    int     `json:"games_won"`
	WinRate     float64 `json:"win_rate"`
}

// LeaderboardPage 是分頁後的排行榜結果
type LeaderboardPage struct {
	Entries  []LeaderboardEntry `json:"entries"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// RecentGameResult 是最近一場對局的勝負摘要
type RecentGameResult struct {
	GameID     string     `json:"game_id"`
	Won        bool       `json:"won"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// PersonalStats 是玩家的個人戰績
type PersonalStats struct {
	UserID             string             `json:"user_id"`
	Username           string             `json:"username"`
	Score              int                `json:"score"`
	Rank               int                `json:"rank"`
	BestRank           *int               `json:"best_rank,omitempty"`
	GamesPlayed        int                `json:"games_played"`
	GamesWon           int                `json:"games_won"`
	WinRate            float64            `json:"win_rate"`
	ConsecutiveWins    int                `json:"consecutive_wins"`
	MaxConsecutiveWins int                `json:"max_consecutive_wins"`
	TotalScoreEarned   int                `json:"total_score_earned"`
	RecentGames        []RecentGameResult `json:"recent_games,omitempty"`
}

type LeaderboardService struct {
	userRepo repository.UserRepository
	gameRepo repository.GameRepository
	redis    *storage.RedisClient
}

func NewLeaderboardService(userRepo repository.UserRepository, gameRepo repository.GameRepository, redis *storage.RedisClient) *LeaderboardService {
	return &LeaderboardService{userRepo: userRepo, gameRepo: gameRepo, redis: redis}
}

// GetLeaderboard 取得排行榜分頁，結果有五分鐘快取
func (s *LeaderboardService) GetLeaderboard(page, pageSize int) (*LeaderboardPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	key := fmt.Sprintf(leaderboardCacheKey, page, pageSize)
	if s.redis != nil {
		if data, err := s.redis.Get(context.Background(), key).Bytes(); err == nil {
			var cached LeaderboardPage
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	total, err := s.userRepo.CountActive()
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.ListByScore((page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	result := &LeaderboardPage{
		Entries:  make([]LeaderboardEntry, 0, len(users)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for i := range users {
		u := &users[i]
		result.Entries = append(result.Entries, LeaderboardEntry{
			Rank:        (page-1)*pageSize + i + 1,
			UserID:      u.ID,
			Username:    u.Username,
			Score:       u.Score,
			GamesPlayed: u.GamesPlayed,
			GamesWon:    u.GamesWon,
			WinRate:     u.WinRate(),
		})
	}

	if s.redis != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := s.redis.Set(context.Background(), key, data, leaderboardCacheTTL).Err(); err != nil {
				log.Printf("cache leaderboard failed: %v", err)
			}
		}
	}
	return result, nil
}

// GetUserRank 計算玩家當前名次，並順手更新歷史最佳名次
func (s *LeaderboardService) GetUserRank(user *models.User) (int, error) {
	above, err := s.userRepo.CountScoreAbove(user.Score)
	if err != nil {
		return 0, err
	}
	rank := int(above) + 1

	if user.BestRank == nil || rank < *user.BestRank {
		best := rank
		user.BestRank = &best
		if err := s.userRepo.Update(user); err != nil {
			log.Printf("update best rank failed: %v", err)
		}
	}
	return rank, nil
}

// GetPersonalStats 取得玩家個人戰績
func (s *LeaderboardService) GetPersonalStats(userID string) (*PersonalStats, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	rank, err := s.GetUserRank(user)
	if err != nil {
		return nil, err
	}

	stats := &PersonalStats{
		UserID:             user.ID,
		Username:           user.Username,
		Score:              user.Score,
		Rank:               rank,
		BestRank:           user.BestRank,
		GamesPlayed:        user.GamesPlayed,
		GamesWon:           user.GamesWon,
		WinRate:            user.WinRate(),
		ConsecutiveWins:    user.ConsecutiveWins,
		MaxConsecutiveWins: user.MaxConsecutiveWins,
		TotalScoreEarned:   user.TotalScoreEarned,
	}

	// 最近戰績查詢失敗不影響基本統計
	games, err := s.gameRepo.FindRecentFinishedByPlayer(userID, recentGamesWindow)
	if err != nil {
		log.Printf("list recent games for %s failed: %v", userID, err)
		return stats, nil
	}
	for i := range games {
		g := &games[i]
		won := false
		for _, id := range g.WinnerPlayers {
			if id == userID {
				won = true
				break
			}
		}
		stats.RecentGames = append(stats.RecentGames, RecentGameResult{
			GameID:     g.ID,
			Won:        won,
			FinishedAt: g.FinishedAt,
		})
	}
	return stats, nil
}

// InvalidateCache 清掉排行榜快取，結算後呼叫
func (s *LeaderboardService) InvalidateCache() {
	if s.redis == nil {
		return
	}
	ctx := context.Background()
	keys, err := s.redis.Keys(ctx, leaderboardCachePrefix).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		log.Printf("invalidate leaderboard cache failed: %v", err)
	}
}
