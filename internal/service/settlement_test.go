package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"undercover_web/internal/models"
)

func TestPerformanceBonus(t *testing.T) {
	tests := []struct {
		name   string
		stats  playerSpeechStats
		rounds int
		want   int
	}{
		{"沒有發言沒有存活", playerSpeechStats{}, 0, 0},
		{"一次發言", playerSpeechStats{Count: 1, TotalLength: 10}, 0, 1},
		{"兩次發言", playerSpeechStats{Count: 2, TotalLength: 20}, 0, 2},
		{"三次發言", playerSpeechStats{Count: 3, TotalLength: 30}, 0, 3},
		{"發言平均長度過三十", playerSpeechStats{Count: 2, TotalLength: 70}, 0, 3},
		{"發言平均長度過五十", playerSpeechStats{Count: 2, TotalLength: 120}, 0, 4},
		{"存活輪數加分", playerSpeechStats{}, 4, 2},
		{"存活加分封頂三分", playerSpeechStats{}, 20, 3},
		{"總分封頂八分", playerSpeechStats{Count: 5, TotalLength: 500}, 20, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, performanceBonus(tt.stats, tt.rounds))
		})
	}
}

func TestStreakBonus(t *testing.T) {
	tests := []struct {
		streak int
		want   int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 3},
		{5, 5},
		{9, 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, streakBonus(tt.streak), "streak=%d", tt.streak)
	}
}

func TestRoundsSurvived(t *testing.T) {
	game := &models.Game{
		RoundNumber: 3,
		EliminatedPlayers: models.GamePlayerList{
			{ID: "a"}, // 第一輪被淘汰
			{ID: "b"}, // 第二輪被淘汰
		},
	}

	assert.Equal(t, 1, roundsSurvived(game, "a"))
	assert.Equal(t, 2, roundsSurvived(game, "b"))
	// 存活到最後的玩家以當前輪數計
	assert.Equal(t, 3, roundsSurvived(game, "c"))
}

func TestCollectSpeechStats(t *testing.T) {
	participants := []models.Participant{
		{ID: "p1", PlayerID: "a"},
		{ID: "p2", PlayerID: "b"},
	}
	speeches := []models.Speech{
		{ParticipantID: "p1", Content: "我的詞是一種水果"},
		{ParticipantID: "p1", Content: "甜的"},
	}
	votes := []models.Vote{
		{VoterID: "p1"},
		{VoterID: "p2"},
		{VoterID: "p2"},
	}

	stats := collectSpeechStats(speeches, votes, participants)

	assert.Equal(t, 2, stats["a"].Count)
	// 長度以字元計，不是位元組
	assert.Equal(t, 10, stats["a"].TotalLength)
	assert.Equal(t, 1, stats["a"].Votes)
	assert.Equal(t, 2, stats["b"].Votes)
}

func TestSettlePlayerScoreFloor(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.Create(&models.User{ID: "u1", Username: "小明", Score: 2, IsActive: true})

	s := &SettlementService{userRepo: userRepo}
	game := &models.Game{RoundNumber: 1}
	player := &models.GamePlayer{ID: "u1", Username: "小明"}

	result, err := s.settlePlayer(game, player, false, playerSpeechStats{})
	assert.NoError(t, err)

	// 2 - 5 會變負數，最終積分落在零
	assert.Equal(t, lossBasePoints, result.Total)
	assert.Equal(t, 0, result.NewScore)

	updated, _ := userRepo.FindByID("u1")
	assert.Equal(t, 0, updated.Score)
	assert.Equal(t, 1, updated.GamesPlayed)
	assert.Equal(t, 0, updated.ConsecutiveWins)
}

func TestSettlePlayerWinStreak(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.Create(&models.User{ID: "u1", Username: "小美", ConsecutiveWins: 1, IsActive: true})

	s := &SettlementService{userRepo: userRepo}
	game := &models.Game{RoundNumber: 2}
	player := &models.GamePlayer{ID: "u1", Username: "小美"}

	result, err := s.settlePlayer(game, player, true, playerSpeechStats{Count: 2, TotalLength: 60})
	assert.NoError(t, err)

	assert.True(t, result.Won)
	assert.Equal(t, winBasePoints, result.BasePoints)
	// 兩連勝獎勵一分
	assert.Equal(t, 1, result.StreakBonus)
	assert.Equal(t, 2, result.ConsecutiveWins)

	updated, _ := userRepo.FindByID("u1")
	assert.Equal(t, 1, updated.GamesWon)
	assert.Equal(t, 2, updated.MaxConsecutiveWins)
	assert.NotNil(t, updated.LastGameAt)
}
