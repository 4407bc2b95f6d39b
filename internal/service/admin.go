package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"undercover_web/internal/models"
	"undercover_web/internal/repository"
)

// AdminService 管理題庫詞組與 AI 玩家設定
type AdminService struct {
	wordPairRepo repository.WordPairRepository
	aiPlayerRepo repository.AIPlayerRepository
}

func NewAdminService(wordPairRepo repository.WordPairRepository, aiPlayerRepo repository.AIPlayerRepository) *AdminService {
	return &AdminService{wordPairRepo: wordPairRepo, aiPlayerRepo: aiPlayerRepo}
}

// CreateWordPair 新增一組詞語，平民詞與臥底詞不能相同
func (s *AdminService) CreateWordPair(wp *models.WordPair) error {
	if wp.CivilianWord == "" || wp.UndercoverWord == "" {
		return errors.New("詞語不能為空")
	}
	if wp.CivilianWord == wp.UndercoverWord {
		return errors.New("平民詞與臥底詞不能相同")
	}
	if wp.Difficulty < 1 || wp.Difficulty > 5 {
		return errors.New("難度必須在 1 到 5 之間")
	}
	if wp.ID == "" {
		wp.ID = uuid.NewString()
	}
	return s.wordPairRepo.Create(wp)
}

// BulkCreateWordPairs 批次匯入詞組，逐筆驗證，回傳成功數與失敗原因
func (s *AdminService) BulkCreateWordPairs(pairs []*models.WordPair) (int, []string) {
	created := 0
	var failed []string
	for i, wp := range pairs {
		if err := s.CreateWordPair(wp); err != nil {
			failed = append(failed, fmt.Sprintf("第 %d 筆: %s", i+1, err.Error()))
			continue
		}
		created++
	}
	return created, failed
}

func (s *AdminService) GetWordPair(id string) (*models.WordPair, error) {
	return s.wordPairRepo.FindByID(id)
}

func (s *AdminService) ListWordPairs(category string, difficulty int) ([]models.WordPair, error) {
	return s.wordPairRepo.List(repository.WordPairFilters{
		Category:   category,
		Difficulty: difficulty,
	})
}

func (s *AdminService) UpdateWordPair(wp *models.WordPair) error {
	if wp.CivilianWord == wp.UndercoverWord {
		return errors.New("平民詞與臥底詞不能相同")
	}
	return s.wordPairRepo.Update(wp)
}

func (s *AdminService) DeleteWordPair(id string) error {
	return s.wordPairRepo.Delete(id)
}

// CreateAIPlayer 新增 AI 玩家模板
func (s *AdminService) CreateAIPlayer(ai *models.AIPlayer) error {
	if ai.Name == "" {
		return errors.New("AI 名稱不能為空")
	}
	if ai.Difficulty == "" {
		ai.Difficulty = models.AIDifficultyNormal
	}
	if ai.Personality == "" {
		ai.Personality = models.AIPersonalityNormal
	}
	if ai.ID == "" {
		ai.ID = uuid.NewString()
	}
	ai.IsActive = true
	return s.aiPlayerRepo.Create(ai)
}

func (s *AdminService) GetAIPlayer(id string) (*models.AIPlayer, error) {
	return s.aiPlayerRepo.FindByID(id)
}

func (s *AdminService) ListAIPlayers(onlyActive bool) ([]models.AIPlayer, error) {
	if onlyActive {
		return s.aiPlayerRepo.ListActive()
	}
	return s.aiPlayerRepo.List()
}

func (s *AdminService) UpdateAIPlayer(ai *models.AIPlayer) error {
	return s.aiPlayerRepo.Update(ai)
}

func (s *AdminService) DeleteAIPlayer(id string) error {
	return s.aiPlayerRepo.Delete(id)
}

// ResetAIPlayerStats 將 AI 玩家的對局統計歸零
func (s *AdminService) ResetAIPlayerStats(id string) (*models.AIPlayer, error) {
	ai, err := s.aiPlayerRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	ai.GamesPlayed = 0
	ai.GamesWon = 0
	ai.TotalSpeeches = 0
	ai.TotalVotes = 0
	if err := s.aiPlayerRepo.Update(ai); err != nil {
		return nil, err
	}
	return ai, nil
}
