package service

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"undercover_web/internal/models"
	"undercover_web/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUser 創建新用戶，用戶名與信箱不可重複
func (s *UserService) CreateUser(user *models.User) error {
	if existing, _ := s.userRepo.FindByUsername(user.Username); existing != nil {
		return errors.New("用戶名已被使用")
	}
	if user.Email != "" {
		if existing, _ := s.userRepo.FindByEmail(user.Email); existing != nil {
			return errors.New("信箱已被使用")
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.UserRolePlayer
	}
	user.IsActive = true
	return s.userRepo.Create(user)
}

// TouchLastLogin 更新最後登入時間，失敗只記錄日誌
func (s *UserService) TouchLastLogin(user *models.User) {
	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(user); err != nil {
		log.Printf("update last login failed: %v", err)
	}
}

func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	return s.userRepo.FindByUsername(username)
}

func (s *UserService) GetUserByID(id string) (*models.User, error) {
	return s.userRepo.FindByID(id)
}

// GetUsersByIDs 批次查詢用戶，回傳以 ID 為鍵的 map
func (s *UserService) GetUsersByIDs(ids []string) (map[string]*models.User, error) {
	users, err := s.userRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	result := make(map[string]*models.User, len(users))
	for i := range users {
		result[users[i].ID] = &users[i]
	}
	return result, nil
}
