package repository

import (
	"undercover_web/internal/models"
	"undercover_web/internal/storage"
)

type UserRepository interface {
	Create(user *models.User) error
	FindByID(id string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByIDs(ids []string) ([]models.User, error)
	Update(user *models.User) error
	// 排行榜查詢
	ListByScore(offset, limit int) ([]models.User, error)
	CountActive() (int64, error)
	CountScoreAbove(score int) (int64, error)
}

type userRepository struct {
	db *storage.PostgresDB
}

func NewUserRepository(db *storage.PostgresDB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ids []string) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// ListByScore 依積分由高到低取得啟用中的用戶
func (r *userRepository) ListByScore(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("is_active = ?", true).
		Order("score DESC, games_won DESC, username ASC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *userRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

// CountScoreAbove 計算積分高於指定值的用戶數，用於推算排名
func (r *userRepository) CountScoreAbove(score int) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("is_active = ? AND score > ?", true, score).
		Count(&count).Error
	return count, err
}
