package repository

import (
	"undercover_web/internal/models"
	"undercover_web/internal/storage"
)

type AIPlayerRepository interface {
	Create(ai *models.AIPlayer) error
	FindByID(id string) (*models.AIPlayer, error)
	FindByIDs(ids []string) ([]models.AIPlayer, error)
	Update(ai *models.AIPlayer) error
	Delete(id string) error
	ListActive() ([]models.AIPlayer, error)
	List() ([]models.AIPlayer, error)
}

type aiPlayerRepository struct {
	db *storage.PostgresDB
}

func NewAIPlayerRepository(db *storage.PostgresDB) AIPlayerRepository {
	return &aiPlayerRepository{db: db}
}

func (r *aiPlayerRepository) Create(ai *models.AIPlayer) error {
	return r.db.Create(ai).Error
}

func (r *aiPlayerRepository) FindByID(id string) (*models.AIPlayer, error) {
	var ai models.AIPlayer
	if err := r.db.Where("id = ?", id).First(&ai).Error; err != nil {
		return nil, err
	}
	return &ai, nil
}

func (r *aiPlayerRepository) FindByIDs(ids []string) ([]models.AIPlayer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ais []models.AIPlayer
	err := r.db.Where("id IN ?", ids).Find(&ais).Error
	return ais, err
}

func (r *aiPlayerRepository) Update(ai *models.AIPlayer) error {
	return r.db.Save(ai).Error
}

func (r *aiPlayerRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.AIPlayer{}).Error
}

func (r *aiPlayerRepository) ListActive() ([]models.AIPlayer, error) {
	var ais []models.AIPlayer
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&ais).Error
	return ais, err
}

func (r *aiPlayerRepository) List() ([]models.AIPlayer, error) {
	var ais []models.AIPlayer
	err := r.db.Order("name ASC").Find(&ais).Error
	return ais, err
}
