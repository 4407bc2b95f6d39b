package repository

import (
	"undercover_web/internal/models"
	"undercover_web/internal/storage"
)

// WordPairFilters 是詞組查詢條件，零值代表不過濾
type WordPairFilters struct {
	Category   string
	Difficulty int
}

type WordPairRepository interface {
	Create(wp *models.WordPair) error
	FindByID(id string) (*models.WordPair, error)
	Update(wp *models.WordPair) error
	Delete(id string) error
	List(filters WordPairFilters) ([]models.WordPair, error)
	Count() (int64, error)
}

type wordPairRepository struct {
	db *storage.PostgresDB
}

func NewWordPairRepository(db *storage.PostgresDB) WordPairRepository {
	return &wordPairRepository{db: db}
}

func (r *wordPairRepository) Create(wp *models.WordPair) error {
	return r.db.Create(wp).Error
}

func (r *wordPairRepository) FindByID(id string) (*models.WordPair, error) {
	var wp models.WordPair
	if err := r.db.Where("id = ?", id).First(&wp).Error; err != nil {
		return nil, err
	}
	return &wp, nil
}

func (r *wordPairRepository) Update(wp *models.WordPair) error {
	return r.db.Save(wp).Error
}

func (r *wordPairRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.WordPair{}).Error
}

func (r *wordPairRepository) List(filters WordPairFilters) ([]models.WordPair, error) {
	query := r.db.Model(&models.WordPair{})
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Difficulty > 0 {
		query = query.Where("difficulty = ?", filters.Difficulty)
	}

	var pairs []models.WordPair
	err := query.Order("created_at DESC").Find(&pairs).Error
	return pairs, err
}

func (r *wordPairRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.WordPair{}).Count(&count).Error
	return count, err
}
