package repository

import (
	"time"

	"undercover_web/internal/models"
	"undercover_web/internal/storage"
)

// RoomFilters 是房間列表的查詢條件
type RoomFilters struct {
	Status   models.RoomStatus
	Page     int
	PageSize int
}

type RoomRepository interface {
	Create(room *models.Room) error
	FindByID(id string) (*models.Room, error)
	Update(room *models.Room) error
	Delete(id string) error
	FindAll(filters RoomFilters) ([]models.Room, int64, error)
	// FindIdleWaiting 找出等待狀態且閒置超過 cutoff 的房間
	FindIdleWaiting(cutoff time.Time) ([]models.Room, error)
}

type roomRepository struct {
	db *storage.PostgresDB
}

func NewRoomRepository(db *storage.PostgresDB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(room *models.Room) error {
	return r.db.Create(room).Error
}

func (r *roomRepository) FindByID(id string) (*models.Room, error) {
	var room models.Room
	err := r.db.Where("id = ?", id).First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) Update(room *models.Room) error {
	return r.db.Save(room).Error
}

func (r *roomRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Room{}).Error
}

func (r *roomRepository) FindAll(filters RoomFilters) ([]models.Room, int64, error) {
	query := r.db.Model(&models.Room{})
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var rooms []models.Room
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rooms).Error
	return rooms, total, err
}

func (r *roomRepository) FindIdleWaiting(cutoff time.Time) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.Where("status = ? AND updated_at < ?", models.RoomStatusWaiting, cutoff).
		Find(&rooms).Error
	return rooms, err
}
