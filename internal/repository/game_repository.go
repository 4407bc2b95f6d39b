package repository

import (
	"undercover_web/internal/models"
	"undercover_web/internal/storage"

	"gorm.io/gorm"
)

type GameRepository interface {
	Create(game *models.Game) error
	FindByID(id string) (*models.Game, error)
	Update(game *models.Game) error
	FindByRoom(roomID string) ([]models.Game, error)
	FindActiveByRoom(roomID string) (*models.Game, error)
	// FindRecentFinishedByPlayer 查詢玩家最近結束的對局，用於連勝計算
	FindRecentFinishedByPlayer(playerID string, limit int) ([]models.Game, error)
	// DeleteGameData 刪除一場遊戲及其所有關聯紀錄
	DeleteGameData(gameID string) error

	CreateParticipant(p *models.Participant) error
	FindParticipant(gameID, playerID string) (*models.Participant, error)
	ListParticipants(gameID string) ([]models.Participant, error)
	UpdateParticipant(p *models.Participant) error

	CreateSpeech(s *models.Speech) error
	ListSpeeches(gameID string) ([]models.Speech, error)
	ListSpeechesByRound(gameID string, round int) ([]models.Speech, error)
	MaxSpeechOrder(gameID string, round int) (int, error)

	CreateVote(v *models.Vote) error
	FindVote(gameID, voterID string, round int) (*models.Vote, error)
	UpdateVote(v *models.Vote) error
	ListVotes(gameID string) ([]models.Vote, error)
	ListVotesByRound(gameID string, round int) ([]models.Vote, error)
}

type gameRepository struct {
	db *storage.PostgresDB
}

func NewGameRepository(db *storage.PostgresDB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) Create(game *models.Game) error {
	return r.db.Create(game).Error
}

func (r *gameRepository) FindByID(id string) (*models.Game, error) {
	var game models.Game
	if err := r.db.Where("id = ?", id).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) Update(game *models.Game) error {
	return r.db.Save(game).Error
}

func (r *gameRepository) FindByRoom(roomID string) ([]models.Game, error) {
	var games []models.Game
	err := r.db.Where("room_id = ?", roomID).Order("created_at DESC").Find(&games).Error
	return games, err
}

func (r *gameRepository) FindActiveByRoom(roomID string) (*models.Game, error) {
	var game models.Game
	err := r.db.Where("room_id = ? AND current_phase <> ?", roomID, models.PhaseFinished).
		Order("created_at DESC").First(&game).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) FindRecentFinishedByPlayer(playerID string, limit int) ([]models.Game, error) {
	var games []models.Game
	err := r.db.Where("current_phase = ? AND players::text LIKE ?",
		models.PhaseFinished, "%"+playerID+"%").
		Order("finished_at DESC").Limit(limit).
		Find(&games).Error
	return games, err
}

func (r *gameRepository) DeleteGameData(gameID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", gameID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", gameID).Delete(&models.Speech{}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", gameID).Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", gameID).Delete(&models.Game{}).Error
	})
}

func (r *gameRepository) CreateParticipant(p *models.Participant) error {
	return r.db.Create(p).Error
}

func (r *gameRepository) FindParticipant(gameID, playerID string) (*models.Participant, error) {
	var p models.Participant
	err := r.db.Where("game_id = ? AND player_id = ?", gameID, playerID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gameRepository) ListParticipants(gameID string) ([]models.Participant, error) {
	var ps []models.Participant
	err := r.db.Where("game_id = ?", gameID).Order("created_at ASC").Find(&ps).Error
	return ps, err
}

func (r *gameRepository) UpdateParticipant(p *models.Participant) error {
	return r.db.Save(p).Error
}

func (r *gameRepository) CreateSpeech(s *models.Speech) error {
	return r.db.Create(s).Error
}

func (r *gameRepository) ListSpeeches(gameID string) ([]models.Speech, error) {
	var speeches []models.Speech
	err := r.db.Where("game_id = ?", gameID).
		Order("round_number ASC, speech_order ASC").Find(&speeches).Error
	return speeches, err
}

func (r *gameRepository) ListSpeechesByRound(gameID string, round int) ([]models.Speech, error) {
	var speeches []models.Speech
	err := r.db.Where("game_id = ? AND round_number = ?", gameID, round).
		Order("speech_order ASC").Find(&speeches).Error
	return speeches, err
}

func (r *gameRepository) MaxSpeechOrder(gameID string, round int) (int, error) {
	var max int
	err := r.db.Model(&models.Speech{}).
		Where("game_id = ? AND round_number = ?", gameID, round).
		Select("COALESCE(MAX(speech_order), 0)").Scan(&max).Error
	return max, err
}

func (r *gameRepository) CreateVote(v *models.Vote) error {
	return r.db.Create(v).Error
}

func (r *gameRepository) FindVote(gameID, voterID string, round int) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.Where("game_id = ? AND voter_id = ? AND round_number = ?",
		gameID, voterID, round).First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *gameRepository) UpdateVote(v *models.Vote) error {
	return r.db.Save(v).Error
}

func (r *gameRepository) ListVotes(gameID string) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.Where("game_id = ?", gameID).
		Order("round_number ASC, created_at ASC").Find(&votes).Error
	return votes, err
}

func (r *gameRepository) ListVotesByRound(gameID string, round int) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.Where("game_id = ? AND round_number = ?", gameID, round).
		Order("created_at ASC").Find(&votes).Error
	return votes, err
}
