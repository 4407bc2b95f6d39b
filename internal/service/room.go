package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"undercover_web/internal/models"
	"undercover_web/internal/repository"
)

var (
	ErrRoomNotFound  = errors.New("房間不存在")
	ErrRoomFull      = errors.New("房間已滿")
	ErrWrongPassword = errors.New("房間密碼錯誤")
	ErrNotInRoom     = errors.New("玩家不在房間內")
	ErrNotCreator    = errors.New("只有房主可以執行此操作")
)

// CreateRoomInput 是創建房間的參數
type CreateRoomInput struct {
	Name          string
	CreatorID     string
	MaxPlayers    int
	AICount       int
	Password      string
	AITemplateIDs []string

	// 選詞設定，皆可留空由系統隨機挑選
	WordPairID     string
	WordCategory   string
	WordDifficulty int
}

type RoomService struct {
	roomRepo     repository.RoomRepository
	gameRepo     repository.GameRepository
	aiPlayerRepo repository.AIPlayerRepository
	users        *UserService
	wsManager    *WebSocketManager
	maxPlayers   int
	idleAfter    time.Duration
}

func NewRoomService(
	roomRepo repository.RoomRepository,
	gameRepo repository.GameRepository,
	aiPlayerRepo repository.AIPlayerRepository,
	users *UserService,
	wsManager *WebSocketManager,
	maxPlayers int,
	idleMinutes int,
) *RoomService {
	if maxPlayers <= 0 {
		maxPlayers = 10
	}
	if idleMinutes <= 0 {
		idleMinutes = 30
	}
	return &RoomService{
		roomRepo:     roomRepo,
		gameRepo:     gameRepo,
		aiPlayerRepo: aiPlayerRepo,
		users:        users,
		wsManager:    wsManager,
		maxPlayers:   maxPlayers,
		idleAfter:    time.Duration(idleMinutes) * time.Minute,
	}
}

func (s *RoomService) GetRoom(roomID string) (*models.Room, error) {
	room, err := s.roomRepo.FindByID(roomID)
	if err != nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// RoomPlayerInfo 是房間詳情中一位真人玩家的公開資訊
type RoomPlayerInfo struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Score     int     `json:"score"`
	WinRate   float64 `json:"win_rate"`
	IsCreator bool    `json:"is_creator"`
}

// RoomDetail 是房間詳情：基本資料加上展開後的玩家與 AI 模板列表
type RoomDetail struct {
	Room        *models.Room      `json:"room"`
	Players     []RoomPlayerInfo  `json:"players"`
	AITemplates []models.AIPlayer `json:"ai_templates"`
	OnlineCount int               `json:"online_count"`
}

// GetRoomDetail 取得房間詳情，玩家 ID 展開為用戶資料
func (s *RoomService) GetRoomDetail(roomID string) (*RoomDetail, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return nil, err
	}

	users, err := s.users.GetUsersByIDs(room.CurrentPlayers)
	if err != nil {
		return nil, err
	}

	detail := &RoomDetail{
		Room:        room,
		Players:     make([]RoomPlayerInfo, 0, len(room.CurrentPlayers)),
		OnlineCount: s.wsManager.GetRoomClients(roomID),
	}
	for _, id := range room.CurrentPlayers {
		u, ok := users[id]
		if !ok {
			continue
		}
		detail.Players = append(detail.Players, RoomPlayerInfo{
			ID:        u.ID,
			Username:  u.Username,
			Score:     u.Score,
			WinRate:   u.WinRate(),
			IsCreator: u.ID == room.CreatorID,
		})
	}

	if ids := room.AITemplateIDs(); len(ids) > 0 {
		if ais, err := s.aiPlayerRepo.FindByIDs(ids); err == nil {
			detail.AITemplates = ais
		}
	}
	return detail, nil
}

// CreateRoom 創建新房間，房主自動加入
func (s *RoomService) CreateRoom(input CreateRoomInput) (*models.Room, error) {
	if input.MaxPlayers < 3 || input.MaxPlayers > s.maxPlayers {
		return nil, fmt.Errorf("房間人數必須在 3 到 %d 之間", s.maxPlayers)
	}
	if input.AICount < 0 || input.AICount >= input.MaxPlayers {
		return nil, errors.New("AI 數量設定無效")
	}

	settings := models.JSONMap{}
	if len(input.AITemplateIDs) > 0 {
		ais, err := s.aiPlayerRepo.FindByIDs(input.AITemplateIDs)
		if err != nil || len(ais) != len(input.AITemplateIDs) {
			return nil, errors.New("指定的 AI 玩家不存在")
		}
		ids := make([]any, 0, len(input.AITemplateIDs))
		for _, id := range input.AITemplateIDs {
			ids = append(ids, id)
		}
		settings["ai_template_ids"] = ids
	}
	// 選詞設定存成 jsonb 讀回時的型別，開局挑詞時直接取用
	if input.WordPairID != "" {
		settings["word_pair_id"] = input.WordPairID
	}
	if input.WordCategory != "" {
		settings["word_category"] = input.WordCategory
	}
	if input.WordDifficulty > 0 {
		settings["word_difficulty"] = float64(input.WordDifficulty)
	}

	room := &models.Room{
		ID:             uuid.NewString(),
		Name:           input.Name,
		CreatorID:      input.CreatorID,
		Status:         models.RoomStatusWaiting,
		MaxPlayers:     input.MaxPlayers,
		AICount:        input.AICount,
		Password:       input.Password,
		Settings:       settings,
		CurrentPlayers: models.StringList{input.CreatorID},
	}

	if err := s.roomRepo.Create(room); err != nil {
		return nil, err
	}
	return room, nil
}

// ListRooms 列出房間，可依狀態過濾
func (s *RoomService) ListRooms(status models.RoomStatus, page, pageSize int) ([]models.Room, int64, error) {
	return s.roomRepo.FindAll(repository.RoomFilters{
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
}

// JoinRoom 加入房間，有密碼的房間需要驗證
func (s *RoomService) JoinRoom(roomID, userID, password string) (*models.Room, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return nil, err
	}

	if room.Status != models.RoomStatusWaiting {
		return nil, errors.New("房間不開放加入")
	}
	if room.HasPlayer(userID) {
		return room, nil
	}
	if room.IsFull() {
		return nil, ErrRoomFull
	}
	if room.Password != "" && room.Password != password {
		return nil, ErrWrongPassword
	}

	room.CurrentPlayers = append(room.CurrentPlayers, userID)
	if err := s.roomRepo.Update(room); err != nil {
		return nil, err
	}

	s.wsManager.BroadcastToRoom(roomID, &Event{
		Type: "user_joined",
		Data: map[string]any{"user_id": userID, "player_count": room.PlayerCount()},
	})
	return room, nil
}

// LeaveRoom 離開房間。房主離開時移交房主，最後一人離開時解散房間
func (s *RoomService) LeaveRoom(roomID, userID string) error {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return err
	}
	if !room.HasPlayer(userID) {
		return ErrNotInRoom
	}
	if room.Status == models.RoomStatusPlaying {
		return errors.New("遊戲進行中無法離開房間")
	}

	remaining := make(models.StringList, 0, len(room.CurrentPlayers))
	for _, id := range room.CurrentPlayers {
		if id != userID {
			remaining = append(remaining, id)
		}
	}
	room.CurrentPlayers = remaining

	if len(remaining) == 0 {
		return s.dissolveRoom(room)
	}

	if room.CreatorID == userID {
		room.CreatorID = remaining[0]
		s.wsManager.BroadcastToRoom(roomID, &Event{
			Type: "owner_changed",
			Data: map[string]string{"new_owner_id": room.CreatorID},
		})
	}

	if err := s.roomRepo.Update(room); err != nil {
		return err
	}

	s.wsManager.BroadcastToRoom(roomID, &Event{
		Type: "user_left",
		Data: map[string]any{"user_id": userID, "player_count": room.PlayerCount()},
	})
	return nil
}

// KickPlayer 由房主將玩家踢出房間
func (s *RoomService) KickPlayer(roomID, creatorID, targetID string) error {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return err
	}
	if room.CreatorID != creatorID {
		return ErrNotCreator
	}
	if targetID == creatorID {
		return errors.New("房主無法踢出自己")
	}
	if !room.HasPlayer(targetID) {
		return ErrNotInRoom
	}
	if room.Status == models.RoomStatusPlaying {
		return errors.New("遊戲進行中無法踢出玩家")
	}

	remaining := make(models.StringList, 0, len(room.CurrentPlayers))
	for _, id := range room.CurrentPlayers {
		if id != targetID {
			remaining = append(remaining, id)
		}
	}
	room.CurrentPlayers = remaining

	if err := s.roomRepo.Update(room); err != nil {
		return err
	}

	s.wsManager.BroadcastToRoom(roomID, &Event{
		Type: "player_kicked",
		Data: map[string]string{"user_id": targetID},
	})
	return nil
}

// TransferOwnership 轉移房主
func (s *RoomService) TransferOwnership(roomID, creatorID, targetID string) error {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return err
	}
	if room.CreatorID != creatorID {
		return ErrNotCreator
	}
	if !room.HasPlayer(targetID) {
		return ErrNotInRoom
	}

	room.CreatorID = targetID
	if err := s.roomRepo.Update(room); err != nil {
		return err
	}

	s.wsManager.BroadcastToRoom(roomID, &Event{
		Type: "owner_changed",
		Data: map[string]string{"new_owner_id": targetID},
	})
	return nil
}

// DeleteRoom 由房主解散房間
func (s *RoomService) DeleteRoom(roomID, creatorID string) error {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return err
	}
	if room.CreatorID != creatorID {
		return ErrNotCreator
	}
	if room.Status == models.RoomStatusPlaying {
		return errors.New("遊戲進行中無法解散房間")
	}
	return s.dissolveRoom(room)
}

// CleanupIdleRooms 清理閒置超時的等待中房間，回傳清理數量
func (s *RoomService) CleanupIdleRooms() (int, error) {
	cutoff := time.Now().Add(-s.idleAfter)
	rooms, err := s.roomRepo.FindIdleWaiting(cutoff)
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for i := range rooms {
		// 還有人連線的房間不算閒置
		if s.wsManager.GetRoomClients(rooms[i].ID) > 0 {
			continue
		}
		if err := s.dissolveRoom(&rooms[i]); err != nil {
			log.Printf("cleanup room %s failed: %v", rooms[i].ID, err)
			continue
		}
		cleaned++
	}
	return cleaned, nil
}

// StartCleanupLoop 啟動背景清理循環
func (s *RoomService) StartCleanupLoop(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := s.CleanupIdleRooms(); err == nil && n > 0 {
				log.Printf("cleaned up %d idle rooms", n)
			}
		}
	}()
}

func (s *RoomService) dissolveRoom(room *models.Room) error {
	games, err := s.gameRepo.FindByRoom(room.ID)
	if err == nil {
		for i := range games {
			if err := s.gameRepo.DeleteGameData(games[i].ID); err != nil {
				log.Printf("delete game %s failed: %v", games[i].ID, err)
			}
		}
	}

	if err := s.roomRepo.Delete(room.ID); err != nil {
		return err
	}

	s.wsManager.BroadcastToRoom(room.ID, &Event{Type: "room_dissolved"})
	return nil
}
