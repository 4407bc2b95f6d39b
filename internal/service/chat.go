package service

import (
	"errors"
	"strings"
	"sync"
	"time"

	"undercover_web/internal/models"
	"undercover_web/internal/repository"
)

const (
	chatMaxLength      = 200
	chatPerMinuteLimit = 10
	chatCooldown       = 2 * time.Second
)

// 預設的違禁詞列表
var defaultBannedWords = []string{
	"辱罵", "詐騙", "廣告代打",
}

var (
	ErrChatTooLong     = errors.New("訊息長度超過限制")
	ErrChatTooFast     = errors.New("發言太快，請稍後再試")
	ErrChatRateLimited = errors.New("本分鐘發言次數已達上限")
	ErrChatBannedWord  = errors.New("訊息包含違禁詞")
	ErrChatEliminated  = errors.New("被淘汰的玩家在對局中不能聊天")
)

type chatRecord struct {
	lastSent   time.Time
	windowFrom time.Time
	count      int
}

// ChatService 處理房間聊天：違禁詞過濾、頻率限制與淘汰玩家限制
type ChatService struct {
	gameRepo    repository.GameRepository
	roomRepo    repository.RoomRepository
	wsManager   *WebSocketManager
	bannedWords []string

	mu      sync.Mutex
	records map[string]*chatRecord // userID -> 發言紀錄
}

func NewChatService(gameRepo repository.GameRepository, roomRepo repository.RoomRepository, wsManager *WebSocketManager) *ChatService {
	return &ChatService{
		gameRepo:    gameRepo,
		roomRepo:    roomRepo,
		wsManager:   wsManager,
		bannedWords: defaultBannedWords,
		records:     make(map[string]*chatRecord),
	}
}

// HandleChat 驗證並廣播一則聊天訊息
func (s *ChatService) HandleChat(roomID, userID, username, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.New("訊息不能為空")
	}
	if len([]rune(content)) > chatMaxLength {
		return ErrChatTooLong
	}
	if s.containsBannedWord(content) {
		return ErrChatBannedWord
	}
	if err := s.checkRate(userID); err != nil {
		return err
	}
	if err := s.checkEliminated(roomID, userID); err != nil {
		return err
	}

	s.wsManager.BroadcastToRoom(roomID, &Event{
		Type: "chat_message",
		Data: map[string]any{
			"user_id":  userID,
			"username": username,
			"content":  content,
			"sent_at":  time.Now().Unix(),
		},
	})
	return nil
}

func (s *ChatService) containsBannedWord(content string) bool {
	lower := strings.ToLower(content)
	for _, w := range s.bannedWords {
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// checkRate 同時套用兩秒冷卻與每分鐘次數限制
func (s *ChatService) checkRate(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	record, ok := s.records[userID]
	if !ok {
		record = &chatRecord{windowFrom: now}
		s.records[userID] = record
	}

	if now.Sub(record.lastSent) < chatCooldown {
		return ErrChatTooFast
	}
	if now.Sub(record.windowFrom) >= time.Minute {
		record.windowFrom = now
		record.count = 0
	}
	if record.count >= chatPerMinuteLimit {
		return ErrChatRateLimited
	}

	record.lastSent = now
	record.count++
	return nil
}

// checkEliminated 對局進行中被淘汰的玩家不能在房間聊天
func (s *ChatService) checkEliminated(roomID, userID string) error {
	room, err := s.roomRepo.FindByID(roomID)
	if err != nil || room.Status != models.RoomStatusPlaying {
		return nil
	}

	game, err := s.gameRepo.FindActiveByRoom(roomID)
	if err != nil {
		return nil
	}
	p := game.FindPlayer(userID)
	if p != nil && !p.IsAlive {
		return ErrChatEliminated
	}
	return nil
}
