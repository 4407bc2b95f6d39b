package service

import (
	"encoding/json"
	"errors"

	"undercover_web/internal/repository"
	"undercover_web/internal/storage"
	"undercover_web/pkg/config"
)

type Services struct {
	UserService        *UserService
	RoomService        *RoomService
	GameEngine         *GameEngine
	AIService          *AIService
	SettlementService  *SettlementService
	LeaderboardService *LeaderboardService
	ChatService        *ChatService
	AdminService       *AdminService
	WebSocketManager   *WebSocketManager
}

func NewServices(repos *repository.Repositories, redis *storage.RedisClient, cfg *config.Config) *Services {
	wsManager := NewWebSocketManager(cfg.Game.MaxConnections)

	userService := NewUserService(repos.User)
	roomService := NewRoomService(
		repos.Room, repos.Game, repos.AIPlayer, userService, wsManager,
		cfg.Game.MaxPlayersPerRoom, cfg.Game.RoomIdleMinutes,
	)

	leaderboardService := NewLeaderboardService(repos.User, repos.Game, redis)
	settlementService := NewSettlementService(repos.User, repos.AIPlayer, repos.Game, redis, leaderboardService)

	gameEngine := NewGameEngine(repos, redis, wsManager, settlementService,
		cfg.Game.SpeechTimeLimit, cfg.Game.VoteTimeLimit)

	llmClient := NewLLMClient(cfg.LLM)
	aiService := NewAIService(gameEngine, repos.Game, repos.AIPlayer, llmClient)
	gameEngine.SetAIRunner(aiService)

	chatService := NewChatService(repos.Game, repos.Room, wsManager)
	adminService := NewAdminService(repos.WordPair, repos.AIPlayer)

	s := &Services{
		UserService:        userService,
		RoomService:        roomService,
		GameEngine:         gameEngine,
		AIService:          aiService,
		SettlementService:  settlementService,
		LeaderboardService: leaderboardService,
		ChatService:        chatService,
		AdminService:       adminService,
		WebSocketManager:   wsManager,
	}
	wsManager.SetIncomingHandler(s.handleWSMessage)
	return s
}

type wsChatPayload struct {
	Content string `json:"content"`
}

type wsSpeechPayload struct {
	GameID  string `json:"game_id"`
	Content string `json:"content"`
}

type wsVotePayload struct {
	GameID   string `json:"game_id"`
	TargetID string `json:"target_id"`
}

// handleWSMessage 分派 WebSocket 上行消息到對應的服務
func (s *Services) handleWSMessage(client *Client, msgType string, payload json.RawMessage) error {
	switch msgType {
	case "chat_message":
		var p wsChatPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return errors.New("無效的訊息格式")
		}
		user, err := s.UserService.GetUserByID(client.UserID)
		if err != nil {
			return errors.New("用戶不存在")
		}
		return s.ChatService.HandleChat(client.RoomID, client.UserID, user.Username, p.Content)

	case "speech":
		var p wsSpeechPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return errors.New("無效的訊息格式")
		}
		return s.GameEngine.HandleSpeech(p.GameID, client.UserID, p.Content)

	case "vote":
		var p wsVotePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return errors.New("無效的訊息格式")
		}
		return s.GameEngine.HandleVote(p.GameID, client.UserID, p.TargetID)

	case "ping":
		s.WebSocketManager.SendToClient(client, &Event{Type: "pong"})
		return nil

	default:
		return errors.New("未知的消息類型")
	}
}
