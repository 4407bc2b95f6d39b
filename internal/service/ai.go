package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"undercover_web/internal/models"
	"undercover_web/internal/repository"
)

const (
	// 單次觸發最多連續處理的 AI 回合數，避免異常狀態下的無限循環
	maxAITurnsPerRun = 20
	// AI 行動之間的停頓，讓節奏接近真人
	aiTurnDelay = 2 * time.Second
)

// AIService 驅動遊戲中的 AI 玩家：輪到 AI 時自動發言與投票
type AIService struct {
	engine       *GameEngine
	gameRepo     repository.GameRepository
	aiPlayerRepo repository.AIPlayerRepository
	llm          *LLMClient

	mu      sync.Mutex
	running map[string]bool // 正在處理回合的遊戲
}

func NewAIService(engine *GameEngine, gameRepo repository.GameRepository, aiPlayerRepo repository.AIPlayerRepository, llm *LLMClient) *AIService {
	return &AIService{
		engine:       engine,
		gameRepo:     gameRepo,
		aiPlayerRepo: aiPlayerRepo,
		llm:          llm,
		running:      make(map[string]bool),
	}
}

// TriggerTurns 在背景接手連續的 AI 回合。
// 同一場遊戲同時只會有一個處理循環
func (s *AIService) TriggerTurns(gameID string) {
	s.mu.Lock()
	if s.running[gameID] {
		s.mu.Unlock()
		return
	}
	s.running[gameID] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.running, gameID)
			s.mu.Unlock()
		}()
		s.ProcessAITurns(gameID)
	}()
}

// ProcessAITurns 依序處理輪到 AI 的發言與投票，直到輪到真人或遊戲結束
func (s *AIService) ProcessAITurns(gameID string) {
	for turn := 0; turn < maxAITurnsPerRun; turn++ {
		game, err := s.engine.GetGame(gameID)
		if err != nil {
			return
		}

		var actorID string
		switch game.CurrentPhase {
		case models.PhaseSpeaking:
			actorID = game.CurrentSpeaker
		case models.PhaseVoting:
			actorID = game.CurrentVoter
		default:
			return
		}

		player := game.FindPlayer(actorID)
		if player == nil || !player.IsAI {
			return
		}

		time.Sleep(aiTurnDelay)

		if game.CurrentPhase == models.PhaseSpeaking {
			err = s.takeSpeechTurn(game, player)
		} else {
			err = s.takeVoteTurn(game, player)
		}
		if err != nil {
			log.Printf("ai turn failed in game %s: %v", gameID, err)
			return
		}
	}
	log.Printf("ai turn limit reached in game %s", gameID)
}

func (s *AIService) takeSpeechTurn(game *models.Game, player *models.GamePlayer) error {
	content := s.generateSpeech(game, player)
	return s.engine.HandleSpeech(game.ID, player.ID, content)
}

func (s *AIService) takeVoteTurn(game *models.Game, player *models.GamePlayer) error {
	targetID := s.generateVote(game, player)
	if targetID == "" {
		return fmt.Errorf("no vote target for ai %s", player.ID)
	}
	return s.engine.HandleVote(game.ID, player.ID, targetID)
}

// generateSpeech 請 LLM 產生發言，失敗時退回保底發言
func (s *AIService) generateSpeech(game *models.Game, player *models.GamePlayer) string {
	ai, err := s.aiPlayerRepo.FindByID(player.ID)
	if err != nil {
		return FallbackSpeech()
	}

	previous := s.roundSpeechLines(game)
	messages := BuildSpeechPrompt(ai, player.Word, player.Role, game.RoundNumber, previous)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	content, err := s.llm.Chat(ctx, messages, aiOptions(ai))
	if err != nil {
		log.Printf("ai %s speech generation failed: %v", ai.Name, err)
		return FallbackSpeech()
	}
	return content
}

// generateVote 請 LLM 選出投票目標，失敗或解析不出時隨機投票
func (s *AIService) generateVote(game *models.Game, player *models.GamePlayer) string {
	candidates := s.voteCandidates(game, player)
	if len(candidates) == 0 {
		return ""
	}
	fallbackPool := make([]models.GamePlayer, 0, len(candidates))
	for i := range candidates {
		fallbackPool = append(fallbackPool, candidates[i].Player)
	}

	ai, err := s.aiPlayerRepo.FindByID(player.ID)
	if err != nil {
		return FallbackVote(fallbackPool)
	}

	messages := BuildVotePrompt(ai, player.Word, player.Role, game.RoundNumber, candidates)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	content, err := s.llm.Chat(ctx, messages, aiOptions(ai))
	if err != nil {
		log.Printf("ai %s vote generation failed: %v", ai.Name, err)
		return FallbackVote(fallbackPool)
	}

	if targetID := ParseVoteChoice(content, candidates); targetID != "" {
		return targetID
	}
	return FallbackVote(fallbackPool)
}

// roundSpeechLines 取得本輪已有的發言，格式為「名字：內容」
func (s *AIService) roundSpeechLines(game *models.Game) []string {
	speeches, err := s.gameRepo.ListSpeechesByRound(game.ID, game.RoundNumber)
	if err != nil {
		return nil
	}
	participants, err := s.gameRepo.ListParticipants(game.ID)
	if err != nil {
		return nil
	}
	names := make(map[string]string, len(participants))
	for i := range participants {
		names[participants[i].ID] = participants[i].Username
	}

	lines := make([]string, 0, len(speeches))
	for i := range speeches {
		lines = append(lines, fmt.Sprintf("%s：%s", names[speeches[i].ParticipantID], speeches[i].Content))
	}
	return lines
}

// voteCandidates 組出候選人與他們本輪的發言
func (s *AIService) voteCandidates(game *models.Game, voter *models.GamePlayer) []VoteCandidate {
	speeches, _ := s.gameRepo.ListSpeechesByRound(game.ID, game.RoundNumber)
	participants, _ := s.gameRepo.ListParticipants(game.ID)

	byPlayer := make(map[string][]string)
	participantPlayer := make(map[string]string, len(participants))
	for i := range participants {
		participantPlayer[participants[i].ID] = participants[i].PlayerID
	}
	for i := range speeches {
		if playerID, ok := participantPlayer[speeches[i].ParticipantID]; ok {
			byPlayer[playerID] = append(byPlayer[playerID], speeches[i].Content)
		}
	}

	var candidates []VoteCandidate
	for i := range game.Players {
		p := &game.Players[i]
		if !p.IsAlive || p.ID == voter.ID {
			continue
		}
		candidates = append(candidates, VoteCandidate{
			Player:   *p,
			Speeches: byPlayer[p.ID],
		})
	}
	return candidates
}

func aiOptions(ai *models.AIPlayer) *LLMOptions {
	if ai.APIBaseURL == "" && ai.APIKey == "" && ai.ModelName == "" {
		return nil
	}
	return &LLMOptions{
		BaseURL: ai.APIBaseURL,
		APIKey:  ai.APIKey,
		Model:   ai.ModelName,
	}
}
