package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"undercover_web/internal/models"
	"undercover_web/internal/repository"
	"undercover_web/internal/storage"
)

var (
	ErrGameNotFound   = errors.New("遊戲不存在")
	ErrNotYourTurn    = errors.New("還沒輪到你")
	ErrWrongPhase     = errors.New("當前階段無法執行此操作")
	ErrPlayerNotAlive = errors.New("已被淘汰的玩家無法行動")
	ErrSpeechTooLong  = errors.New("發言內容超過長度限制")
	ErrSpeechRevealed = errors.New("發言不能直接說出詞語")
)

const (
	gameStateCacheKey = "game_state:%s"
	gameStateTTL      = time.Hour

	speechMaxLength = 500
)

// AIRunner 在遊戲狀態推進後接手連續的 AI 回合
type AIRunner interface {
	TriggerTurns(gameID string)
}

// GameEngine 負責遊戲的核心流程控制
type GameEngine struct {
	gameRepo     repository.GameRepository
	roomRepo     repository.RoomRepository
	userRepo     repository.UserRepository
	wordPairRepo repository.WordPairRepository
	aiPlayerRepo repository.AIPlayerRepository
	redis        *storage.RedisClient
	wsManager    *WebSocketManager
	settlement   *SettlementService
	aiRunner     AIRunner

	speechLimit time.Duration // 單次發言時限
	voteLimit   time.Duration // 單次投票時限
}

func NewGameEngine(
	repos *repository.Repositories,
	redis *storage.RedisClient,
	wsManager *WebSocketManager,
	settlement *SettlementService,
	speechLimitSec, voteLimitSec int,
) *GameEngine {
	if speechLimitSec <= 0 {
		speechLimitSec = 60
	}
	if voteLimitSec <= 0 {
		voteLimitSec = 30
	}
	return &GameEngine{
		gameRepo:     repos.Game,
		roomRepo:     repos.Room,
		userRepo:     repos.User,
		wordPairRepo: repos.WordPair,
		aiPlayerRepo: repos.AIPlayer,
		redis:        redis,
		wsManager:    wsManager,
		settlement:   settlement,
		speechLimit:  time.Duration(speechLimitSec) * time.Second,
		voteLimit:    time.Duration(voteLimitSec) * time.Second,
	}
}

// setTurnDeadline 依當前階段更新行動時限
func (e *GameEngine) setTurnDeadline(game *models.Game) {
	var limit time.Duration
	switch game.CurrentPhase {
	case models.PhaseSpeaking:
		limit = e.speechLimit
	case models.PhaseVoting:
		limit = e.voteLimit
	default:
		game.TurnDeadline = nil
		return
	}
	deadline := time.Now().Add(limit)
	game.TurnDeadline = &deadline
}

// SetAIRunner 註冊 AI 回合執行器，需在開始遊戲前設定
func (e *GameEngine) SetAIRunner(runner AIRunner) {
	e.aiRunner = runner
}

// StartGame 由房主開始遊戲：分配身份與詞語，進入發言階段
func (e *GameEngine) StartGame(roomID, userID string) (*models.Game, error) {
	room, err := e.roomRepo.FindByID(roomID)
	if err != nil {
		return nil, ErrRoomNotFound
	}
	if room.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if !room.CanStartGame() {
		return nil, errors.New("房間尚未達到開始條件")
	}

	players, err := e.buildPlayers(room)
	if err != nil {
		return nil, err
	}

	wordPair, err := e.pickWordPair(room)
	if err != nil {
		return nil, err
	}

	assignRoles(players, wordPair)

	game := &models.Game{
		ID:           uuid.NewString(),
		RoomID:       room.ID,
		WordPairID:   wordPair.ID,
		CurrentPhase: models.PhaseSpeaking,
		RoundNumber:  1,
		Players:      players,
		StartedAt:    time.Now(),
	}
	if first := firstAlive(players); first != nil {
		game.CurrentSpeaker = first.ID
	}
	e.setTurnDeadline(game)

	if err := e.gameRepo.Create(game); err != nil {
		return nil, err
	}

	for i := range players {
		p := &players[i]
		participant := &models.Participant{
			ID:       uuid.NewString(),
			GameID:   game.ID,
			PlayerID: p.ID,
			Username: p.Username,
			IsAI:     p.IsAI,
			Role:     p.Role,
			Word:     p.Word,
			IsAlive:  true,
		}
		if err := e.gameRepo.CreateParticipant(participant); err != nil {
			return nil, err
		}
	}

	room.Status = models.RoomStatusPlaying
	if err := e.roomRepo.Update(room); err != nil {
		return nil, err
	}

	e.cacheState(game)
	e.wsManager.BroadcastToRoom(roomID, &Event{
		Type: "game_started",
		Data: map[string]any{
			"game_id":         game.ID,
			"round":           game.RoundNumber,
			"phase":           game.CurrentPhase,
			"current_speaker": game.CurrentSpeaker,
		},
	})

	e.triggerAI(game.ID)
	return game, nil
}

// buildPlayers 組出本局玩家列表：房內真人加上 AI 實例
func (e *GameEngine) buildPlayers(room *models.Room) ([]models.GamePlayer, error) {
	users, err := e.userRepo.FindByIDs(room.CurrentPlayers)
	if err != nil {
		return nil, err
	}
	if len(users) != len(room.CurrentPlayers) {
		return nil, errors.New("房間內存在無效玩家")
	}

	players := make([]models.GamePlayer, 0, len(users)+room.AICount)
	for i := range users {
		players = append(players, models.GamePlayer{
			ID:       users[i].ID,
			Username: users[i].Username,
			IsAI:     false,
			IsAlive:  true,
		})
	}

	if room.AICount > 0 {
		ais, err := e.pickAIPlayers(room)
		if err != nil {
			return nil, err
		}
		for i := range ais {
			players = append(players, models.GamePlayer{
				ID:       ais[i].ID,
				Username: ais[i].Name,
				IsAI:     true,
				IsAlive:  true,
			})
		}
	}

	if len(players) < 3 {
		return nil, errors.New("遊戲至少需要 3 名玩家")
	}
	if len(players) > room.MaxPlayers {
		return nil, ErrRoomFull
	}
	return players, nil
}

// pickAIPlayers 依房間設定挑選 AI 模板，不足時以其他啟用中的 AI 補齊
func (e *GameEngine) pickAIPlayers(room *models.Room) ([]models.AIPlayer, error) {
	templateIDs := room.AITemplateIDs()
	picked := make([]models.AIPlayer, 0, room.AICount)
	used := make(map[string]bool)

	if len(templateIDs) > 0 {
		ais, err := e.aiPlayerRepo.FindByIDs(templateIDs)
		if err != nil {
			return nil, err
		}
		for i := range ais {
			if len(picked) >= room.AICount {
				break
			}
			picked = append(picked, ais[i])
			used[ais[i].ID] = true
		}
	}

	if len(picked) < room.AICount {
		actives, err := e.aiPlayerRepo.ListActive()
		if err != nil {
			return nil, err
		}
		rand.Shuffle(len(actives), func(i, j int) { actives[i], actives[j] = actives[j], actives[i] })
		for i := range actives {
			if len(picked) >= room.AICount {
				break
			}
			if !used[actives[i].ID] {
				picked = append(picked, actives[i])
				used[actives[i].ID] = true
			}
		}
	}

	if len(picked) < room.AICount {
		return nil, errors.New("可用的 AI 玩家不足")
	}
	return picked, nil
}

// pickWordPair 依房間設定挑選詞組：指定 ID 優先，其次依條件隨機
func (e *GameEngine) pickWordPair(room *models.Room) (*models.WordPair, error) {
	if id, ok := room.Settings["word_pair_id"].(string); ok && id != "" {
		if wp, err := e.wordPairRepo.FindByID(id); err == nil {
			return wp, nil
		}
	}

	filters := repository.WordPairFilters{}
	if category, ok := room.Settings["word_category"].(string); ok {
		filters.Category = category
	}
	if difficulty, ok := room.Settings["word_difficulty"].(float64); ok {
		filters.Difficulty = int(difficulty)
	}

	pairs, err := e.wordPairRepo.List(filters)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 && (filters.Category != "" || filters.Difficulty > 0) {
		// 條件下沒有詞組時放寬條件
		pairs, err = e.wordPairRepo.List(repository.WordPairFilters{})
		if err != nil {
			return nil, err
		}
	}
	if len(pairs) == 0 {
		return nil, errors.New("題庫中沒有可用的詞組")
	}
	return &pairs[rand.Intn(len(pairs))], nil
}

// assignRoles 隨機分配臥底身份，臥底數為總人數除以三且至少一人
func assignRoles(players []models.GamePlayer, wordPair *models.WordPair) {
	undercoverCount := len(players) / 3
	if undercoverCount < 1 {
		undercoverCount = 1
	}

	indexes := rand.Perm(len(players))
	undercover := make(map[int]bool, undercoverCount)
	for _, idx := range indexes[:undercoverCount] {
		undercover[idx] = true
	}

	for i := range players {
		if undercover[i] {
			players[i].Role = models.RoleUndercover
		} else {
			players[i].Role = models.RoleCivilian
		}
		players[i].Word = wordPair.WordForRole(players[i].Role)
	}
}

func firstAlive(players []models.GamePlayer) *models.GamePlayer {
	for i := range players {
		if players[i].IsAlive {
			return &players[i]
		}
	}
	return nil
}

// nextAliveAfter 找出 current 之後下一位存活玩家，沒有則回傳 nil
func nextAliveAfter(players []models.GamePlayer, currentID string) *models.GamePlayer {
	pos := -1
	for i := range players {
		if players[i].ID == currentID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return firstAlive(players)
	}
	for i := pos + 1; i < len(players); i++ {
		if players[i].IsAlive {
			return &players[i]
		}
	}
	return nil
}

// GetGame 讀取遊戲狀態，優先走 Redis 快取
func (e *GameEngine) GetGame(gameID string) (*models.Game, error) {
	if game := e.cachedState(gameID); game != nil {
		return game, nil
	}
	game, err := e.gameRepo.FindByID(gameID)
	if err != nil {
		return nil, ErrGameNotFound
	}
	e.cacheState(game)
	return game, nil
}

// PlayerView 是單一玩家視角的遊戲狀態，只揭露該玩家自己的詞語
type PlayerView struct {
	GameID         string              `json:"game_id"`
	RoomID         string              `json:"room_id"`
	Phase          models.GamePhase    `json:"phase"`
	Round          int                 `json:"round"`
	CurrentSpeaker string              `json:"current_speaker,omitempty"`
	CurrentVoter   string              `json:"current_voter,omitempty"`
	YourWord       string              `json:"your_word,omitempty"`
	YourRole       models.PlayerRole   `json:"your_role,omitempty"`
	CanSpeak       bool                `json:"can_speak"`
	CanVote        bool                `json:"can_vote"`
	TimeRemaining  int                 `json:"time_remaining"` // 當前回合剩餘秒數，時限已過為 0
	Players        []PlayerSummary     `json:"players"`
	Eliminated     []models.GamePlayer `json:"eliminated"`
	WinnerRole     models.PlayerRole   `json:"winner_role,omitempty"`
}

// PlayerSummary 隱藏身份與詞語的玩家資訊
type PlayerSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAI     bool   `json:"is_ai"`
	IsAlive  bool   `json:"is_alive"`
}

// GetPlayerView 取得指定玩家視角的遊戲狀態
func (e *GameEngine) GetPlayerView(gameID, playerID string) (*PlayerView, error) {
	game, err := e.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	view := &PlayerView{
		GameID:         game.ID,
		RoomID:         game.RoomID,
		Phase:          game.CurrentPhase,
		Round:          game.RoundNumber,
		CurrentSpeaker: game.CurrentSpeaker,
		CurrentVoter:   game.CurrentVoter,
		Eliminated:     game.EliminatedPlayers,
		WinnerRole:     game.WinnerRole,
	}

	for i := range game.Players {
		p := &game.Players[i]
		view.Players = append(view.Players, PlayerSummary{
			ID:       p.ID,
			Username: p.Username,
			IsAI:     p.IsAI,
			IsAlive:  p.IsAlive,
		})
		if p.ID == playerID {
			view.YourWord = p.Word
			// 遊戲結束前不揭露自己以外任何人的身份，自己的身份也只在結束後揭露
			if game.CurrentPhase == models.PhaseFinished {
				view.YourRole = p.Role
			}
			view.CanSpeak = game.CurrentPhase == models.PhaseSpeaking &&
				game.CurrentSpeaker == playerID && p.IsAlive
			view.CanVote = game.CurrentPhase == models.PhaseVoting &&
				game.CurrentVoter == playerID && p.IsAlive
		}
	}
	if game.TurnDeadline != nil {
		if remain := int(time.Until(*game.TurnDeadline).Seconds()); remain > 0 {
			view.TimeRemaining = remain
		}
	}
	return view, nil
}

// HandleSpeech 處理發言：只有當前發言者能發言，說完輪到下一位
func (e *GameEngine) HandleSpeech(gameID, playerID, content string) error {
	game, err := e.GetGame(gameID)
	if err != nil {
		return err
	}
	if game.CurrentPhase != models.PhaseSpeaking {
		return ErrWrongPhase
	}

	player := game.FindPlayer(playerID)
	if player == nil {
		return errors.New("你不在這場遊戲中")
	}
	if !player.IsAlive {
		return ErrPlayerNotAlive
	}
	if game.CurrentSpeaker != playerID {
		return ErrNotYourTurn
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.New("發言內容不能為空")
	}
	if len([]rune(content)) > speechMaxLength {
		return ErrSpeechTooLong
	}
	if err := e.checkSpeechWords(game, content); err != nil {
		return err
	}

	participant, err := e.gameRepo.FindParticipant(gameID, playerID)
	if err != nil {
		return err
	}

	order, err := e.gameRepo.MaxSpeechOrder(gameID, game.RoundNumber)
	if err != nil {
		return err
	}

	speech := &models.Speech{
		ID:            uuid.NewString(),
		GameID:        gameID,
		ParticipantID: participant.ID,
		Content:       content,
		RoundNumber:   game.RoundNumber,
		SpeechOrder:   order + 1,
	}
	if err := e.gameRepo.CreateSpeech(speech); err != nil {
		return err
	}

	// AI 的發言用獨立的事件類型，前端可以區分呈現
	speechEvent := "speech"
	if player.IsAI {
		speechEvent = "ai_speech"
	}
	e.wsManager.BroadcastToRoom(game.RoomID, &Event{
		Type: speechEvent,
		Data: map[string]any{
			"player_id": playerID,
			"username":  player.Username,
			"content":   content,
			"round":     game.RoundNumber,
		},
	})

	return e.advanceSpeaker(game)
}

// checkSpeechWords 發言不能包含本局的任何一個詞語，兩邊都擋避免排除法猜詞
func (e *GameEngine) checkSpeechWords(game *models.Game, content string) error {
	wp, err := e.wordPairRepo.FindByID(game.WordPairID)
	if err != nil {
		return nil
	}
	if strings.Contains(content, wp.CivilianWord) || strings.Contains(content, wp.UndercoverWord) {
		return ErrSpeechRevealed
	}
	return nil
}

// SkipSpeech 跳過當前發言者，用於超時或棄權
func (e *GameEngine) SkipSpeech(gameID, playerID string) error {
	game, err := e.GetGame(gameID)
	if err != nil {
		return err
	}
	if game.CurrentPhase != models.PhaseSpeaking {
		return ErrWrongPhase
	}
	if game.CurrentSpeaker != playerID {
		return ErrNotYourTurn
	}

	e.wsManager.BroadcastToRoom(game.RoomID, &Event{
		Type: "speech_skipped",
		Data: map[string]string{"player_id": playerID},
	})
	return e.advanceSpeaker(game)
}

// advanceSpeaker 輪到下一位存活玩家，全部說完則進入投票階段
func (e *GameEngine) advanceSpeaker(game *models.Game) error {
	next := nextAliveAfter(game.Players, game.CurrentSpeaker)
	if next != nil {
		game.CurrentSpeaker = next.ID
		e.setTurnDeadline(game)
		if err := e.saveGame(game); err != nil {
			return err
		}
		e.wsManager.BroadcastToRoom(game.RoomID, &Event{
			Type: "speaker_changed",
			Data: map[string]string{"current_speaker": next.ID},
		})
		e.triggerAI(game.ID)
		return nil
	}

	// 本輪全部發言完畢，進入投票階段
	game.CurrentPhase = models.PhaseVoting
	game.CurrentSpeaker = ""
	if first := firstAlive(game.Players); first != nil {
		game.CurrentVoter = first.ID
	}
	e.setTurnDeadline(game)
	if err := e.saveGame(game); err != nil {
		return err
	}
	e.wsManager.BroadcastToRoom(game.RoomID, &Event{
		Type: "phase_changed",
		Data: map[string]any{
			"phase":         game.CurrentPhase,
			"round":         game.RoundNumber,
			"current_voter": game.CurrentVoter,
		},
	})
	e.triggerAI(game.ID)
	return nil
}

// HandleVote 處理投票：依序投票，重複投票視為改票
func (e *GameEngine) HandleVote(gameID, voterID, targetID string) error {
	game, err := e.GetGame(gameID)
	if err != nil {
		return err
	}
	if game.CurrentPhase != models.PhaseVoting {
		return ErrWrongPhase
	}

	voter := game.FindPlayer(voterID)
	if voter == nil {
		return errors.New("你不在這場遊戲中")
	}
	if !voter.IsAlive {
		return ErrPlayerNotAlive
	}
	target := game.FindPlayer(targetID)
	if target == nil || !target.IsAlive {
		return errors.New("投票目標無效")
	}
	if voterID == targetID {
		return errors.New("不能投給自己")
	}
	if game.CurrentVoter != voterID {
		return ErrNotYourTurn
	}

	voterParticipant, err := e.gameRepo.FindParticipant(gameID, voterID)
	if err != nil {
		return err
	}
	targetParticipant, err := e.gameRepo.FindParticipant(gameID, targetID)
	if err != nil {
		return err
	}

	existing, err := e.gameRepo.FindVote(gameID, voterParticipant.ID, game.RoundNumber)
	if err == nil && existing != nil {
		existing.TargetID = targetParticipant.ID
		if err := e.gameRepo.UpdateVote(existing); err != nil {
			return err
		}
	} else {
		vote := &models.Vote{
			ID:          uuid.NewString(),
			GameID:      gameID,
			VoterID:     voterParticipant.ID,
			TargetID:    targetParticipant.ID,
			RoundNumber: game.RoundNumber,
		}
		if err := e.gameRepo.CreateVote(vote); err != nil {
			return err
		}
	}

	voteEvent := "vote"
	if voter.IsAI {
		voteEvent = "ai_vote"
	}
	e.wsManager.BroadcastToRoom(game.RoomID, &Event{
		Type: voteEvent,
		Data: map[string]any{
			"voter_id": voterID,
			"round":    game.RoundNumber,
		},
	})

	return e.advanceVoter(game)
}

// advanceVoter 輪到下一位投票者，全部投完則結算本輪
func (e *GameEngine) advanceVoter(game *models.Game) error {
	next := nextAliveAfter(game.Players, game.CurrentVoter)
	if next != nil {
		game.CurrentVoter = next.ID
		e.setTurnDeadline(game)
		if err := e.saveGame(game); err != nil {
			return err
		}
		e.wsManager.BroadcastToRoom(game.RoomID, &Event{
			Type: "voter_changed",
			Data: map[string]string{"current_voter": next.ID},
		})
		e.triggerAI(game.ID)
		return nil
	}
	return e.resolveRound(game)
}

// resolveRound 結算投票：淘汰得票最高者並檢查勝負
func (e *GameEngine) resolveRound(game *models.Game) error {
	votes, err := e.gameRepo.ListVotesByRound(game.ID, game.RoundNumber)
	if err != nil {
		return err
	}

	participants, err := e.gameRepo.ListParticipants(game.ID)
	if err != nil {
		return err
	}
	participantToPlayer := make(map[string]string, len(participants))
	for i := range participants {
		participantToPlayer[participants[i].ID] = participants[i].PlayerID
	}

	tally := make(map[string]int)
	for i := range votes {
		if playerID, ok := participantToPlayer[votes[i].TargetID]; ok {
			tally[playerID]++
		}
	}

	eliminatedID := pickEliminated(tally, game.AlivePlayers())
	eliminated := game.FindPlayer(eliminatedID)
	if eliminated == nil {
		return errors.New("無法決定淘汰玩家")
	}
	eliminated.IsAlive = false
	game.EliminatedPlayers = append(game.EliminatedPlayers, *eliminated)

	if p, err := e.gameRepo.FindParticipant(game.ID, eliminatedID); err == nil {
		p.IsAlive = false
		if err := e.gameRepo.UpdateParticipant(p); err != nil {
			log.Printf("update participant failed: %v", err)
		}
	}

	game.CurrentPhase = models.PhaseResult
	game.CurrentVoter = ""

	e.wsManager.BroadcastToRoom(game.RoomID, &Event{
		Type: "player_eliminated",
		Data: map[string]any{
			"player_id": eliminated.ID,
			"username":  eliminated.Username,
			"role":      eliminated.Role,
			"votes":     tally[eliminatedID],
			"round":     game.RoundNumber,
		},
	})

	if game.IsGameOver() {
		return e.finishGame(game)
	}

	// 進入下一輪發言
	game.RoundNumber++
	game.CurrentPhase = models.PhaseSpeaking
	if first := firstAlive(game.Players); first != nil {
		game.CurrentSpeaker = first.ID
	}
	e.setTurnDeadline(game)
	if err := e.saveGame(game); err != nil {
		return err
	}

	e.wsManager.BroadcastToRoom(game.RoomID, &Event{
		Type: "round_started",
		Data: map[string]any{
			"round":           game.RoundNumber,
			"phase":           game.CurrentPhase,
			"current_speaker": game.CurrentSpeaker,
		},
	})
	e.triggerAI(game.ID)
	return nil
}

// pickEliminated 以最高票決定淘汰者，平票或無人投票時隨機決定
func pickEliminated(tally map[string]int, alive []models.GamePlayer) string {
	if len(alive) == 0 {
		return ""
	}
	if len(tally) == 0 {
		return alive[rand.Intn(len(alive))].ID
	}

	maxVotes := 0
	for _, n := range tally {
		if n > maxVotes {
			maxVotes = n
		}
	}

	var top []string
	// 依存活順序收集最高票者，確保平票時的候選順序穩定
	for i := range alive {
		if tally[alive[i].ID] == maxVotes {
			top = append(top, alive[i].ID)
		}
	}
	if len(top) == 0 {
		return alive[rand.Intn(len(alive))].ID
	}
	return top[rand.Intn(len(top))]
}

// finishGame 結束遊戲：揭曉身份、計算積分並還原房間狀態
func (e *GameEngine) finishGame(game *models.Game) error {
	game.CurrentPhase = models.PhaseFinished
	now := time.Now()
	game.FinishedAt = &now

	if game.UndercoverCount() == 0 {
		game.WinnerRole = models.RoleCivilian
	} else {
		game.WinnerRole = models.RoleUndercover
	}
	for i := range game.Players {
		if game.Players[i].Role == game.WinnerRole {
			game.WinnerPlayers = append(game.WinnerPlayers, game.Players[i].ID)
		}
	}
	game.CurrentSpeaker = ""
	game.CurrentVoter = ""
	game.TurnDeadline = nil

	if err := e.saveGame(game); err != nil {
		return err
	}

	// 積分結算失敗不影響遊戲結束
	results, err := e.settlement.SettleGame(game)
	if err != nil {
		log.Printf("settle game %s failed: %v", game.ID, err)
	}

	if room, err := e.roomRepo.FindByID(game.RoomID); err == nil {
		room.Status = models.RoomStatusWaiting
		if err := e.roomRepo.Update(room); err != nil {
			log.Printf("reset room %s failed: %v", room.ID, err)
		}
	}

	reveal := make([]map[string]any, 0, len(game.Players))
	for i := range game.Players {
		p := &game.Players[i]
		reveal = append(reveal, map[string]any{
			"player_id": p.ID,
			"username":  p.Username,
			"role":      p.Role,
			"word":      p.Word,
			"is_ai":     p.IsAI,
		})
	}

	e.wsManager.BroadcastToRoom(game.RoomID, &Event{
		Type: "game_ended",
		Data: map[string]any{
			"winner_role":    game.WinnerRole,
			"winner_players": game.WinnerPlayers,
			"players":        reveal,
			"rounds":         game.RoundNumber,
		},
	})
	if len(results) > 0 {
		e.wsManager.BroadcastToRoom(game.RoomID, &Event{
			Type: "settlement_result",
			Data: map[string]any{"game_id": game.ID, "results": results},
		})
	}
	return nil
}

// ForceNextPhase 由房主強制推進階段，用於卡住的對局
func (e *GameEngine) ForceNextPhase(gameID, userID string) error {
	game, err := e.GetGame(gameID)
	if err != nil {
		return err
	}
	room, err := e.roomRepo.FindByID(game.RoomID)
	if err != nil {
		return ErrRoomNotFound
	}
	if room.CreatorID != userID {
		return ErrNotCreator
	}

	switch game.CurrentPhase {
	case models.PhaseSpeaking:
		game.CurrentPhase = models.PhaseVoting
		game.CurrentSpeaker = ""
		if first := firstAlive(game.Players); first != nil {
			game.CurrentVoter = first.ID
		}
		e.setTurnDeadline(game)
		if err := e.saveGame(game); err != nil {
			return err
		}
		e.wsManager.BroadcastToRoom(game.RoomID, &Event{
			Type: "phase_changed",
			Data: map[string]any{
				"phase":         game.CurrentPhase,
				"current_voter": game.CurrentVoter,
			},
		})
		e.triggerAI(game.ID)
		return nil
	case models.PhaseVoting:
		return e.resolveRound(game)
	default:
		return ErrWrongPhase
	}
}

// ForceEndGame 由房主強制結束遊戲，以當前局勢判定勝方
func (e *GameEngine) ForceEndGame(gameID, userID string) error {
	game, err := e.GetGame(gameID)
	if err != nil {
		return err
	}
	if game.CurrentPhase == models.PhaseFinished {
		return errors.New("遊戲已經結束")
	}
	room, err := e.roomRepo.FindByID(game.RoomID)
	if err != nil {
		return ErrRoomNotFound
	}
	if room.CreatorID != userID {
		return ErrNotCreator
	}
	return e.finishGame(game)
}

// GameSummary 是遊戲結束後的回顧資料
type GameSummary struct {
	GameID        string              `json:"game_id"`
	WinnerRole    models.PlayerRole   `json:"winner_role"`
	WinnerPlayers []string            `json:"winner_players"`
	Rounds        int                 `json:"rounds"`
	Players       []models.GamePlayer `json:"players"`
	Speeches      []models.Speech     `json:"speeches"`
	Votes         []models.Vote       `json:"votes"`
	MVP           string              `json:"mvp,omitempty"`
	Duration      float64             `json:"duration_seconds"`
}

// GetGameSummary 組出完整的對局回顧，只在遊戲結束後可用
func (e *GameEngine) GetGameSummary(gameID string) (*GameSummary, error) {
	game, err := e.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if game.CurrentPhase != models.PhaseFinished {
		return nil, errors.New("遊戲尚未結束")
	}

	speeches, err := e.gameRepo.ListSpeeches(gameID)
	if err != nil {
		return nil, err
	}
	votes, err := e.gameRepo.ListVotes(gameID)
	if err != nil {
		return nil, err
	}

	summary := &GameSummary{
		GameID:        game.ID,
		WinnerRole:    game.WinnerRole,
		WinnerPlayers: game.WinnerPlayers,
		Rounds:        game.RoundNumber,
		Players:       game.Players,
		Speeches:      speeches,
		Votes:         votes,
	}
	if game.FinishedAt != nil {
		summary.Duration = game.FinishedAt.Sub(game.StartedAt).Seconds()
	}

	// MVP 給發言最多的獲勝真人玩家
	participants, err := e.gameRepo.ListParticipants(gameID)
	if err == nil {
		counts := speechCountByPlayer(speeches, participants)
		best := 0
		for _, winnerID := range game.WinnerPlayers {
			p := game.FindPlayer(winnerID)
			if p == nil || p.IsAI {
				continue
			}
			if counts[winnerID] > best {
				best = counts[winnerID]
				summary.MVP = winnerID
			}
		}
	}
	return summary, nil
}

func speechCountByPlayer(speeches []models.Speech, participants []models.Participant) map[string]int {
	byParticipant := make(map[string]string, len(participants))
	for i := range participants {
		byParticipant[participants[i].ID] = participants[i].PlayerID
	}
	counts := make(map[string]int)
	for i := range speeches {
		if playerID, ok := byParticipant[speeches[i].ParticipantID]; ok {
			counts[playerID]++
		}
	}
	return counts
}

func (e *GameEngine) saveGame(game *models.Game) error {
	if err := e.gameRepo.Update(game); err != nil {
		return err
	}
	e.cacheState(game)
	return nil
}

func (e *GameEngine) cacheState(game *models.Game) {
	if e.redis == nil {
		return
	}
	data, err := json.Marshal(game)
	if err != nil {
		return
	}
	key := fmt.Sprintf(gameStateCacheKey, game.ID)
	if err := e.redis.Set(context.Background(), key, data, gameStateTTL).Err(); err != nil {
		log.Printf("cache game state failed: %v", err)
	}
}

func (e *GameEngine) cachedState(gameID string) *models.Game {
	if e.redis == nil {
		return nil
	}
	key := fmt.Sprintf(gameStateCacheKey, gameID)
	data, err := e.redis.Get(context.Background(), key).Bytes()
	if err != nil {
		if !storage.IsNil(err) {
			log.Printf("read game state cache failed: %v", err)
		}
		return nil
	}
	var game models.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil
	}
	return &game
}

func (e *GameEngine) triggerAI(gameID string) {
	if e.aiRunner != nil {
		e.aiRunner.TriggerTurns(gameID)
	}
}
