package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"undercover_web/internal/models"
	"undercover_web/internal/service"
)

// RoomHandler 處理與遊戲房間相關的請求
type RoomHandler struct {
	roomService *service.RoomService
	gameEngine  *service.GameEngine
}

// NewRoomHandler 創建一個新的 RoomHandler 實例
func NewRoomHandler(roomService *service.RoomService, gameEngine *service.GameEngine) *RoomHandler {
	return &RoomHandler{roomService: roomService, gameEngine: gameEngine}
}

// CreateRoom 處理創建新房間的請求
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var input struct {
		Name          string   `json:"name" binding:"required,max=50"`
		MaxPlayers    int      `json:"max_players" binding:"required"`
		AICount       int      `json:"ai_count"`
		Password      string   `json:"password"`
		AITemplateIDs []string `json:"ai_template_ids"`

		WordPairID     string `json:"word_pair_id"`
		WordCategory   string `json:"word_category"`
		WordDifficulty int    `json:"word_difficulty" binding:"omitempty,min=1,max=5"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.roomService.CreateRoom(service.CreateRoomInput{
		Name:           input.Name,
		CreatorID:      c.GetString("userID"),
		MaxPlayers:     input.MaxPlayers,
		AICount:        input.AICount,
		Password:       input.Password,
		AITemplateIDs:  input.AITemplateIDs,
		WordPairID:     input.WordPairID,
		WordCategory:   input.WordCategory,
		WordDifficulty: input.WordDifficulty,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, room)
}

// ListRooms 處理獲取房間列表的請求
func (h *RoomHandler) ListRooms(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := models.RoomStatus(c.Query("status"))

	rooms, total, err := h.roomService.ListRooms(status, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "獲取房間列表失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rooms":     rooms,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetRoom 處理獲取房間訊息的請求，回傳含玩家名單的完整資料
func (h *RoomHandler) GetRoom(c *gin.Context) {
	detail, err := h.roomService.GetRoomDetail(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// JoinRoom 處理加入房間的請求
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var input struct {
		Password string `json:"password"`
	}
	// 沒有密碼的房間允許空請求體
	_ = c.ShouldBindJSON(&input)

	room, err := h.roomService.JoinRoom(c.Param("id"), c.GetString("userID"), input.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "成功加入房間", "room": room})
}

// LeaveRoom 處理離開房間的請求
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	if err := h.roomService.LeaveRoom(c.Param("id"), c.GetString("userID")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "成功離開房間"})
}

// KickPlayer 處理房主踢人的請求
func (h *RoomHandler) KickPlayer(c *gin.Context) {
	var input struct {
		TargetID string `json:"target_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.roomService.KickPlayer(c.Param("id"), c.GetString("userID"), input.TargetID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已將玩家移出房間"})
}

// TransferOwnership 處理轉移房主的請求
func (h *RoomHandler) TransferOwnership(c *gin.Context) {
	var input struct {
		TargetID string `json:"target_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.roomService.TransferOwnership(c.Param("id"), c.GetString("userID"), input.TargetID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "房主已轉移"})
}

// DeleteRoom 處理房主解散房間的請求
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	if err := h.roomService.DeleteRoom(c.Param("id"), c.GetString("userID")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "房間已解散"})
}

// StartGame 處理房主開始遊戲的請求
func (h *RoomHandler) StartGame(c *gin.Context) {
	game, err := h.gameEngine.StartGame(c.Param("id"), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "遊戲已開始", "game_id": game.ID})
}
