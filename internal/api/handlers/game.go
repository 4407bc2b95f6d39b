package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"undercover_web/internal/service"
)

// GameHandler 處理與遊戲進行相關的請求
type GameHandler struct {
	gameEngine *service.GameEngine
	settlement *service.SettlementService
}

// NewGameHandler 創建一個新的 GameHandler 實例
func NewGameHandler(gameEngine *service.GameEngine, settlement *service.SettlementService) *GameHandler {
	return &GameHandler{gameEngine: gameEngine, settlement: settlement}
}

// GetState 回傳當前玩家視角的遊戲狀態
func (h *GameHandler) GetState(c *gin.Context) {
	view, err := h.gameEngine.GetPlayerView(c.Param("id"), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, view)
}

// Speak 處理發言請求
func (h *GameHandler) Speak(c *gin.Context) {
	var input struct {
		Content string `json:"content" binding:"required,max=500"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gameEngine.HandleSpeech(c.Param("id"), c.GetString("userID"), input.Content); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "發言成功"})
}

// Skip 處理跳過發言的請求
func (h *GameHandler) Skip(c *gin.Context) {
	if err := h.gameEngine.SkipSpeech(c.Param("id"), c.GetString("userID")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已跳過發言"})
}

// Vote 處理投票請求
func (h *GameHandler) Vote(c *gin.Context) {
	var input struct {
		TargetID string `json:"target_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gameEngine.HandleVote(c.Param("id"), c.GetString("userID"), input.TargetID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "投票成功"})
}

// NextPhase 處理房主強制推進階段的請求
func (h *GameHandler) NextPhase(c *gin.Context) {
	if err := h.gameEngine.ForceNextPhase(c.Param("id"), c.GetString("userID")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已推進階段"})
}

// EndGame 處理房主強制結束遊戲的請求
func (h *GameHandler) EndGame(c *gin.Context) {
	if err := h.gameEngine.ForceEndGame(c.Param("id"), c.GetString("userID")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "遊戲已結束"})
}

// Summary 回傳遊戲結束後的完整回顧
func (h *GameHandler) Summary(c *gin.Context) {
	summary, err := h.gameEngine.GetGameSummary(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Settlement 回傳遊戲的積分結算明細
func (h *GameHandler) Settlement(c *gin.Context) {
	results, err := h.settlement.GetSettlementLog(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "讀取結算資料失敗"})
		return
	}
	if results == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "找不到結算資料"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
