package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"undercover_web/internal/service"
)

// LeaderboardHandler 處理排行榜相關的請求
type LeaderboardHandler struct {
	leaderboard *service.LeaderboardService
}

// NewLeaderboardHandler 創建一個新的 LeaderboardHandler 實例
func NewLeaderboardHandler(leaderboard *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// GetLeaderboard 回傳積分排行榜
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.leaderboard.GetLeaderboard(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "獲取排行榜失敗"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMyStats 回傳當前用戶的個人戰績與名次
func (h *LeaderboardHandler) GetMyStats(c *gin.Context) {
	stats, err := h.leaderboard.GetPersonalStats(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "用戶不存在"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
