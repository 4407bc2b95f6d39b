package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"undercover_web/internal/models"
	"undercover_web/internal/service"
)

// AdminHandler 處理題庫與 AI 玩家的管理請求
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler 創建一個新的 AdminHandler 實例
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// WordPairInput 定義詞組的請求結構
type WordPairInput struct {
	CivilianWord   string `json:"civilian_word" binding:"required,max=30"`
	UndercoverWord string `json:"undercover_word" binding:"required,max=30"`
	Category       string `json:"category" binding:"max=30"`
	Difficulty     int    `json:"difficulty" binding:"required,min=1,max=5"`
}

// CreateWordPair 新增詞組
func (h *AdminHandler) CreateWordPair(c *gin.Context) {
	var input WordPairInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wp := models.WordPair{
		CivilianWord:   input.CivilianWord,
		UndercoverWord: input.UndercoverWord,
		Category:       input.Category,
		Difficulty:     input.Difficulty,
	}
	if err := h.adminService.CreateWordPair(&wp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, wp)
}

// BulkCreateWordPairs 批次匯入詞組，逐筆驗證並回報失敗項目
func (h *AdminHandler) BulkCreateWordPairs(c *gin.Context) {
	var input struct {
		WordPairs []WordPairInput `json:"word_pairs" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pairs := make([]*models.WordPair, 0, len(input.WordPairs))
	for _, in := range input.WordPairs {
		pairs = append(pairs, &models.WordPair{
			CivilianWord:   in.CivilianWord,
			UndercoverWord: in.UndercoverWord,
			Category:       in.Category,
			Difficulty:     in.Difficulty,
		})
	}

	created, failed := h.adminService.BulkCreateWordPairs(pairs)
	c.JSON(http.StatusOK, gin.H{
		"created": created,
		"failed":  failed,
	})
}

// ListWordPairs 列出詞組，可依分類與難度過濾
func (h *AdminHandler) ListWordPairs(c *gin.Context) {
	difficulty, _ := strconv.Atoi(c.Query("difficulty"))

	pairs, err := h.adminService.ListWordPairs(c.Query("category"), difficulty)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "獲取詞組列表失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"word_pairs": pairs, "total": len(pairs)})
}

// UpdateWordPair 更新詞組
func (h *AdminHandler) UpdateWordPair(c *gin.Context) {
	wp, err := h.adminService.GetWordPair(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "詞組不存在"})
		return
	}

	var input WordPairInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wp.CivilianWord = input.CivilianWord
	wp.UndercoverWord = input.UndercoverWord
	wp.Category = input.Category
	wp.Difficulty = input.Difficulty

	if err := h.adminService.UpdateWordPair(wp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, wp)
}

// DeleteWordPair 刪除詞組
func (h *AdminHandler) DeleteWordPair(c *gin.Context) {
	if err := h.adminService.DeleteWordPair(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "刪除詞組失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "詞組已刪除"})
}

// AIPlayerInput 定義 AI 玩家模板的請求結構
type AIPlayerInput struct {
	Name        string               `json:"name" binding:"required,max=30"`
	Difficulty  models.AIDifficulty  `json:"difficulty"`
	Personality models.AIPersonality `json:"personality"`
	APIBaseURL  string               `json:"api_base_url"`
	APIKey      string               `json:"api_key"`
	ModelName   string               `json:"model_name"`
}

// CreateAIPlayer 新增 AI 玩家模板
func (h *AdminHandler) CreateAIPlayer(c *gin.Context) {
	var input AIPlayerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ai := models.AIPlayer{
		Name:        input.Name,
		Difficulty:  input.Difficulty,
		Personality: input.Personality,
		APIBaseURL:  input.APIBaseURL,
		APIKey:      input.APIKey,
		ModelName:   input.ModelName,
	}
	if err := h.adminService.CreateAIPlayer(&ai); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, ai)
}

// ListAIPlayers 列出 AI 玩家模板
func (h *AdminHandler) ListAIPlayers(c *gin.Context) {
	onlyActive := c.DefaultQuery("active", "false") == "true"

	ais, err := h.adminService.ListAIPlayers(onlyActive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "獲取 AI 玩家列表失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ai_players": ais, "total": len(ais)})
}

// UpdateAIPlayer 更新 AI 玩家模板，包括啟用狀態
func (h *AdminHandler) UpdateAIPlayer(c *gin.Context) {
	ai, err := h.adminService.GetAIPlayer(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "AI 玩家不存在"})
		return
	}

	var input struct {
		AIPlayerInput
		IsActive *bool `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ai.Name = input.Name
	if input.Difficulty != "" {
		ai.Difficulty = input.Difficulty
	}
	if input.Personality != "" {
		ai.Personality = input.Personality
	}
	ai.APIBaseURL = input.APIBaseURL
	if input.APIKey != "" {
		ai.APIKey = input.APIKey
	}
	ai.ModelName = input.ModelName
	if input.IsActive != nil {
		ai.IsActive = *input.IsActive
	}

	if err := h.adminService.UpdateAIPlayer(ai); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ai)
}

// ResetAIPlayerStats 將 AI 玩家的對局統計歸零
func (h *AdminHandler) ResetAIPlayerStats(c *gin.Context) {
	ai, err := h.adminService.ResetAIPlayerStats(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "AI 玩家不存在"})
		return
	}

	c.JSON(http.StatusOK, ai)
}

// DeleteAIPlayer 刪除 AI 玩家模板
func (h *AdminHandler) DeleteAIPlayer(c *gin.Context) {
	if err := h.adminService.DeleteAIPlayer(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "刪除 AI 玩家失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "AI 玩家已刪除"})
}
