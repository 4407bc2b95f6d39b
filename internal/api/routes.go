package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"undercover_web/internal/api/handlers"
	"undercover_web/internal/middleware"
	"undercover_web/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.UserService)
	roomHandler := handlers.NewRoomHandler(services.RoomService, services.GameEngine)
	gameHandler := handlers.NewGameHandler(services.GameEngine, services.SettlementService)
	leaderboardHandler := handlers.NewLeaderboardHandler(services.LeaderboardService)
	adminHandler := handlers.NewAdminHandler(services.AdminService)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocketManager, services.RoomService)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 用戶認證相關
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})

		// WebSocket 連接點，token 走查詢參數驗證
		api.GET("/rooms/:id/ws", wsHandler.HandleWebSocket)
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware())
	{
		// 個人資料
		authorized.GET("/profile", authHandler.Profile)

		// 遊戲房間相關
		rooms := authorized.Group("/rooms")
		{
			rooms.GET("", roomHandler.ListRooms)   // 獲取房間列表
			rooms.POST("", roomHandler.CreateRoom) // 創建房間
			rooms.GET("/:id", roomHandler.GetRoom) // 獲取房間信息
			rooms.DELETE("/:id", roomHandler.DeleteRoom)

			rooms.POST("/:id/join", roomHandler.JoinRoom)              // 加入房間
			rooms.POST("/:id/leave", roomHandler.LeaveRoom)            // 離開房間
			rooms.POST("/:id/kick", roomHandler.KickPlayer)            // 房主踢人
			rooms.POST("/:id/transfer", roomHandler.TransferOwnership) // 轉移房主
			rooms.POST("/:id/start", roomHandler.StartGame)            // 開始遊戲
		}

		// 遊戲進行相關
		games := authorized.Group("/games")
		{
			games.GET("/:id", gameHandler.GetState)              // 玩家視角的遊戲狀態
			games.POST("/:id/speech", gameHandler.Speak)         // 發言
			games.POST("/:id/skip", gameHandler.Skip)            // 跳過發言
			games.POST("/:id/vote", gameHandler.Vote)            // 投票
			games.POST("/:id/next_phase", gameHandler.NextPhase) // 房主強制推進
			games.POST("/:id/end", gameHandler.EndGame)          // 房主強制結束
			games.GET("/:id/summary", gameHandler.Summary)       // 對局回顧
			games.GET("/:id/settlement", gameHandler.Settlement) // 結算明細
		}

		// 排行榜
		authorized.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		authorized.GET("/leaderboard/me", leaderboardHandler.GetMyStats)

		// 題庫與 AI 玩家管理，僅限管理員
		admin := authorized.Group("/admin")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("/word-pairs", adminHandler.CreateWordPair)
			admin.POST("/word-pairs/bulk", adminHandler.BulkCreateWordPairs)
			admin.GET("/word-pairs", adminHandler.ListWordPairs)
			admin.PUT("/word-pairs/:id", adminHandler.UpdateWordPair)
			admin.DELETE("/word-pairs/:id", adminHandler.DeleteWordPair)

			admin.POST("/ai-players", adminHandler.CreateAIPlayer)
			admin.GET("/ai-players", adminHandler.ListAIPlayers)
			admin.PUT("/ai-players/:id", adminHandler.UpdateAIPlayer)
			admin.DELETE("/ai-players/:id", adminHandler.DeleteAIPlayer)
			admin.POST("/ai-players/:id/reset_stats", adminHandler.ResetAIPlayerStats)
		}
	}
}
