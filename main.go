package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"undercover_web/internal/api"
	"undercover_web/internal/models"
	"undercover_web/internal/repository"
	"undercover_web/internal/service"
	"undercover_web/internal/storage"
	"undercover_web/internal/utils"
	"undercover_web/pkg/config"
)

func main() {
	// 載入應用程式配置
	// 從配置文件中讀取設置，如數據庫連接信息和服務器地址等
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化 JWT 簽名設定
	utils.InitJWT(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// 初始化資料庫連接
	// 使用配置中的信息建立到 PostgreSQL 數據庫的連接
	db, err := storage.NewPostgresDB(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	// 確保在程序結束時關閉數據庫連接
	defer db.Close()

	// 自動遷移資料庫結構
	// 根據定義的模型自動創建或更新數據庫表結構
	if err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Game{},
		&models.Participant{},
		&models.Speech{},
		&models.Vote{},
		&models.WordPair{},
		&models.AIPlayer{},
	); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	// 初始化 Redis 連接，用於遊戲狀態與排行榜快取
	redisClient, err := storage.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer redisClient.Close()

	// 初始化 repositories
	repos := repository.NewRepositories(db)

	// 初始化 services
	services := service.NewServices(repos, redisClient, cfg)

	// 啟動閒置房間的背景清理
	services.RoomService.StartCleanupLoop(5 * time.Minute)

	// 設置 Gin 路由
	// 創建一個默認的 Gin 路由器並設置路由
	r := gin.Default()
	api.SetupRoutes(r, services)

	// 啟動伺服器
	// 使用配置中指定的地址啟動 HTTP 服務器
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
