package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config 彙整整個應用程式的設定
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	LLM    LLMConfig
	Game   GameConfig
}

type ServerConfig struct {
	Address string
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     int
	// 連線池設定，針對小規格主機（2C2G）調低
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// LLMConfig 是建立新 AI 玩家時的預設 API 設定
// 每個 AI 玩家仍可擁有各自獨立的 API 設定
type LLMConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	MaxTokens      int
	Temperature    float64
	TimeoutSeconds int
	DailyLimit     int
	FallbackModels []string
}

type GameConfig struct {
	MaxPlayersPerRoom int
	MaxConnections    int // WebSocket 連線上限
	RoomIdleMinutes   int // 閒置房間回收時間
	SpeechTimeLimit   int // 每次發言秒數
	VoteTimeLimit     int // 投票階段秒數
}

// Load 讀取 yaml 設定檔並套用預設值
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./pkg/config")
	viper.AddConfigPath(".")

	// 允許以環境變數覆寫，例如 UNDERCOVER_DB_PASSWORD
	viper.SetEnvPrefix("undercover")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// 找不到設定檔時改用預設值，其他錯誤直接回報
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.address", ":8080")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.user", "postgres")
	viper.SetDefault("db.name", "undercover_game")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.maxopenconns", 8)
	viper.SetDefault("db.maxidleconns", 4)

	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("jwt.expirehours", 240)

	viper.SetDefault("llm.model", "moonshotai/kimi-k2-instruct")
	viper.SetDefault("llm.maxtokens", 150)
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.timeoutseconds", 30)
	viper.SetDefault("llm.dailylimit", 1000)
	viper.SetDefault("llm.fallbackmodels", []string{
		"moonshotai/kimi-k2-instruct",
		"deepseek-ai/deepseek-r1-distill-llama-8b",
		"google/gemini-2.0-flash-lite-001",
	})

	viper.SetDefault("game.maxplayersperroom", 8)
	viper.SetDefault("game.maxconnections", 50)
	viper.SetDefault("game.roomidleminutes", 30)
	viper.SetDefault("game.speechtimelimit", 60)
	viper.SetDefault("game.votetimelimit", 30)
}
