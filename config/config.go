package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv" // 引入這個庫來讀取 .env 檔案
	"github.com/kelseyhightower/envconfig"
	"github.com/samber/lo"
)

// Config 結構體用於儲存應用程式的配置
type Config struct {
	MongoDBURI     string        `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	DBName         string        `envconfig:"DB_NAME" default:"room_chat_db"`
	Port           string        `envconfig:"PORT" default:"8080"`
	JWTSecret      string        `envconfig:"JWT_SECRET" default:"secret"`
	TokenTTL       time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`
	RedisAddr      string        `envconfig:"REDIS_ADDR"`                    // 空字串時撤銷清單只存在記憶體中
	SendQueueSize  int           `envconfig:"SEND_QUEUE_SIZE" default:"32"` // 每個訂閱的投遞佇列容量
	HistoryLimit   int           `envconfig:"HISTORY_LIMIT" default:"100"`  // 快照最多回傳的訊息數
	MessageRate    float64       `envconfig:"MESSAGE_RATE" default:"5"`
	MessageBurst   int           `envconfig:"MESSAGE_BURST" default:"10"`
}

// LoadConfig 載入配置，優先從環境變數讀取，其次從 .env 檔案讀取。
// 無法解析或不合理的值回傳錯誤。
func LoadConfig() (*Config, error) {
	// 嘗試載入 .env 檔案，如果不存在也不會報錯
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	// ALLOWED_ORIGINS 以逗號分隔，忽略空白項目
	cfg.AllowedOrigins = lo.FilterMap(cfg.AllowedOrigins, func(o string, _ int) (string, bool) {
		o = strings.TrimSpace(o)
		return o, o != ""
	})
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "secret" {
		log.Println("JWT_SECRET not set, using the development default.")
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.TokenTTL <= 0:
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	case c.SendQueueSize <= 0:
		return fmt.Errorf("SEND_QUEUE_SIZE must be positive, got %d", c.SendQueueSize)
	case c.HistoryLimit <= 0:
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	case c.MessageRate <= 0:
		return fmt.Errorf("MESSAGE_RATE must be positive, got %g", c.MessageRate)
	case c.MessageBurst <= 0:
		return fmt.Errorf("MESSAGE_BURST must be positive, got %d", c.MessageBurst)
	}
	return nil
}
