package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 儲存 HTTP API 及外部相依的執行設定。
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	DB       DBConfig       `yaml:"db"`
	Auth     AuthConfig     `yaml:"auth"`
	Fixtures FixturesConfig `yaml:"fixtures"`
	Treasure TreasureConfig `yaml:"treasure"`
	Notifier NotifierConfig `yaml:"notifier"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
	// AllowedOrigins 為空時允許任何來源。
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DBConfig struct {
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxIdleTime  time.Duration `yaml:"max_idle_time"`
}

type AuthConfig struct {
	TokenTTL     time.Duration `yaml:"token_ttl"`
	Secret       string        `yaml:"secret"`
	SeedPassword string        `yaml:"seed_password"`
	// LoginRate 為每個來源 IP 每秒允許的登入次數，0 表示不限制。
	LoginRate  float64 `yaml:"login_rate"`
	LoginBurst int     `yaml:"login_burst"`
}

// FixturesConfig 指定啟動時載入的 JSON 資料檔。
type FixturesConfig struct {
	Companies     string `yaml:"companies"`
	Industries    string `yaml:"industries"`
	ReloadOnStart bool   `yaml:"reload_on_start"`
}

type TreasureConfig struct {
	Years []string `yaml:"years"`
	// ZeroAsMissing 為 nil 時視為 true。
	ZeroAsMissing *bool              `yaml:"zero_as_missing"`
	Thresholds    map[string]float64 `yaml:"thresholds"`
}

// ZeroMissing 回傳是否把平均為 0 視為缺資料。
func (t TreasureConfig) ZeroMissing() bool {
	return t.ZeroAsMissing == nil || *t.ZeroAsMissing
}

type NotifierConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Token    string        `yaml:"token"`
	ChatID   int64         `yaml:"chat_id"`
	Interval time.Duration `yaml:"interval"`
	// Schedule 為 cron 表示式（例如 "0 8 * * 1-5"），設定後取代 Interval。
	Schedule string `yaml:"schedule"`
	TopN     int    `yaml:"top_n"`
	BaseURL  string `yaml:"base_url"`
}

// LoadFromFile 從 YAML 組態檔載入設定。
func LoadFromFile(path string) (Config, error) {
	// 嘗試載入 .env 檔案（如果存在）
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg = applyDefaults(cfg)
	cfg = applyEnv(cfg)
	return cfg, nil
}

func applyDefaults(cfg Config) Config {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8000"
	}
	if cfg.DB.MaxOpenConns == 0 {
		cfg.DB.MaxOpenConns = 5
	}
	if cfg.DB.MaxIdleConns == 0 {
		cfg.DB.MaxIdleConns = 2
	}
	if cfg.DB.MaxIdleTime == 0 {
		cfg.DB.MaxIdleTime = 15 * time.Minute
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 12 * time.Hour
	}
	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = "dev-secret-change-me"
	}
	if cfg.Auth.SeedPassword == "" {
		cfg.Auth.SeedPassword = "password123"
	}
	if cfg.Auth.LoginRate == 0 {
		cfg.Auth.LoginRate = 1
	}
	if cfg.Auth.LoginBurst == 0 {
		cfg.Auth.LoginBurst = 5
	}
	if cfg.Fixtures.Companies == "" {
		cfg.Fixtures.Companies = "data/treasure_data.json"
	}
	if len(cfg.Treasure.Years) == 0 {
		cfg.Treasure.Years = []string{"2022", "2023", "2024"}
	}
	if cfg.Notifier.Telegram.Interval == 0 {
		cfg.Notifier.Telegram.Interval = 24 * time.Hour
	}
	if cfg.Notifier.Telegram.TopN == 0 {
		cfg.Notifier.Telegram.TopN = 5
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	if val := os.Getenv("HTTP_ADDR"); val != "" {
		cfg.HTTP.Addr = val
	}
	if val := os.Getenv("PORT"); val != "" {
		cfg.HTTP.Addr = ":" + val
	}
	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		cfg.HTTP.AllowedOrigins = splitList(val)
	}
	if val := os.Getenv("DB_DSN"); val != "" {
		cfg.DB.DSN = val
	}
	if val := os.Getenv("AUTH_SECRET"); val != "" {
		cfg.Auth.Secret = val
	}
	if val := os.Getenv("COMPANY_FIXTURE"); val != "" {
		cfg.Fixtures.Companies = val
	}
	if val := os.Getenv("INDUSTRY_FIXTURE"); val != "" {
		cfg.Fixtures.Industries = val
	}
	if val := os.Getenv("FIXTURES_RELOAD_ON_START"); val != "" {
		cfg.Fixtures.ReloadOnStart = (val == "true")
	}
	if val := os.Getenv("TREASURE_YEARS"); val != "" {
		cfg.Treasure.Years = splitList(val)
	}
	if val := os.Getenv("TREASURE_ZERO_AS_MISSING"); val != "" {
		on := val == "true"
		cfg.Treasure.ZeroAsMissing = &on
	}
	if val := os.Getenv("TELEGRAM_TOKEN"); val != "" {
		cfg.Notifier.Telegram.Token = val
	}
	if val := os.Getenv("TELEGRAM_CHAT_ID"); val != "" {
		if id, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Notifier.Telegram.ChatID = id
		}
	}
	if val := os.Getenv("TELEGRAM_ENABLED"); val != "" {
		cfg.Notifier.Telegram.Enabled = (val == "true")
	}
	if val := os.Getenv("TELEGRAM_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Notifier.Telegram.Interval = d
		}
	}
	if val := os.Getenv("TELEGRAM_SCHEDULE"); val != "" {
		cfg.Notifier.Telegram.Schedule = val
	}
	if val := os.Getenv("LOGIN_RATE"); val != "" {
		if r, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Auth.LoginRate = r
		}
	}
	return cfg
}

func splitList(val string) []string {
	var out []string
	for _, p := range strings.Split(val, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
