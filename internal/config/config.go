package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	DataDir string
	// BackendURL selects the HTTP backend; empty means the local node file.
	BackendURL        string
	Fiat              string
	StartBalance      int64
	InvoiceExpirySecs uint32
	DaemonAddr        string
	TelegramToken     string
	// TelegramChatIDs limits the bot to these chats; empty serves any chat.
	TelegramChatIDs   []int64
	LogLevel          string
	LogOutput         string
}

// Load reads .env when present, then the environment.
func Load(log *zap.Logger) *Config {
	if err := godotenv.Load(); err != nil && log != nil {
		log.Debug("no .env file, using environment only")
	}

	return &Config{
		DataDir:           getEnv("WALLET_DATA_DIR", "data"),
		BackendURL:        getEnv("WALLET_BACKEND_URL", ""),
		Fiat:              strings.ToUpper(getEnv("WALLET_FIAT", "USD")),
		StartBalance:      getInt("WALLET_START_BALANCE", 100_000),
		InvoiceExpirySecs: uint32(getInt("WALLET_INVOICE_EXPIRY", 3600)),
		DaemonAddr:        getEnv("WALLETD_ADDR", ":8080"),
		TelegramToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatIDs:   getIntList("WALLET_TELEGRAM_CHAT_IDS"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogOutput:         getEnv("LOG_OUTPUT", "stderr"),
	}
}

func (c *Config) NodePath() string     { return filepath.Join(c.DataDir, "node.json") }
func (c *Config) RatesPath() string    { return filepath.Join(c.DataDir, "rates.json") }
func (c *Config) SettingsPath() string { return filepath.Join(c.DataDir, "settings.json") }
func (c *Config) BackupsDir() string   { return filepath.Join(c.DataDir, "backups") }
func (c *Config) ReportsDir() string   { return filepath.Join(c.DataDir, "reports") }

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int64) int64 {
	v, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// getIntList parses a comma separated list, skipping malformed entries.
func getIntList(key string) []int64 {
	var out []int64
	for _, f := range strings.Split(getEnv(key, ""), ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err == nil {
			out = append(out, v)
		}
	}
	return out
}
