package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config ilovaning konfiguratsiyasi
type Config struct {
	TelegramToken string
	GeminiAPIKey  string
	GeminiModel   string
	SystemPrompt  string
	PromptPrefix  string
	Environment   string

	DataDir         string
	ViolationDBPath string // bo'sh bo'lsa audit log xotirada

	MinInterval          time.Duration
	MaxWarnings          int
	ResponderTimeout     time.Duration
	ResponderConcurrency int

	AdminIDs         []string
	AllowedUsernames []string
	DenylistTerms    []string
	DenylistFile     string
	LinkPattern      string

	WebhookURL    string
	WebhookSecret string
	ListenAddr    string
}

// IsDevelopment console loglar uchun
func (c *Config) IsDevelopment() bool {
	return c.Environment == "" || c.Environment == "development"
}

// UseWebhook webhook rejimi yoqilganmi
func (c *Config) UseWebhook() bool {
	return c.WebhookURL != ""
}

// Load konfiguratsiyani yuklash
func Load() (*Config, error) {
	// .env faylini yuklash (mavjud bo'lsa)
	_ = godotenv.Load()

	config := &Config{
		TelegramToken:        os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          envOr("GEMINI_MODEL", "gemini-1.5-flash"),
		SystemPrompt:         os.Getenv("SYSTEM_PROMPT"),
		PromptPrefix:         os.Getenv("PROMPT_PREFIX"),
		Environment:          envOr("ENVIRONMENT", "development"),
		DataDir:              envOr("DATA_DIR", "data"),
		ViolationDBPath:      "data/violations.db",
		MinInterval:          3 * time.Second,
		MaxWarnings:          3,
		ResponderTimeout:     30 * time.Second,
		ResponderConcurrency: 3,
		AdminIDs:             splitList(os.Getenv("ADMIN_IDS")),
		AllowedUsernames:     splitList(os.Getenv("ALLOWED_USERNAMES")),
		DenylistTerms:        splitList(os.Getenv("DENYLIST_TERMS")),
		DenylistFile:         os.Getenv("DENYLIST_FILE"),
		LinkPattern:          os.Getenv("LINK_PATTERN"),
		WebhookURL:           os.Getenv("WEBHOOK_URL"),
		WebhookSecret:        os.Getenv("WEBHOOK_SECRET"),
		ListenAddr:           envOr("LISTEN_ADDR", ":8080"),
	}

	if dbPath, ok := os.LookupEnv("VIOLATION_DB_PATH"); ok {
		config.ViolationDBPath = strings.TrimSpace(dbPath)
	}

	var err error
	if config.MinInterval, err = durationEnv("MIN_INTERVAL", config.MinInterval); err != nil {
		return nil, err
	}
	if config.ResponderTimeout, err = durationEnv("RESPONDER_TIMEOUT", config.ResponderTimeout); err != nil {
		return nil, err
	}
	if config.MaxWarnings, err = intEnv("MAX_WARNINGS", config.MaxWarnings); err != nil {
		return nil, err
	}
	if config.ResponderConcurrency, err = intEnv("RESPONDER_CONCURRENCY", config.ResponderConcurrency); err != nil {
		return nil, err
	}

	if config.WebhookSecret == "" {
		config.WebhookSecret = uuid.NewString()
	}

	// Validatsiya
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable bo'sh")
	}
	if config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable bo'sh")
	}
	if config.MaxWarnings < 1 {
		return nil, fmt.Errorf("MAX_WARNINGS kamida 1 bo'lishi kerak: %d", config.MaxWarnings)
	}
	if config.ResponderConcurrency < 1 {
		return nil, fmt.Errorf("RESPONDER_CONCURRENCY kamida 1 bo'lishi kerak: %d", config.ResponderConcurrency)
	}
	if config.ResponderTimeout <= 0 {
		return nil, fmt.Errorf("RESPONDER_TIMEOUT musbat bo'lishi kerak")
	}
	if config.MinInterval < 0 {
		return nil, fmt.Errorf("MIN_INTERVAL manfiy bo'lmasligi kerak")
	}

	return config, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// durationEnv "3s" yoki butun son (soniya)
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s noto'g'ri formatda: %v", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s noto'g'ri formatda: %v", key, err)
	}
	return n, nil
}

// splitList vergul bilan ajratilgan ro'yxat
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
