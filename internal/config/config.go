package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Chat   ChatConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Chat: chat}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr          string
	AllowedOrigin string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	origin := getEnvOrDefault("CORS_ALLOWED_ORIGIN", "http://localhost:5174")

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":3000" 或 "127.0.0.1:3000"。
		return ServerConfig{Addr: port, AllowedOrigin: origin}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigin: origin}, nil
}

// Provider 选择远程补全接口的实现。
type Provider string

const (
	ProviderDeepSeek Provider = "deepseek"
	ProviderOpenAI   Provider = "openai"
	ProviderArk      Provider = "ark"
	ProviderHTTP     Provider = "http"
)

// AIConfig 描述大模型相关配置。凭证按会话传入，不在此处配置。
type AIConfig struct {
	Provider     Provider
	BaseURL      string
	Region       string
	DefaultModel string
	Temperature  float32
	MaxTokens    int
	Timeout      time.Duration
}

func loadAIConfig() (AIConfig, error) {
	provider := Provider(strings.ToLower(getEnvOrDefault("AI_PROVIDER", string(ProviderDeepSeek))))
	switch provider {
	case ProviderDeepSeek, ProviderOpenAI, ProviderArk, ProviderHTTP:
	default:
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}

	temperature := float32(0.7)
	if override, err := parseOptionalFloatEnv("AI_TEMPERATURE"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		temperature = float32(*override)
	}

	maxTokens := 2000
	if override, err := parseOptionalIntEnv("AI_MAX_TOKENS"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return AIConfig{}, fmt.Errorf("invalid AI_MAX_TOKENS value %d: must be positive", *override)
		}
		maxTokens = *override
	}

	timeout, err := parseDurationEnv("AI_TIMEOUT", 60*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	baseURL := defaultBaseURL(provider)
	if override := strings.TrimSpace(os.Getenv("AI_BASE_URL")); override != "" {
		baseURL = override
	}

	return AIConfig{
		Provider:     provider,
		BaseURL:      strings.TrimRight(baseURL, "/"),
		Region:       getEnvOrDefault("ARK_REGION", "cn-beijing"),
		DefaultModel: getEnvOrDefault("AI_DEFAULT_MODEL", "deepseek-reasoner"),
		Temperature:  temperature,
		MaxTokens:    maxTokens,
		Timeout:      timeout,
	}, nil
}

func defaultBaseURL(provider Provider) string {
	if provider == ProviderArk {
		return "https://ark.cn-beijing.volces.com/api/v3"
	}
	return "https://api.deepseek.com/v1"
}

// HistoryMode 决定发送给模型的上下文范围。
type HistoryMode string

const (
	// HistoryLatest 只发送最新一条用户消息。
	HistoryLatest HistoryMode = "latest"
	// HistoryFull 发送完整会话记录。
	HistoryFull HistoryMode = "full"
)

// ChatConfig 描述会话存储与清理策略。
type ChatConfig struct {
	HistoryMode    HistoryMode
	StoreReasoning bool
	SweepInterval  time.Duration
	MaxAge         time.Duration
}

func loadChatConfig() (ChatConfig, error) {
	mode := HistoryMode(strings.ToLower(getEnvOrDefault("CHAT_HISTORY_MODE", string(HistoryLatest))))
	if mode != HistoryLatest && mode != HistoryFull {
		return ChatConfig{}, fmt.Errorf("invalid CHAT_HISTORY_MODE value %q", mode)
	}

	storeReasoning, err := parseBoolEnv("CHAT_STORE_REASONING", false)
	if err != nil {
		return ChatConfig{}, err
	}

	interval, err := parseDurationEnv("CHAT_SWEEP_INTERVAL", time.Hour)
	if err != nil {
		return ChatConfig{}, err
	}

	maxAge, err := parseDurationEnv("CHAT_MAX_AGE", 24*time.Hour)
	if err != nil {
		return ChatConfig{}, err
	}

	return ChatConfig{
		HistoryMode:    mode,
		StoreReasoning: storeReasoning,
		SweepInterval:  interval,
		MaxAge:         maxAge,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
