package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	arkembedding "github.com/cloudwego/eino-ext/components/embedding/ark"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every service setting.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Retrieval RetrievalConfig
	Agent     AgentConfig
	Session   SessionConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	retrieval, err := loadRetrievalConfig()
	if err != nil {
		return nil, err
	}

	agent, err := loadAgentConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Retrieval: retrieval, Agent: agent, Session: session}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the generation and classification models.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	IntentModel string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds the response-generation model instance.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

// NewIntentModel builds the classification model instance. Temperature is
// pinned to zero so the same message always yields the same label.
func (c AIConfig) NewIntentModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	zero := float32(0)
	intentModel := c.IntentModel
	if intentModel == "" {
		intentModel = c.Model
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       intentModel,
		Temperature: &zero,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		IntentModel: strings.TrimSpace(os.Getenv("ARK_INTENT_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// RetrievalConfig describes the vector-search backend.
type RetrievalConfig struct {
	DatabaseURL    string
	EmbeddingModel string
	TopK           int
	Timeout        time.Duration
}

// Enabled reports whether the vector backend can be wired at all.
func (c RetrievalConfig) Enabled() bool {
	return c.DatabaseURL != "" && c.EmbeddingModel != ""
}

// NewEmbedder builds the query-embedding client. The embedding model must
// match the one the ingestion pipeline used to build the knowledge table.
func (c RetrievalConfig) NewEmbedder(ctx context.Context, ai AIConfig) (embedding.Embedder, error) {
	if c.EmbeddingModel == "" {
		return nil, fmt.Errorf("ARK_EMBEDDING_MODEL is required for retrieval")
	}

	return arkembedding.NewEmbedder(ctx, &arkembedding.EmbeddingConfig{
		BaseURL:   ai.BaseURL,
		Region:    ai.Region,
		APIKey:    ai.APIKey,
		AccessKey: ai.AccessKey,
		SecretKey: ai.SecretKey,
		Model:     c.EmbeddingModel,
	})
}

func loadRetrievalConfig() (RetrievalConfig, error) {
	topK := 3
	if override, err := parseOptionalIntEnv("RETRIEVAL_TOP_K"); err != nil {
		return RetrievalConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return RetrievalConfig{}, fmt.Errorf("RETRIEVAL_TOP_K must not be negative")
		}
		topK = *override
	}

	timeoutSeconds := 10
	if override, err := parseOptionalIntEnv("RETRIEVAL_TIMEOUT"); err != nil {
		return RetrievalConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutSeconds = *override
	}

	return RetrievalConfig{
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		EmbeddingModel: strings.TrimSpace(os.Getenv("ARK_EMBEDDING_MODEL")),
		TopK:           topK,
		Timeout:        time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// AgentConfig describes the workflow parameters. The intent label set changed
// between product iterations, so it lives here instead of in code.
type AgentConfig struct {
	IntentLabels   []string
	FallbackIntent string
	MaxToolRounds  int
}

func loadAgentConfig() (AgentConfig, error) {
	labels := splitCSV(getEnvOrDefault("INTENT_LABELS", "symptom,general_health"))
	if len(labels) == 0 {
		return AgentConfig{}, fmt.Errorf("INTENT_LABELS must name at least one label")
	}

	fallback := strings.ToLower(getEnvOrDefault("INTENT_FALLBACK", "general_health"))

	maxToolRounds := 3
	if override, err := parseOptionalIntEnv("AGENT_MAX_TOOL_ROUNDS"); err != nil {
		return AgentConfig{}, err
	} else if override != nil && *override > 0 {
		maxToolRounds = *override
	}

	return AgentConfig{
		IntentLabels:   labels,
		FallbackIntent: fallback,
		MaxToolRounds:  maxToolRounds,
	}, nil
}

// SessionConfig describes the memory store bounds.
type SessionConfig struct {
	// HistoryLimit caps stored turns per session; 0 keeps history unbounded.
	HistoryLimit int
}

func loadSessionConfig() (SessionConfig, error) {
	limit := 0
	if override, err := parseOptionalIntEnv("SESSION_HISTORY_LIMIT"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return SessionConfig{}, fmt.Errorf("SESSION_HISTORY_LIMIT must not be negative")
		}
		limit = *override
	}

	return SessionConfig{HistoryLimit: limit}, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.ToLower(strings.TrimSpace(part)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
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
