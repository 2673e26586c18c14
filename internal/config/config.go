package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the external configuration surface. It is constructed once in main
// and handed to each component; policy values never hide inside business logic.
type Config struct {
	LLMProvider       string
	EmbeddingProvider string

	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string

	LLMModel        string
	EmbeddingModel  string
	EmbeddingDim    int

	QdrantHost     string
	QdrantPort     int
	QdrantAPIKey   string
	CollectionName string

	RedisAddr     string
	RedisPassword string

	DocumentSource        string
	DocumentID            string
	GoogleCredentialsFile string

	SyncInterval time.Duration
	ChunkSize    int
	ChunkOverlap int
	Boundary     string

	RetrievalTopK int
	MinSimilarity float32
	SessionWindow int

	AuthToken       string
	OutboundWebhook string
}

func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
		EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "google"),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),

		LLMModel:       getEnv("LLM_MODEL", "gemini-2.5-flash-lite-preview-09-2025"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "gemini-embedding-001"),
		EmbeddingDim:   getEnvInt("EMBEDDING_DIM", 1536),

		QdrantHost:     getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:     getEnvInt("QDRANT_PORT", 6334),
		QdrantAPIKey:   getEnv("QDRANT_API_KEY", ""),
		CollectionName: getEnv("QDRANT_COLLECTION", "doc-chunks"),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		DocumentSource:        getEnv("DOCUMENT_SOURCE", "googledocs"),
		DocumentID:            getEnv("DOCUMENT_ID", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "service_account.json"),

		SyncInterval: getEnvDuration("SYNC_INTERVAL", 15*time.Minute),
		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 150),
		Boundary:     getEnv("CHUNK_BOUNDARY", "sentence"),

		RetrievalTopK: getEnvInt("RETRIEVAL_TOP_K", 5),
		MinSimilarity: getEnvFloat32("MIN_SIMILARITY", 0.35),
		SessionWindow: getEnvInt("SESSION_WINDOW", 5),

		AuthToken:       getEnv("AUTH_TOKEN", ""),
		OutboundWebhook: getEnv("OUTBOUND_WEBHOOK", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	AuthToken = cfg.AuthToken
	//an empty token means local development without auth
	NoAuthBypass = cfg.AuthToken == ""

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("LLM_PROVIDER=gemini requires GEMINI_API_KEY")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("LLM_PROVIDER=openai requires OPENAI_API_KEY")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("LLM_PROVIDER=anthropic requires ANTHROPIC_API_KEY")
		}
	case "ollama":
		//local, no key
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.EmbeddingProvider {
	case "google":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("EMBEDDING_PROVIDER=google requires GEMINI_API_KEY")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("EMBEDDING_PROVIDER=openai requires OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q", c.EmbeddingProvider)
	}

	if c.DocumentID == "" {
		return fmt.Errorf("DOCUMENT_ID is required")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("MIN_SIMILARITY must be within [0,1]")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
