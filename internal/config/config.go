package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Retrieval RetrievalConfig
	Events    EventsConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	AuthEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
	Anthropic    string
	Groq         string
	Jina         string
}

type AIConfig struct {
	EmbeddingProvider     string // "ollama", "gemini" or "jina"
	EmbeddingModel        string
	OllamaBaseURL         string
	LLMProvider           string // "groq", "openai", "anthropic", "gemini", "ollama"
	LLMModel              string
	LLMBaseURL            string
	ClassifierTemperature float64
	GenerationTemperature float64
}

type RetrievalConfig struct {
	QueryLimit        int
	TopK              int
	HistoryWindow     int
	EmbeddingCacheTTL time.Duration
	SessionTTL        time.Duration
}

type EventsConfig struct {
	IndexDocumentTopic string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/websocket.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			AuthEnabled:        getEnvAsBool("AUTH_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			Anthropic:    getEnv("ANTHROPIC_API_KEY", ""),
			Groq:         getEnv("GROQ_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:     getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:        getEnv("EMBEDDING_MODEL", "bge-large"),
			OllamaBaseURL:         getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:           getEnv("LLM_PROVIDER", "groq"),
			LLMModel:              getEnv("LLM_MODEL", "llama-3.1-8b-instant"),
			LLMBaseURL:            getEnv("LLM_BASE_URL", ""),
			ClassifierTemperature: getEnvAsFloat("CLASSIFIER_TEMPERATURE", 0.1),
			GenerationTemperature: getEnvAsFloat("GENERATION_TEMPERATURE", 0.7),
		},
		Retrieval: RetrievalConfig{
			QueryLimit:        getEnvAsInt("RETRIEVAL_QUERY_LIMIT", 5),
			TopK:              getEnvAsInt("RETRIEVAL_TOP_K", 3),
			HistoryWindow:     getEnvAsInt("HISTORY_WINDOW", 6),
			EmbeddingCacheTTL: time.Duration(getEnvAsInt("EMBEDDING_CACHE_TTL_MINUTES", 1440)) * time.Minute,
			SessionTTL:        time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		},
		Events: EventsConfig{
			IndexDocumentTopic: getEnv("INDEX_DOCUMENT_TOPIC_NAME", "INDEX_CLINICAL_DOCUMENT"),
		},
	}
}

// LLMAPIKey picks the key matching the configured LLM provider.
func (c *Config) LLMAPIKey() string {
	switch c.Ai.LLMProvider {
	case "openai":
		return c.Keys.OpenAI
	case "anthropic":
		return c.Keys.Anthropic
	case "groq":
		return c.Keys.Groq
	case "gemini":
		return c.Keys.GoogleGemini
	}
	return ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
