package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Groq      GroqConfig
	Search    SearchConfig
	Knowledge KnowledgeConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type GroqConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type SearchConfig struct {
	SerpAPIKey      string
	Timeout         time.Duration
	MaxResults      int
	OfficialDomains []string
}

type KnowledgeConfig struct {
	// Path to a knowledge base JSON file. Empty means the embedded dataset.
	Path string
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine, environment variables are used directly

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	llmTimeout, _ := strconv.Atoi(getEnv("GROQ_TIMEOUT", "60"))
	llmMaxTokens, _ := strconv.Atoi(getEnv("GROQ_MAX_TOKENS", "1024"))
	searchTimeout, _ := strconv.Atoi(getEnv("SEARCH_TIMEOUT", "15"))
	searchMax, _ := strconv.Atoi(getEnv("SEARCH_MAX_RESULTS", "8"))

	officialDomains := strings.Split(getEnv(
		"SEARCH_OFFICIAL_DOMAINS",
		"ug.edu.gh,knust.edu.gh,ucc.edu.gh,uds.edu.gh,upsa.edu.gh,uenr.edu.gh,uhas.edu.gh",
	), ",")
	for i := range officialDomains {
		officialDomains[i] = strings.TrimSpace(officialDomains[i])
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8000"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "glinax_chatbot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", "dev-secret"),
		},
		Groq: GroqConfig{
			APIKey:    getEnv("GROQ_API_KEY", ""),
			BaseURL:   getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:     getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
			MaxTokens: llmMaxTokens,
			Timeout:   time.Duration(llmTimeout) * time.Second,
		},
		Search: SearchConfig{
			SerpAPIKey:      getEnv("SERPAPI_KEY", ""),
			Timeout:         time.Duration(searchTimeout) * time.Second,
			MaxResults:      searchMax,
			OfficialDomains: officialDomains,
		},
		Knowledge: KnowledgeConfig{
			Path: getEnv("KNOWLEDGE_PATH", ""),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
