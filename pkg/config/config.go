package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		BaseURL     string   `yaml:"base_url"`
		Models      []string `yaml:"models"` // ordered: primary first, then fallbacks
		MaxTokens   int      `yaml:"max_tokens"`
		Temperature float64  `yaml:"temperature"`
		RateLimit   float64  `yaml:"rate_limit"`
		Retry       struct {
			MaxAttempts int     `yaml:"max_attempts"`
			BaseDelayMS int     `yaml:"base_delay_ms"`
			Jitter      float64 `yaml:"jitter"`
		} `yaml:"retry"`
	} `yaml:"llm"`

	Database struct {
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
	} `yaml:"database"`

	Chunker struct {
		MaxChars int `yaml:"max_chars"`
	} `yaml:"chunker"`

	Retrieval struct {
		TopK          int    `yaml:"top_k"`
		MinKeywordLen int    `yaml:"min_keyword_len"`
		Fallback      string `yaml:"fallback"` // strict or lenient
	} `yaml:"retrieval"`

	Chat struct {
		HistoryWindow int    `yaml:"history_window"`
		Language      string `yaml:"language"`
	} `yaml:"chat"`

	Study struct {
		MCQCount         int `yaml:"mcq_count"`
		ShortAnswerCount int `yaml:"short_answer_count"`
	} `yaml:"study"`

	Exam struct {
		MCQCount   int `yaml:"mcq_count"`
		EssayCount int `yaml:"essay_count"`
	} `yaml:"exam"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/asknotes/config.yaml"),
			"/etc/asknotes/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if len(config.LLM.Models) == 0 {
		config.LLM.Models = []string{"mistral"}
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}
	if config.LLM.RateLimit == 0 {
		config.LLM.RateLimit = 2.0
	}
	if config.LLM.Retry.MaxAttempts == 0 {
		config.LLM.Retry.MaxAttempts = 3
	}
	if config.LLM.Retry.BaseDelayMS == 0 {
		config.LLM.Retry.BaseDelayMS = 500
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "chunks"
	}

	if config.Chunker.MaxChars == 0 {
		config.Chunker.MaxChars = 800
	}

	if config.Retrieval.TopK == 0 {
		config.Retrieval.TopK = 6
	}
	if config.Retrieval.MinKeywordLen == 0 {
		config.Retrieval.MinKeywordLen = 2
	}
	if config.Retrieval.Fallback == "" {
		config.Retrieval.Fallback = "strict"
	}

	if config.Chat.HistoryWindow == 0 {
		config.Chat.HistoryWindow = 6
	}
	if config.Chat.Language == "" {
		config.Chat.Language = "English"
	}

	if config.Study.MCQCount == 0 {
		config.Study.MCQCount = 5
	}
	if config.Study.ShortAnswerCount == 0 {
		config.Study.ShortAnswerCount = 3
	}

	if config.Exam.MCQCount == 0 {
		config.Exam.MCQCount = 3
	}
	if config.Exam.EssayCount == 0 {
		config.Exam.EssayCount = 2
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
}
