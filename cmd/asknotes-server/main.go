package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/asknotes/asknotes/internal/types"
	"github.com/asknotes/asknotes/pkg/assistant"
	"github.com/asknotes/asknotes/pkg/config"
	"github.com/asknotes/asknotes/pkg/ingest"
	"github.com/asknotes/asknotes/pkg/llm"
	"github.com/asknotes/asknotes/pkg/retriever"
	"github.com/asknotes/asknotes/pkg/store"
	"github.com/asknotes/asknotes/server"
)

func main() {
	var configPath, addr string
	flag.StringVar(&configPath, "config", "", "path to config file (optional)")
	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "Invalid config: %v\n", e)
		}
		os.Exit(1)
	}

	ctx := context.Background()

	var chunkStore types.ChunkStore
	if cfg.Database.URL != "" {
		pg, err := store.NewPostgresStore(ctx, store.PostgresConfig{
			ConnString: cfg.Database.URL,
			TableName:  cfg.Database.TableName,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
			os.Exit(1)
		}
		chunkStore = pg
		log.Println("Using Postgres chunk store")
	} else {
		chunkStore = store.NewMemoryStore()
		log.Println("Using in-memory chunk store")
	}
	defer chunkStore.Close()

	client, err := llm.NewWithConfig(llm.ClientConfig{
		BaseURL:     cfg.LLM.BaseURL,
		Models:      cfg.LLM.Models,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		RateLimit:   cfg.LLM.RateLimit,
		Retry: llm.RetryPolicy{
			MaxAttempts: cfg.LLM.Retry.MaxAttempts,
			BaseDelay:   time.Duration(cfg.LLM.Retry.BaseDelayMS) * time.Millisecond,
			Jitter:      cfg.LLM.Retry.Jitter,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create LLM client: %v\n", err)
		os.Exit(1)
	}

	a := assistant.NewWithConfig(assistant.AssistantConfig{
		HistoryWindow:    cfg.Chat.HistoryWindow,
		Language:         cfg.Chat.Language,
		MCQCount:         cfg.Study.MCQCount,
		ShortAnswerCount: cfg.Study.ShortAnswerCount,
		ExamMCQCount:     cfg.Exam.MCQCount,
		ExamEssayCount:   cfg.Exam.EssayCount,
	}, client, chunkStore, retriever.NewWithConfig(retriever.RetrieverConfig{
		TopK:          cfg.Retrieval.TopK,
		MinKeywordLen: cfg.Retrieval.MinKeywordLen,
		Fallback:      retriever.FallbackPolicy(cfg.Retrieval.Fallback),
	}))

	ingester := ingest.NewWithConfig(ingest.IngesterConfig{MaxChunkChars: cfg.Chunker.MaxChars}, chunkStore, client.OCRImage)

	srv := server.New(a, ingester)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
