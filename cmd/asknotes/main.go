package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/asknotes/asknotes/internal/models"
	"github.com/asknotes/asknotes/internal/types"
	"github.com/asknotes/asknotes/pkg/assistant"
	"github.com/asknotes/asknotes/pkg/config"
	"github.com/asknotes/asknotes/pkg/ingest"
	"github.com/asknotes/asknotes/pkg/llm"
	"github.com/asknotes/asknotes/pkg/retriever"
	"github.com/asknotes/asknotes/pkg/store"
)

type flags struct {
	configPath string
	ingestList string
	subject    string
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "path to config file (optional)")
	flag.StringVar(&f.ingestList, "ingest", "", "comma-separated list of files to ingest before chatting")
	flag.StringVar(&f.subject, "subject", "general", "subject the conversation is about")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	cfg, err := config.LoadConfig(f.configPath)
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

	chunkStore, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer chunkStore.Close()

	client, err := llm.NewWithConfig(clientConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create LLM client: %v\n", err)
		os.Exit(1)
	}

	ingester := ingest.NewWithConfig(ingest.IngesterConfig{MaxChunkChars: cfg.Chunker.MaxChars}, chunkStore, client.OCRImage)
	a := assistant.NewWithConfig(assistantConfig(cfg), client, chunkStore, retriever.NewWithConfig(retrieverConfig(cfg)))

	if f.ingestList != "" {
		paths := splitList(f.ingestList)
		if err := ingestFiles(ctx, ingester, paths); err != nil {
			fmt.Fprintf(os.Stderr, "Ingestion failed: %v\n", err)
			os.Exit(1)
		}
	}

	chatLoop(ctx, a, f.subject)
}

func openStore(ctx context.Context, cfg *config.Config) (types.ChunkStore, error) {
	if cfg.Database.URL != "" {
		return store.NewPostgresStore(ctx, store.PostgresConfig{
			ConnString: cfg.Database.URL,
			TableName:  cfg.Database.TableName,
		})
	}
	return store.NewMemoryStore(), nil
}

func clientConfig(cfg *config.Config) llm.ClientConfig {
	return llm.ClientConfig{
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
	}
}

func retrieverConfig(cfg *config.Config) retriever.RetrieverConfig {
	return retriever.RetrieverConfig{
		TopK:          cfg.Retrieval.TopK,
		MinKeywordLen: cfg.Retrieval.MinKeywordLen,
		Fallback:      retriever.FallbackPolicy(cfg.Retrieval.Fallback),
	}
}

func assistantConfig(cfg *config.Config) assistant.AssistantConfig {
	return assistant.AssistantConfig{
		HistoryWindow:    cfg.Chat.HistoryWindow,
		Language:         cfg.Chat.Language,
		MCQCount:         cfg.Study.MCQCount,
		ShortAnswerCount: cfg.Study.ShortAnswerCount,
		ExamMCQCount:     cfg.Exam.MCQCount,
		ExamEssayCount:   cfg.Exam.EssayCount,
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func ingestFiles(ctx context.Context, ingester ingest.Ingester, paths []string) error {
	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Ingesting notes"),
		progressbar.OptionShowCount(),
	)

	var mu sync.Mutex
	var failed []string

	ingester.IngestFiles(ctx, paths, func(result ingest.FileResult, err error) {
		mu.Lock()
		defer mu.Unlock()
		bar.Add(1)
		if err != nil {
			failed = append(failed, err.Error())
			return
		}
		color.Green("\n✓ %s: %d chunks (%d chars)", result.FileName, result.ChunkCount, result.TotalChars)
	})
	fmt.Println()

	if len(failed) > 0 {
		return fmt.Errorf("%d file(s) failed:\n  %s", len(failed), strings.Join(failed, "\n  "))
	}
	return nil
}

func chatLoop(ctx context.Context, a *assistant.Assistant, subject string) {
	color.Cyan("AskNotes ready. Subject: %s. Type your question, or 'exit' to quit.", subject)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		color.Set(color.FgGreen)
		fmt.Print("You: ")
		color.Unset()

		if !scanner.Scan() {
			return
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return
		}

		answer, err := a.Ask(ctx, subject, question)
		if err != nil {
			printAskError(err)
			continue
		}

		printAnswer(answer)
	}
}

func printAskError(err error) {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		color.Yellow("The model is busy right now. Please try again in a moment.")
	case errors.Is(err, llm.ErrUnavailable):
		color.Red("The model is unreachable. Is Ollama running?")
	default:
		color.Red("Something went wrong, please retry: %v", err)
	}
}

func printAnswer(answer models.StructuredAnswer) {
	if answer.NotFound() {
		color.Yellow("Assistant: I couldn't find this in your notes.")
		return
	}

	color.Cyan("Assistant: %s", answer.Answer)
	if answer.Confidence != "" {
		fmt.Printf("  confidence: %s\n", answer.Confidence)
	}
	for _, c := range answer.Citations {
		fmt.Printf("  [%s p.%d]", c.FileName, c.PageNumber)
		if c.Excerpt != "" {
			fmt.Printf(" %s", c.Excerpt)
		}
		fmt.Println()
	}
}
