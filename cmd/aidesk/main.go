package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/channel"
	"github.com/xaenox/aidesk/internal/classifier"
	"github.com/xaenox/aidesk/internal/generator"
	"github.com/xaenox/aidesk/internal/index"
	"github.com/xaenox/aidesk/internal/llm"
	"github.com/xaenox/aidesk/internal/pipeline"
	"github.com/xaenox/aidesk/internal/retriever"
	"github.com/xaenox/aidesk/internal/server"
	"github.com/xaenox/aidesk/internal/style"
	"github.com/xaenox/aidesk/internal/ticket"
	"github.com/xaenox/aidesk/internal/translate"
	"github.com/xaenox/aidesk/internal/vectorstore"
	"github.com/xaenox/aidesk/pkg/config"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("aidesk exited", zap.Error(err))
	}
}

// run owns the component graph so its deferred shutdowns fire on every
// exit path, including startup errors.
func run(logger *zap.Logger) error {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	settings, err := config.LoadSystemStore(cfg.Storage.SettingsFile)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	client := llm.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, settings, logger)

	var store vectorstore.Store
	if cfg.Index.Backend == "sqlite" {
		logger.Info("Using sqlite vector store", zap.String("path", cfg.Index.SQLitePath))
		store, err = vectorstore.NewSQLiteStore(cfg.Index.SQLitePath)
		if err != nil {
			return fmt.Errorf("open vector store: %w", err)
		}
	} else {
		logger.Info("Using in-memory vector store")
		store = vectorstore.NewMemoryStore()
	}
	defer store.Close()

	chunker := index.NewChunker(cfg.Index.ChunkSize, cfg.Index.ChunkOverlap)
	indexer := index.NewIndexer(client, store, chunker, logger)
	indexer.Bootstrap(context.Background())

	queue := index.NewQueue(indexer, cfg.Index.Workers, logger)
	defer queue.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Index.WatchDir != "" {
		watcher, err := index.NewWatcher(cfg.Index.WatchDir, queue, indexer, logger)
		if err != nil {
			return fmt.Errorf("start knowledge watcher: %w", err)
		}
		go watcher.Run(ctx)
	}

	var ticketStore ticket.Store
	switch cfg.Storage.Backend {
	case "postgres":
		logger.Info("Using PostgreSQL ticket store")
		ticketStore, err = ticket.NewPostgresStore(ticket.PostgresConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			return fmt.Errorf("initialize ticket store: %w", err)
		}
	case "memory":
		logger.Info("Using in-memory ticket store")
		ticketStore = ticket.NewMemoryStore()
	default:
		logger.Info("Using file ticket store", zap.String("path", cfg.Storage.FeedbackFile))
		ticketStore = ticket.NewFileStore(cfg.Storage.FeedbackFile)
	}
	defer ticketStore.Close()

	translator := translate.NewService(client, logger)
	machine := ticket.NewMachine(ticketStore, translator, logger)

	hybrid := retriever.NewHybrid(client, store, indexer.Lexicon, logger)
	reranker := retriever.NewReranker(client, logger)
	clf := classifier.New(client, logger)
	gen := generator.New(client, settings, logger)
	pipe := pipeline.New(clf, hybrid, reranker, gen, settings, logger)

	analyzer := style.NewAnalyzer(client, logger)
	engine := style.NewEngine(client, client, client, logger)

	srv := server.New(indexer, queue, settings, analyzer, engine, machine, ticketStore, pipe, logger)

	if sys := settings.Current(); sys.TelegramEnabled && sys.TelegramToken != "" {
		bot, err := channel.NewTelegramBot(sys.TelegramToken, pipe, machine, logger)
		if err != nil {
			logger.Error("Failed to create telegram bot", zap.Error(err))
		} else {
			srv.RegisterDeliverer("telegram", bot)
			go bot.Start(ctx)
		}
	}

	if err := srv.Start(cfg.Server.Address); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
