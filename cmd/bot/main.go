// @title           Docs Q&A Bot API
// @version         1.0
// @description     Answers questions about a synced documentation source using retrieval-augmented generation.
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DocsBot/internal/chat"
	"github.com/akolanti/DocsBot/internal/config"
	"github.com/akolanti/DocsBot/internal/docsource"
	"github.com/akolanti/DocsBot/internal/docsource/filesource"
	"github.com/akolanti/DocsBot/internal/docsource/googledocs"
	"github.com/akolanti/DocsBot/internal/domain/chatmodel"
	"github.com/akolanti/DocsBot/internal/handlers"
	"github.com/akolanti/DocsBot/internal/rag"
	"github.com/akolanti/DocsBot/internal/rag/chunker"
	"github.com/akolanti/DocsBot/internal/rag/embedding"
	"github.com/akolanti/DocsBot/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocsBot/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocsBot/internal/rag/llm/factory"
	"github.com/akolanti/DocsBot/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocsBot/internal/server"
	"github.com/akolanti/DocsBot/internal/session"
	docsync "github.com/akolanti/DocsBot/internal/sync"
	"github.com/akolanti/DocsBot/pkg/logger_i"
)

var (
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Invalid configuration", "err", err)
		return
	}

	//init buffered question channel
	questionChannel := make(chan chatmodel.Question, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//external services
	embedder := buildEmbedder(serviceContext, cfg, logger)
	if embedder == nil {
		return
	}

	index, err := qdrantDB.NewQdrantIndex(serviceContext, cfg)
	if err != nil {
		logger.Error("Vector index failed to initialize. Shutting down.", "err", err)
		return
	}
	//an existing collection with a different dimension or metric is a
	//misconfiguration we refuse to serve from
	if err := index.EnsureCollection(serviceContext); err != nil {
		logger.Error("Vector collection mismatch. Shutting down.", "err", err)
		return
	}

	provider, err := factory.NewProvider(serviceContext, cfg)
	if err != nil {
		logger.Error("LLM provider failed to initialize. Shutting down.", "err", err)
		return
	}

	source := buildSource(serviceContext, cfg, logger)
	if source == nil {
		return
	}

	//session store with in-memory fallback when redis is offline
	var sessions session.Store
	if redisStore := session.NewRedisStore(serviceContext, cfg.RedisAddr, cfg.RedisPassword, cfg.SessionWindow); redisStore != nil {
		sessions = redisStore
	} else {
		logger.Error("Redis session store is offline, falling back to in-memory")
		sessions = session.InitInMemoryStore(cfg.SessionWindow)
	}

	//orchestrator
	ragService := rag.NewService(index, provider, embedder, sessions, rag.Policy{
		DocumentID:    cfg.DocumentID,
		TopK:          cfg.RetrievalTopK,
		MinSimilarity: cfg.MinSimilarity,
		SessionWindow: cfg.SessionWindow,
	})

	//sync engine and schedule
	splitter := chunker.New(chunker.Config{
		TargetSize: cfg.ChunkSize,
		Overlap:    cfg.ChunkOverlap,
		Boundary:   chunker.Boundary(cfg.Boundary),
	})
	syncEngine := docsync.NewEngine(source, splitter, embedder, index, cfg.DocumentID)
	scheduler := docsync.NewScheduler(syncEngine, cfg.SyncInterval)
	if err := scheduler.Start(serviceContext); err != nil {
		//the schedule keeps retrying; queries answer INSUFFICIENT_CONTEXT
		//until the first successful sync
		logger.Warn("Initial document sync failed", "err", err)
	}

	//chat service and worker pool
	var notifier chat.Notifier = chat.NewLogNotifier()
	if cfg.OutboundWebhook != "" {
		notifier = chat.NewWebhookNotifier(cfg.OutboundWebhook)
	}
	chatService := chat.InitChatService(chat.ServiceConfig{
		QuestionChannel:   questionChannel,
		DispatcherChannel: dispatcherChannel,
		Notifier:          notifier,
	})

	handlers.InitQuestionHandler(chatService, scheduler, syncEngine, cfg.DocumentID)

	chat.InitServices(chatService, ragService)
	chat.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
		StopScheduler:    scheduler.Stop,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func buildEmbedder(ctx context.Context, cfg *config.Config, logger *logger_i.Logger) embedding.Embedder {
	switch cfg.EmbeddingProvider {
	case "openai":
		return openaiEmbedding.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDim)
	default:
		embedder, err := googleEmbedding.NewGoogleEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDim)
		if err != nil {
			logger.Error("Embedding service failed to initialize. Shutting down.", "err", err)
			return nil
		}
		return embedder
	}
}

func buildSource(ctx context.Context, cfg *config.Config, logger *logger_i.Logger) docsource.Source {
	switch cfg.DocumentSource {
	case "file":
		return filesource.NewFileSource()
	default:
		source, err := googledocs.NewGoogleDocsSource(ctx, cfg.GoogleCredentialsFile)
		if err != nil {
			logger.Error("Document source failed to initialize. Shutting down.", "err", err)
			return nil
		}
		return source
	}
}
