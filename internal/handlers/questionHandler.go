package handlers

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocsBot/internal/chat"
	"github.com/akolanti/DocsBot/internal/config"
	"github.com/akolanti/DocsBot/internal/domain/chatmodel"
	"github.com/akolanti/DocsBot/internal/domain/docmodel"
	"github.com/akolanti/DocsBot/internal/metrics"
	docsync "github.com/akolanti/DocsBot/internal/sync"
	"github.com/akolanti/DocsBot/pkg/logger_i"
)

var (
	handlerInstance *QuestionHandler //private singleton
	once            sync.Once
	logQH           *logger_i.Logger
)

type QuestionHandler struct {
	service       *chat.Service
	syncScheduler *docsync.Scheduler
	syncEngine    *docsync.Engine
	documentID    string
}

func InitQuestionHandler(chatService *chat.Service, scheduler *docsync.Scheduler, engine *docsync.Engine, documentID string) {
	once.Do(func() {
		handlerInstance = &QuestionHandler{
			service:       chatService,
			syncScheduler: scheduler,
			syncEngine:    engine,
			documentID:    documentID,
		}

		logQH = logger_i.NewLogger("QuestionHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logQH.Info("Starting question handler")
	})
}

// EnqueueQuestion pushes one cleaned question onto the queue and returns the
// channel the worker will answer on.
func EnqueueQuestion(question chatmodel.Question) chan docmodel.Answer {
	logQH.With("traceId", question.TraceID, "threadId", question.ThreadID)
	logQH.Info("Queueing new question")

	question.Reply = make(chan docmodel.Answer, 1)
	question.ReceivedAt = time.Now()

	//metrics
	metrics.IncrementQuestionsInQueue()

	handlerInstance.service.QuestionChannel <- question //blocking send to prevent the system from being overwhelmed

	//a new worker is signalled every N requests; idle workers retire on
	//their own, so the pool stays small during quiet hours
	accurateCount := atomic.AddInt64(&handlerInstance.service.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 {
		logQH.Debug("Request count ", accurateCount)
		handlerInstance.service.DispatcherChannel <- true
	}

	return question.Reply
}

func TriggerSync(traceID string) {
	logQH.Info("On-demand sync requested", "traceId", traceID)
	go func() {
		ctx, cancel := contextWithTrace(traceID, config.WriteTimeout)
		defer cancel()
		if err := handlerInstance.syncScheduler.Trigger(ctx); err != nil {
			logQH.Error("On-demand sync failed", "err", err)
		}
	}()
}

func SyncStatus() (string, docsync.State, string, time.Time) {
	state, revision, lastSyncedAt := handlerInstance.syncEngine.Status()
	return handlerInstance.documentID, state, revision, lastSyncedAt
}
