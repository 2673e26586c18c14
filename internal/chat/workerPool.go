package chat

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocsBot/internal/config"
	"github.com/akolanti/DocsBot/internal/metrics"
	"github.com/akolanti/DocsBot/internal/rag"
	"github.com/akolanti/DocsBot/pkg/logger_i"
)

var (
	_chatService       *Service
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	dispatcherChannel  chan bool
	currentWorkerCount int64
	logger             *logger_i.Logger
	_answerer          rag.Service
	minWorkerCount     = config.MinWorkerCount
)

func InitServices(chatService *Service, answerer rag.Service) {
	_chatService = chatService
	_answerer = answerer
	dispatcherChannel = chatService.DispatcherChannel
}

func InitWorkerPool(stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	stopWorkerChannel = stopWorkerChan
	workerWaitGroup = waitGroup
	logger = logger_i.NewLogger("WorkerPool")
	logger.Info("Initializing worker pool")
	go dispatcher()
}

func dispatcher() {
	createWorker()
	logger.Info("Dispatcher started")
	for range dispatcherChannel {
		if atomic.LoadInt64(&currentWorkerCount) < config.MaxWorkerCount {
			logger.Info("Creating new worker", "WorkerCount :", currentWorkerCount)
			createWorker()
		}
	}
}

func createWorker() {
	workerWaitGroup.Add(1)
	go worker()
	atomic.AddInt64(&currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	logger.Info("Created new worker")
}

func worker() {
	for {
		select {
		case question := <-_chatService.QuestionChannel:
			executeQuestion(question)
			metrics.DecrementQuestionsInQueue()

		case <-stopWorkerChannel:
			removeWorker("Stop worker signal received")
			return

		case <-time.After(config.IdleWorkerTimeout):
			// Worker was idle for too long
			if retireIdleWorker() {
				return
			}
		}
	}
}

// retireIdleWorker releases one worker slot unless that would take the pool
// below the floor. Check and decrement happen in a single CAS step, so two
// idle workers can never both claim the last surplus slot.
func retireIdleWorker() bool {
	for {
		count := atomic.LoadInt64(&currentWorkerCount)
		if count <= atomic.LoadInt64(&minWorkerCount) {
			return false
		}
		if atomic.CompareAndSwapInt64(&currentWorkerCount, count, count-1) {
			workerWaitGroup.Done()
			logger.Info("Removed worker ", "reason", "Idle worker timeout", "workerCount", count-1)
			metrics.DecrementActiveWorkerCount()
			return true
		}
	}
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}
