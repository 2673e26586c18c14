package chat

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/DocsBot/internal/config"
	"github.com/akolanti/DocsBot/internal/domain/chatmodel"
	"github.com/akolanti/DocsBot/internal/domain/docmodel"
	"github.com/akolanti/DocsBot/pkg/logger_i"
)

// MockAnswerer tracks if questions are executed
type MockAnswerer struct {
	AnsweredCount int32
}

func (m *MockAnswerer) Answer(ctx context.Context, threadID string, question string) docmodel.Answer {
	atomic.AddInt32(&m.AnsweredCount, 1)
	return docmodel.Answer{Text: "worker answer", Outcome: docmodel.OutcomeGrounded}
}

type MockNotifier struct {
	OnSend func(ctx context.Context, threadID string, text string) error
	Sent   int32
}

func (m *MockNotifier) Send(ctx context.Context, threadID string, text string) error {
	atomic.AddInt32(&m.Sent, 1)
	if m.OnSend != nil {
		return m.OnSend(ctx, threadID, text)
	}
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	// 1. Setup
	notifier := &MockNotifier{}
	chatSvc := InitChatService(ServiceConfig{
		QuestionChannel:   make(chan chatmodel.Question, 10),
		DispatcherChannel: make(chan bool, 10),
		Notifier:          notifier,
	})
	mockAnswerer := &MockAnswerer{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(chatSvc, mockAnswerer)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		chatSvc.DispatcherChannel <- true

		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker answers a question and notifies", func(t *testing.T) {
		reply := make(chan docmodel.Answer, 1)
		chatSvc.QuestionChannel <- chatmodel.Question{
			ThreadID: "thread-1",
			Text:     "how do I deploy?",
			TraceID:  "trace-1",
			Reply:    reply,
		}

		select {
		case answer := <-reply:
			if answer.Text != "worker answer" {
				t.Errorf("Unexpected answer %q", answer.Text)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("No answer within timeout")
		}

		time.Sleep(50 * time.Millisecond)
		if atomic.LoadInt32(&mockAnswerer.AnsweredCount) != 1 {
			t.Errorf("Expected 1 question answered, got %d", mockAnswerer.AnsweredCount)
		}
		if atomic.LoadInt32(&notifier.Sent) != 1 {
			t.Errorf("Expected 1 notification, got %d", notifier.Sent)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 1)
	logger = logger_i.NewLogger("TestWorkerPool")
	chatSvc := InitChatService(ServiceConfig{
		QuestionChannel: make(chan chatmodel.Question),
		Notifier:        &MockNotifier{},
	})
	InitServices(chatSvc, &MockAnswerer{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	// Spawn 2 workers; only the surplus above the floor may retire
	createWorker()
	createWorker()
	time.Sleep(config.IdleWorkerTimeout)

	time.Sleep(100 * time.Millisecond)
	count := atomic.LoadInt64(&currentWorkerCount)
	if count != 1 {
		t.Errorf("Idle surplus worker should have retired down to the floor, but count is %d", count)
	}
}

func TestFormatAnswer(t *testing.T) {
	t.Run("grounded answer lists sources", func(t *testing.T) {
		answer := docmodel.Answer{
			Text:    "Use the release pipeline.",
			Outcome: docmodel.OutcomeGrounded,
			Citations: []docmodel.ScoredChunk{
				{Chunk: docmodel.Chunk{DocumentID: "doc-1", Ordinal: 0}, Score: 0.9},
				{Chunk: docmodel.Chunk{DocumentID: "doc-1", Ordinal: 3}, Score: 0.6},
			},
		}
		got := FormatAnswer(answer)
		want := "Use the release pipeline.\n\n*Sources:*\n• doc-1 (section 1)\n• doc-1 (section 4)"
		if got != want {
			t.Errorf("FormatAnswer() = %q, want %q", got, want)
		}
	})

	t.Run("insufficient context has no sources block", func(t *testing.T) {
		answer := docmodel.Answer{Text: "Nothing found.", Outcome: docmodel.OutcomeInsufficientContext}
		if got := FormatAnswer(answer); got != "Nothing found." {
			t.Errorf("FormatAnswer() = %q", got)
		}
	})
}
