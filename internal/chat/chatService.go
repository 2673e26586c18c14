package chat

import (
	"github.com/akolanti/DocsBot/internal/domain/chatmodel"
)

// Service owns the inbound question queue. Handlers push onto QuestionChannel
// and poke DispatcherChannel; the worker pool drains it.
type Service struct {
	QuestionChannel   chan chatmodel.Question
	RequestCount      int64
	DispatcherChannel chan bool
	Notifier          Notifier
}

type ServiceConfig struct {
	QuestionChannel   chan chatmodel.Question
	DispatcherChannel chan bool
	Notifier          Notifier
}

func InitChatService(cfg ServiceConfig) *Service {
	return &Service{
		QuestionChannel:   cfg.QuestionChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		Notifier:          cfg.Notifier,
	}
}
