package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//answer-path workers
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	RequestsPerNewWorkerCount int64 = 10
	IdleWorkerTimeout               = 1 * time.Minute

	//one inbound question may not hold a worker longer than this
	AnswerTimeout = 45 * time.Second

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//inbound question buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantUseTLS            = false
	QdrantPoolSize          = 1

	//provider guard rails
	ProviderRequestsPerSecond = 2
	ProviderBurst             = 4
	ProviderRetryBackoff      = 2 * time.Second

	//retrieval policy fallbacks when env vars are absent
	DefaultRetrievalTopK = 5
	DefaultSessionWindow = 5

	SystemInstructions = "You are a helpful assistant that answers questions about the team's documentation. " +
		"Base your answer only on the provided context. Be specific and factual. " +
		"If the context does not contain enough information, say so instead of guessing."

	InsufficientContextReply = "I couldn't find anything in the documentation that answers this. " +
		"Try rephrasing, or check whether the doc covers this topic yet."
	UnavailableReply = "Something went wrong while looking that up. Please try again in a moment."

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis has 16 DB we can use
	RedisSessionStore = 1

	SessionTTL = 24 * time.Hour
)

// Auth state is package-level so the middleware chain can check it without
// threading the whole Config through every wrapped handler.
var (
	AuthToken    string
	NoAuthBypass bool
)
