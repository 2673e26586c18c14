package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akolanti/DocsBot/internal/config"
	"github.com/akolanti/DocsBot/internal/domain/docmodel"
	"github.com/akolanti/DocsBot/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

// RedisStore backs the turn window with a Redis list per thread, trimmed to
// the window on every append so the key never grows past it.
type RedisStore struct {
	client *redis.Client
	window int
	logger *logger_i.Logger
}

func NewRedisStore(ctx context.Context, addr string, password string, window int) *RedisStore {
	logger := logger_i.NewLogger("RedisSessionStore")

	client := redis.NewClient(&redis.Options{
		Addr:                  addr,
		Password:              password,
		DB:                    config.RedisSessionStore,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis is offline: ", "error", err.Error())
		return nil
	}

	go func() {
		<-ctx.Done()
		logger.Info("Closing Redis session store")
		if err := client.Close(); err != nil {
			logger.Error("Error closing redis client", "error", err)
		}
	}()

	logger.Info("Redis session store init successfully")
	if window <= 0 {
		window = 5
	}
	return &RedisStore{client: client, window: window, logger: logger}
}

func threadKey(threadID string) string {
	return "thread:" + threadID
}

func (s *RedisStore) AppendTurn(ctx context.Context, turn docmodel.Turn) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "thread Id", turn.ThreadID)

	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}

	key := threadKey(turn.ThreadID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-s.window), -1)
	pipe.Expire(ctx, key, config.SessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error("error saving turn", "error:", err)
		return err
	}
	log.Debug("Saved turn")
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, threadID string, n int) ([]docmodel.Turn, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "thread Id", threadID)

	if n <= 0 || n > s.window {
		n = s.window
	}
	values, err := s.client.LRange(ctx, threadKey(threadID), int64(-n), -1).Result()
	if err != nil {
		log.Error("Error getting history", "error:", err)
		return nil, err
	}

	turns := make([]docmodel.Turn, 0, len(values))
	for _, v := range values {
		var turn docmodel.Turn
		if err := json.Unmarshal([]byte(v), &turn); err != nil {
			log.Error("Error unmarshalling turn", "error:", err)
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// NewTestStore wires a store around an externally constructed client.
// Only for _test.go use.
func NewTestStore(client *redis.Client, window int) *RedisStore {
	return &RedisStore{
		client: client,
		window: window,
		logger: logger_i.NewLogger("test redis"),
	}
}
