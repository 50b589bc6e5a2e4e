package redisStore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

type Store struct {
	client *redis.Client
	Type   int
	logger *logger_i.Logger
}

// Connect opens a client on database dbType and pings it. The caller owns
// the returned store and closes it on shutdown.
func Connect(ctx context.Context, addr, password string, dbType int) (*Store, error) {
	newClient := redis.NewClient(&redis.Options{
		Addr:                  addr,
		Password:              password,
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := newClient.Ping(pingCtx).Err(); err != nil {
		newClient.Close()
		return nil, fmt.Errorf("redis at %s is offline: %w", addr, err)
	}

	store := NewStore(newClient)
	store.Type = dbType
	store.logger.Info("Redis store initialised", "addr", addr, "db", dbType)
	return store, nil
}

func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		logger: logger_i.NewLogger("Redis Store"),
	}
}

func (s *Store) Close() error {
	s.logger.Info("Closing Redis Store")
	return s.client.Close()
}
