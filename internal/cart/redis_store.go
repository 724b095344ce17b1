package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"solvendo/internal/domainerr"
)

// Carts survive a backend restart but not a quiet night: anything untouched
// for the TTL is a stale cart, not a sale in progress.
const carritoTTL = 12 * time.Hour

// RedisStore persists carts as JSON values keyed per register.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func carritoKey(cajaID int) string { return fmt.Sprintf("carrito:%d", cajaID) }

func (s *RedisStore) Get(ctx context.Context, cajaID int) (*Carrito, error) {
	raw, err := s.rdb.Get(ctx, carritoKey(cajaID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &domainerr.PersistenceError{Op: "carrito.get", Err: err}
	}
	var c Carrito
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, &domainerr.PersistenceError{Op: "carrito.decode", Err: err}
	}
	return &c, nil
}

func (s *RedisStore) Put(ctx context.Context, c *Carrito) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return &domainerr.PersistenceError{Op: "carrito.encode", Err: err}
	}
	if err := s.rdb.Set(ctx, carritoKey(c.CajaID), raw, carritoTTL).Err(); err != nil {
		return &domainerr.PersistenceError{Op: "carrito.put", Err: err}
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, cajaID int) error {
	if err := s.rdb.Del(ctx, carritoKey(cajaID)).Err(); err != nil {
		return &domainerr.PersistenceError{Op: "carrito.delete", Err: err}
	}
	return nil
}
